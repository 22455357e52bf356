package router

import (
	"time"

	"antigravity/config"
	"antigravity/internal/domain"
	"antigravity/internal/handler"
	"antigravity/internal/middleware"
	"antigravity/internal/repository"
	"antigravity/internal/service"
	"antigravity/internal/ws"
	"antigravity/pkg/cloudinary"
	"antigravity/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, rdb *redis.Client, cloud cloudinary.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimitByIP(middleware.NewRedisRateLimiter(rdb, "rl:ip", 100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	earningsRepo := repository.NewEarningsRepository(db)
	accessRepo := repository.NewAccessRepository(db)
	payoutRepo := repository.NewPayoutRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	followRepo := repository.NewFollowRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	eventsHub := ws.NewHub()

	// Payment providers keyed by method name
	providers := map[string]payment.Provider{
		"razorpay": payment.NewRazorpayProvider(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret),
		"paypal":   payment.NewPayPalProvider(cfg.PayPal.BaseURL, cfg.PayPal.ClientID, cfg.PayPal.ClientSecret),
	}

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	notifSvc := service.NewNotificationService(notificationRepo, eventsHub)
	checkoutSvc := service.NewCheckoutService(db, resourceRepo, purchaseRepo, accessRepo, paymentRepo, providers, cfg.Checkout.FeaturedDayCents)
	settlementSvc := service.NewSettlementService(db, purchaseRepo, paymentRepo, earningsRepo, accessRepo, resourceRepo, providers, notifSvc)
	payoutSvc := service.NewPayoutService(payoutRepo, earningsRepo, auditRepo, notifSvc)
	feedSvc := service.NewFeedService(resourceRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(cfg, authSvc, auditRepo)
	resourceHandler := handler.NewResourceHandler(resourceRepo, accessRepo, feedSvc)
	checkoutHandler := handler.NewCheckoutHandler(checkoutSvc, settlementSvc, purchaseRepo, accessRepo)
	razorpayWebhook := handler.NewRazorpayWebhookHandler(cfg.Razorpay.WebhookSecret, settlementSvc)
	paypalWebhook := handler.NewPayPalWebhookHandler(cfg.PayPal.WebhookSecret, settlementSvc)
	payoutHandler := handler.NewPayoutHandler(payoutSvc)
	earningsHandler := handler.NewEarningsHandler(earningsRepo, purchaseRepo, payoutSvc)
	followHandler := handler.NewFollowHandler(followRepo, userRepo, notifSvc)
	notificationHandler := handler.NewNotificationHandler(notifSvc)
	uploadHandler := handler.NewUploadHandler(cloud)
	adminHandler := handler.NewAdminHandler(resourceRepo, auditRepo, notifSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)
	optAuthMw := middleware.OptionalAuth(&cfg.JWT)
	orderLimitMw := middleware.RateLimitByUser(middleware.NewRedisRateLimiter(
		rdb, "rl:orders", cfg.Checkout.OrderRateLimit, cfg.Checkout.OrderRateWindow))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
			authGroup.GET("/google", googleOAuthHandler.Redirect)
			authGroup.GET("/google/callback", googleOAuthHandler.Callback)
			authGroup.POST("/google/token", googleOAuthHandler.Token)
		}

		api.GET("/resources", optAuthMw, resourceHandler.List)
		api.GET("/resources/:slug", optAuthMw, resourceHandler.Get)
		api.POST("/resources", authMw, middleware.RequireRole(domain.RoleCreator, domain.RoleAdmin), resourceHandler.Create)
		api.POST("/uploads/screenshot", authMw, uploadHandler.UploadScreenshot)

		// Settlement: order creation is buyer-rate-limited; capture is not.
		api.POST("/resources/:id/checkout", authMw, orderLimitMw, checkoutHandler.CreateOrder)
		api.POST("/purchases/capture", authMw, checkoutHandler.Capture)
		api.POST("/resources/:id/feature", authMw, middleware.RequireRole(domain.RoleCreator, domain.RoleAdmin), checkoutHandler.CreateFeatureOrder)

		api.POST("/webhooks/razorpay", razorpayWebhook.Handle)
		api.POST("/webhooks/paypal", paypalWebhook.Handle)

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/purchases", checkoutHandler.ListMine)
			me.GET("/library", checkoutHandler.ListLibrary)
			me.GET("/earnings", earningsHandler.Get)
			me.POST("/payouts", middleware.RequireRole(domain.RoleCreator, domain.RoleAdmin), payoutHandler.Request)
			me.GET("/payouts", payoutHandler.ListMine)
			me.GET("/notifications", notificationHandler.List)
			me.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		}

		api.POST("/creators/:id/follow", authMw, followHandler.Follow)
		api.DELETE("/creators/:id/follow", authMw, followHandler.Unfollow)
		api.GET("/creators/:id/followers", followHandler.ListFollowers)

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.GET("/resources/pending", adminHandler.ListPendingResources)
			admin.POST("/resources/:id/approve", adminHandler.ApproveResource)
			admin.POST("/resources/:id/reject", adminHandler.RejectResource)
			admin.GET("/payouts", payoutHandler.ListPending)
			admin.POST("/payouts/:id/approve", payoutHandler.Approve)
			admin.POST("/payouts/:id/reject", payoutHandler.Reject)
			admin.POST("/payouts/:id/complete", payoutHandler.Complete)
		}
	}

	r.GET("/ws/events", ws.UpgradeEventsWS(&cfg.JWT, eventsHub))

	return r
}
