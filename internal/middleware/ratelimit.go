package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter is a fixed-window counter in Redis. The window state is
// shared across instances, so a client cannot dodge the limit by hitting a
// different replica.
type RedisRateLimiter struct {
	rdb    *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewRedisRateLimiter(rdb *redis.Client, prefix string, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{rdb: rdb, prefix: prefix, limit: limit, window: window}
}

// Allow increments the counter for key and reports whether it is within the
// limit, plus the seconds until the window resets. Redis being unreachable
// fails open; limiting is protective, not load-bearing.
func (r *RedisRateLimiter) Allow(c *gin.Context, key string) (bool, int) {
	full := fmt.Sprintf("%s:%s", r.prefix, key)
	n, err := r.rdb.Incr(c.Request.Context(), full).Result()
	if err != nil {
		return true, 0
	}
	if n == 1 {
		r.rdb.Expire(c.Request.Context(), full, r.window)
	}
	if n > int64(r.limit) {
		ttl, _ := r.rdb.TTL(c.Request.Context(), full).Result()
		retry := int(ttl.Seconds())
		if retry <= 0 {
			retry = int(r.window.Seconds())
		}
		return false, retry
	}
	return true, 0
}

// RateLimitByIP limits unauthenticated traffic per client IP.
func RateLimitByIP(limiter *RedisRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retry := limiter.Allow(c, c.ClientIP())
		if !ok {
			c.Header("Retry-After", fmt.Sprintf("%d", retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// RateLimitByUser limits per authenticated user. Use after AuthRequired.
func RateLimitByUser(limiter *RedisRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		ok, retry := limiter.Allow(c, fmt.Sprintf("%d", userID))
		if !ok {
			c.Header("Retry-After", fmt.Sprintf("%d", retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many order attempts, slow down"})
			return
		}
		c.Next()
	}
}
