package middleware

import (
	"antigravity/internal/domain"

	"github.com/gin-gonic/gin"
)

// AdminRequired gates a route to the ADMIN role.
func AdminRequired() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin)
}
