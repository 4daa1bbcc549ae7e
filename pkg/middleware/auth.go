package middleware

import (
	"strings"

	"socialboost-core/pkg/auth"
	"socialboost-core/pkg/errutil"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID = "auth.user_id"
	ContextRole   = "auth.role"

	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Authenticate parses the bearer token and stores the caller identity
// on the gin context.
func Authenticate(manager *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": gin.H{
				"code":    errutil.StatusUnauthorized,
				"message": "missing authorization header",
			}})
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			c.AbortWithStatusJSON(401, gin.H{"error": gin.H{
				"code":    errutil.StatusUnauthorized,
				"message": "authorization header must be a bearer token",
			}})
			return
		}

		claims, err := manager.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{"error": gin.H{
				"code":    errutil.StatusUnauthorized,
				"message": "invalid or expired session",
			}})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RequireAdmin guards admin-only routes. Must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != RoleAdmin {
			c.AbortWithStatusJSON(403, gin.H{"error": gin.H{
				"code":    errutil.StatusForbidden,
				"message": "admin access required",
			}})
			return
		}
		c.Next()
	}
}

// CallerID returns the authenticated user id from the gin context.
func CallerID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// IsAdmin reports whether the authenticated caller has the admin role.
func IsAdmin(c *gin.Context) bool {
	return c.GetString(ContextRole) == RoleAdmin
}
