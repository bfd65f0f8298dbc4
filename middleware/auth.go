package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	UserContextKey = "userID"
	RoleContextKey = "role"
)

// AuthMiddleware trusts the identity headers set by the API gateway, which
// validates the JWT upstream.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if _, err := uuid.Parse(userID); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(UserContextKey, userID)
		c.Set(RoleContextKey, c.GetHeader("X-User-Role"))
		c.Next()
	}
}

// GetUserID returns the authenticated user's id from the request context.
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	if val, ok := c.Get(UserContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return uuid.Parse(id)
		}
	}
	return uuid.Nil, errors.New("user ID not found in context")
}

// IsAdmin reports whether the request carries the admin role.
func IsAdmin(c *gin.Context) bool {
	role, ok := c.Get(RoleContextKey)
	if !ok {
		return false
	}
	roleStr, ok := role.(string)
	return ok && roleStr == "admin"
}
