package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tasktrace/tasktrace/internal/utils"
	"github.com/tasktrace/tasktrace/pkg/response"
)

const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextName   = "name"
)

// AuthRequired checks for a valid JWT bearer token and places the session
// identity in the request context. Session presence is the first check of
// every protected operation; nothing else runs without it.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "authorization header required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextName, claims.Name)

		c.Next()
	}
}

// GetUserID gets the current user ID from context
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextUserID); exists {
		return id.(uint)
	}
	return 0
}

// GetEmail gets the current user email from context
func GetEmail(c *gin.Context) string {
	if email, exists := c.Get(ContextEmail); exists {
		return email.(string)
	}
	return ""
}

// GetName gets the current user display name from context
func GetName(c *gin.Context) string {
	if name, exists := c.Get(ContextName); exists {
		return name.(string)
	}
	return ""
}
