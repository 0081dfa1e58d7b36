package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const tokenContextKey = "bearerToken"

// BearerToken extracts the bearer credential from the Authorization header
// and stashes it in the request context. Validation is the backend's job;
// routes that demand a credential use RequireBearer.
func BearerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			c.Set(tokenContextKey, strings.TrimPrefix(auth, "Bearer "))
		}
		c.Next()
	}
}

// RequireBearer rejects requests without a bearer credential
func RequireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if bearerFrom(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Next()
	}
}

func bearerFrom(c *gin.Context) string {
	return c.GetString(tokenContextKey)
}
