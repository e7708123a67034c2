package middleware

import (
	"net/http"
	"strings"

	"cachestore/internal/auth"

	"github.com/gin-gonic/gin"
)

// UsernameKey is the gin context key holding the authenticated operator.
const UsernameKey = "username"

// bearerToken reads "Authorization: Bearer <token>", falling back to the
// token query parameter for websocket clients that cannot set headers.
func bearerToken(c *gin.Context) string {
	if token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return c.Query("token")
}

// JWTAuthMiddleware rejects requests without a valid operator token.
func JWTAuthMiddleware(tokens *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token is required"})
			return
		}

		claims, err := tokens.ValidateToken(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(UsernameKey, claims.Username)
		c.Next()
	}
}

// Username returns the operator set by JWTAuthMiddleware, or "" on public routes.
func Username(c *gin.Context) string {
	return c.GetString(UsernameKey)
}
