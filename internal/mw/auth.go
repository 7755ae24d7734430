package mw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"machine-loan-backend/internal/auth"
)

// ClaimsKey is the context key under which verified session claims live.
const ClaimsKey = "claims"

// Auth rejects requests without a valid bearer token and stores the
// verified claims in the request context.
func Auth(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		claims, err := svc.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}
