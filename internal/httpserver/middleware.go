package httpserver

import (
	"net/http"
	"strings"
	"time"

	"shopcart/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ownerAuthMiddleware guards the cart routes. Anonymous owner keys are open:
// the key itself is the client-held credential and carts behind it hold no
// account data. Account owner keys require a bearer token issued at login and
// bound to that exact key.
func ownerAuthMiddleware(tokens TokenStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerKey := c.Param("ownerKey")
		if !domain.ValidOwnerKey(ownerKey) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid owner key"})
			return
		}
		if domain.IsAnonymousKey(ownerKey) {
			c.Next()
			return
		}

		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		tok, err := tokens.Get(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if time.Now().After(tok.ExpiresAt) {
			if err := tokens.Delete(c.Request.Context(), raw); err != nil {
				logger.Warn("failed to delete expired token", zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
			return
		}
		if !tok.Authenticated || tok.OwnerKey != ownerKey {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token does not grant access to this cart"})
			return
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
