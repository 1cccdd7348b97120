package http

import (
	nethttp "net/http"
	"strings"

	"github.com/dkeye/StudyHub/internal/core"
	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// BearerAuth resolves the Authorization header into the caller's identity.
func BearerAuth(resolver core.IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(nethttp.StatusUnauthorized, gin.H{"error": "Not authorized, no token"})
			return
		}
		id, err := resolver.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(nethttp.StatusUnauthorized, gin.H{"error": "Not authorized, token failed"})
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

func caller(c *gin.Context) domain.Identity {
	id, _ := c.MustGet(identityKey).(domain.Identity)
	return id
}

func roomParam(c *gin.Context) domain.RoomID {
	return domain.RoomID(c.Param("id"))
}
