package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mentorchat/auth"
)

const identityKey = "identity"

// AuthRequired validates the Bearer token and exposes the username
// claim as the request identity.
func AuthRequired(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := tokens.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(identityKey, claims.Username)
		c.Next()
	}
}

func identityFrom(c *gin.Context) string {
	return c.GetString(identityKey)
}
