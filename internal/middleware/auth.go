package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mentormatch/mentormatch-api/pkg/jwt"
	"github.com/mentormatch/mentormatch-api/pkg/logger"
	"go.uber.org/zap"
)

// APIKeyHeader carries the public key shipped with the web client
const APIKeyHeader = "X-API-Key"

// TokenAuthMiddleware admits requests carrying one of the valid API keys.
// With no keys configured every request is admitted.
func TokenAuthMiddleware(validTokens ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(validTokens) == 0 {
			c.Next()
			return
		}

		token := c.GetHeader(APIKeyHeader)

		if token == "" {
			logger.Warn("Missing API key",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing API key"})
			c.Abort()
			return
		}

		valid := false
		for _, validToken := range validTokens {
			if jwt.TimingSafeCompare(token, validToken) {
				valid = true
				break
			}
		}

		if !valid {
			logger.Warn("Invalid API key",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			c.Abort()
			return
		}

		c.Next()
	}
}
