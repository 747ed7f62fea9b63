package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "github.com/VaclavOrsag/bakalarka-rozpocet/internal/errors"
)

// APIKeyHeader carries the shared key of mutating requests.
const APIKeyHeader = "X-API-Key"

// APIKey guards a route group with the configured shared key. With no key
// configured every request passes, which is how a local single-user
// install runs.
func APIKey(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}
		key := c.GetHeader(APIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			abortWithAppError(c, apperrors.ErrUnauthorized)
			return
		}
		c.Next()
	}
}
