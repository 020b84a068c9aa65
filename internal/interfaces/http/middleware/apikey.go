package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/senkronix/b2b-bridge/internal/interfaces/http/dto"
)

// APIKeyHeader is the header carrying publisher and operator credentials.
const APIKeyHeader = "X-API-Key"

// RequireAPIKey guards an endpoint with a static API key. A server started
// without the key configured rejects everything rather than accepting
// everything.
func RequireAPIKey(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(APIKeyHeader)
		if expected == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "invalid or missing API key"))
			return
		}
		c.Next()
	}
}
