// README: API key middleware guarding mutating requests.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const apiKeyHeader = "X-API-Key"

// APIKey rejects POST/PUT/PATCH/DELETE requests lacking the configured key.
// An empty key disables the check. The key may also be sent as a Bearer token.
func APIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" || isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}
		got := c.GetHeader(apiKeyHeader)
		if got == "" {
			if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
				got = strings.TrimPrefix(h, "Bearer ")
			}
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "missing or invalid API key"})
			return
		}
		c.Next()
	}
}

func isSafeMethod(m string) bool {
	return m == http.MethodGet || m == http.MethodHead || m == http.MethodOptions
}
