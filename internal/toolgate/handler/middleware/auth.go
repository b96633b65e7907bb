package middleware

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kiosk404/toolgate/internal/pkg/core"
)

// BearerAuth returns a Gin middleware that requires "Authorization: Bearer <token>"
// on every route except /healthz. Loopback clients are let through when
// allowLocal is set. An empty token disables the check.
func BearerAuth(token string, allowLocal bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" || c.Request.URL.Path == "/healthz" {
			c.Next()
			return
		}
		if allowLocal && isLocalRequest(c.Request) {
			c.Next()
			return
		}

		const prefix = "Bearer "
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, prefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, core.ErrResponse{
				Code:    http.StatusUnauthorized,
				Message: "missing or malformed Authorization header, expected 'Bearer <token>'",
			})
			return
		}

		provided := header[len(prefix):]
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, core.ErrResponse{
				Code:    http.StatusUnauthorized,
				Message: "invalid bearer token",
			})
			return
		}

		c.Next()
	}
}

// isLocalRequest checks if a request originates from loopback address.
func isLocalRequest(r *http.Request) bool {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return false
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback()
}
