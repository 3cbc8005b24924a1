package middlewares

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeaders marks every response as an uncacheable, unframeable JSON
// document. HSTS is sent only when the POS is served over HTTPS, the same
// switch that marks the auth cookie Secure.
func SecurityHeaders(https bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Header("Cache-Control", "no-store")
		if https {
			c.Header("Strict-Transport-Security", "max-age=31536000")
		}

		c.Next()
	}
}
