package middlewares

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeaders sets the headers every API answer carries. The API
// serves JSON, ticket text and the websocket, never pages, so nothing
// may be framed or loaded from it. HSTS is only sent behind TLS in
// release mode.
func SecurityHeaders(hsts bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Header("Referrer-Policy", "no-referrer")
		// Orders and tokens must not sit in shared caches.
		c.Header("Cache-Control", "no-store")
		if hsts {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
