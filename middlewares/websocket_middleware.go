package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-platform/utils"
)

// WebSocketAuthMiddleware reads the token from the query string since
// browsers cannot set headers on a websocket handshake.
func WebSocketAuthMiddleware(sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		claims, err := verify(c, sessions, token)
		if err != nil {
			c.AbortWithStatus(utils.StatusOf(err))
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}
