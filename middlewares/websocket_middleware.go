package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/billiard-pos/utils"
)

// WebSocketAuthMiddleware accepts the token as a query parameter as well,
// since browsers cannot set headers on a websocket handshake.
func WebSocketAuthMiddleware(tm *utils.TokenManager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = tokenFromRequest(c, cookieName)
		}
		if token == "" || !authenticate(c, tm, token) {
			c.AbortWithStatus(401)
			return
		}
		c.Next()
	}
}
