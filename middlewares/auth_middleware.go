package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/billiard-pos/utils"
)

// Context keys set by the auth middlewares.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextToken  = "token"
)

// tokenFromRequest reads the auth cookie first, then a Bearer header.
func tokenFromRequest(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

func authenticate(c *gin.Context, tm *utils.TokenManager, token string) bool {
	claims, err := tm.ParseToken(token)
	if err != nil {
		return false
	}
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextRole, claims.Role)
	c.Set(ContextToken, token)
	return true
}

func AuthMiddleware(tm *utils.TokenManager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c, cookieName)
		if token == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("authentication required"))
			c.Abort()
			return
		}
		if !authenticate(c, tm, token) {
			utils.RespondError(c, http.StatusUnauthorized, utils.ErrInvalidToken)
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth sets the caller's identity when a valid token is present and
// lets the request through either way.
func OptionalAuth(tm *utils.TokenManager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := tokenFromRequest(c, cookieName); token != "" {
			authenticate(c, tm, token)
		}
		c.Next()
	}
}

// CurrentUser returns the id and role set by the auth middlewares.
func CurrentUser(c *gin.Context) (uint, string, bool) {
	id, ok := c.Get(ContextUserID)
	if !ok {
		return 0, "", false
	}
	userID, ok := id.(uint)
	if !ok {
		return 0, "", false
	}
	return userID, c.GetString(ContextRole), true
}
