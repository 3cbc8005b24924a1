package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/billiard-pos/utils"
)

// RouteRoles maps "METHOD /route/pattern" to the roles allowed to call it.
// A pattern ending in "/" covers every route below it. Routes without an
// entry are open to any authenticated user.
type RouteRoles map[string][]string

func (r RouteRoles) allowed(method, route string) ([]string, bool) {
	if roles, ok := r[method+" "+route]; ok {
		return roles, true
	}
	best := ""
	for key := range r {
		if !strings.HasSuffix(key, "/") {
			continue
		}
		m, prefix, _ := strings.Cut(key, " ")
		if (m == method || m == "*") && strings.HasPrefix(route, prefix) && len(key) > len(best) {
			best = key
		}
	}
	if best == "" {
		return nil, false
	}
	return r[best], true
}

// RoleCheck enforces rules on the matched route pattern (c.FullPath), so
// "/tables/:id/start" is never mistaken for "/tables".
func RoleCheck(rules RouteRoles) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles, ok := rules.allowed(c.Request.Method, c.FullPath())
		if !ok || len(roles) == 0 {
			c.Next()
			return
		}

		userRole, exists := c.Get(ContextRole)
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}
		for _, role := range roles {
			if userRole == role {
				c.Next()
				return
			}
		}

		utils.RespondError(c, http.StatusForbidden, fmt.Errorf("%s access required", strings.ToLower(strings.Join(roles, " or "))))
		c.Abort()
	}
}
