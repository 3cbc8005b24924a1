package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/billiard-pos/floor"
	"github.com/yeremiapane/billiard-pos/middlewares"
	"github.com/yeremiapane/billiard-pos/utils"
)

// FloorController upgrades staff connections onto the floor hub. Clients
// only listen; anything they send is read and dropped.
type FloorController struct {
	Hub      *floor.Hub
	Upgrader websocket.Upgrader
}

func NewFloorController(hub *floor.Hub, allowedOrigins []string) *FloorController {
	return &FloorController{
		Hub: hub,
		Upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

func (fc *FloorController) FloorHandler(c *gin.Context) {
	_, role, ok := middlewares.CurrentUser(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := fc.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Errorf("floor websocket upgrade: %v", err)
		return
	}

	fc.Hub.Register(ws, role)
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	fc.Hub.Unregister(ws)
}
