package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/platoo/order-service/kds"
	"github.com/platoo/order-service/middlewares"
	"github.com/platoo/order-service/utils"
)

type KDSController struct {
	Hub      *kds.Hub
	upgrader websocket.Upgrader
}

// NewKDSController accepts websocket handshakes from allowedOrigin, or from
// any origin when allowedOrigin is "*".
func NewKDSController(hub *kds.Hub, allowedOrigin string) *KDSController {
	return &KDSController{
		Hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedOrigin == "*" || origin == allowedOrigin
			},
		},
	}
}

// KDSHandler -> GET /ws/kds, kitchen and delivery staff only
func (kc *KDSController) KDSHandler(c *gin.Context) {
	role := c.GetString(middlewares.ContextRole)
	switch role {
	case utils.RoleAdmin, utils.RoleRestaurant, utils.RoleDelivery:
	case "":
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	default:
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := kc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Errorf("Websocket upgrade failed: %v", err)
		return
	}

	kc.Hub.Register(ws, role)
	defer kc.Hub.Unregister(ws)

	// Clients only listen; reading drains control frames until they disconnect.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}
