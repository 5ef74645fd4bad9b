package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/restaurant-platform/kds"
	"github.com/yeremiapane/restaurant-platform/middlewares"
	"github.com/yeremiapane/restaurant-platform/utils"
)

// The token in the query string authenticates the socket, so any origin
// may connect.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type KDSController struct {
	Hub *kds.Hub
}

func NewKDSController(hub *kds.Hub) *KDSController {
	return &KDSController{Hub: hub}
}

// KDSHandler upgrades the request and streams the tenant's events until
// the client disconnects.
func (kc *KDSController) KDSHandler(c *gin.Context) {
	actor := middlewares.CurrentActor(c)
	if actor.RestaurantID == 0 {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Errorf("websocket upgrade: %v", err)
		return
	}
	kc.Hub.Serve(ws, kds.Identity{
		UserID:       actor.UserID,
		Role:         actor.Role,
		RestaurantID: actor.RestaurantID,
	})
}
