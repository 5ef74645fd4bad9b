package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"github.com/yeremiapane/restaurant-platform/middlewares"
	"github.com/yeremiapane/restaurant-platform/services"
	"github.com/yeremiapane/restaurant-platform/utils"
)

type NotificationController struct {
	Notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{Notifications: notifications}
}

func (nc *NotificationController) GetNotifications(c *gin.Context) {
	list, err := nc.Notifications.List(c.Request.Context(), middlewares.CurrentActor(c),
		cast.ToBool(c.Query("unread")), cast.ToInt(c.Query("limit")))
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notifications", list)
}

func (nc *NotificationController) MarkAsRead(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	if err := nc.Notifications.MarkRead(c.Request.Context(), middlewares.CurrentActor(c), id); err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification lue", nil)
}

func (nc *NotificationController) MarkAllAsRead(c *gin.Context) {
	n, err := nc.Notifications.MarkAllRead(c.Request.Context(), middlewares.CurrentActor(c))
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notifications lues", gin.H{"updated": n})
}
