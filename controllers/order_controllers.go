package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"github.com/yeremiapane/restaurant-platform/middlewares"
	"github.com/yeremiapane/restaurant-platform/services"
	"github.com/yeremiapane/restaurant-platform/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// GetAllOrders lists orders of the tenant. Clients only get their own.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	filter := services.OrderFilter{
		Status: c.Query("status"),
		Limit:  cast.ToInt(c.Query("limit")),
		Offset: cast.ToInt(c.Query("offset")),
	}
	orders, err := oc.Orders.List(c.Request.Context(), middlewares.CurrentActor(c), filter)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Liste des commandes", orders)
}

func (oc *OrderController) GetKitchenOrders(c *gin.Context) {
	orders, err := oc.Orders.Kitchen(c.Request.Context(), middlewares.CurrentActor(c))
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Commandes en cuisine", orders)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	order, err := oc.Orders.Get(c.Request.Context(), middlewares.CurrentActor(c), id)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Détail de la commande", order)
}

func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req services.CreateOrderInput
	if !bind(c, &req) {
		return
	}
	order, err := oc.Orders.Create(c.Request.Context(), middlewares.CurrentActor(c), req)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Commande créée", order)
}

func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
		Reason string `json:"reason"`
	}
	if !bind(c, &req) {
		return
	}
	order, err := oc.Orders.UpdateStatus(c.Request.Context(), middlewares.CurrentActor(c), id, req.Status, req.Reason)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Statut mis à jour", order)
}

func (oc *OrderController) DeleteOrder(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	if err := oc.Orders.Delete(c.Request.Context(), middlewares.CurrentActor(c), id); err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Commande supprimée", nil)
}
