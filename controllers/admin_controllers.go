package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-platform/middlewares"
	"github.com/yeremiapane/restaurant-platform/services"
	"github.com/yeremiapane/restaurant-platform/utils"
)

// AdminController serves the tenant administration routes.
type AdminController struct {
	Restaurants *services.RestaurantService
	Plans       *services.PlanService
}

func NewAdminController(restaurants *services.RestaurantService, plans *services.PlanService) *AdminController {
	return &AdminController{Restaurants: restaurants, Plans: plans}
}

func (ac *AdminController) ListRestaurants(c *gin.Context) {
	restaurants, err := ac.Restaurants.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Liste des restaurants", restaurants)
}

func (ac *AdminController) CreateRestaurant(c *gin.Context) {
	var req services.CreateRestaurantInput
	if !bind(c, &req) {
		return
	}
	restaurant, manager, err := ac.Restaurants.Create(c.Request.Context(), req)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Restaurant créé", gin.H{
		"restaurant": restaurant,
		"manager":    manager,
	})
}

func (ac *AdminController) UpdateRestaurant(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	var req services.UpdateRestaurantInput
	if !bind(c, &req) {
		return
	}
	restaurant, err := ac.Restaurants.Update(c.Request.Context(), id, req)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant mis à jour", restaurant)
}

// SuspendRestaurant suspends by default; {"suspended": false} reactivates.
func (ac *AdminController) SuspendRestaurant(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	req := struct {
		Suspended *bool `json:"suspended"`
	}{}
	if c.Request.ContentLength > 0 && !bind(c, &req) {
		return
	}
	suspended := req.Suspended == nil || *req.Suspended
	restaurant, err := ac.Restaurants.SetSuspended(c.Request.Context(), id, suspended)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Statut du restaurant mis à jour", restaurant)
}

// GetCurrentRestaurant returns the restaurant the caller works in.
func (ac *AdminController) GetCurrentRestaurant(c *gin.Context) {
	tenant, err := middlewares.CurrentActor(c).Tenant()
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	restaurant, err := ac.Restaurants.Get(c.Request.Context(), tenant)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant", restaurant)
}

func (ac *AdminController) SetAcceptingOrders(c *gin.Context) {
	var req struct {
		AcceptingOrders *bool `json:"accepting_orders" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	tenant, err := middlewares.CurrentActor(c).Tenant()
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	restaurant, err := ac.Restaurants.SetAcceptingOrders(c.Request.Context(), tenant, *req.AcceptingOrders)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Prise de commandes mise à jour", restaurant)
}

func (ac *AdminController) ListPlans(c *gin.Context) {
	plans, err := ac.Plans.List(c.Request.Context())
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Liste des forfaits", plans)
}

func (ac *AdminController) CreatePlan(c *gin.Context) {
	var req services.PlanInput
	if !bind(c, &req) {
		return
	}
	plan, err := ac.Plans.Create(c.Request.Context(), req)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Forfait créé", plan)
}

func (ac *AdminController) UpdatePlan(c *gin.Context) {
	var req services.PlanInput
	if !bind(c, &req) {
		return
	}
	plan, err := ac.Plans.Update(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Forfait mis à jour", plan)
}
