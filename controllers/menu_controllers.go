package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-platform/middlewares"
	"github.com/yeremiapane/restaurant-platform/services"
	"github.com/yeremiapane/restaurant-platform/utils"
)

type MenuController struct {
	Menu *services.MenuService
}

func NewMenuController(menu *services.MenuService) *MenuController {
	return &MenuController{Menu: menu}
}

func (mc *MenuController) GetAllMenus(c *gin.Context) {
	items, err := mc.Menu.List(c.Request.Context(), middlewares.CurrentActor(c), c.Query("category"))
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Liste du menu", items)
}

func (mc *MenuController) GetCategories(c *gin.Context) {
	categories, err := mc.Menu.Categories(c.Request.Context(), middlewares.CurrentActor(c))
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Catégories", categories)
}

func (mc *MenuController) GetMenuByID(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	item, err := mc.Menu.Get(c.Request.Context(), middlewares.CurrentActor(c), id)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Détail de l'article", item)
}

func (mc *MenuController) CreateMenu(c *gin.Context) {
	var req services.MenuInput
	if !bind(c, &req) {
		return
	}
	item, err := mc.Menu.Create(c.Request.Context(), middlewares.CurrentActor(c), req)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Article créé", item)
}

func (mc *MenuController) UpdateMenu(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	var req services.MenuInput
	if !bind(c, &req) {
		return
	}
	item, err := mc.Menu.Update(c.Request.Context(), middlewares.CurrentActor(c), id, req)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Article mis à jour", item)
}

func (mc *MenuController) SetAvailability(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	var req struct {
		IsAvailable *bool `json:"is_available" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	item, err := mc.Menu.SetAvailability(c.Request.Context(), middlewares.CurrentActor(c), id, *req.IsAvailable)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Disponibilité mise à jour", item)
}

func (mc *MenuController) DeleteMenu(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	if err := mc.Menu.Delete(c.Request.Context(), middlewares.CurrentActor(c), id); err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Article supprimé", nil)
}
