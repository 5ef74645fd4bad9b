package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"github.com/yeremiapane/restaurant-platform/middlewares"
	"github.com/yeremiapane/restaurant-platform/services"
	"github.com/yeremiapane/restaurant-platform/utils"
)

type UserController struct {
	Users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{Users: users}
}

func (uc *UserController) GetAllUsers(c *gin.Context) {
	users, err := uc.Users.List(c.Request.Context(), middlewares.CurrentActor(c), cast.ToUint(c.Query("restaurant_id")))
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Liste des utilisateurs", users)
}

func (uc *UserController) CreateUser(c *gin.Context) {
	var req services.CreateUserInput
	if !bind(c, &req) {
		return
	}
	user, err := uc.Users.Create(c.Request.Context(), middlewares.CurrentActor(c), req)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.InfoLogger.WithField("user_id", user.ID).Infof("user created with role %s", user.Role)
	utils.RespondJSON(c, http.StatusCreated, "Utilisateur créé", user)
}

func (uc *UserController) UpdateUser(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	var req services.UpdateUserInput
	if !bind(c, &req) {
		return
	}
	user, err := uc.Users.Update(c.Request.Context(), middlewares.CurrentActor(c), id, req)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Utilisateur mis à jour", user)
}

func (uc *UserController) SetRole(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	user, err := uc.Users.SetRole(c.Request.Context(), middlewares.CurrentActor(c), id, req.Role)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Rôle mis à jour", user)
}

func (uc *UserController) SetStatus(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	user, err := uc.Users.SetStatus(c.Request.Context(), middlewares.CurrentActor(c), id, req.Status)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Statut mis à jour", user)
}

func (uc *UserController) DeleteUser(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	if err := uc.Users.Delete(c.Request.Context(), middlewares.CurrentActor(c), id); err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Utilisateur supprimé", nil)
}
