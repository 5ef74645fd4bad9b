package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-platform/middlewares"
	"github.com/yeremiapane/restaurant-platform/services"
	"github.com/yeremiapane/restaurant-platform/utils"
)

type AuthController struct {
	Auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{Auth: auth}
}

func (ac *AuthController) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	session, err := ac.Auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.InfoLogger.WithField("user_id", session.User.ID).Info("user logged in")
	utils.RespondJSON(c, http.StatusOK, "Connexion réussie", session)
}

func (ac *AuthController) Register(c *gin.Context) {
	var req services.SignUpInput
	if !bind(c, &req) {
		return
	}
	session, err := ac.Auth.SignUpClient(c.Request.Context(), req)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Compte créé", session)
}

func (ac *AuthController) Me(c *gin.Context) {
	user, err := ac.Auth.Me(c.Request.Context(), middlewares.CurrentActor(c))
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profil", user)
}

// Logout revokes the presented token until it expires.
func (ac *AuthController) Logout(c *gin.Context) {
	claims := middlewares.Claims(c)
	if err := utils.RevokeToken(c.Request.Context(), claims); err != nil {
		utils.RespondFailure(c, utils.Internal(err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Déconnexion réussie", nil)
}

func (ac *AuthController) AddRestaurant(c *gin.Context) {
	var req struct {
		ShortCode string `json:"short_code" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	session, err := ac.Auth.AddRestaurant(c.Request.Context(), middlewares.CurrentActor(c), req.ShortCode)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant ajouté", session)
}

func (ac *AuthController) SetActiveRestaurant(c *gin.Context) {
	var req struct {
		RestaurantID uint `json:"restaurant_id" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	session, err := ac.Auth.SetActiveRestaurant(c.Request.Context(), middlewares.CurrentActor(c), req.RestaurantID)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant actif modifié", session)
}
