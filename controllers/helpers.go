package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"github.com/yeremiapane/restaurant-platform/middlewares"
	"github.com/yeremiapane/restaurant-platform/utils"
)

var errBadRequest = errors.New("Requête invalide")

// bind decodes the JSON body and answers 400 on failure.
func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errBadRequest)
		return false
	}
	return true
}

// tenantOf resolves the restaurant a request works on. Super admins pick
// it with ?restaurant_id.
func tenantOf(c *gin.Context) (uint, error) {
	actor := middlewares.CurrentActor(c)
	if actor.IsSuperAdmin() {
		id := cast.ToUint(c.Query("restaurant_id"))
		if id == 0 {
			return 0, utils.BadRequest("paramètre restaurant_id requis")
		}
		return id, nil
	}
	return actor.Tenant()
}
