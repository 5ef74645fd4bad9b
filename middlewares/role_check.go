package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-platform/utils"
)

// RequireRoles lets the request through only for the given roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			utils.RespondError(c, http.StatusUnauthorized, errMissingToken)
			c.Abort()
			return
		}
		if _, ok := allowed[role]; !ok {
			utils.RespondError(c, http.StatusForbidden, errors.New("Accès refusé pour ce rôle"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireTenant rejects callers whose token is not bound to a restaurant.
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetUint("restaurant_id") == 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("aucun restaurant actif pour cet utilisateur"))
			c.Abort()
			return
		}
		c.Next()
	}
}
