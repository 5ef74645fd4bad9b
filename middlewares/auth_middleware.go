package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-platform/services"
	"github.com/yeremiapane/restaurant-platform/utils"
)

const claimsKey = "claims"

var (
	errMissingToken = errors.New("Jeton d'authentification manquant")
	errInvalidToken = utils.Unauthorized("Jeton invalide ou expiré")
)

// SessionChecker re-validates token claims against the account as it is
// now, so role changes, disabled accounts and suspended restaurants take
// effect before the token expires.
type SessionChecker interface {
	CheckSession(ctx context.Context, userID uint, role string, restaurantID uint) error
}

// AuthMiddleware verifies the bearer token and stores its claims in the
// context. A nil checker trusts the claims as signed.
func AuthMiddleware(sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, errMissingToken)
			c.Abort()
			return
		}

		claims, err := verify(c, sessions, strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			utils.RespondFailure(c, err)
			c.Abort()
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

func verify(c *gin.Context, sessions SessionChecker, tokenString string) (*utils.CustomClaims, error) {
	claims, err := utils.ParseToken(strings.TrimSpace(tokenString))
	if err != nil {
		return nil, errInvalidToken
	}
	if utils.IsTokenRevoked(c.Request.Context(), claims.ID) {
		return nil, errInvalidToken
	}
	if sessions != nil {
		if err := sessions.CheckSession(c.Request.Context(), claims.UserID, claims.Role, claims.RestaurantID); err != nil {
			return nil, err
		}
	}
	return claims, nil
}

func setClaims(c *gin.Context, claims *utils.CustomClaims) {
	c.Set(claimsKey, claims)
	c.Set("user_id", claims.UserID)
	c.Set("role", claims.Role)
	c.Set("restaurant_id", claims.RestaurantID)
}

// Claims returns the verified token claims of the request.
func Claims(c *gin.Context) *utils.CustomClaims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*utils.CustomClaims)
	return claims
}

// CurrentActor returns the authenticated caller. Handlers behind
// AuthMiddleware always have one.
func CurrentActor(c *gin.Context) services.Actor {
	claims := Claims(c)
	if claims == nil {
		return services.Actor{}
	}
	return services.ActorFromClaims(claims)
}

// OptionalAuth stores the claims of a valid bearer token and lets every
// request through.
func OptionalAuth(sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			if claims, err := verify(c, sessions, strings.TrimPrefix(authHeader, "Bearer ")); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}
