package services

import (
	"github.com/yeremiapane/restaurant-platform/models"
	"github.com/yeremiapane/restaurant-platform/utils"
)

var (
	errNoTenant     = utils.BadRequest("aucun restaurant actif pour cet utilisateur")
	errForbidden    = utils.Forbidden("accès refusé")
	errSuspended    = utils.Forbidden("Restaurant suspendu")
	errOrderMissing = "Commande introuvable"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID       uint
	Role         string
	RestaurantID uint
	Name         string
}

// ActorFromClaims builds the caller from a verified token.
func ActorFromClaims(claims *utils.CustomClaims) Actor {
	return Actor{
		UserID:       claims.UserID,
		Role:         claims.Role,
		RestaurantID: claims.RestaurantID,
		Name:         claims.Name,
	}
}

func (a Actor) IsSuperAdmin() bool { return a.Role == models.RoleSuperAdmin }
func (a Actor) IsClient() bool     { return a.Role == models.RoleClient }
func (a Actor) IsStaff() bool      { return models.IsStaffRole(a.Role) }

// Tenant returns the restaurant the caller currently works in.
func (a Actor) Tenant() (uint, error) {
	if a.RestaurantID == 0 {
		return 0, errNoTenant
	}
	return a.RestaurantID, nil
}
