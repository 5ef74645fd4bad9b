// Package orderflow holds the order status enum and the transitions staff
// and clients are allowed to make.
package orderflow

import (
	"errors"

	"github.com/yeremiapane/restaurant-platform/models"
)

const (
	AwaitingApproval = "awaiting_approval"
	Pending          = "pending"
	Preparing        = "preparing"
	Ready            = "ready"
	Completed        = "completed"
	Rejected         = "rejected"
	Cancelled        = "cancelled"
)

var (
	ErrUnknownStatus     = errors.New("statut de commande invalide")
	ErrInvalidTransition = errors.New("transition de statut non autorisée")
	ErrRoleNotAllowed    = errors.New("rôle non autorisé pour cette transition")
)

// Statuses lists every status in lifecycle order.
var Statuses = []string{AwaitingApproval, Pending, Preparing, Ready, Completed, Rejected, Cancelled}

// ActiveStatuses are the statuses an order goes through while the kitchen still owns it.
var ActiveStatuses = []string{Pending, Preparing, Ready}

type transition struct {
	from, to string
}

var allowed = map[transition][]string{
	{AwaitingApproval, Pending}:   {models.RoleManager, models.RoleCashier},
	{AwaitingApproval, Rejected}:  {models.RoleManager, models.RoleCashier},
	{AwaitingApproval, Cancelled}: {models.RoleManager, models.RoleCashier, models.RoleClient},
	{Pending, Preparing}:          {models.RoleManager, models.RoleCook},
	{Pending, Cancelled}:          {models.RoleManager, models.RoleCashier},
	{Preparing, Ready}:            {models.RoleManager, models.RoleCook},
	{Preparing, Cancelled}:        {models.RoleManager},
	{Ready, Completed}:            {models.RoleManager, models.RoleCashier},
}

func IsValid(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status string) bool {
	return status == Completed || status == Rejected || status == Cancelled
}

// InitialStatus returns the first status of an order placed from source.
// Counter orders are entered by staff and skip approval.
func InitialStatus(source string) string {
	if source == models.SourceCounter {
		return Pending
	}
	return AwaitingApproval
}

// Check validates that role may move an order from one status to another.
// Ownership of client orders is checked by the caller.
func Check(from, to, role string) error {
	if !IsValid(to) || !IsValid(from) {
		return ErrUnknownStatus
	}
	roles, ok := allowed[transition{from, to}]
	if !ok {
		return ErrInvalidTransition
	}
	for _, r := range roles {
		if r == role {
			return nil
		}
	}
	return ErrRoleNotAllowed
}

// Next lists the statuses reachable from status, whatever the role.
func Next(status string) []string {
	var out []string
	for _, to := range Statuses {
		if _, ok := allowed[transition{status, to}]; ok {
			out = append(out, to)
		}
	}
	return out
}

// Label is the French wording shown on tickets and notifications.
func Label(status string) string {
	switch status {
	case AwaitingApproval:
		return "En attente de validation"
	case Pending:
		return "Validée"
	case Preparing:
		return "En préparation"
	case Ready:
		return "Prête"
	case Completed:
		return "Terminée"
	case Rejected:
		return "Refusée"
	case Cancelled:
		return "Annulée"
	}
	return status
}
