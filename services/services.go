// Package services holds the business operations shared by the REST
// routes and the callable functions.
package services

import (
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-platform/events"
)

// Services bundles every service built on one database and event bus.
type Services struct {
	Auth          *AuthService
	Users         *UserService
	Restaurants   *RestaurantService
	Plans         *PlanService
	Menu          *MenuService
	Orders        *OrderService
	Dashboard     *DashboardService
	Notifications *NotificationService
}

func New(db *gorm.DB, bus *events.Bus) (*Services, error) {
	dashboard, err := NewDashboardService(db)
	if err != nil {
		return nil, err
	}
	return &Services{
		Auth:          NewAuthService(db),
		Users:         NewUserService(db),
		Restaurants:   NewRestaurantService(db),
		Plans:         NewPlanService(db),
		Menu:          NewMenuService(db, bus),
		Orders:        NewOrderService(db, bus),
		Dashboard:     dashboard,
		Notifications: NewNotificationService(db),
	}, nil
}
