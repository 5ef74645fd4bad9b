package router

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-platform/controllers"
	"github.com/yeremiapane/restaurant-platform/kds"
	"github.com/yeremiapane/restaurant-platform/middlewares"
	"github.com/yeremiapane/restaurant-platform/models"
	"github.com/yeremiapane/restaurant-platform/printer"
	"github.com/yeremiapane/restaurant-platform/services"
	"github.com/yeremiapane/restaurant-platform/utils"
)

// Deps is everything the HTTP layer is built from.
type Deps struct {
	Services        *services.Services
	SQL             *sql.DB
	Hub             *kds.Hub
	Formatter       *printer.Formatter
	Printer         *printer.Dispatcher
	Metrics         *middlewares.Metrics
	CORSOrigins     []string
	RateLimit       int
	RateLimitWindow time.Duration
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders(gin.Mode() == gin.ReleaseMode))
	r.Use(middlewares.CORSMiddlewares(d.CORSOrigins))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", d.Metrics.Handler())
	}
	if d.RateLimit > 0 {
		r.Use(middlewares.NewRateLimiter(d.RateLimit, d.RateLimitWindow).RateLimit())
	}

	svc := d.Services
	authCtrl := controllers.NewAuthController(svc.Auth)
	menuCtrl := controllers.NewMenuController(svc.Menu)
	orderCtrl := controllers.NewOrderController(svc.Orders)
	receiptCtrl := controllers.NewReceiptController(svc.Orders, svc.Restaurants, d.Formatter, d.Printer)
	userCtrl := controllers.NewUserController(svc.Users)
	dashboardCtrl := controllers.NewDashboardController(svc.Dashboard)
	adminCtrl := controllers.NewAdminController(svc.Restaurants, svc.Plans)
	notificationCtrl := controllers.NewNotificationController(svc.Notifications)
	functionsCtrl := controllers.NewFunctionsController(svc)
	kdsCtrl := controllers.NewKDSController(d.Hub)
	healthCtrl := controllers.NewHealthController(d.SQL)

	r.GET("/health", healthCtrl.Health)
	r.GET("/ws", middlewares.WebSocketAuthMiddleware(svc.Auth), kdsCtrl.KDSHandler)

	staff := []string{models.RoleManager, models.RoleCashier, models.RoleCook}
	manager := middlewares.RequireRoles(models.RoleManager)
	superAdmin := middlewares.RequireRoles(models.RoleSuperAdmin)

	api := r.Group("/api")

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	public := api.Group("/auth")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/login", authCtrl.Login)
		public.POST("/register", authCtrl.Register)
	}
	api.POST("/functions/:name", middlewares.OptionalAuth(svc.Auth), functionsCtrl.Call)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := api.Group("")
	auth.Use(middlewares.AuthMiddleware(svc.Auth))

	auth.GET("/auth/me", authCtrl.Me)
	auth.POST("/auth/logout", authCtrl.Logout)
	auth.POST("/auth/restaurants", middlewares.RequireRoles(models.RoleClient), authCtrl.AddRestaurant)
	auth.POST("/auth/active-restaurant", middlewares.RequireRoles(models.RoleClient), authCtrl.SetActiveRestaurant)

	// MENU
	menu := auth.Group("/menu", middlewares.RequireTenant())
	{
		menu.GET("", menuCtrl.GetAllMenus)
		menu.GET("/categories", menuCtrl.GetCategories)
		menu.GET("/:id", menuCtrl.GetMenuByID)
		menu.POST("", manager, menuCtrl.CreateMenu)
		menu.PUT("/:id", manager, menuCtrl.UpdateMenu)
		menu.PATCH("/:id/availability", middlewares.RequireRoles(models.RoleManager, models.RoleCook), menuCtrl.SetAvailability)
		menu.DELETE("/:id", manager, menuCtrl.DeleteMenu)
	}

	// ORDERS
	orders := auth.Group("/orders", middlewares.RequireTenant())
	{
		orders.GET("", orderCtrl.GetAllOrders)
		orders.GET("/kitchen", middlewares.RequireRoles(staff...), orderCtrl.GetKitchenOrders)
		orders.GET("/:id", orderCtrl.GetOrderByID)
		orders.POST("", middlewares.RequireRoles(models.RoleClient, models.RoleManager, models.RoleCashier), orderCtrl.CreateOrder)
		orders.PATCH("/:id/status", orderCtrl.UpdateOrderStatus)
		orders.DELETE("/:id", manager, orderCtrl.DeleteOrder)
		orders.GET("/:id/ticket", middlewares.RequireRoles(staff...), receiptCtrl.GetTicket)
		orders.POST("/:id/print", middlewares.RequireRoles(staff...), receiptCtrl.PrintTicket)
	}
	auth.GET("/printer/status", middlewares.RequireRoles(append(staff, models.RoleSuperAdmin)...), receiptCtrl.PrinterStatus)

	// USERS
	users := auth.Group("/users", middlewares.RequireRoles(models.RoleManager, models.RoleSuperAdmin))
	{
		users.GET("", userCtrl.GetAllUsers)
		users.POST("", userCtrl.CreateUser)
		users.PUT("/:id", userCtrl.UpdateUser)
		users.PATCH("/:id/role", userCtrl.SetRole)
		users.PATCH("/:id/status", userCtrl.SetStatus)
		users.DELETE("/:id", userCtrl.DeleteUser)
	}

	// DASHBOARD
	dashboard := auth.Group("/dashboard", middlewares.RequireRoles(models.RoleManager, models.RoleSuperAdmin))
	{
		dashboard.GET("/stats", dashboardCtrl.GetDashboardStats)
		dashboard.GET("/top-items", dashboardCtrl.GetTopItems)
		dashboard.GET("/revenue", dashboardCtrl.GetRevenue)
		dashboard.GET("/export", dashboardCtrl.ExportOrders)
	}

	// RESTAURANTS
	restaurants := auth.Group("/restaurants", superAdmin)
	{
		restaurants.GET("", adminCtrl.ListRestaurants)
		restaurants.POST("", adminCtrl.CreateRestaurant)
		restaurants.PUT("/:id", adminCtrl.UpdateRestaurant)
		restaurants.PATCH("/:id/suspend", adminCtrl.SuspendRestaurant)
	}
	auth.GET("/restaurant", middlewares.RequireTenant(), adminCtrl.GetCurrentRestaurant)
	auth.PATCH("/restaurant/accepting-orders", manager, adminCtrl.SetAcceptingOrders)

	// PLANS
	auth.GET("/plans", adminCtrl.ListPlans)
	auth.POST("/plans", superAdmin, adminCtrl.CreatePlan)
	auth.PUT("/plans/:code", superAdmin, adminCtrl.UpdatePlan)

	// NOTIFICATIONS
	auth.GET("/notifications", notificationCtrl.GetNotifications)
	auth.PATCH("/notifications/:id/read", notificationCtrl.MarkAsRead)
	auth.POST("/notifications/read-all", notificationCtrl.MarkAllAsRead)

	r.NoRoute(func(c *gin.Context) {
		utils.RespondError(c, http.StatusNotFound, errors.New("Route introuvable"))
	})
	return r
}
