package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-platform/config"
	"github.com/yeremiapane/restaurant-platform/database"
	"github.com/yeremiapane/restaurant-platform/events"
	"github.com/yeremiapane/restaurant-platform/kds"
	"github.com/yeremiapane/restaurant-platform/middlewares"
	"github.com/yeremiapane/restaurant-platform/printer"
	"github.com/yeremiapane/restaurant-platform/router"
	"github.com/yeremiapane/restaurant-platform/services"
	"github.com/yeremiapane/restaurant-platform/utils"
)

func main() {
	utils.InitLogger()
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load configuration: %v", err)
	}
	utils.ConfigureLogger(cfg.LogOptions())
	utils.ConfigureJWT(cfg.JWTSecret, cfg.JWTTTL)
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize DB
	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate: %v", err)
	}
	if err := database.SeedSuperAdmin(db, cfg.SuperAdminUsername, cfg.SuperAdminPassword); err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed super admin: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to get sql.DB: %v", err)
	}
	defer sqlDB.Close()

	rdb, err := config.InitRedis(ctx, cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to redis: %v", err)
	}
	if rdb != nil {
		utils.SetBlacklist(utils.NewRedisBlacklist(rdb))
		defer rdb.Close()
	}

	bus := events.NewBus()
	svc, err := services.New(db, bus)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to build services: %v", err)
	}

	hub := kds.NewHub()
	metrics := middlewares.NewMetrics()
	subscribe(bus, events.TopicAll, hub.Handle)
	subscribe(bus, events.TopicAll, metrics.Observe)
	subscribe(bus, events.OrderCreated, svc.Notifications.Handle)
	subscribe(bus, events.OrderStatusChanged, svc.Notifications.Handle)

	if cfg.AMQPURL != "" {
		publisher, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to connect to broker: %v", err)
		}
		defer publisher.Close()
		subscribe(bus, events.TopicAll, publisher.Handle)
		utils.InfoLogger.Infof("Publishing events to exchange %s", cfg.AMQPExchange)
	}

	dispatcher, err := printer.NewDispatcher(cfg.PrinterWorkers, cfg.PrinterTimeout)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to start printer pool: %v", err)
	}
	defer dispatcher.Release()

	scheduler := services.NewScheduler(svc.Orders, svc.Notifications, cfg.ApprovalTTL)
	if err := scheduler.Start(); err != nil {
		utils.ErrorLogger.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	r := router.SetupRouter(router.Deps{
		Services:        svc,
		SQL:             sqlDB,
		Hub:             hub,
		Formatter:       printer.NewFormatter(cfg.PrinterWidth, cfg.Currency),
		Printer:         dispatcher,
		Metrics:         metrics,
		CORSOrigins:     cfg.Origins(),
		RateLimit:       cfg.RateLimit,
		RateLimitWindow: cfg.RateLimitWindow,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		utils.InfoLogger.Infof("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Errorf("Server shutdown: %v", err)
	}
	bus.Wait()
}

func subscribe(bus *events.Bus, topic string, fn func(events.Event)) {
	if err := bus.Subscribe(topic, fn); err != nil {
		utils.ErrorLogger.Fatalf("Failed to subscribe to %s: %v", topic, err)
	}
}
