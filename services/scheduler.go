package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yeremiapane/restaurant-platform/utils"
)

const notificationRetention = 30 * 24 * time.Hour

// Scheduler runs the periodic housekeeping jobs.
type Scheduler struct {
	cron          *cron.Cron
	orders        *OrderService
	notifications *NotificationService
	approvalTTL   time.Duration
}

func NewScheduler(orders *OrderService, notifications *NotificationService, approvalTTL time.Duration) *Scheduler {
	logger := cron.PrintfLogger(utils.InfoLogger)
	return &Scheduler{
		cron:          cron.New(cron.WithChain(cron.Recover(logger))),
		orders:        orders,
		notifications: notifications,
		approvalTTL:   approvalTTL,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@every 5m", s.ExpireOrders); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@daily", s.Cleanup); err != nil {
		return err
	}
	s.cron.Start()
	utils.InfoLogger.Info("housekeeping scheduler started")
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// ExpireOrders cancels orders left awaiting approval past the TTL.
func (s *Scheduler) ExpireOrders() {
	if s.approvalTTL <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	n, err := s.orders.ExpireAwaiting(ctx, s.approvalTTL)
	if err != nil {
		utils.ErrorLogger.Errorf("expire awaiting orders: %v", err)
		return
	}
	if n > 0 {
		utils.InfoLogger.Infof("expired %d orders awaiting approval", n)
	}
}

func (s *Scheduler) Cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	n, err := s.notifications.PurgeRead(ctx, notificationRetention)
	if err != nil {
		utils.ErrorLogger.Errorf("purge notifications: %v", err)
	} else if n > 0 {
		utils.InfoLogger.Infof("purged %d read notifications", n)
	}
	utils.PurgeRevokedTokens()
}
