package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-platform/events"
	"github.com/yeremiapane/restaurant-platform/models"
	"github.com/yeremiapane/restaurant-platform/orderflow"
	"github.com/yeremiapane/restaurant-platform/utils"
)

const (
	NotificationNewOrder    = "new_order"
	NotificationOrderStatus = "order_status"

	notificationNotFound = "Notification introuvable"
)

// NotificationService stores in-app notifications for order events.
type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// Handle is subscribed to the event bus. New orders notify the restaurant
// staff, status changes notify the client who ordered.
func (s *NotificationService) Handle(e events.Event) {
	var n *models.Notification
	switch e.Type {
	case events.OrderCreated:
		order, ok := orderOf(e.Data)
		if !ok {
			return
		}
		n = &models.Notification{
			RestaurantID: order.RestaurantID,
			OrderID:      &order.ID,
			Type:         NotificationNewOrder,
			Title:        "Nouvelle commande",
			Message:      fmt.Sprintf("Commande %s de %s (%s)", order.OrderNumber, clientLabel(order), utils.FormatAmount(order.TotalAmount)),
		}
	case events.OrderStatusChanged:
		change, ok := e.Data.(events.StatusChange)
		if !ok {
			return
		}
		order, ok := orderOf(change.Order)
		if !ok || order.UserID == nil {
			return
		}
		message := fmt.Sprintf("Votre commande %s est : %s", order.OrderNumber, orderflow.Label(order.Status))
		if order.RejectionReason != "" && (order.Status == orderflow.Rejected || order.Status == orderflow.Cancelled) {
			message += " (" + order.RejectionReason + ")"
		}
		n = &models.Notification{
			RestaurantID: order.RestaurantID,
			UserID:       order.UserID,
			OrderID:      &order.ID,
			Type:         NotificationOrderStatus,
			Title:        orderflow.Label(order.Status),
			Message:      message,
		}
	default:
		return
	}

	n.CreatedAt = time.Now()
	if err := s.DB.Create(n).Error; err != nil {
		utils.ErrorLogger.WithField("event", e.Type).Errorf("store notification: %v", err)
	}
}

// List returns the caller's notifications, newest first. Staff see the
// restaurant-wide ones as well as their own.
func (s *NotificationService) List(ctx context.Context, actor Actor, unreadOnly bool, limit int) ([]models.Notification, error) {
	query, err := s.scope(ctx, actor)
	if err != nil {
		return nil, err
	}
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var list []models.Notification
	if err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, utils.Internal(err)
	}
	return list, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, actor Actor, id uint) error {
	query, err := s.scope(ctx, actor)
	if err != nil {
		return err
	}
	res := query.Model(&models.Notification{}).Where("id = ?", id).Update("is_read", true)
	if res.Error != nil {
		return utils.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.NotFound(notificationNotFound)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, actor Actor) (int64, error) {
	query, err := s.scope(ctx, actor)
	if err != nil {
		return 0, err
	}
	res := query.Model(&models.Notification{}).Where("is_read = ?", false).Update("is_read", true)
	if res.Error != nil {
		return 0, utils.Internal(res.Error)
	}
	return res.RowsAffected, nil
}

// PurgeRead deletes read notifications older than age.
func (s *NotificationService) PurgeRead(ctx context.Context, age time.Duration) (int64, error) {
	res := s.DB.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, time.Now().Add(-age)).
		Delete(&models.Notification{})
	if res.Error != nil {
		return 0, utils.Internal(res.Error)
	}
	return res.RowsAffected, nil
}

func (s *NotificationService) scope(ctx context.Context, actor Actor) (*gorm.DB, error) {
	query := s.DB.WithContext(ctx)
	if actor.IsClient() {
		return query.Where("user_id = ?", actor.UserID), nil
	}
	tenant, err := actor.Tenant()
	if err != nil {
		return nil, err
	}
	return query.Where("restaurant_id = ? AND (user_id IS NULL OR user_id = ?)", tenant, actor.UserID), nil
}

func orderOf(data interface{}) (models.Order, bool) {
	switch o := data.(type) {
	case models.Order:
		return o, true
	case *models.Order:
		if o != nil {
			return *o, true
		}
	}
	return models.Order{}, false
}

func clientLabel(o models.Order) string {
	if o.ClientName != "" {
		return o.ClientName
	}
	return "comptoir"
}
