package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-platform/events"
	"github.com/yeremiapane/restaurant-platform/models"
	"github.com/yeremiapane/restaurant-platform/orderflow"
	"github.com/yeremiapane/restaurant-platform/utils"
)

const (
	expiredReason       = "Expirée"
	orderNumberAttempts = 3
)

type OrderService struct {
	DB  *gorm.DB
	Bus *events.Bus
	Now func() time.Time
}

func NewOrderService(db *gorm.DB, bus *events.Bus) *OrderService {
	return &OrderService{DB: db, Bus: bus, Now: time.Now}
}

type OrderItemInput struct {
	MenuItemID uint   `json:"menu_item_id" mapstructure:"menu_item_id"`
	Quantity   int    `json:"quantity" mapstructure:"quantity"`
	Notes      string `json:"notes" mapstructure:"notes"`
}

type CreateOrderInput struct {
	Items      []OrderItemInput `json:"items" mapstructure:"items"`
	ClientName string           `json:"client_name" mapstructure:"client_name"`
	Notes      string           `json:"notes" mapstructure:"notes"`
	Source     string           `json:"source" mapstructure:"source"`
}

type OrderFilter struct {
	Status string
	Limit  int
	Offset int
}

// Create validates the basket against the live menu and stores the order
// with its lines in one transaction.
func (s *OrderService) Create(ctx context.Context, actor Actor, in CreateOrderInput) (*models.Order, error) {
	if !actor.IsClient() && !actor.IsStaff() {
		return nil, errForbidden
	}
	tenant, err := actor.Tenant()
	if err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, utils.BadRequest("la commande doit contenir au moins un article")
	}

	db := s.DB.WithContext(ctx)
	var restaurant models.Restaurant
	if err := db.First(&restaurant, tenant).Error; err != nil {
		return nil, utils.FromDB(err, restaurantNotFound)
	}
	if !restaurant.IsActive() {
		return nil, errSuspended
	}
	if !restaurant.AcceptingOrders {
		return nil, utils.Conflict("Le restaurant n'accepte pas de commandes pour le moment")
	}

	ids := make([]uint, 0, len(in.Items))
	for _, item := range in.Items {
		if item.Quantity < 1 {
			return nil, utils.BadRequest(fmt.Sprintf("quantité invalide pour l'article %d", item.MenuItemID))
		}
		ids = append(ids, item.MenuItemID)
	}
	var menu []models.MenuItem
	if err := db.Where("restaurant_id = ? AND id IN ?", tenant, ids).Find(&menu).Error; err != nil {
		return nil, utils.Internal(err)
	}
	byID := make(map[uint]models.MenuItem, len(menu))
	for _, m := range menu {
		byID[m.ID] = m
	}

	now := s.Now()
	order := models.Order{
		RestaurantID: tenant,
		Notes:        strings.TrimSpace(in.Notes),
		ClientName:   strings.TrimSpace(in.ClientName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	total := decimal.Zero
	for _, item := range in.Items {
		m, ok := byID[item.MenuItemID]
		if !ok {
			return nil, utils.BadRequest(fmt.Sprintf("article %d introuvable", item.MenuItemID))
		}
		if !m.IsAvailable {
			return nil, utils.BadRequest(fmt.Sprintf("article %d indisponible", item.MenuItemID))
		}
		price := decimal.NewFromFloat(m.Price)
		subtotal := price.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		total = total.Add(subtotal)
		order.Items = append(order.Items, models.OrderItem{
			MenuItemID: m.ID,
			Name:       m.Name,
			Quantity:   item.Quantity,
			UnitPrice:  price.Round(2).InexactFloat64(),
			Subtotal:   subtotal.InexactFloat64(),
			Notes:      strings.TrimSpace(item.Notes),
		})
	}
	order.TotalAmount = total.Round(2).InexactFloat64()

	if actor.IsClient() {
		userID := actor.UserID
		order.UserID = &userID
		order.Source = models.SourceApp
		if in.Source == models.SourceWeb {
			order.Source = models.SourceWeb
		}
		if order.ClientName == "" {
			order.ClientName = actor.Name
		}
	} else {
		order.Source = models.SourceCounter
		order.CaissierName = actor.Name
		order.ApprovedAt = &now
	}
	order.Status = orderflow.InitialStatus(order.Source)

	// Two concurrent orders may read the same last number; the unique
	// index rejects the second one, which then takes the next number.
	for attempt := 1; ; attempt++ {
		order.ID = 0
		err = db.Transaction(func(tx *gorm.DB) error {
			number, err := nextOrderNumber(tx, tenant, now)
			if err != nil {
				return err
			}
			order.OrderNumber = number
			return tx.Create(&order).Error
		})
		if err == nil || attempt == orderNumberAttempts || !errors.Is(utils.FromDB(err, ""), utils.ErrAlreadyExists) {
			break
		}
	}
	if err != nil {
		return nil, utils.FromDB(err, errOrderMissing)
	}

	utils.InfoLogger.WithFields(map[string]interface{}{
		"restaurant_id": tenant,
		"order_number":  order.OrderNumber,
		"total":         order.TotalAmount,
	}).Info("order created")

	s.Bus.Publish(events.Event{
		Type:         events.OrderCreated,
		RestaurantID: tenant,
		UserID:       order.UserID,
		Data:         order,
	})
	return &order, nil
}

// nextOrderNumber returns CMD-YYYYMMDD-NNN, one past the highest number the
// restaurant issued that day. Deleted orders never free their number.
func nextOrderNumber(tx *gorm.DB, tenant uint, now time.Time) (string, error) {
	prefix := fmt.Sprintf("CMD-%s-", now.Format("20060102"))
	var last []string
	err := tx.Model(&models.Order{}).
		Where("restaurant_id = ? AND order_number LIKE ?", tenant, prefix+"%").
		Order("LENGTH(order_number) DESC, order_number DESC").
		Limit(1).
		Pluck("order_number", &last).Error
	if err != nil {
		return "", err
	}
	seq := 1
	if len(last) > 0 {
		seq = cast.ToInt(strings.TrimLeft(strings.TrimPrefix(last[0], prefix), "0")) + 1
	}
	return fmt.Sprintf("%s%03d", prefix, seq), nil
}

// List returns the caller's orders, newest first. Clients only ever see
// their own.
func (s *OrderService) List(ctx context.Context, actor Actor, filter OrderFilter) ([]models.Order, error) {
	tenant, err := actor.Tenant()
	if err != nil {
		return nil, err
	}
	query := s.DB.WithContext(ctx).Preload("Items").Where("restaurant_id = ?", tenant)
	if actor.IsClient() {
		query = query.Where("user_id = ?", actor.UserID)
	}
	if filter.Status != "" {
		if !orderflow.IsValid(filter.Status) {
			return nil, utils.BadRequest(orderflow.ErrUnknownStatus.Error())
		}
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, utils.Internal(err)
	}
	return orders, nil
}

// Kitchen returns the orders cooks work on, oldest first.
func (s *OrderService) Kitchen(ctx context.Context, actor Actor) ([]models.Order, error) {
	tenant, err := actor.Tenant()
	if err != nil {
		return nil, err
	}
	var orders []models.Order
	err = s.DB.WithContext(ctx).Preload("Items").
		Where("restaurant_id = ? AND status IN ?", tenant, []string{orderflow.Pending, orderflow.Preparing}).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, utils.Internal(err)
	}
	return orders, nil
}

// Get loads one order of the caller's tenant. A client asking for somebody
// else's order gets a not found.
func (s *OrderService) Get(ctx context.Context, actor Actor, id uint) (*models.Order, error) {
	query := s.DB.WithContext(ctx).Preload("Items")
	if !actor.IsSuperAdmin() {
		tenant, err := actor.Tenant()
		if err != nil {
			return nil, err
		}
		query = query.Where("restaurant_id = ?", tenant)
	}
	var order models.Order
	if err := query.First(&order, id).Error; err != nil {
		return nil, utils.FromDB(err, errOrderMissing)
	}
	if actor.IsClient() && !order.BelongsTo(actor.UserID) {
		return nil, utils.NotFound(errOrderMissing)
	}
	return &order, nil
}

// UpdateStatus moves an order along the lifecycle. The write is guarded on
// the previous status so a concurrent transition is reported as a conflict.
func (s *OrderService) UpdateStatus(ctx context.Context, actor Actor, id uint, to, reason string) (*models.Order, error) {
	if !orderflow.IsValid(to) {
		return nil, utils.BadRequest(orderflow.ErrUnknownStatus.Error())
	}
	order, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := orderflow.Check(order.Status, to, actor.Role); err != nil {
		return nil, transitionError(err)
	}

	from := order.Status
	if err := s.applyStatus(ctx, order, to, actor.Name, strings.TrimSpace(reason)); err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(map[string]interface{}{
		"order_id": order.ID,
		"from":     from,
		"to":       to,
		"user_id":  actor.UserID,
	}).Info("order status changed")

	s.publishStatus(*order, from)
	return order, nil
}

func (s *OrderService) applyStatus(ctx context.Context, order *models.Order, to, actorName, reason string) error {
	now := s.Now()
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": now,
	}
	switch to {
	case orderflow.Pending:
		updates["approved_at"] = now
		updates["caissier_name"] = actorName
	case orderflow.Preparing:
		updates["preparing_at"] = now
		updates["cuisinier_name"] = actorName
	case orderflow.Ready:
		updates["ready_at"] = now
	case orderflow.Completed:
		updates["completed_at"] = now
	case orderflow.Cancelled:
		updates["cancelled_at"] = now
		if reason != "" {
			updates["rejection_reason"] = reason
		}
	case orderflow.Rejected:
		updates["rejection_reason"] = reason
	}

	res := s.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		Updates(updates)
	if res.Error != nil {
		return utils.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.Conflict("la commande a été modifiée entre-temps, veuillez réessayer")
	}

	if err := s.DB.WithContext(ctx).Preload("Items").First(order, order.ID).Error; err != nil {
		return utils.FromDB(err, errOrderMissing)
	}
	return nil
}

func (s *OrderService) publishStatus(order models.Order, from string) {
	s.Bus.Publish(events.Event{
		Type:         events.OrderStatusChanged,
		RestaurantID: order.RestaurantID,
		UserID:       order.UserID,
		Data: events.StatusChange{
			From:  from,
			To:    order.Status,
			Order: order,
		},
	})
}

// Delete removes a finished order and its lines.
func (s *OrderService) Delete(ctx context.Context, actor Actor, id uint) error {
	order, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if !orderflow.IsTerminal(order.Status) {
		return utils.Conflict("seules les commandes terminées, refusées ou annulées peuvent être supprimées")
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, order.ID).Error
	})
	if err != nil {
		return utils.FromDB(err, errOrderMissing)
	}
	return nil
}

// ExpireAwaiting cancels orders nobody approved within ttl.
func (s *OrderService) ExpireAwaiting(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := s.Now().Add(-ttl)
	var stale []models.Order
	if err := s.DB.WithContext(ctx).
		Where("status = ? AND created_at < ?", orderflow.AwaitingApproval, cutoff).
		Find(&stale).Error; err != nil {
		return 0, utils.Internal(err)
	}

	expired := 0
	for i := range stale {
		order := &stale[i]
		err := s.applyStatus(ctx, order, orderflow.Cancelled, "", expiredReason)
		var appErr *utils.AppError
		if errors.As(err, &appErr) && appErr.Code == http.StatusConflict {
			continue
		}
		if err != nil {
			return expired, err
		}
		expired++
		s.publishStatus(*order, orderflow.AwaitingApproval)
	}
	return expired, nil
}

func transitionError(err error) error {
	switch {
	case errors.Is(err, orderflow.ErrUnknownStatus):
		return utils.BadRequest(err.Error())
	case errors.Is(err, orderflow.ErrRoleNotAllowed):
		return utils.Forbidden(err.Error())
	default:
		return utils.Conflict(err.Error())
	}
}
