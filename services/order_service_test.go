package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-platform/events"
	"github.com/yeremiapane/restaurant-platform/models"
	"github.com/yeremiapane/restaurant-platform/orderflow"
	"github.com/yeremiapane/restaurant-platform/utils"
)

func TestCreateOrderComputesTotal(t *testing.T) {
	f := setupFixture(t)
	svc := NewOrderService(f.db, nil)

	order, err := svc.Create(context.Background(), f.actor(f.client), f.basket())
	require.NoError(t, err)

	assert.Equal(t, 85.0, order.TotalAmount)
	assert.Equal(t, orderflow.AwaitingApproval, order.Status)
	assert.Equal(t, models.SourceApp, order.Source)
	assert.Equal(t, "Sara", order.ClientName)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 70.0, order.Items[0].Subtotal)
	assert.Equal(t, "Tajine", order.Items[0].Name)
	assert.Regexp(t, `^CMD-\d{8}-001$`, order.OrderNumber)

	var stored models.Order
	require.NoError(t, f.db.Preload("Items").First(&stored, order.ID).Error)
	assert.Equal(t, 85.0, stored.TotalAmount)
	assert.Len(t, stored.Items, 2)
}

func TestOrderNumberCountsPerDay(t *testing.T) {
	f := setupFixture(t)
	svc := NewOrderService(f.db, nil)

	_, err := svc.Create(context.Background(), f.actor(f.client), f.basket())
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), f.actor(f.cashier), f.basket())
	require.NoError(t, err)

	assert.Regexp(t, `-002$`, second.OrderNumber)
	assert.Equal(t, orderflow.Pending, second.Status)
	assert.Equal(t, models.SourceCounter, second.Source)
	assert.Equal(t, "Cashier", second.CaissierName)
}

func TestOrderNumberIsNotReusedAfterDelete(t *testing.T) {
	f := setupFixture(t)
	svc := NewOrderService(f.db, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, f.actor(f.client), f.basket())
	require.NoError(t, err)
	second, err := svc.Create(ctx, f.actor(f.client), f.basket())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, f.actor(f.cashier), first.ID, orderflow.Rejected, "Rupture")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, f.actor(f.manager), first.ID))

	third, err := svc.Create(ctx, f.actor(f.client), f.basket())
	require.NoError(t, err)
	assert.NotEqual(t, second.OrderNumber, third.OrderNumber)
	assert.Regexp(t, `-003$`, third.OrderNumber)

	tomorrow := time.Now().AddDate(0, 0, 1)
	svc.Now = func() time.Time { return tomorrow }
	next, err := svc.Create(ctx, f.actor(f.client), f.basket())
	require.NoError(t, err)
	assert.Equal(t, "CMD-"+tomorrow.Format("20060102")+"-001", next.OrderNumber)
}

func TestOrderNumberIsUniquePerRestaurant(t *testing.T) {
	f := setupFixture(t)
	svc := NewOrderService(f.db, nil)

	order, err := svc.Create(context.Background(), f.actor(f.client), f.basket())
	require.NoError(t, err)

	dup := models.Order{RestaurantID: f.restaurant.ID, OrderNumber: order.OrderNumber, Status: orderflow.Pending, Source: models.SourceCounter}
	err = f.db.Create(&dup).Error
	require.Error(t, err)
	assert.ErrorIs(t, utils.FromDB(err, ""), utils.ErrAlreadyExists)

	other := models.Restaurant{Name: "Le Port", ShortCode: "PORT", Plan: "free", Status: models.RestaurantActive, AcceptingOrders: true}
	require.NoError(t, f.db.Create(&other).Error)
	elsewhere := models.Order{RestaurantID: other.ID, OrderNumber: order.OrderNumber, Status: orderflow.Pending, Source: models.SourceCounter}
	assert.NoError(t, f.db.Create(&elsewhere).Error)
}

func TestNextOrderNumberPastNineHundredNinetyNine(t *testing.T) {
	f := setupFixture(t)
	now := time.Now()
	prefix := "CMD-" + now.Format("20060102") + "-"
	for _, n := range []string{"998", "999", "1000"} {
		require.NoError(t, f.db.Create(&models.Order{RestaurantID: f.restaurant.ID, OrderNumber: prefix + n, Status: orderflow.Completed, Source: models.SourceCounter}).Error)
	}

	number, err := nextOrderNumber(f.db, f.restaurant.ID, now)
	require.NoError(t, err)
	assert.Equal(t, prefix+"1001", number)
}

func TestCreateOrderRejections(t *testing.T) {
	f := setupFixture(t)
	svc := NewOrderService(f.db, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, f.actor(f.client), CreateOrderInput{})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = svc.Create(ctx, f.actor(f.client), CreateOrderInput{Items: []OrderItemInput{{MenuItemID: f.tajine.ID, Quantity: 0}}})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = svc.Create(ctx, f.actor(f.client), CreateOrderInput{Items: []OrderItemInput{{MenuItemID: 999, Quantity: 1}}})
	requireStatus(t, err, http.StatusBadRequest)

	require.NoError(t, f.db.Model(&f.the).Update("is_available", false).Error)
	_, err = svc.Create(ctx, f.actor(f.client), f.basket())
	requireStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, err.Error(), "indisponible")

	require.NoError(t, f.db.Model(&f.restaurant).Update("accepting_orders", false).Error)
	_, err = svc.Create(ctx, f.actor(f.client), f.basket())
	requireStatus(t, err, http.StatusConflict)

	require.NoError(t, f.db.Model(&f.restaurant).Update("status", models.RestaurantSuspended).Error)
	_, err = svc.Create(ctx, f.actor(f.client), f.basket())
	requireStatus(t, err, http.StatusForbidden)
}

func TestCreateOrderIgnoresOtherTenantMenu(t *testing.T) {
	f := setupFixture(t)
	other := models.Restaurant{Name: "Autre", ShortCode: "OTHER", Plan: "free", Status: models.RestaurantActive, AcceptingOrders: true}
	require.NoError(t, f.db.Create(&other).Error)
	foreign := models.MenuItem{RestaurantID: other.ID, Name: "Pizza", Price: 50, IsAvailable: true}
	require.NoError(t, f.db.Create(&foreign).Error)

	_, err := NewOrderService(f.db, nil).Create(context.Background(), f.actor(f.client),
		CreateOrderInput{Items: []OrderItemInput{{MenuItemID: foreign.ID, Quantity: 1}}})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestClientOnlySeesOwnOrders(t *testing.T) {
	f := setupFixture(t)
	svc := NewOrderService(f.db, nil)
	ctx := context.Background()
	rid := f.restaurant.ID
	other := createUser(t, f.db, "karim", models.RoleClient, &rid)

	mine, err := svc.Create(ctx, f.actor(f.client), f.basket())
	require.NoError(t, err)
	theirs, err := svc.Create(ctx, f.actor(other), f.basket())
	require.NoError(t, err)

	list, err := svc.List(ctx, f.actor(f.client), OrderFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	_, err = svc.Get(ctx, f.actor(f.client), theirs.ID)
	requireStatus(t, err, http.StatusNotFound)

	staff, err := svc.List(ctx, f.actor(f.cashier), OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, staff, 2)

	_, err = svc.List(ctx, f.actor(f.cashier), OrderFilter{Status: "shipped"})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestOrderLifecycle(t *testing.T) {
	f := setupFixture(t)
	bus := events.NewBus()
	var seen []events.Event
	require.NoError(t, bus.SubscribeSync(events.OrderStatusChanged, func(e events.Event) { seen = append(seen, e) }))
	svc := NewOrderService(f.db, bus)
	ctx := context.Background()

	order, err := svc.Create(ctx, f.actor(f.client), f.basket())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, f.actor(f.client), order.ID, orderflow.Pending, "")
	requireStatus(t, err, http.StatusForbidden)

	_, err = svc.UpdateStatus(ctx, f.actor(f.cashier), order.ID, "done", "")
	requireStatus(t, err, http.StatusBadRequest)

	_, err = svc.UpdateStatus(ctx, f.actor(f.cashier), order.ID, orderflow.Ready, "")
	requireStatus(t, err, http.StatusConflict)

	order, err = svc.UpdateStatus(ctx, f.actor(f.cashier), order.ID, orderflow.Pending, "")
	require.NoError(t, err)
	assert.Equal(t, "Cashier", order.CaissierName)
	assert.NotNil(t, order.ApprovedAt)

	order, err = svc.UpdateStatus(ctx, f.actor(f.cook), order.ID, orderflow.Preparing, "")
	require.NoError(t, err)
	assert.Equal(t, "Cook", order.CuisinierName)

	kitchen, err := svc.Kitchen(ctx, f.actor(f.cook))
	require.NoError(t, err)
	assert.Len(t, kitchen, 1)

	_, err = svc.UpdateStatus(ctx, f.actor(f.cook), order.ID, orderflow.Preparing, "")
	requireStatus(t, err, http.StatusConflict)

	_, err = svc.UpdateStatus(ctx, f.actor(f.cook), order.ID, orderflow.Ready, "")
	require.NoError(t, err)
	order, err = svc.UpdateStatus(ctx, f.actor(f.cashier), order.ID, orderflow.Completed, "")
	require.NoError(t, err)
	assert.NotNil(t, order.CompletedAt)

	require.Len(t, seen, 4)
	change := seen[3].Data.(events.StatusChange)
	assert.Equal(t, orderflow.Ready, change.From)
	assert.Equal(t, orderflow.Completed, change.To)
	assert.Equal(t, f.client.ID, *seen[3].UserID)
}

func TestRejectStoresReason(t *testing.T) {
	f := setupFixture(t)
	svc := NewOrderService(f.db, nil)
	ctx := context.Background()

	order, err := svc.Create(ctx, f.actor(f.client), f.basket())
	require.NoError(t, err)
	order, err = svc.UpdateStatus(ctx, f.actor(f.manager), order.ID, orderflow.Rejected, "Rupture de stock")
	require.NoError(t, err)
	assert.Equal(t, "Rupture de stock", order.RejectionReason)
}

func TestGuardedUpdateDetectsConcurrentChange(t *testing.T) {
	f := setupFixture(t)
	svc := NewOrderService(f.db, nil)
	ctx := context.Background()

	order, err := svc.Create(ctx, f.actor(f.client), f.basket())
	require.NoError(t, err)
	stale := *order

	require.NoError(t, f.db.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", orderflow.Cancelled).Error)

	err = svc.applyStatus(ctx, &stale, orderflow.Pending, "Cashier", "")
	requireStatus(t, err, http.StatusConflict)
}

func TestDeleteOrderOnlyWhenTerminal(t *testing.T) {
	f := setupFixture(t)
	svc := NewOrderService(f.db, nil)
	ctx := context.Background()

	order, err := svc.Create(ctx, f.actor(f.client), f.basket())
	require.NoError(t, err)

	requireStatus(t, svc.Delete(ctx, f.actor(f.manager), order.ID), http.StatusConflict)

	_, err = svc.UpdateStatus(ctx, f.actor(f.client), order.ID, orderflow.Cancelled, "")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, f.actor(f.manager), order.ID))

	var items int64
	f.db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&items)
	assert.Zero(t, items)
}

func TestExpireAwaiting(t *testing.T) {
	f := setupFixture(t)
	svc := NewOrderService(f.db, nil)
	ctx := context.Background()

	order, err := svc.Create(ctx, f.actor(f.client), f.basket())
	require.NoError(t, err)
	counter, err := svc.Create(ctx, f.actor(f.cashier), f.basket())
	require.NoError(t, err)

	n, err := svc.ExpireAwaiting(ctx, 2*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	svc.Now = func() time.Time { return time.Now().Add(3 * time.Hour) }
	n, err = svc.ExpireAwaiting(ctx, 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var expired, untouched models.Order
	require.NoError(t, f.db.First(&expired, order.ID).Error)
	require.NoError(t, f.db.First(&untouched, counter.ID).Error)
	assert.Equal(t, orderflow.Cancelled, expired.Status)
	assert.Equal(t, "Expirée", expired.RejectionReason)
	assert.Equal(t, orderflow.Pending, untouched.Status)
}
