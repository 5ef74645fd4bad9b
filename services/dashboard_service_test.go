package services

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-platform/events"
	"github.com/yeremiapane/restaurant-platform/models"
	"github.com/yeremiapane/restaurant-platform/orderflow"
)

func completeOrder(t *testing.T, f *fixture, svc *OrderService, in CreateOrderInput) *models.Order {
	t.Helper()
	ctx := context.Background()
	order, err := svc.Create(ctx, f.actor(f.cashier), in)
	require.NoError(t, err)
	for _, step := range []struct {
		status string
		by     models.User
	}{{orderflow.Preparing, f.cook}, {orderflow.Ready, f.cook}, {orderflow.Completed, f.cashier}} {
		order, err = svc.UpdateStatus(ctx, f.actor(step.by), order.ID, step.status, "")
		require.NoError(t, err)
	}
	return order
}

func TestDashboardStats(t *testing.T) {
	f := setupFixture(t)
	orders := NewOrderService(f.db, nil)
	ctx := context.Background()

	completeOrder(t, f, orders, f.basket())
	completeOrder(t, f, orders, CreateOrderInput{Items: []OrderItemInput{{MenuItemID: f.the.ID, Quantity: 1}}})
	_, err := orders.Create(ctx, f.actor(f.client), f.basket())
	require.NoError(t, err)

	dashboard, err := NewDashboardService(f.db)
	require.NoError(t, err)

	now := time.Now()
	from, to := now.Add(-time.Hour), now.Add(time.Hour)
	stats, err := dashboard.Stats(ctx, f.restaurant.ID, from, to)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalOrders)
	assert.Equal(t, int64(2), stats.ByStatus[orderflow.Completed])
	assert.Equal(t, int64(1), stats.ByStatus[orderflow.AwaitingApproval])
	assert.Equal(t, 100.0, stats.Revenue)
	assert.Equal(t, 50.0, stats.AverageOrder)
	assert.Equal(t, 50.0, stats.MedianOrder)
	assert.Equal(t, int64(3), stats.TodayOrders)
	assert.Equal(t, 100.0, stats.TodayRevenue)
	assert.Equal(t, int64(0), stats.ActiveOrders)
	assert.Equal(t, int64(1), stats.AwaitingCount)

	top, err := dashboard.TopItems(ctx, f.restaurant.ID, from, to, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Tajine", top[0].Name)
	assert.Equal(t, int64(4), top[0].Quantity)
	assert.Equal(t, 140.0, top[0].Revenue)

	series, err := dashboard.Revenue(ctx, f.restaurant.ID, from, to)
	require.NoError(t, err)
	var total float64
	for _, day := range series {
		total += day.Revenue
	}
	assert.Equal(t, 100.0, total)

	var buf bytes.Buffer
	require.NoError(t, dashboard.ExportCSV(ctx, f.restaurant.ID, from, to, &buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "numero,date,statut"))
}

func TestDashboardIsTenantScoped(t *testing.T) {
	f := setupFixture(t)
	completeOrder(t, f, NewOrderService(f.db, nil), f.basket())

	dashboard, err := NewDashboardService(f.db)
	require.NoError(t, err)
	now := time.Now()
	stats, err := dashboard.Stats(context.Background(), f.restaurant.ID+1, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, stats.TotalOrders)
	assert.Zero(t, stats.Revenue)
}

func TestNotifications(t *testing.T) {
	f := setupFixture(t)
	notifier := NewNotificationService(f.db)
	bus := events.NewBus()
	require.NoError(t, bus.SubscribeSync(events.TopicAll, notifier.Handle))
	orders := NewOrderService(f.db, bus)
	ctx := context.Background()

	order, err := orders.Create(ctx, f.actor(f.client), f.basket())
	require.NoError(t, err)
	_, err = orders.UpdateStatus(ctx, f.actor(f.cashier), order.ID, orderflow.Rejected, "Fermé")
	require.NoError(t, err)

	staff, err := notifier.List(ctx, f.actor(f.cashier), false, 0)
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, NotificationNewOrder, staff[0].Type)

	mine, err := notifier.List(ctx, f.actor(f.client), true, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, NotificationOrderStatus, mine[0].Type)
	assert.Contains(t, mine[0].Message, "Refusée")
	assert.Contains(t, mine[0].Message, "Fermé")

	require.NoError(t, notifier.MarkRead(ctx, f.actor(f.client), mine[0].ID))
	err = notifier.MarkRead(ctx, f.actor(f.client), staff[0].ID)
	requireStatus(t, err, 404)

	n, err := notifier.MarkAllRead(ctx, f.actor(f.manager))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	purged, err := notifier.PurgeRead(ctx, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)
}
