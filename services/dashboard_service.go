package services

import (
	"context"
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/jmoiron/sqlx"
	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-platform/orderflow"
	"github.com/yeremiapane/restaurant-platform/utils"
)

const dayLayout = "2006-01-02"

// DashboardService computes statistics straight from the order rows on
// every call.
type DashboardService struct {
	DB  *sqlx.DB
	Now func() time.Time
}

// NewDashboardService shares the gorm connection pool.
func NewDashboardService(db *gorm.DB) (*DashboardService, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &DashboardService{
		DB:  sqlx.NewDb(sqlDB, db.Dialector.Name()),
		Now: time.Now,
	}, nil
}

type Stats struct {
	From          time.Time        `json:"from"`
	To            time.Time        `json:"to"`
	TotalOrders   int64            `json:"total_orders"`
	ByStatus      map[string]int64 `json:"by_status"`
	Revenue       float64          `json:"revenue"`
	AverageOrder  float64          `json:"average_order"`
	MedianOrder   float64          `json:"median_order"`
	TodayOrders   int64            `json:"today_orders"`
	TodayRevenue  float64          `json:"today_revenue"`
	ActiveOrders  int64            `json:"active_orders"`
	AwaitingCount int64            `json:"awaiting_approval"`
}

type TopItem struct {
	MenuItemID uint    `db:"menu_item_id" json:"menu_item_id"`
	Name       string  `db:"name" json:"name"`
	Quantity   int64   `db:"quantity" json:"quantity"`
	Revenue    float64 `db:"revenue" json:"revenue"`
}

type DailyRevenue struct {
	Date    string  `json:"date"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// OrderRow is one line of the CSV export.
type OrderRow struct {
	OrderNumber string    `db:"order_number" csv:"numero"`
	CreatedAt   time.Time `db:"created_at" csv:"date"`
	Status      string    `db:"status" csv:"statut"`
	Source      string    `db:"source" csv:"source"`
	ClientName  string    `db:"client_name" csv:"client"`
	Caissier    string    `db:"caissier_name" csv:"caissier"`
	Total       float64   `db:"total_amount" csv:"total"`
}

func (s *DashboardService) Stats(ctx context.Context, tenant uint, from, to time.Time) (*Stats, error) {
	out := &Stats{From: from, To: to, ByStatus: make(map[string]int64, len(orderflow.Statuses))}
	for _, status := range orderflow.Statuses {
		out.ByStatus[status] = 0
	}

	var counts []struct {
		Status string `db:"status"`
		N      int64  `db:"n"`
	}
	err := s.DB.SelectContext(ctx, &counts, s.DB.Rebind(
		`SELECT status, COUNT(*) AS n FROM orders
		 WHERE restaurant_id = ? AND created_at >= ? AND created_at < ?
		 GROUP BY status`), tenant, from, to)
	if err != nil {
		return nil, utils.Internal(err)
	}
	for _, c := range counts {
		out.ByStatus[c.Status] = c.N
		out.TotalOrders += c.N
	}

	totals, err := s.completedTotals(ctx, tenant, from, to)
	if err != nil {
		return nil, err
	}
	out.Revenue = sum(totals)
	if len(totals) > 0 {
		mean, _ := stats.Mean(totals)
		median, _ := stats.Median(totals)
		out.AverageOrder = round2(mean)
		out.MedianOrder = round2(median)
	}

	dayStart := utils.StartOfDay(s.Now())
	dayEnd := dayStart.AddDate(0, 0, 1)
	if err := s.DB.GetContext(ctx, &out.TodayOrders, s.DB.Rebind(
		`SELECT COUNT(*) FROM orders WHERE restaurant_id = ? AND created_at >= ? AND created_at < ?`),
		tenant, dayStart, dayEnd); err != nil {
		return nil, utils.Internal(err)
	}
	today, err := s.completedTotals(ctx, tenant, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	out.TodayRevenue = sum(today)

	query, args, err := sqlx.In(
		`SELECT COUNT(*) FROM orders WHERE restaurant_id = ? AND status IN (?)`,
		tenant, orderflow.ActiveStatuses)
	if err != nil {
		return nil, utils.Internal(err)
	}
	if err := s.DB.GetContext(ctx, &out.ActiveOrders, s.DB.Rebind(query), args...); err != nil {
		return nil, utils.Internal(err)
	}
	if err := s.DB.GetContext(ctx, &out.AwaitingCount, s.DB.Rebind(
		`SELECT COUNT(*) FROM orders WHERE restaurant_id = ? AND status = ?`),
		tenant, orderflow.AwaitingApproval); err != nil {
		return nil, utils.Internal(err)
	}
	return out, nil
}

// TopItems ranks menu items by quantity sold, ignoring rejected and
// cancelled orders.
func (s *DashboardService) TopItems(ctx context.Context, tenant uint, from, to time.Time, limit int) ([]TopItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	items := []TopItem{}
	err := s.DB.SelectContext(ctx, &items, s.DB.Rebind(
		`SELECT oi.menu_item_id, oi.name, SUM(oi.quantity) AS quantity, SUM(oi.subtotal) AS revenue
		 FROM order_items oi
		 JOIN orders o ON o.id = oi.order_id
		 WHERE o.restaurant_id = ? AND o.status NOT IN (?, ?) AND o.created_at >= ? AND o.created_at < ?
		 GROUP BY oi.menu_item_id, oi.name
		 ORDER BY quantity DESC, revenue DESC
		 LIMIT ?`),
		tenant, orderflow.Rejected, orderflow.Cancelled, from, to, limit)
	if err != nil {
		return nil, utils.Internal(err)
	}
	for i := range items {
		items[i].Revenue = round2(items[i].Revenue)
	}
	return items, nil
}

// Revenue returns one entry per day of the window, days without sales
// included.
func (s *DashboardService) Revenue(ctx context.Context, tenant uint, from, to time.Time) ([]DailyRevenue, error) {
	var rows []struct {
		CreatedAt time.Time `db:"created_at"`
		Total     float64   `db:"total_amount"`
	}
	err := s.DB.SelectContext(ctx, &rows, s.DB.Rebind(
		`SELECT created_at, total_amount FROM orders
		 WHERE restaurant_id = ? AND status = ? AND created_at >= ? AND created_at < ?`),
		tenant, orderflow.Completed, from, to)
	if err != nil {
		return nil, utils.Internal(err)
	}

	type bucket struct {
		orders  int
		revenue decimal.Decimal
	}
	days := make(map[string]*bucket)
	for _, r := range rows {
		key := r.CreatedAt.In(from.Location()).Format(dayLayout)
		b, ok := days[key]
		if !ok {
			b = &bucket{revenue: decimal.Zero}
			days[key] = b
		}
		b.orders++
		b.revenue = b.revenue.Add(decimal.NewFromFloat(r.Total))
	}

	var series []DailyRevenue
	for day := utils.StartOfDay(from); day.Before(to); day = day.AddDate(0, 0, 1) {
		key := day.Format(dayLayout)
		entry := DailyRevenue{Date: key}
		if b, ok := days[key]; ok {
			entry.Orders = b.orders
			entry.Revenue = b.revenue.Round(2).InexactFloat64()
		}
		series = append(series, entry)
	}
	return series, nil
}

// ExportCSV writes the orders of the window as CSV.
func (s *DashboardService) ExportCSV(ctx context.Context, tenant uint, from, to time.Time, w io.Writer) error {
	rows := []*OrderRow{}
	err := s.DB.SelectContext(ctx, &rows, s.DB.Rebind(
		`SELECT order_number, created_at, status, source, client_name, caissier_name, total_amount
		 FROM orders
		 WHERE restaurant_id = ? AND created_at >= ? AND created_at < ?
		 ORDER BY created_at ASC`),
		tenant, from, to)
	if err != nil {
		return utils.Internal(err)
	}
	return gocsv.Marshal(rows, w)
}

func (s *DashboardService) completedTotals(ctx context.Context, tenant uint, from, to time.Time) ([]float64, error) {
	totals := []float64{}
	err := s.DB.SelectContext(ctx, &totals, s.DB.Rebind(
		`SELECT total_amount FROM orders
		 WHERE restaurant_id = ? AND status = ? AND created_at >= ? AND created_at < ?`),
		tenant, orderflow.Completed, from, to)
	if err != nil {
		return nil, utils.Internal(err)
	}
	return totals, nil
}

func sum(values []float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.Round(2).InexactFloat64()
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
