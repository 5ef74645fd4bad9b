package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-platform/database"
	"github.com/yeremiapane/restaurant-platform/events"
	"github.com/yeremiapane/restaurant-platform/kds"
	"github.com/yeremiapane/restaurant-platform/middlewares"
	"github.com/yeremiapane/restaurant-platform/models"
	"github.com/yeremiapane/restaurant-platform/printer"
	"github.com/yeremiapane/restaurant-platform/router"
	"github.com/yeremiapane/restaurant-platform/services"
	"github.com/yeremiapane/restaurant-platform/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type apiClient struct {
	t       *testing.T
	baseURL string
}

func (a apiClient) call(method, path, token string, body interface{}) (int, []byte) {
	a.t.Helper()
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		payload = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, a.baseURL+path, payload)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp.StatusCode, out
}

func (a apiClient) login(username, password string) string {
	a.t.Helper()
	code, body := a.call(http.MethodPost, "/api/auth/login", "", gin.H{"username": username, "password": password})
	require.Equal(a.t, http.StatusOK, code, string(body))
	return gjson.GetBytes(body, "data.token").String()
}

// TestEndToEndIntegration walks an order from the client app to the
// dashboard:
// 1. super admin creates the restaurant with its manager
// 2. manager adds the menu and the staff
// 3. a client signs up with the short code and orders
// 4. the kitchen socket receives the order, staff move it to completed
// 5. the client is notified and the dashboard counts the revenue
func TestEndToEndIntegration(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:integration?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedSuperAdmin(db, "admin", "admin-secret"))

	bus := events.NewBus()
	svc, err := services.New(db, bus)
	require.NoError(t, err)
	hub := kds.NewHub()
	metrics := middlewares.NewMetrics()
	require.NoError(t, bus.Subscribe(events.TopicAll, hub.Handle))
	require.NoError(t, bus.Subscribe(events.TopicAll, metrics.Observe))
	require.NoError(t, bus.SubscribeSync(events.OrderCreated, svc.Notifications.Handle))
	require.NoError(t, bus.SubscribeSync(events.OrderStatusChanged, svc.Notifications.Handle))

	dispatcher, err := printer.NewDispatcher(1, time.Second)
	require.NoError(t, err)
	defer dispatcher.Release()

	srv := httptest.NewServer(router.SetupRouter(router.Deps{
		Services:  svc,
		SQL:       sqlDB,
		Hub:       hub,
		Formatter: printer.NewFormatter(printer.Width80mm, "MAD"),
		Printer:   dispatcher,
		Metrics:   metrics,
	}))
	defer srv.Close()
	api := apiClient{t: t, baseURL: srv.URL}

	// 1. restaurant and manager
	admin := api.login("admin", "admin-secret")
	code, body := api.call(http.MethodPost, "/api/restaurants", admin, gin.H{
		"name":              "Dar Zitoun",
		"short_code":        "darz",
		"plan":              "standard",
		"tax_rate":          10,
		"manager_username":  "karim",
		"manager_password":  "karim-secret",
		"manager_full_name": "Karim Alaoui",
	})
	require.Equal(t, http.StatusCreated, code, string(body))
	assert.Equal(t, "DARZ", gjson.GetBytes(body, "data.restaurant.short_code").String())

	// 2. menu and staff
	manager := api.login("karim", "karim-secret")
	var menuIDs []int64
	for _, item := range []gin.H{
		{"name": "Tajine", "price": 35, "category": "Plats"},
		{"name": "Thé", "price": 15, "category": "Boissons"},
	} {
		code, body = api.call(http.MethodPost, "/api/menu", manager, item)
		require.Equal(t, http.StatusCreated, code, string(body))
		menuIDs = append(menuIDs, gjson.GetBytes(body, "data.id").Int())
	}
	for _, staff := range []gin.H{
		{"username": "amina", "password": "amina-secret", "full_name": "Amina", "role": models.RoleCashier},
		{"username": "omar", "password": "omar-secret", "full_name": "Omar", "role": models.RoleCook},
	} {
		code, body = api.call(http.MethodPost, "/api/users", manager, staff)
		require.Equal(t, http.StatusCreated, code, string(body))
	}
	cashier := api.login("amina", "amina-secret")
	cook := api.login("omar", "omar-secret")

	// 3. client
	code, body = api.call(http.MethodPost, "/api/auth/register", "", gin.H{
		"username":   "sara",
		"password":   "sara-secret",
		"full_name":  "Sara",
		"short_code": "DARZ",
	})
	require.Equal(t, http.StatusCreated, code, string(body))
	client := gjson.GetBytes(body, "data.token").String()
	require.NotEmpty(t, client)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + cook
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer ws.Close()

	code, body = api.call(http.MethodPost, "/api/orders", client, gin.H{
		"items": []gin.H{
			{"menu_item_id": menuIDs[0], "quantity": 2},
			{"menu_item_id": menuIDs[1], "quantity": 1, "notes": "peu sucré"},
		},
	})
	require.Equal(t, http.StatusCreated, code, string(body))
	assert.Equal(t, 85.0, gjson.GetBytes(body, "data.total_amount").Float())
	orderID := gjson.GetBytes(body, "data.id").Int()

	// 4. kitchen
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, events.OrderCreated, gjson.GetBytes(msg, "event").String())
	assert.Equal(t, orderID, gjson.GetBytes(msg, "data.id").Int())

	statusPath := fmt.Sprintf("/api/orders/%d/status", orderID)
	for _, step := range []struct {
		token  string
		status string
	}{
		{cashier, "pending"},
		{cook, "preparing"},
		{cook, "ready"},
		{cashier, "completed"},
	} {
		code, body = api.call(http.MethodPatch, statusPath, step.token, gin.H{"status": step.status})
		require.Equal(t, http.StatusOK, code, string(body))
		assert.Equal(t, step.status, gjson.GetBytes(body, "data.status").String())
	}

	code, body = api.call(http.MethodGet, fmt.Sprintf("/api/orders/%d/ticket?type=receipt", orderID), cashier, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "85,00 MAD")

	// 5. notifications and dashboard
	bus.Wait()
	code, body = api.call(http.MethodGet, "/api/notifications", client, nil)
	require.Equal(t, http.StatusOK, code, string(body))
	assert.Equal(t, int64(4), gjson.GetBytes(body, "data.#").Int())

	code, body = api.call(http.MethodGet, "/api/dashboard/stats", manager, nil)
	require.Equal(t, http.StatusOK, code, string(body))
	assert.Equal(t, 85.0, gjson.GetBytes(body, "data.revenue").Float())
	assert.Equal(t, int64(1), gjson.GetBytes(body, "data.total_orders").Int())

	code, _ = api.call(http.MethodDelete, fmt.Sprintf("/api/orders/%d", orderID), manager, nil)
	assert.Equal(t, http.StatusOK, code)

	code, body = api.call(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "restaurant_order_events_total")
}
