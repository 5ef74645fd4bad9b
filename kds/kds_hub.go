package kds

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/restaurant-platform/events"
	"github.com/yeremiapane/restaurant-platform/models"
	"github.com/yeremiapane/restaurant-platform/utils"
)

const writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Identity describes who holds a connection.
type Identity struct {
	UserID       uint
	Role         string
	RestaurantID uint
}

type client struct {
	conn     *websocket.Conn
	identity Identity
	mu       sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub keeps one room of connections per restaurant.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uint]map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[uint]map[*client]struct{})}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.identity.RestaurantID]
	if !ok {
		room = make(map[*client]struct{})
		h.rooms[c.identity.RestaurantID] = room
	}
	room[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[c.identity.RestaurantID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, c.identity.RestaurantID)
		}
	}
	_ = c.conn.Close()
}

// Count returns the number of open connections of a restaurant.
func (h *Hub) Count(restaurantID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[restaurantID])
}

// Serve registers conn and blocks until the peer goes away.
func (h *Hub) Serve(conn *websocket.Conn, identity Identity) {
	c := &client{conn: conn, identity: identity}
	h.register(c)
	defer h.unregister(c)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Handle pushes a bus event to the sockets allowed to see it.
func (h *Hub) Handle(e events.Event) {
	data, err := json.Marshal(Message{Event: e.Type, Data: e.Data})
	if err != nil {
		utils.ErrorLogger.Errorf("marshal %s: %v", e.Type, err)
		return
	}

	h.mu.RLock()
	var targets []*client
	for c := range h.rooms[e.RestaurantID] {
		if canSee(c.identity, e) {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.write(data); err != nil {
			utils.ErrorLogger.Errorf("websocket send to user %d: %v", c.identity.UserID, err)
		}
	}
}

// Staff see every event of their restaurant, clients only their own orders
// and menu changes.
func canSee(id Identity, e events.Event) bool {
	if models.IsStaffRole(id.Role) {
		return true
	}
	if e.Type == events.MenuUpdated {
		return true
	}
	return e.UserID != nil && *e.UserID == id.UserID
}
