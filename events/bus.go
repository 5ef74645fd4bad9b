// Package events fans order and menu changes out to the websocket hub,
// the notification writer and the message broker.
package events

import (
	"time"

	EventBus "github.com/asaskevich/EventBus"
)

const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
	MenuUpdated        = "menu.updated"

	// TopicAll receives every event published on the bus.
	TopicAll = "*"
)

type Event struct {
	Type         string      `json:"event"`
	RestaurantID uint        `json:"restaurant_id"`
	UserID       *uint       `json:"user_id,omitempty"`
	Data         interface{} `json:"data"`
	OccurredAt   time.Time   `json:"occurred_at"`
}

// StatusChange is the payload of OrderStatusChanged.
type StatusChange struct {
	From  string      `json:"from"`
	To    string      `json:"to"`
	Order interface{} `json:"order"`
}

// Bus is safe to use as a nil pointer; publishing then does nothing.
type Bus struct {
	bus EventBus.Bus
}

func NewBus() *Bus {
	return &Bus{bus: EventBus.New()}
}

func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	b.bus.Publish(e.Type, e)
	b.bus.Publish(TopicAll, e)
}

// Subscribe registers fn to run in its own goroutine for each event on topic.
func (b *Bus) Subscribe(topic string, fn func(Event)) error {
	return b.bus.SubscribeAsync(topic, fn, false)
}

// SubscribeSync runs fn in the publisher's goroutine.
func (b *Bus) SubscribeSync(topic string, fn func(Event)) error {
	return b.bus.Subscribe(topic, fn)
}

// Wait blocks until asynchronous handlers have returned.
func (b *Bus) Wait() {
	if b == nil {
		return
	}
	b.bus.WaitAsync()
}
