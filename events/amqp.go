package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/yeremiapane/restaurant-platform/utils"
)

const publishTimeout = 5 * time.Second

// AMQPPublisher forwards bus events to a durable topic exchange.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// confirmWaiter is satisfied by *amqp.DeferredConfirmation.
type confirmWaiter interface {
	WaitContext(ctx context.Context) (bool, error)
}

var errNack = errors.New("publish NACK from broker")

func DialAMQP(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("enable confirms: %w", err)
	}

	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// RoutingKey is "<event>.<restaurant id>", e.g. "order.created.12".
func RoutingKey(e Event) string {
	return fmt.Sprintf("%s.%d", e.Type, e.RestaurantID)
}

// Handle is meant to be subscribed to TopicAll.
func (p *AMQPPublisher) Handle(e Event) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := p.Publish(ctx, e); err != nil {
		utils.ErrorLogger.Errorf("publish %s: %v", RoutingKey(e), err)
	}
}

func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	// Each publish gets its own confirmation keyed by delivery tag, so a
	// late ack never resolves another message.
	conf, err := p.ch.PublishWithDeferredConfirmWithContext(ctx, p.exchange, RoutingKey(e), false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    uuid.NewString(),
		Timestamp:    e.OccurredAt.UTC(),
		Headers:      amqp.Table{"x-source": "restaurant-platform"},
		Body:         body,
	})
	if err != nil {
		return err
	}
	if conf == nil {
		return errors.New("channel is not in confirm mode")
	}
	return awaitConfirm(ctx, conf)
}

func awaitConfirm(ctx context.Context, conf confirmWaiter) error {
	ack, err := conf.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !ack {
		return errNack
	}
	return nil
}

func (p *AMQPPublisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
