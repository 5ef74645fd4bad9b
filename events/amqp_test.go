package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pendingConfirm resolves once the broker side sends on ack.
type pendingConfirm struct {
	ack chan bool
}

func (c pendingConfirm) WaitContext(ctx context.Context) (bool, error) {
	select {
	case ok := <-c.ack:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "order.created.12", RoutingKey(Event{Type: OrderCreated, RestaurantID: 12}))
}

func TestAwaitConfirmUsesOwnConfirmation(t *testing.T) {
	first := pendingConfirm{ack: make(chan bool, 1)}
	second := pendingConfirm{ack: make(chan bool, 1)}

	// The second message is acked before the first one is nacked.
	second.ack <- true
	require.NoError(t, awaitConfirm(context.Background(), second))

	first.ack <- false
	assert.ErrorIs(t, awaitConfirm(context.Background(), first), errNack)
}

func TestAwaitConfirmTimesOut(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := awaitConfirm(ctx, pendingConfirm{ack: make(chan bool)})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
