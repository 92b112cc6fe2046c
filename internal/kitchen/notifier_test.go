package kitchen

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/food-storefront/internal/ordering"
	"github.com/jcmexdev/food-storefront/internal/pkg/broker"
)

type published struct {
	exchange, key string
	body          []byte
	headers       map[string]any
}

type recordingPublisher struct {
	sent []published
	err  error
}

func (p *recordingPublisher) Publish(ctx context.Context, exchange, key string, body []byte, headers map[string]any) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish without deadline")
	}
	p.sent = append(p.sent, published{exchange, key, body, headers})
	return p.err
}

func order() *ordering.Order {
	return &ordering.Order{
		ID:     "o-1",
		Number: "ABC123DEF",
		Zone:   "Downtown",
		Lines: []ordering.Line{
			{ItemID: "1", Name: "Greek salad", UnitPrice: decimal.RequireFromString("12"), Quantity: 2},
		},
		Total:     decimal.RequireFromString("26.99"),
		Details:   ordering.DeliveryDetails{FullName: "Asha Rao", Address: "12 MG Road"},
		Payment:   ordering.PaymentCash,
		CreatedAt: time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC),
	}
}

func TestOrderPlaced(t *testing.T) {
	pub := &recordingPublisher{}
	require.NoError(t, NewNotifier(pub).OrderPlaced(context.Background(), order()))

	require.Len(t, pub.sent, 1)
	sent := pub.sent[0]
	assert.Equal(t, broker.OrdersExchange, sent.exchange)
	assert.Equal(t, "kitchen.placed.downtown", sent.key)
	assert.Equal(t, "ABC123DEF", sent.headers["x-order-number"])

	var msg Message
	require.NoError(t, json.Unmarshal(sent.body, &msg))
	assert.Equal(t, EventOrderPlaced, msg.Event)
	assert.Equal(t, "26.99", msg.Total)
	assert.Equal(t, "cash", msg.Payment)
	require.Len(t, msg.Items, 1)
	assert.Equal(t, 2, msg.Items[0].Quantity)
}

func TestOrderCancelledWrapsPublishError(t *testing.T) {
	boom := errors.New("channel closed")
	pub := &recordingPublisher{err: boom}
	err := NewNotifier(pub).OrderCancelled(context.Background(), order())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "kitchen.cancelled.downtown", pub.sent[0].key)
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "kitchen.placed.other", RoutingKey(EventOrderPlaced, ""))
	assert.Equal(t, "kitchen.placed.old-town", RoutingKey(EventOrderPlaced, " Old Town "))
}

func TestLogPublisherAcceptsEverything(t *testing.T) {
	require.NoError(t, NewNotifier(broker.LogPublisher{}).OrderPlaced(context.Background(), order()))
}
