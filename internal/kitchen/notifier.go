// Package kitchen tells the kitchen about placed and cancelled orders over
// the message broker.
package kitchen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jcmexdev/food-storefront/internal/ordering"
	"github.com/jcmexdev/food-storefront/internal/pkg/broker"
)

const (
	EventOrderPlaced    = "order.placed"
	EventOrderCancelled = "order.cancelled"

	publishTimeout = 5 * time.Second
)

type Publisher interface {
	Publish(ctx context.Context, exchange, key string, body []byte, headers map[string]any) error
}

type MessageItem struct {
	ItemID   string `json:"item_id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type Message struct {
	Event           string        `json:"event"`
	OrderID         string        `json:"order_id"`
	OrderNumber     string        `json:"order_number"`
	Zone            string        `json:"zone"`
	CustomerName    string        `json:"customer_name"`
	DeliveryAddress string        `json:"delivery_address"`
	Items           []MessageItem `json:"items"`
	Total           string        `json:"total"`
	Payment         string        `json:"payment_method"`
	PlacedAt        time.Time     `json:"placed_at"`
}

type Notifier struct {
	pub Publisher
}

func NewNotifier(pub Publisher) *Notifier {
	return &Notifier{pub: pub}
}

func (n *Notifier) OrderPlaced(ctx context.Context, o *ordering.Order) error {
	return n.publish(ctx, EventOrderPlaced, o)
}

func (n *Notifier) OrderCancelled(ctx context.Context, o *ordering.Order) error {
	return n.publish(ctx, EventOrderCancelled, o)
}

func (n *Notifier) publish(ctx context.Context, event string, o *ordering.Order) error {
	body, err := json.Marshal(newMessage(event, o))
	if err != nil {
		return fmt.Errorf("kitchen: encode %s for %s: %w", event, o.Number, err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	headers := map[string]any{
		"x-source":       "storefront",
		"x-order-number": o.Number,
	}
	if err := n.pub.Publish(ctx, broker.OrdersExchange, RoutingKey(event, o.Zone), body, headers); err != nil {
		return fmt.Errorf("kitchen: publish %s for %s: %w", event, o.Number, err)
	}
	return nil
}

// RoutingKey is kitchen.<placed|cancelled>.<zone>, zone lowercased with
// spaces as dashes.
func RoutingKey(event, zone string) string {
	action := strings.TrimPrefix(event, "order.")
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(zone)), " ", "-")
	if slug == "" {
		slug = "other"
	}
	return fmt.Sprintf("kitchen.%s.%s", action, slug)
}

func newMessage(event string, o *ordering.Order) Message {
	items := make([]MessageItem, len(o.Lines))
	for i, l := range o.Lines {
		items[i] = MessageItem{ItemID: l.ItemID, Name: l.Name, Quantity: l.Quantity}
	}
	return Message{
		Event:           event,
		OrderID:         o.ID,
		OrderNumber:     o.Number,
		Zone:            o.Zone,
		CustomerName:    o.Details.FullName,
		DeliveryAddress: o.Details.Address,
		Items:           items,
		Total:           o.Total.StringFixed(2),
		Payment:         string(o.Payment),
		PlacedAt:        o.CreatedAt,
	}
}
