// Package app implements the storefront use cases on top of the cart,
// checkout, session and ordering packages.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/food-storefront/internal/cart"
	"github.com/jcmexdev/food-storefront/internal/catalog"
	"github.com/jcmexdev/food-storefront/internal/checkout"
	"github.com/jcmexdev/food-storefront/internal/coordinator"
	"github.com/jcmexdev/food-storefront/internal/coordinator/placementlog"
	"github.com/jcmexdev/food-storefront/internal/ordering"
	"github.com/jcmexdev/food-storefront/internal/pkg/cache"
	"github.com/jcmexdev/food-storefront/internal/session"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/ports"
)

const idempotencyOperation = "idempotency"

var _ ports.Storefront = (*Service)(nil)

type Service struct {
	catalog  *catalog.Catalog
	calc     *checkout.Calculator
	sessions *session.Registry
	orders   ordering.Repository
	journal  placementlog.Repository
	kitchen  coordinator.KitchenNotifier

	// idempotency maps X-Idempotency-Key values to order ids.
	idempotency    cache.Cache
	idempotencyTTL time.Duration

	now func() time.Time
}

// Options holds the collaborators of a Service. Journal and Kitchen may be
// nil.
type Options struct {
	Catalog        *catalog.Catalog
	Calculator     *checkout.Calculator
	Sessions       *session.Registry
	Orders         ordering.Repository
	Journal        placementlog.Repository
	Kitchen        coordinator.KitchenNotifier
	Cache          cache.Cache
	IdempotencyTTL time.Duration
}

func NewService(opts Options) *Service {
	calc := opts.Calculator
	if calc == nil {
		calc = checkout.NewDefaultCalculator(opts.Catalog)
	}
	return &Service{
		catalog:        opts.Catalog,
		calc:           calc,
		sessions:       opts.Sessions,
		orders:         opts.Orders,
		journal:        opts.Journal,
		kitchen:        opts.Kitchen,
		idempotency:    opts.Cache,
		idempotencyTTL: opts.IdempotencyTTL,
		now:            time.Now,
	}
}

func (s *Service) Menu(category string) []catalog.MenuItem { return s.catalog.Filter(category) }

func (s *Service) Categories() []string { return s.catalog.Categories() }

func (s *Service) Zones() []checkout.Zone { return s.calc.Zones() }

func (s *Service) OpenSession(id string) (string, bool) {
	sess, created := s.sessions.Acquire(id)
	return sess.ID, created
}

func (s *Service) Cart(_ context.Context, sessionID string) (domain.CartView, error) {
	return s.withCart(sessionID, func(*cart.Store) {})
}

func (s *Service) ItemCount(_ context.Context, sessionID string) (int, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return 0, err
	}
	var n int
	_ = sess.Do(func(c *cart.Store) error {
		n = c.TotalItemCount()
		return nil
	})
	return n, nil
}

func (s *Service) AddItem(_ context.Context, sessionID, itemID string) (domain.CartView, error) {
	return s.withCart(sessionID, func(c *cart.Store) { c.AddItem(itemID) })
}

func (s *Service) RemoveItem(_ context.Context, sessionID, itemID string) (domain.CartView, error) {
	return s.withCart(sessionID, func(c *cart.Store) { c.RemoveItem(itemID) })
}

func (s *Service) SetQuantity(_ context.Context, sessionID, itemID string, quantity int) (domain.CartView, error) {
	return s.withCart(sessionID, func(c *cart.Store) { c.SetQuantity(itemID, quantity) })
}

func (s *Service) ClearCart(_ context.Context, sessionID string) (domain.CartView, error) {
	return s.withCart(sessionID, func(c *cart.Store) { c.Clear() })
}

func (s *Service) Summary(_ context.Context, sessionID, zone, promoCode string) (checkout.OrderSummary, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return checkout.OrderSummary{}, err
	}
	var summary checkout.OrderSummary
	_ = sess.Do(func(c *cart.Store) error {
		summary = s.calc.Summary(c, zone, promoCode)
		return nil
	})
	return summary, nil
}

// withCart applies mutate under the session lock and returns the resulting
// view.
func (s *Service) withCart(sessionID string, mutate func(*cart.Store)) (domain.CartView, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return domain.CartView{}, err
	}
	var view domain.CartView
	_ = sess.Do(func(c *cart.Store) error {
		mutate(c)
		view = s.view(c)
		return nil
	})
	return view, nil
}

func (s *Service) view(c *cart.Store) domain.CartView {
	amount := c.TotalAmount(s.catalog)
	return domain.CartView{
		Lines:     c.LineItems(s.catalog),
		ItemCount: c.TotalItemCount(),
		Amount:    amount,
		HasItems:  amount.GreaterThan(decimal.Zero),
	}
}

// PlaceOrder prices the session's cart and runs the placement steps while
// holding the session lock, so the cart cannot change mid-placement.
func (s *Service) PlaceOrder(ctx context.Context, in domain.PlaceOrderInput) (*ordering.Order, bool, error) {
	sess, err := s.sessions.Get(in.SessionID)
	if err != nil {
		return nil, false, err
	}

	var (
		order    *ordering.Order
		replayed bool
	)
	err = sess.Do(func(c *cart.Store) error {
		if prev, ok := s.lookupIdempotent(ctx, in.SessionID, in.IdempotencyKey); ok {
			order, replayed = prev, true
			return nil
		}

		placed, err := s.place(ctx, c, in)
		if err != nil {
			return err
		}
		order = placed
		s.rememberIdempotent(ctx, in.SessionID, in.IdempotencyKey, placed.ID)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return order, replayed, nil
}

func (s *Service) place(ctx context.Context, c *cart.Store, in domain.PlaceOrderInput) (*ordering.Order, error) {
	summary := s.calc.Summary(c, in.Zone, in.PromoCode)
	if len(summary.Lines) == 0 {
		return nil, ordering.ErrEmptyCart
	}
	if err := in.Details.Validate(); err != nil {
		return nil, err
	}
	payment, err := ordering.ParsePaymentMethod(in.Payment)
	if err != nil {
		return nil, err
	}

	order := newOrder(summary, in, payment, s.now().UTC())
	payload, err := placementPayload(order)
	if err != nil {
		return nil, fmt.Errorf("encode placement payload: %w", err)
	}

	slog.InfoContext(ctx, "placing order",
		"order_id", order.ID,
		"order_number", order.Number,
		"request_id", in.RequestID,
		"total", order.Total.StringFixed(2),
	)

	steps := []coordinator.Step{
		coordinator.NewRecordOrderStep(s.orders, order),
		coordinator.NewClearCartStep(c),
	}
	if s.kitchen != nil {
		steps = append(steps, coordinator.NewNotifyKitchenStep(s.kitchen, order))
	}
	steps = append(steps, coordinator.NewConfirmOrderStep(s.orders, order))

	if err := coordinator.NewOrchestrator(order.ID, steps, s.journal).Start(ctx, payload); err != nil {
		return nil, fmt.Errorf("place order %s: %w", order.ID, err)
	}
	return order, nil
}

func newOrder(summary checkout.OrderSummary, in domain.PlaceOrderInput, payment ordering.PaymentMethod, now time.Time) *ordering.Order {
	lines := make([]ordering.Line, len(summary.Lines))
	for i, l := range summary.Lines {
		lines[i] = ordering.Line{
			ItemID:    l.Item.ID,
			Name:      l.Item.Name,
			UnitPrice: l.Item.Price,
			Quantity:  l.Quantity,
		}
	}

	var promo string
	if summary.Promotion.Applied {
		promo = summary.Promotion.Code
	}

	return &ordering.Order{
		ID:             uuid.NewString(),
		Number:         ordering.NewOrderNumber(),
		SessionID:      in.SessionID,
		Lines:          lines,
		Zone:           summary.Zone,
		PromoCode:      promo,
		Subtotal:       summary.Subtotal,
		DeliveryFee:    summary.DeliveryFee,
		Discount:       summary.Discount,
		Total:          summary.GrandTotal,
		Details:        in.Details.Normalize(),
		Payment:        payment,
		Status:         ordering.StatusPending,
		IdempotencyKey: in.IdempotencyKey,
		RequestID:      in.RequestID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// placementPayload is the journal's record of what was ordered. Contact
// details are left out.
func placementPayload(o *ordering.Order) (string, error) {
	items := make(map[string]int, len(o.Lines))
	for _, l := range o.Lines {
		items[l.ItemID] = l.Quantity
	}
	b, err := json.Marshal(struct {
		Number    string         `json:"number"`
		Zone      string         `json:"zone"`
		PromoCode string         `json:"promo_code,omitempty"`
		Payment   string         `json:"payment"`
		Items     map[string]int `json:"items"`
		Total     string         `json:"total"`
	}{
		Number:    o.Number,
		Zone:      o.Zone,
		PromoCode: o.PromoCode,
		Payment:   string(o.Payment),
		Items:     items,
		Total:     o.Total.StringFixed(2),
	})
	return string(b), err
}

// idempotencyKey scopes a client key to its session, so one visitor's key
// never replays another visitor's order.
func (s *Service) idempotencyKey(sessionID, key string) string {
	return s.idempotency.GenerateKey(idempotencyOperation, sessionID+":"+key)
}

func (s *Service) lookupIdempotent(ctx context.Context, sessionID, key string) (*ordering.Order, bool) {
	if key == "" || s.idempotency == nil {
		return nil, false
	}
	cacheKey := s.idempotencyKey(sessionID, key)
	orderID, err := s.idempotency.Get(ctx, cacheKey)
	if err != nil {
		slog.WarnContext(ctx, "idempotency lookup failed", "key", cacheKey, "error", err)
		return nil, false
	}
	if orderID == "" {
		return nil, false
	}
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		slog.WarnContext(ctx, "idempotent order missing", "key", cacheKey, "order_id", orderID, "error", err)
		return nil, false
	}
	if order.SessionID != sessionID {
		slog.WarnContext(ctx, "idempotency key bound to another session", "key", cacheKey, "order_id", orderID)
		return nil, false
	}
	slog.InfoContext(ctx, "replaying order for idempotency key", "key", cacheKey, "order_id", orderID)
	return order, true
}

func (s *Service) rememberIdempotent(ctx context.Context, sessionID, key, orderID string) {
	if key == "" || s.idempotency == nil {
		return
	}
	cacheKey := s.idempotencyKey(sessionID, key)
	if err := s.idempotency.Set(ctx, cacheKey, orderID, s.idempotencyTTL); err != nil {
		slog.WarnContext(ctx, "idempotency store failed", "key", cacheKey, "error", err)
	}
}

func (s *Service) GetOrder(ctx context.Context, id string) (*ordering.Order, error) {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ordering.ErrNotFound) {
			return nil, ordering.ErrNotFound
		}
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	return order, nil
}

func (s *Service) PlacementHistory(ctx context.Context, orderID string) ([]placementlog.Entry, error) {
	if s.journal == nil {
		return nil, nil
	}
	entries, err := s.journal.History(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("placement history %s: %w", orderID, err)
	}
	return entries, nil
}
