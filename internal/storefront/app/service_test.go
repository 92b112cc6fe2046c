package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/food-storefront/internal/catalog"
	"github.com/jcmexdev/food-storefront/internal/coordinator/placementlog"
	"github.com/jcmexdev/food-storefront/internal/ordering"
	"github.com/jcmexdev/food-storefront/internal/pkg/cache"
	"github.com/jcmexdev/food-storefront/internal/session"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain"
)

type kitchenRecorder struct {
	events []string
}

func (k *kitchenRecorder) OrderPlaced(_ context.Context, o *ordering.Order) error {
	k.events = append(k.events, "placed:"+o.Number)
	return nil
}

func (k *kitchenRecorder) OrderCancelled(_ context.Context, o *ordering.Order) error {
	k.events = append(k.events, "cancelled:"+o.Number)
	return nil
}

type fixture struct {
	svc     *Service
	orders  ordering.Repository
	journal *placementlog.MemoryRepository
	kitchen *kitchenRecorder
}

func newFixture(t *testing.T, orders ordering.Repository) fixture {
	t.Helper()
	menu, err := catalog.New([]catalog.MenuItem{
		{ID: "1", Name: "Greek salad", Price: decimal.RequireFromString("12"), Category: "Salad"},
		{ID: "5", Name: "Lasagna rolls", Price: decimal.RequireFromString("14"), Category: "Rolls"},
		{ID: "13", Name: "Cup cake", Price: decimal.RequireFromString("14"), Category: "Cake"},
	})
	require.NoError(t, err)

	if orders == nil {
		orders = ordering.NewMemoryRepository()
	}
	journal := placementlog.NewMemoryRepository()
	kitchen := &kitchenRecorder{}
	svc := NewService(Options{
		Catalog:        menu,
		Sessions:       session.NewRegistry(time.Hour),
		Orders:         orders,
		Journal:        journal,
		Kitchen:        kitchen,
		Cache:          cache.NewMemoryCache("storefront"),
		IdempotencyTTL: time.Hour,
	})
	return fixture{svc: svc, orders: orders, journal: journal, kitchen: kitchen}
}

func validInput(sessionID string) domain.PlaceOrderInput {
	return domain.PlaceOrderInput{
		SessionID: sessionID,
		Zone:      "Downtown",
		PromoCode: "save10",
		Details: ordering.DeliveryDetails{
			FullName: " Asha Rao ",
			Phone:    "9845012345",
			Email:    "asha@example.com",
			Address:  "12 MG Road",
		},
		Payment: "upi",
	}
}

func TestCartOperations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	sid, created := f.svc.OpenSession("")
	require.True(t, created)

	_, err := f.svc.AddItem(ctx, sid, "13")
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, sid, "1")
	require.NoError(t, err)
	view, err := f.svc.AddItem(ctx, sid, "1")
	require.NoError(t, err)

	require.Len(t, view.Lines, 2)
	assert.Equal(t, "1", view.Lines[0].Item.ID, "lines follow menu order")
	assert.Equal(t, 3, view.ItemCount)
	assert.Equal(t, "38.00", view.Amount.StringFixed(2))
	assert.True(t, view.HasItems)

	view, err = f.svc.SetQuantity(ctx, sid, "13", 0)
	require.NoError(t, err)
	assert.Len(t, view.Lines, 1)

	view, err = f.svc.RemoveItem(ctx, sid, "1")
	require.NoError(t, err)
	assert.Equal(t, 1, view.ItemCount)

	n, err := f.svc.ItemCount(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	view, err = f.svc.ClearCart(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.False(t, view.HasItems)
}

func TestUnknownItemCountsButHasNoAmount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	sid, _ := f.svc.OpenSession("")

	view, err := f.svc.AddItem(ctx, sid, "ghost")
	require.NoError(t, err)
	assert.Equal(t, 1, view.ItemCount)
	assert.Empty(t, view.Lines)
	assert.False(t, view.HasItems)
}

func TestUnknownSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.svc.Cart(ctx, "nope")
	assert.ErrorIs(t, err, session.ErrNotFound)
	_, err = f.svc.Summary(ctx, "nope", "", "")
	assert.ErrorIs(t, err, session.ErrNotFound)
	_, _, err = f.svc.PlaceOrder(ctx, validInput("nope"))
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	sid, _ := f.svc.OpenSession("")
	_, err := f.svc.SetQuantity(ctx, sid, "1", 2)
	require.NoError(t, err)

	s, err := f.svc.Summary(ctx, sid, "Suburbs", "FLAT5")
	require.NoError(t, err)
	assert.Equal(t, "24.00", s.Subtotal.StringFixed(2))
	assert.Equal(t, "23.99", s.GrandTotal.StringFixed(2))
}

func TestMenuQueries(t *testing.T) {
	f := newFixture(t, nil)
	assert.Len(t, f.svc.Menu("All"), 3)
	assert.Len(t, f.svc.Menu("rolls"), 1)
	assert.Equal(t, []string{"Salad", "Rolls", "Cake"}, f.svc.Categories())
	assert.Len(t, f.svc.Zones(), 4)
}

func TestPlaceOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	sid, _ := f.svc.OpenSession("")
	_, err := f.svc.SetQuantity(ctx, sid, "1", 2)
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, sid, "5")
	require.NoError(t, err)

	order, replayed, err := f.svc.PlaceOrder(ctx, validInput(sid))
	require.NoError(t, err)
	assert.False(t, replayed)

	assert.Equal(t, ordering.StatusConfirmed, order.Status)
	assert.Len(t, order.Number, 9)
	assert.Equal(t, "SAVE10", order.PromoCode)
	assert.Equal(t, "38.00", order.Subtotal.StringFixed(2))
	assert.Equal(t, "3.80", order.Discount.StringFixed(2))
	assert.Equal(t, "37.19", order.Total.StringFixed(2))
	assert.Equal(t, "Asha Rao", order.Details.FullName)
	assert.Equal(t, ordering.PaymentUPI, order.Payment)

	n, err := f.svc.ItemCount(ctx, sid)
	require.NoError(t, err)
	assert.Zero(t, n, "cart is cleared after placement")

	stored, err := f.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, ordering.StatusConfirmed, stored.Status)

	history, err := f.svc.PlacementHistory(ctx, order.ID)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Equal(t, placementlog.StatusStarted, history[0].Status)
	assert.Contains(t, history[0].Payload, `"zone":"Downtown"`)
	assert.NotContains(t, history[0].Payload, "asha@example.com")
	assert.Equal(t, placementlog.StatusCompleted, history[len(history)-1].Status)

	assert.Equal(t, []string{"placed:" + order.Number}, f.kitchen.events)
}

func TestPlaceOrderRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	sid, _ := f.svc.OpenSession("")

	_, _, err := f.svc.PlaceOrder(ctx, validInput(sid))
	assert.ErrorIs(t, err, ordering.ErrEmptyCart)

	_, err = f.svc.AddItem(ctx, sid, "ghost")
	require.NoError(t, err)
	_, _, err = f.svc.PlaceOrder(ctx, validInput(sid))
	assert.ErrorIs(t, err, ordering.ErrEmptyCart, "unknown items alone are not orderable")

	_, err = f.svc.AddItem(ctx, sid, "1")
	require.NoError(t, err)

	in := validInput(sid)
	in.Details.Email = ""
	_, _, err = f.svc.PlaceOrder(ctx, in)
	assert.ErrorIs(t, err, ordering.ErrInvalidDetails)

	in = validInput(sid)
	in.Payment = "bitcoin"
	_, _, err = f.svc.PlaceOrder(ctx, in)
	assert.ErrorIs(t, err, ordering.ErrInvalidDetails)

	n, err := f.svc.ItemCount(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "rejected placements leave the cart alone")
}

func TestPlaceOrderIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	sid, _ := f.svc.OpenSession("")
	_, err := f.svc.AddItem(ctx, sid, "1")
	require.NoError(t, err)

	in := validInput(sid)
	in.IdempotencyKey = "checkout-42"
	first, replayed, err := f.svc.PlaceOrder(ctx, in)
	require.NoError(t, err)
	require.False(t, replayed)

	second, replayed, err := f.svc.PlaceOrder(ctx, in)
	require.NoError(t, err, "replay must not fail on the now empty cart")
	assert.True(t, replayed)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.kitchen.events, 1, "a replay does not notify the kitchen again")
}

func TestIdempotencyKeyIsScopedToSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	alice, _ := f.svc.OpenSession("")
	_, err := f.svc.AddItem(ctx, alice, "1")
	require.NoError(t, err)
	in := validInput(alice)
	in.IdempotencyKey = "k-1"
	aliceOrder, _, err := f.svc.PlaceOrder(ctx, in)
	require.NoError(t, err)

	bob, _ := f.svc.OpenSession("")
	_, err = f.svc.AddItem(ctx, bob, "13")
	require.NoError(t, err)
	in = validInput(bob)
	in.Details.FullName = "Bob Mathew"
	in.Details.Email = "bob@example.com"
	in.IdempotencyKey = "k-1"
	bobOrder, replayed, err := f.svc.PlaceOrder(ctx, in)
	require.NoError(t, err)

	assert.False(t, replayed)
	assert.NotEqual(t, aliceOrder.ID, bobOrder.ID)
	assert.Equal(t, bob, bobOrder.SessionID)
	assert.Equal(t, "Bob Mathew", bobOrder.Details.FullName)

	n, err := f.svc.ItemCount(ctx, bob)
	require.NoError(t, err)
	assert.Zero(t, n, "bob's own cart was placed")
}

func TestIdempotentReplayChecksOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	alice, _ := f.svc.OpenSession("")
	_, err := f.svc.AddItem(ctx, alice, "1")
	require.NoError(t, err)
	order, _, err := f.svc.PlaceOrder(ctx, validInput(alice))
	require.NoError(t, err)

	bob, _ := f.svc.OpenSession("")
	require.NoError(t, f.svc.idempotency.Set(ctx, f.svc.idempotencyKey(bob, "k-2"), order.ID, time.Hour))

	_, replayed := f.svc.lookupIdempotent(ctx, bob, "k-2")
	assert.False(t, replayed)
}

type failingConfirmRepo struct {
	*ordering.MemoryRepository
}

func (r failingConfirmRepo) UpdateStatus(ctx context.Context, id string, status ordering.Status) error {
	if status == ordering.StatusConfirmed {
		return errors.New("database is locked")
	}
	return r.MemoryRepository.UpdateStatus(ctx, id, status)
}

func TestPlaceOrderRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := failingConfirmRepo{ordering.NewMemoryRepository()}
	f := newFixture(t, repo)
	sid, _ := f.svc.OpenSession("")
	_, err := f.svc.SetQuantity(ctx, sid, "13", 3)
	require.NoError(t, err)

	_, _, err = f.svc.PlaceOrder(ctx, validInput(sid))
	require.Error(t, err)

	n, err := f.svc.ItemCount(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "cart restored after rollback")

	require.Len(t, f.kitchen.events, 2)
	assert.Contains(t, f.kitchen.events[0], "placed:")
	assert.Contains(t, f.kitchen.events[1], "cancelled:")
}

func TestGetOrderNotFound(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.GetOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, ordering.ErrNotFound)
}
