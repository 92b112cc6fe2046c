package ports

import (
	"context"

	"github.com/jcmexdev/food-storefront/internal/catalog"
	"github.com/jcmexdev/food-storefront/internal/checkout"
	"github.com/jcmexdev/food-storefront/internal/coordinator/placementlog"
	"github.com/jcmexdev/food-storefront/internal/ordering"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain"
)

// Storefront is everything the HTTP layer needs. Cart operations return
// session.ErrNotFound for ids not issued by OpenSession.
type Storefront interface {
	Menu(category string) []catalog.MenuItem
	Categories() []string
	Zones() []checkout.Zone

	// OpenSession returns id when it names a live session, otherwise a new
	// session id and created=true.
	OpenSession(id string) (sessionID string, created bool)

	Cart(ctx context.Context, sessionID string) (domain.CartView, error)
	AddItem(ctx context.Context, sessionID, itemID string) (domain.CartView, error)
	RemoveItem(ctx context.Context, sessionID, itemID string) (domain.CartView, error)
	SetQuantity(ctx context.Context, sessionID, itemID string, quantity int) (domain.CartView, error)
	ClearCart(ctx context.Context, sessionID string) (domain.CartView, error)
	Summary(ctx context.Context, sessionID, zone, promoCode string) (checkout.OrderSummary, error)

	// PlaceOrder reports replayed=true when the idempotency key was already
	// used and the earlier order is returned.
	PlaceOrder(ctx context.Context, in domain.PlaceOrderInput) (order *ordering.Order, replayed bool, err error)
	GetOrder(ctx context.Context, id string) (*ordering.Order, error)
	PlacementHistory(ctx context.Context, orderID string) ([]placementlog.Entry, error)
}
