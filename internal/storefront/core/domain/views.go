package domain

import (
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/food-storefront/internal/cart"
	"github.com/jcmexdev/food-storefront/internal/ordering"
)

// CartView is the cart as shown to the visitor: recognised lines in menu
// order with the derived totals.
type CartView struct {
	Lines     []cart.Line
	ItemCount int
	Amount    decimal.Decimal
	// HasItems drives the navbar badge dot.
	HasItems bool
}

type PlaceOrderInput struct {
	SessionID string
	Zone      string
	PromoCode string
	Details   ordering.DeliveryDetails
	Payment   string

	IdempotencyKey string
	RequestID      string
}
