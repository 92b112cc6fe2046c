// Package checkout derives an order summary from cart contents, the menu,
// a delivery zone and an entered promo code.
//
// Nothing here returns an error: unknown item ids are skipped, unknown
// zones fall back to Other and unknown codes yield no discount with a
// displayable status.
package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/food-storefront/internal/cart"
)

// centPlaces is the precision discounts are rounded to.
const centPlaces = 2

// PromotionStatus reports how the entered code was interpreted.
type PromotionStatus struct {
	Code    string
	Applied bool
	Kind    EffectKind
	Label   string
}

// OrderSummary is recomputed on every call and never stored.
type OrderSummary struct {
	Lines     []cart.Line
	ItemCount int
	Subtotal  decimal.Decimal

	Zone string
	// NominalDeliveryFee is the zone fee before promotions.
	NominalDeliveryFee decimal.Decimal
	DeliveryFee        decimal.Decimal
	DeliveryWaived     bool

	Discount   decimal.Decimal
	GrandTotal decimal.Decimal
	Promotion  PromotionStatus
}

// Cart is the read side of a cart.Store the calculator needs.
type Cart interface {
	LineItems(menu cart.Menu) []cart.Line
}

type Calculator struct {
	menu   cart.Menu
	zones  *ZoneTable
	promos *PromotionRegistry
}

func NewCalculator(menu cart.Menu, zones *ZoneTable, promos *PromotionRegistry) *Calculator {
	return &Calculator{menu: menu, zones: zones, promos: promos}
}

// NewDefaultCalculator uses the shipped zone table and promotions.
func NewDefaultCalculator(menu cart.Menu) *Calculator {
	return NewCalculator(menu, NewZoneTable(DefaultZones()), NewPromotionRegistry(DefaultPromotions()))
}

func (c *Calculator) Zones() []Zone { return c.zones.Zones() }

// Summary prices the cart. The promo code is re-evaluated on every call.
func (c *Calculator) Summary(ct Cart, zoneName, promoCode string) OrderSummary {
	lines := ct.LineItems(c.menu)

	subtotal := decimal.Zero
	count := 0
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total())
		count += l.Quantity
	}

	zone := c.zones.Resolve(zoneName)
	s := OrderSummary{
		Lines:              lines,
		ItemCount:          count,
		Subtotal:           subtotal,
		Zone:               zone.Name,
		NominalDeliveryFee: zone.Fee,
		DeliveryFee:        zone.Fee,
		Discount:           decimal.Zero,
	}

	promo, ok := c.promos.Lookup(promoCode)
	if !ok {
		s.Promotion = PromotionStatus{Code: NormalizeCode(promoCode), Label: InvalidCodeLabel}
	} else {
		s.Promotion = PromotionStatus{Code: promo.Code, Applied: true, Kind: promo.Kind, Label: promo.Label}
		switch promo.Kind {
		case PercentageOff:
			s.Discount = promo.Value.Mul(subtotal).Round(centPlaces)
		case FixedAmountOff:
			s.Discount = decimal.Min(promo.Value, subtotal.Add(s.DeliveryFee))
		case FreeDelivery:
			s.DeliveryFee = decimal.Zero
			s.DeliveryWaived = true
		}
	}

	s.GrandTotal = decimal.Max(decimal.Zero, subtotal.Add(s.DeliveryFee).Sub(s.Discount))
	return s
}
