package checkout

import (
	"strings"

	"github.com/shopspring/decimal"
)

// EffectKind is what a promotion does to an order.
type EffectKind int

const (
	PercentageOff EffectKind = iota + 1
	FixedAmountOff
	FreeDelivery
)

func (k EffectKind) String() string {
	switch k {
	case PercentageOff:
		return "percentage_off"
	case FixedAmountOff:
		return "fixed_amount_off"
	case FreeDelivery:
		return "free_delivery"
	default:
		return "unknown"
	}
}

// Promotion maps a code to an effect. Value is the fraction for
// PercentageOff and the amount for FixedAmountOff; FreeDelivery ignores it.
type Promotion struct {
	Code  string
	Kind  EffectKind
	Value decimal.Decimal
	Label string
}

// InvalidCodeLabel is shown when a code does not match any promotion.
const InvalidCodeLabel = "Invalid code"

func DefaultPromotions() []Promotion {
	return []Promotion{
		{Code: "SAVE10", Kind: PercentageOff, Value: decimal.RequireFromString("0.10"), Label: "SAVE10 (10% OFF)"},
		{Code: "FLAT5", Kind: FixedAmountOff, Value: decimal.RequireFromString("5"), Label: "FLAT5 ($5 OFF)"},
		{Code: "FREESHIP", Kind: FreeDelivery, Label: "FREESHIP (Free delivery)"},
	}
}

// NormalizeCode trims and uppercases entered promo text.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type PromotionRegistry struct {
	byCode map[string]Promotion
}

func NewPromotionRegistry(promos []Promotion) *PromotionRegistry {
	r := &PromotionRegistry{byCode: make(map[string]Promotion, len(promos))}
	for _, p := range promos {
		p.Code = NormalizeCode(p.Code)
		if p.Label == "" {
			p.Label = p.Code
		}
		r.byCode[p.Code] = p
	}
	return r
}

// Lookup normalizes code before matching. An empty code never matches.
func (r *PromotionRegistry) Lookup(code string) (Promotion, bool) {
	code = NormalizeCode(code)
	if code == "" {
		return Promotion{}, false
	}
	p, ok := r.byCode[code]
	return p, ok
}
