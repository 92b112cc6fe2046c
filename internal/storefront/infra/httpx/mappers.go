package httpx

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/food-storefront/internal/cart"
	"github.com/jcmexdev/food-storefront/internal/catalog"
	"github.com/jcmexdev/food-storefront/internal/checkout"
	"github.com/jcmexdev/food-storefront/internal/coordinator/placementlog"
	"github.com/jcmexdev/food-storefront/internal/ordering"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain"
)

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func timestamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func mapMenuItems(items []catalog.MenuItem) []MenuItemResponse {
	out := make([]MenuItemResponse, len(items))
	for i, it := range items {
		out[i] = MenuItemResponse{
			ID:          it.ID,
			Name:        it.Name,
			Price:       money(it.Price),
			Category:    it.Category,
			Description: it.Description,
			Image:       it.Image,
		}
	}
	return out
}

func mapZones(zones []checkout.Zone) []ZoneResponse {
	out := make([]ZoneResponse, len(zones))
	for i, z := range zones {
		out[i] = ZoneResponse{Name: z.Name, Fee: money(z.Fee)}
	}
	return out
}

func mapCartLines(lines []cart.Line) []CartLineResponse {
	out := make([]CartLineResponse, len(lines))
	for i, l := range lines {
		out[i] = CartLineResponse{
			ItemID:    l.Item.ID,
			Name:      l.Item.Name,
			UnitPrice: money(l.Item.Price),
			Quantity:  l.Quantity,
			LineTotal: money(l.Total()),
		}
	}
	return out
}

func mapCart(sessionID string, v domain.CartView) CartResponse {
	return CartResponse{
		SessionID: sessionID,
		Lines:     mapCartLines(v.Lines),
		ItemCount: v.ItemCount,
		Amount:    money(v.Amount),
		HasItems:  v.HasItems,
	}
}

func mapSummary(s checkout.OrderSummary) SummaryResponse {
	promo := PromotionResponse{
		Code:    s.Promotion.Code,
		Applied: s.Promotion.Applied,
		Label:   s.Promotion.Label,
	}
	if s.Promotion.Applied {
		promo.Effect = s.Promotion.Kind.String()
	}
	return SummaryResponse{
		Lines:              mapCartLines(s.Lines),
		ItemCount:          s.ItemCount,
		Subtotal:           money(s.Subtotal),
		Zone:               s.Zone,
		NominalDeliveryFee: money(s.NominalDeliveryFee),
		DeliveryFee:        money(s.DeliveryFee),
		DeliveryWaived:     s.DeliveryWaived,
		Discount:           money(s.Discount),
		GrandTotal:         money(s.GrandTotal),
		Promotion:          promo,
	}
}

func mapOrderToResponse(o *ordering.Order) OrderResponse {
	lines := make([]OrderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = OrderLineResponse{
			ItemID:    l.ItemID,
			Name:      l.Name,
			UnitPrice: money(l.UnitPrice),
			Quantity:  l.Quantity,
			LineTotal: money(l.Subtotal()),
		}
	}

	resp := OrderResponse{
		ID:            o.ID,
		Number:        o.Number,
		Status:        string(o.Status),
		Lines:         lines,
		ItemCount:     o.ItemCount(),
		Zone:          o.Zone,
		PromoCode:     o.PromoCode,
		Subtotal:      money(o.Subtotal),
		DeliveryFee:   money(o.DeliveryFee),
		Discount:      money(o.Discount),
		Total:         money(o.Total),
		PaymentMethod: string(o.Payment),
		Delivery: DeliveryResponse{
			FullName: o.Details.FullName,
			Phone:    o.Details.Phone,
			Email:    o.Details.Email,
			Address:  o.Details.Address,
		},
		CreatedAt: timestamp(o.CreatedAt),
		UpdatedAt: timestamp(o.UpdatedAt),
	}
	if o.Status == ordering.StatusConfirmed {
		resp.EstimatedDelivery = ordering.EstimatedDelivery
	}
	return resp
}

func mapPlacementLog(entries []placementlog.Entry) []PlacementLogResponse {
	out := make([]PlacementLogResponse, len(entries))
	for i, e := range entries {
		out[i] = PlacementLogResponse{
			Status:     string(e.Status),
			Step:       e.Step,
			Errors:     e.Errors,
			TraceID:    e.TraceID,
			SpanID:     e.SpanID,
			RecordedAt: e.RecordedAt.UTC().Format(time.RFC3339Nano),
		}
	}
	return out
}
