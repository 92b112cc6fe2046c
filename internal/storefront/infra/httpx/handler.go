package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/food-storefront/internal/ordering"
	"github.com/jcmexdev/food-storefront/internal/session"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/food-storefront/internal/storefront/infra/httpx/middlewares"
)

// Handler serves the storefront HTTP API.
type Handler struct {
	svc ports.Storefront
}

func NewHandler(svc ports.Storefront) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListMenu returns the catalog, filtered by the optional category query.
func (h *Handler) ListMenu(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mapMenuItems(h.svc.Menu(r.URL.Query().Get("category"))))
}

func (h *Handler) ListCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Categories())
}

func (h *Handler) ListZones(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, mapZones(h.svc.Zones()))
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	sid := middlewares.SessionIDFromContext(r.Context())
	view, err := h.svc.Cart(r.Context(), sid)
	h.respondCart(w, r, sid, view, err)
}

func (h *Handler) GetCartCount(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Cart(r.Context(), middlewares.SessionIDFromContext(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CartCountResponse{Count: view.ItemCount, HasItems: view.HasItems})
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	sid := middlewares.SessionIDFromContext(r.Context())
	view, err := h.svc.AddItem(r.Context(), sid, chi.URLParam(r, "id"))
	h.respondCart(w, r, sid, view, err)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sid := middlewares.SessionIDFromContext(r.Context())
	view, err := h.svc.RemoveItem(r.Context(), sid, chi.URLParam(r, "id"))
	h.respondCart(w, r, sid, view, err)
}

// SetQuantity stores the given quantity; zero or negative removes the item.
func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req SetQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Quantity == nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "quantity is required")
		return
	}

	sid := middlewares.SessionIDFromContext(r.Context())
	view, err := h.svc.SetQuantity(r.Context(), sid, chi.URLParam(r, "id"), *req.Quantity)
	h.respondCart(w, r, sid, view, err)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sid := middlewares.SessionIDFromContext(r.Context())
	view, err := h.svc.ClearCart(r.Context(), sid)
	h.respondCart(w, r, sid, view, err)
}

// GetSummary prices the cart for ?zone= and ?promo=. An unknown promo is
// not an error; it is reported in the promotion block.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	summary, err := h.svc.Summary(r.Context(), middlewares.SessionIDFromContext(r.Context()), q.Get("zone"), q.Get("promo"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSummary(summary))
}

// PlaceOrder checks out the session's cart. A replayed idempotency key
// returns the original order with 200 instead of 201.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	ctx := r.Context()
	in := domain.PlaceOrderInput{
		SessionID: middlewares.SessionIDFromContext(ctx),
		Zone:      req.Zone,
		PromoCode: req.PromoCode,
		Details: ordering.DeliveryDetails{
			FullName: req.FullName,
			Phone:    req.Phone,
			Email:    req.Email,
			Address:  req.Address,
		},
		Payment:        req.PaymentMethod,
		IdempotencyKey: middlewares.IdempotencyKeyFromContext(ctx),
		RequestID:      middlewares.RequestIDFromContext(ctx),
	}

	order, replayed, err := h.svc.PlaceOrder(ctx, in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, mapOrderToResponse(order))
}

func (h *Handler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if strings.TrimSpace(orderID) == "" {
		writeError(w, http.StatusBadRequest, "order_id_required", "")
		return
	}

	order, err := h.svc.GetOrder(r.Context(), orderID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

func (h *Handler) GetPlacementLog(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if _, err := h.svc.GetOrder(r.Context(), orderID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	entries, err := h.svc.PlacementHistory(r.Context(), orderID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapPlacementLog(entries))
}

func (h *Handler) respondCart(w http.ResponseWriter, r *http.Request, sessionID string, view domain.CartView, err error) {
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(sessionID, view))
}

// writeServiceError maps domain errors to status codes. Anything unmapped
// is logged and reported as a 500 without internals.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ordering.ErrEmptyCart):
		writeError(w, http.StatusUnprocessableEntity, "empty_cart", err.Error())
	case errors.Is(err, ordering.ErrInvalidDetails):
		writeError(w, http.StatusUnprocessableEntity, "invalid_details", err.Error())
	case errors.Is(err, ordering.ErrNotFound):
		writeError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "session_not_found", err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middlewares.RequestIDFromContext(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "the request could not be completed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
