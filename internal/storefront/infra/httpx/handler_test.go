package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/food-storefront/internal/catalog"
	"github.com/jcmexdev/food-storefront/internal/coordinator/placementlog"
	"github.com/jcmexdev/food-storefront/internal/ordering"
	"github.com/jcmexdev/food-storefront/internal/pkg/cache"
	"github.com/jcmexdev/food-storefront/internal/session"
	"github.com/jcmexdev/food-storefront/internal/storefront/app"
	"github.com/jcmexdev/food-storefront/internal/storefront/infra/httpx/middlewares"
)

type client struct {
	t       *testing.T
	server  http.Handler
	session string
}

func newClient(t *testing.T) *client {
	t.Helper()
	menu, err := catalog.Load(context.Background(), catalog.EmbeddedSource{})
	require.NoError(t, err)

	svc := app.NewService(app.Options{
		Catalog:        menu,
		Sessions:       session.NewRegistry(time.Hour),
		Orders:         ordering.NewMemoryRepository(),
		Journal:        placementlog.NewMemoryRepository(),
		Cache:          cache.NewMemoryCache("storefront"),
		IdempotencyTTL: time.Hour,
	})
	return &client{t: t, server: NewRouter(NewHandler(svc), svc)}
}

func (c *client) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if c.session != "" {
		req.Header.Set(middlewares.HeaderXSessionId, c.session)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	c.server.ServeHTTP(rec, req)
	if sid := rec.Header().Get(middlewares.HeaderXSessionId); sid != "" {
		c.session = sid
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndMenu(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middlewares.HeaderXRequestId))

	rec = c.do(http.MethodGet, "/menu", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[[]MenuItemResponse](t, rec)
	assert.Len(t, all, 20)
	assert.Equal(t, "12.00", all[0].Price)

	rec = c.do(http.MethodGet, "/menu?category=Pasta", nil)
	pasta := decode[[]MenuItemResponse](t, rec)
	require.Len(t, pasta, 2)
	assert.Equal(t, "Cheese pasta", pasta[0].Name)

	rec = c.do(http.MethodGet, "/menu/categories", nil)
	cats := decode[[]string](t, rec)
	assert.Equal(t, "Salad", cats[0])

	rec = c.do(http.MethodGet, "/zones", nil)
	zones := decode[[]ZoneResponse](t, rec)
	require.Len(t, zones, 4)
	assert.Equal(t, ZoneResponse{Name: "Downtown", Fee: "2.99"}, zones[0])
}

func TestSessionIssuedAndReused(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sid := rec.Header().Get(middlewares.HeaderXSessionId)
	require.NotEmpty(t, sid)

	var cookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middlewares.SessionCookieName {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, sid, cookie.Value)

	rec = c.do(http.MethodPost, "/cart/items/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sid, rec.Header().Get(middlewares.HeaderXSessionId))

	req := httptest.NewRequest(http.MethodGet, "/cart/count", nil)
	req.AddCookie(&http.Cookie{Name: middlewares.SessionCookieName, Value: sid})
	rr := httptest.NewRecorder()
	c.server.ServeHTTP(rr, req)
	count := decode[CartCountResponse](t, rr)
	assert.Equal(t, 1, count.Count)
	assert.True(t, count.HasItems)
}

func TestCartMutations(t *testing.T) {
	c := newClient(t)

	c.do(http.MethodPost, "/cart/items/13", nil)
	c.do(http.MethodPost, "/cart/items/1", nil)
	rec := c.do(http.MethodPost, "/cart/items/1", nil)
	cartResp := decode[CartResponse](t, rec)
	require.Len(t, cartResp.Lines, 2)
	assert.Equal(t, "1", cartResp.Lines[0].ItemID)
	assert.Equal(t, "24.00", cartResp.Lines[0].LineTotal)
	assert.Equal(t, 3, cartResp.ItemCount)
	assert.Equal(t, "38.00", cartResp.Amount)

	rec = c.do(http.MethodPut, "/cart/items/13", map[string]int{"quantity": 4})
	cartResp = decode[CartResponse](t, rec)
	assert.Equal(t, 6, cartResp.ItemCount)

	rec = c.do(http.MethodPut, "/cart/items/13", map[string]int{"quantity": 0})
	cartResp = decode[CartResponse](t, rec)
	assert.Len(t, cartResp.Lines, 1)

	rec = c.do(http.MethodDelete, "/cart/items/1", nil)
	cartResp = decode[CartResponse](t, rec)
	assert.Equal(t, 1, cartResp.ItemCount)

	c.do(http.MethodDelete, "/cart/items/1", nil)
	rec = c.do(http.MethodDelete, "/cart/items/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cartResp = decode[CartResponse](t, rec)
	assert.Zero(t, cartResp.ItemCount)
	assert.False(t, cartResp.HasItems)
	assert.Equal(t, "0.00", cartResp.Amount)

	c.do(http.MethodPost, "/cart/items/2", nil)
	rec = c.do(http.MethodDelete, "/cart", nil)
	cartResp = decode[CartResponse](t, rec)
	assert.Empty(t, cartResp.Lines)
}

func TestSetQuantityValidation(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodPut, "/cart/items/1", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decode[ErrorResponse](t, rec).Error)

	req := httptest.NewRequest(http.MethodPut, "/cart/items/1", bytes.NewBufferString("{"))
	rr := httptest.NewRecorder()
	c.server.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSummaryEndpoint(t *testing.T) {
	c := newClient(t)
	c.do(http.MethodPut, "/cart/items/1", map[string]int{"quantity": 2})

	rec := c.do(http.MethodGet, "/cart/summary?zone=Downtown&promo=save10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	s := decode[SummaryResponse](t, rec)
	assert.Equal(t, "24.00", s.Subtotal)
	assert.Equal(t, "2.99", s.DeliveryFee)
	assert.Equal(t, "2.40", s.Discount)
	assert.Equal(t, "24.59", s.GrandTotal)
	assert.True(t, s.Promotion.Applied)
	assert.Equal(t, "percentage_off", s.Promotion.Effect)

	rec = c.do(http.MethodGet, "/cart/summary?zone=Nowhere&promo=NOPE", nil)
	s = decode[SummaryResponse](t, rec)
	assert.Equal(t, "Other", s.Zone)
	assert.Equal(t, "Invalid code", s.Promotion.Label)
	assert.Equal(t, "29.99", s.GrandTotal)

	rec = c.do(http.MethodGet, "/cart/summary?zone=Outskirts&promo=FREESHIP", nil)
	s = decode[SummaryResponse](t, rec)
	assert.Equal(t, "0.00", s.DeliveryFee)
	assert.Equal(t, "7.99", s.NominalDeliveryFee)
	assert.True(t, s.DeliveryWaived)
}

func placeBody() PlaceOrderRequest {
	return PlaceOrderRequest{
		Zone:          "Suburbs",
		PromoCode:     "FLAT5",
		FullName:      "Asha Rao",
		Phone:         "9845012345",
		Email:         "asha@example.com",
		Address:       "12 MG Road",
		PaymentMethod: "cash",
	}
}

func TestPlaceOrderFlow(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodPost, "/orders", placeBody())
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "empty_cart", decode[ErrorResponse](t, rec).Error)

	c.do(http.MethodPost, "/cart/items/5", nil)

	bad := placeBody()
	bad.Address = ""
	rec = c.do(http.MethodPost, "/orders", bad)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "invalid_details", decode[ErrorResponse](t, rec).Error)

	rec = c.do(http.MethodPost, "/orders", placeBody(), middlewares.HeaderXIdempotencyKey, "key-1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[OrderResponse](t, rec)
	assert.Equal(t, "CONFIRMED", order.Status)
	assert.Len(t, order.Number, 9)
	assert.Equal(t, "14.00", order.Subtotal)
	assert.Equal(t, "4.99", order.DeliveryFee)
	assert.Equal(t, "5.00", order.Discount)
	assert.Equal(t, "13.99", order.Total)
	assert.Equal(t, "30-45 minutes", order.EstimatedDelivery)
	assert.Equal(t, "cash", order.PaymentMethod)

	count := decode[CartCountResponse](t, c.do(http.MethodGet, "/cart/count", nil))
	assert.Zero(t, count.Count)

	rec = c.do(http.MethodPost, "/orders", placeBody(), middlewares.HeaderXIdempotencyKey, "key-1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, order.ID, decode[OrderResponse](t, rec).ID)

	rec = c.do(http.MethodGet, "/orders/"+order.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, order.Number, decode[OrderResponse](t, rec).Number)

	rec = c.do(http.MethodGet, "/orders/"+order.ID+"/log", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	log := decode[[]PlacementLogResponse](t, rec)
	require.NotEmpty(t, log)
	assert.Equal(t, "STARTED", log[0].Status)
	assert.Equal(t, "COMPLETED", log[len(log)-1].Status)
}

func TestGetOrderNotFound(t *testing.T) {
	c := newClient(t)
	rec := c.do(http.MethodGet, "/orders/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "order_not_found", decode[ErrorResponse](t, rec).Error)

	rec = c.do(http.MethodGet, "/orders/does-not-exist/log", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
