package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/food-storefront/internal/storefront/infra/httpx/middlewares"
)

func NewRouter(handler *Handler, sessions middlewares.SessionOpener) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachTracingMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", handler.Health)
	r.Get("/menu", handler.ListMenu)
	r.Get("/menu/categories", handler.ListCategories)
	r.Get("/zones", handler.ListZones)
	r.Get("/orders/{id}", handler.GetOrderByID)
	r.Get("/orders/{id}/log", handler.GetPlacementLog)

	r.Group(func(r chi.Router) {
		r.Use(middlewares.Session(sessions))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", handler.GetCart)
			r.Delete("/", handler.ClearCart)
			r.Get("/count", handler.GetCartCount)
			r.Get("/summary", handler.GetSummary)
			r.Post("/items/{id}", handler.AddItem)
			r.Delete("/items/{id}", handler.RemoveItem)
			r.Put("/items/{id}", handler.SetQuantity)
		})
		r.Post("/orders", handler.PlaceOrder)
	})
	return r
}
