// Package api exposes the marketplace over HTTP. Handlers stay thin:
// decode, call the service, map the error taxonomy onto status codes.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/eyabmansour/pfe-licence-api/internal/logger"
	"github.com/eyabmansour/pfe-licence-api/internal/services/catalog"
	"github.com/eyabmansour/pfe-licence-api/internal/services/discounts"
	"github.com/eyabmansour/pfe-licence-api/internal/services/orders"
	"github.com/eyabmansour/pfe-licence-api/internal/services/restaurants"
)

// Services bundles the domain services the router exposes.
type Services struct {
	Orders      *orders.Service
	Restaurants *restaurants.Service
	Discounts   *discounts.Service
	Catalog     *catalog.Service
	Users       Users
}

// NewRouter builds the HTTP surface.
func NewRouter(svcs Services, log *logger.Logger) http.Handler {
	oh := &orderHandlers{orders: svcs.Orders}
	rh := &restaurantHandlers{restaurants: svcs.Restaurants}
	dh := &discountHandlers{discounts: svcs.Discounts}
	ch := &catalogHandlers{catalog: svcs.Catalog}
	uh := &userHandlers{users: svcs.Users}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Account creation is the one endpoint with no caller yet.
	r.Post("/users", uh.create)

	r.Group(func(r chi.Router) {
		r.Use(requireCaller)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", oh.create)
			r.Get("/count", oh.countMine)
			r.Route("/{orderID}", func(r chi.Router) {
				r.Get("/", oh.get)
				r.Patch("/", oh.update)
				r.Post("/items", oh.addItems)
				r.Delete("/items", oh.removeItems)
				r.Patch("/status", oh.updateStatus)
				r.Patch("/payment", oh.updatePayment)
			})
		})

		r.Route("/restaurants", func(r chi.Router) {
			r.Post("/", rh.register)
			r.Get("/", rh.listOwned)
			r.Route("/{restaurantID}", func(r chi.Router) {
				r.Patch("/", rh.update)
				r.Delete("/", rh.delete)
				r.Post("/requests", rh.submitRequest)
				r.Post("/switch", rh.switchRestaurant)
				r.Post("/menu", ch.createItem)
				r.Get("/menu", ch.listItems)
			})
		})

		r.Get("/users/{userID}", uh.get)

		r.Route("/restaurant-requests", func(r chi.Router) {
			r.Get("/pending", rh.listPendingRequests)
			r.Patch("/{requestID}/status", rh.updateRequestStatus)
		})

		r.Route("/menu-items/{itemID}", func(r chi.Router) {
			r.Get("/", ch.getItem)
			r.Patch("/", ch.updateItem)
			r.Delete("/", ch.deleteItem)
		})

		r.Route("/discounts", func(r chi.Router) {
			r.Post("/", dh.create)
			r.Get("/", dh.list)
			r.Route("/{discountID}", func(r chi.Router) {
				r.Get("/", dh.get)
				r.Patch("/", dh.update)
				r.Delete("/", dh.delete)
				r.Post("/apply/{restaurantID}", dh.applyToRestaurant)
			})
		})
	})

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "X-User-ID"},
	}).Handler(r)
}
