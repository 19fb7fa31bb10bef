package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/eventhub/internal/metrics"
	"github.com/Shivanand-hulikatti/eventhub/internal/store"
)

// NewRouter builds the chi router with the global middleware stack and every
// API route. /metrics serves the collectors registered with g.
func NewRouter(h *Handler, st *store.Store, m *metrics.Metrics, g prometheus.Gatherer, log logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(log))             // structured access log
	r.Use(CORS)                    // permissive CORS for the SPA
	r.Use(Instrument(m))

	r.Get("/health", HealthCheck)
	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(StoreScope(st))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/signup", h.Signup)
			r.Post("/logout", h.Logout)
		})

		r.Get("/me", h.Me)
		r.Patch("/me", h.UpdateMe)

		r.Route("/events", func(r chi.Router) {
			r.Get("/", h.ListEvents)
			r.Post("/", h.CreateEvent)
			r.Get("/{id}", h.GetEvent)
			r.Patch("/{id}", h.UpdateEvent)
			r.Delete("/{id}", h.DeleteEvent)
			r.Get("/{id}/bookings", h.EventBookings)
			r.Post("/{id}/book", h.Book)
		})

		r.Get("/bookings", h.ListBookings)
		r.Delete("/bookings/{id}", h.CancelBooking)

		r.Get("/wishlist", h.ListWishlist)
		r.Post("/wishlist/{id}/toggle", h.ToggleWishlist)

		r.Get("/organizer/stats", h.OrganizerStats)
		r.Get("/state", h.State)
	})

	return r
}
