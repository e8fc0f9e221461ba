/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request, echoed in the access log
  2. AccessLog:  One logrus entry per request
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the admin calendar

ROUTE GROUPS:
  /api/sites/*          Site catalog
  /api/availability     Availability resolver
  /api/bookings         Public booking submission
  /api/commitments/*    Reservation management
  /api/blocks/*         Blackout management
  /api/calendar         Admin timeline
  /api/scenarios/*      Demo scenarios
  /healthz              Liveness

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(AccessLog(h.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/sites", func(r chi.Router) {
			r.Get("/", h.ListSites)
			r.Post("/", h.SaveSite)
			r.Post("/{id}/deactivate", h.DeactivateSite)
		})
		r.Get("/site-types", h.ListSiteTypes)

		r.Get("/availability", h.GetAvailability)
		r.Post("/bookings", h.CreateBooking)

		r.Route("/commitments", func(r chi.Router) {
			r.Get("/", h.ListCommitments)
			r.Get("/{id}", h.GetCommitment)
			r.Post("/{id}/assign", h.AssignCommitment)
			r.Post("/{id}/move", h.MoveCommitment)
			r.Post("/{id}/validate", h.ValidateCommitmentMove)
			r.Post("/{id}/status", h.UpdateCommitmentStatus)
			r.Post("/{id}/archive", h.ArchiveCommitment)
		})

		r.Route("/blocks", func(r chi.Router) {
			r.Get("/", h.ListBlocks)
			r.Post("/", h.CreateBlock)
			r.Post("/{id}/move", h.MoveBlock)
			r.Delete("/{id}", h.DeleteBlock)
		})

		r.Get("/calendar", h.GetCalendar)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}

// AccessLog writes one entry per request with its id, status, size and latency.
func AccessLog(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.WithFields(logrus.Fields{
				"request_id":  middleware.GetReqID(r.Context()),
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
			}).Info("http request")
		})
	}
}
