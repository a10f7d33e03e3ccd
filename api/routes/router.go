package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ticketehq/inventory-sync/api/controllers"
	"github.com/ticketehq/inventory-sync/api/middleware"
	"github.com/ticketehq/inventory-sync/internal/inventory"
	"github.com/ticketehq/inventory-sync/pkg/config"
	"github.com/ticketehq/inventory-sync/pkg/logger"
)

// NewRouter wires the read API: health probes plus the experience
// availability views.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	querySvc *inventory.Query,
	readiness map[string]controllers.Pinger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	r.Route("/api/v1/experience/{id}", func(r chi.Router) {
		r.Get("/slots", controllers.ExperienceSlots(querySvc, logg))
		r.Get("/dates", controllers.ExperienceDates(querySvc, logg))
	})

	return r
}
