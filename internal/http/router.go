package http

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/safehaven/server/internal/auth"
	"github.com/safehaven/server/internal/http/handlers"
	"github.com/safehaven/server/internal/middleware"
)

// Handlers bundles the endpoint handlers wired into the router.
type Handlers struct {
	Alerts    *handlers.AlertHandler
	CheckIns  *handlers.CheckInHandler
	Contacts  *handlers.ContactHandler
	Reports   *handlers.ReportHandler
	SafeZones *handlers.SafeZoneHandler
	Profile   *handlers.ProfileHandler
}

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(h Handlers, jwtService *auth.JWTService) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	healthHandler := handlers.NewHealthHandler()
	r.Get("/health", healthHandler.ServeHTTP)

	// Protected routes (require valid JWT from the identity provider)
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(jwtService))

		r.Get("/me", h.Profile.HandleGet)
		r.Put("/me", h.Profile.HandleSave)

		r.Route("/alerts", func(r chi.Router) {
			r.Post("/activate", h.Alerts.HandleActivate)
			r.Get("/active", h.Alerts.HandleActive)
			r.Post("/{id}/resolve", h.Alerts.HandleResolve)
			r.Post("/{id}/false_alarm", h.Alerts.HandleFalseAlarm)
		})

		r.Route("/check_ins", func(r chi.Router) {
			r.Post("/", h.CheckIns.HandleCreate)
			r.Get("/", h.CheckIns.HandleList)
			r.Post("/{id}/complete", h.CheckIns.HandleComplete)
			r.Post("/{id}/cancel", h.CheckIns.HandleCancel)
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Post("/", h.Contacts.HandleCreate)
			r.Get("/", h.Contacts.HandleList)
			r.Patch("/{id}/active", h.Contacts.HandleSetActive)
			r.Delete("/{id}", h.Contacts.HandleDelete)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Post("/", h.Reports.HandleSubmit)
			r.Get("/", h.Reports.HandleList)
		})

		r.Get("/safe_zones", h.SafeZones.HandleList)
	})

	return r
}
