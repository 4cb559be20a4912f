// Package api serves the CRM over a JSON HTTP API and streams ticket events
package api

import (
	"net/http"
	"time"

	"salondesk/app"
	"salondesk/internal/metrics"
	"salondesk/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Services are the application services the API exposes
type Services struct {
	Tickets   *app.TicketService
	Search    *app.SearchService
	Dashboard *app.DashboardService
	Analysis  *app.AnalysisService
	Loader    *app.LoaderService
	Reconcile *app.ReconcileService
	Salons    ports.SalonRepository
	Portal    ports.PortalScraper
	Events    *EventHub

	// DefaultSheets are read when a request names none
	DefaultSheets []string
	Metrics       bool
	Now           func() time.Time
}

// Router is the chi router of the JSON API
type Router struct {
	mux *chi.Mux
	svc Services
}

// NewRouter builds the API routes
func NewRouter(svc Services) *Router {
	if svc.Now == nil {
		svc.Now = time.Now
	}
	r := &Router{mux: chi.NewRouter(), svc: svc}
	r.setupMiddleware()
	r.setupRoutes()
	return r
}

func (r *Router) setupMiddleware() {
	r.mux.Use(middleware.RequestID)
	r.mux.Use(middleware.Logger)
	r.mux.Use(middleware.Recoverer)
}

func (r *Router) setupRoutes() {
	r.mux.Get("/healthz", r.handleHealth)

	r.mux.Route("/api", func(api chi.Router) {
		api.Get("/tickets", r.handleSearchTickets)
		api.Post("/tickets", r.handleCreateTicket)
		api.Get("/tickets/{id}", r.handleGetTicket)
		api.Patch("/tickets/{id}", r.handleUpdateTicket)

		api.With(middleware.Compress(5)).Get("/dashboard", r.handleDashboard)
		api.Get("/dashboard/export.csv", r.handleDashboardExport)
		api.Get("/analysis", r.handleAnalysis)

		api.Get("/salons/{cid}", r.handleGetSalon)
		api.Post("/cache/clear", r.handleClearCache)
		api.Post("/reconcile", r.handleReconcile)
		api.Get("/reconcile/latest", r.handleLatestRun)
		api.Get("/portal", r.handlePortalLookup)
	})

	if r.svc.Events != nil {
		r.mux.Handle("/events", r.svc.Events)
	}
	if r.svc.Metrics {
		r.mux.Handle("/metrics", metrics.Handler())
	}
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}
