// Package metrics registers the Prometheus collectors of the CRM
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultSkipped = "skipped"
	ResultHit     = "hit"
	ResultMiss    = "miss"
	ResultPartial = "partial"
)

// Update target label values
const (
	TargetLocal = "local"
	TargetSheet = "sheet"
)

var (
	TicketsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_tickets_created_total",
			Help: "Tickets logged through the New Ticket form or API",
		},
	)

	TicketUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_ticket_updates_total",
			Help: "Ticket edits by storage target",
		},
		[]string{"target"},
	)

	SheetTabsLoaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_sheet_tabs_loaded_total",
			Help: "Report tabs read, by outcome",
		},
		[]string{"result"},
	)

	SheetLoadSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crm_sheet_load_seconds",
			Help:    "Wall time of a full report sheet load",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		},
	)

	ReconcileRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_reconcile_runs_total",
			Help: "Reconcile runs by outcome",
		},
		[]string{"result"},
	)

	PortalLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_portal_lookups_total",
			Help: "Portal bot lookups by outcome",
		},
		[]string{"result"},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_cache_requests_total",
			Help: "Loaded-sheet cache lookups by outcome",
		},
		[]string{"result"},
	)
)

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
