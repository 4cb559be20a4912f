package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"salondesk/adapters/excel"
	"salondesk/app"
	"salondesk/domain/ticket"
	"salondesk/internal/errors"

	"github.com/go-chi/chi/v5"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[API] request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: errors.GetCode(err)})
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.InvalidInput("malformed JSON body: " + err.Error())
	}
	return nil
}

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *Router) handleSearchTickets(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	sheets := SheetsFrom(q, r.svc.DefaultSheets)
	kind := ticket.ParseSearchKind(q.Get("kind"))

	results, err := r.svc.Search.Search(req.Context(), q.Get("q"), kind, sheets)
	if err != nil {
		writeError(w, err)
		return
	}
	if results == nil {
		results = []app.SearchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(results),
		"results": results,
	})
}

func (r *Router) handleCreateTicket(w http.ResponseWriter, req *http.Request) {
	var in ticket.NewTicketInput
	if err := decodeJSON(req, &in); err != nil {
		writeError(w, err)
		return
	}
	created, err := r.svc.Tickets.Create(req.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/tickets/"+created.Ref().String())
	writeJSON(w, http.StatusCreated, created)
}

func (r *Router) handleGetTicket(w http.ResponseWriter, req *http.Request) {
	ref, err := ticket.ParseRef(chi.URLParam(req, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	t, err := r.svc.Tickets.Get(req.Context(), ref)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (r *Router) handleUpdateTicket(w http.ResponseWriter, req *http.Request) {
	ref, err := ticket.ParseRef(chi.URLParam(req, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	current, err := r.svc.Tickets.Get(req.Context(), ref)
	if err != nil {
		writeError(w, err)
		return
	}
	// fields absent from the body keep their current value
	in := ticket.UpdateInputFrom(*current)
	if err := decodeJSON(req, &in); err != nil {
		writeError(w, err)
		return
	}
	updated, err := r.svc.Tickets.Update(req.Context(), ref, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (r *Router) loadDashboard(req *http.Request) (*app.Dashboard, error) {
	q := req.URL.Query()
	filter, err := FilterFrom(q)
	if err != nil {
		return nil, err
	}
	return r.svc.Dashboard.Load(req.Context(), SheetsFrom(q, r.svc.DefaultSheets), filter, r.svc.Now())
}

func (r *Router) handleDashboard(w http.ResponseWriter, req *http.Request) {
	d, err := r.loadDashboard(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (r *Router) handleDashboardExport(w http.ResponseWriter, req *http.Request) {
	d, err := r.loadDashboard(req)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", app.ExportFileName(r.svc.Now())))
	if err := excel.WriteCSV(w, d.Columns, d.Rows()); err != nil {
		log.Printf("[API] dashboard export failed: %v", err)
	}
}

func (r *Router) handleAnalysis(w http.ResponseWriter, req *http.Request) {
	report, err := r.svc.Analysis.Load(req.Context(), SheetsFrom(req.URL.Query(), r.svc.DefaultSheets))
	if err != nil {
		writeError(w, err)
		return
	}
	if strings.Contains(req.Header.Get("Accept"), "text/markdown") {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		fmt.Fprint(w, app.Markdown(report))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (r *Router) handleGetSalon(w http.ResponseWriter, req *http.Request) {
	salon, err := r.svc.Salons.GetByCID(req.Context(), chi.URLParam(req, "cid"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, salon)
}

func (r *Router) handleClearCache(w http.ResponseWriter, req *http.Request) {
	if err := r.svc.Loader.ClearCache(req.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) handleReconcile(w http.ResponseWriter, req *http.Request) {
	if r.svc.Reconcile == nil {
		writeError(w, errors.ConfigInvalid("reconcile is not configured"))
		return
	}
	run, err := r.svc.Reconcile.Run(req.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (r *Router) handleLatestRun(w http.ResponseWriter, req *http.Request) {
	if r.svc.Reconcile == nil {
		writeError(w, errors.ConfigInvalid("reconcile is not configured"))
		return
	}
	run, err := r.svc.Reconcile.LatestRun(req.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if run == nil {
		writeError(w, errors.NotFound("reconcile run"))
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (r *Router) handlePortalLookup(w http.ResponseWriter, req *http.Request) {
	if r.svc.Portal == nil {
		writeError(w, errors.ConfigInvalid("portal lookup is not configured"))
		return
	}
	table, err := r.svc.Portal.Lookup(req.Context(), req.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}
