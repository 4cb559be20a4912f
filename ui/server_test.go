package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"salondesk/adapters/cache"
	"salondesk/adapters/excel"
	"salondesk/adapters/sqlstore"
	"salondesk/app"
	"salondesk/internal/api"
	"salondesk/internal/migration"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "s3cret"

var fixedNow = time.Date(2026, 1, 20, 15, 4, 5, 0, time.Local)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ctx := context.Background()

	db, err := sqlstore.Open(ctx, "sqlite3", filepath.Join(t.TempDir(), "ui_test.db"), sqlstore.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migration.NewRunner().Run(ctx, db))

	tickets := sqlstore.NewTicketRepository(db)
	source := excel.NewSource(t.TempDir())
	index := app.NewIndexHolder()
	loader := app.NewLoaderService(source, cache.NewMemory(), index, app.LoaderConfig{TTL: time.Minute})
	catalog := app.NewCatalog(loader, tickets, index)

	srv, err := NewServer(api.Services{
		Tickets:   app.NewTicketService(tickets, loader, excel.NewWriter(source), nil),
		Search:    app.NewSearchService(catalog),
		Dashboard: app.NewDashboardService(catalog),
		Analysis:  app.NewAnalysisService(catalog),
		Loader:    loader,
		Salons:    sqlstore.NewSalonRepository(db),
		Now:       func() time.Time { return fixedNow },
	}, Options{
		Sheets:          []string{"TOTAL REPORT 2025", "TOTAL REPORT 2026"},
		Agents:          []string{"Loan", "Giang"},
		ManagerPassword: testPassword,
		MaintenanceNote: "Dashboard is under maintenance.",
		GinMode:         gin.TestMode,
	})
	require.NoError(t, err)
	return srv
}

func get(t *testing.T, s *Server, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func post(t *testing.T, s *Server, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func ticketForm(salon string) url.Values {
	return url.Values{
		"date":       {"2026-01-20"},
		"agent_name": {"Loan"},
		"salon_name": {salon},
		"cid":        {"1001"},
		"phone":      {"7145550100"},
		"issue":      {"printer offline"},
		"status":     {"Pending"},
	}
}

func login(t *testing.T, s *Server) *http.Cookie {
	t.Helper()
	rec := post(t, s, "/manager/login", url.Values{"password": {testPassword}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == managerCookie {
			return c
		}
	}
	t.Fatal("no manager cookie set")
	return nil
}

func TestNewTicketFormListsAgents(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/tickets/new")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="Giang"`)
	assert.Contains(t, body, `value="2026-01-20"`)
	assert.Contains(t, body, `<option value="TOTAL REPORT 2026" selected>`)
}

func TestCreateTicketMissingFieldsWarns(t *testing.T) {
	s := newTestServer(t)
	form := ticketForm("")
	form.Del("phone")

	rec := post(t, s, "/tickets/new", form)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please fill in all required fields")
	assert.Contains(t, rec.Body.String(), "Salon_Name, Phone")
}

func TestCreateTicketThenSearchAndEdit(t *testing.T) {
	s := newTestServer(t)

	rec := post(t, s, "/tickets/new", ticketForm("Lux Nails"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/tickets/new?saved=1")

	var agent *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == agentCookie {
			agent = c
		}
	}
	require.NotNil(t, agent)
	assert.Equal(t, "Loan", agent.Value)

	rec = get(t, s, "/search?q=lux")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1 result(s)")
	assert.Contains(t, rec.Body.String(), "/tickets/1/edit?q=lux")

	rec = get(t, s, "/tickets/1/edit")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Lux Nails"`)

	rec = post(t, s, "/tickets/1/edit", url.Values{
		"status": {"done"}, "note": {"driver reinstalled"}, "salon_name": {"Lux Nails"},
		"phone": {"7145550100"}, "back": {"lux"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/search?updated=1&q=lux")

	rec = get(t, s, "/search?q=lux&updated=1")
	assert.Contains(t, rec.Body.String(), "Ticket updated.")
	assert.Contains(t, rec.Body.String(), "driver reinstalled")
}

func TestEditUnknownTicket(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/tickets/99/edit").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, s, "/tickets/nope/edit").Code)
}

func TestEmptySheetSelectionAsksForSheet(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/search?picked=1&q=lux")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Select at least one report sheet")
}

func TestDashboardRequiresManager(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dashboard is under maintenance.")

	rec = get(t, s, "/dashboard/export.csv")
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = post(t, s, "/manager/login", url.Values{"password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wrong password.")
}

func TestManagerDashboardAndExports(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusSeeOther, post(t, s, "/tickets/new", ticketForm("Lux Nails")).Code)
	require.Equal(t, http.StatusSeeOther, post(t, s, "/tickets/new", ticketForm("Happy Spa")).Code)
	manager := login(t, s)

	rec := get(t, s, "/dashboard", manager)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Manager Dashboard")
	assert.Contains(t, body, "Tickets in range")
	assert.Contains(t, body, "Happy Spa")

	rec = get(t, s, "/dashboard/export.csv", manager)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\ufeffDate,Agent_Name,Salon_Name"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "admin_dashboard_export_20260120_150405.csv")

	rec = get(t, s, "/dashboard/export.xlsx", manager)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"))

	rec = post(t, s, "/manager/logout", nil, manager)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	rec = get(t, s, "/dashboard", manager)
	assert.Contains(t, rec.Body.String(), "Dashboard is under maintenance.")
}

func TestReportsPage(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusSeeOther, post(t, s, "/tickets/new", ticketForm("Lux Nails")).Code)

	rec := get(t, s, "/reports")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ticket analysis</h1>")
}

func TestPortalNotConfigured(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/portal?q=1001")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Portal lookup is not configured.")
}

func TestClearCacheRedirectsBack(t *testing.T) {
	s := newTestServer(t)
	rec := post(t, s, "/cache/clear", url.Values{"back": {"/search?q=lux"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/search?q=lux", rec.Header().Get("Location"))

	rec = post(t, s, "/cache/clear", url.Values{"back": {"//evil.example.com"}})
	assert.Equal(t, "/tickets/new?sheet=TOTAL+REPORT+2026", rec.Header().Get("Location"))
}
