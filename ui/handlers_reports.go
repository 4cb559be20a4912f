package ui

import (
	"html/template"
	"net/http"
	"strings"

	"salondesk/app"
	"salondesk/domain/portal"

	"github.com/gin-gonic/gin"
)

// ReportsPage backs the Reports page
type ReportsPage struct {
	Report *app.Report
	HTML   template.HTML
}

// PortalPage backs the portal lookup page
type PortalPage struct {
	Term  string
	Table *portal.Table
}

func (s *Server) handleReports(c *gin.Context) {
	if s.needSheets(c, "reports") {
		return
	}
	report, err := s.svc.Analysis.Load(c.Request.Context(), sidebarFrom(c).Selected)
	if err != nil {
		s.renderError(c, "Reports", "reports", err)
		return
	}
	data := &ReportsPage{
		Report: report,
		// Markdown is generated from ticket counts and dates only
		HTML: template.HTML(app.RenderHTML(app.Markdown(report))),
	}
	s.renderTemplate(c, http.StatusOK, tmplReports, s.page(c, "Reports", "reports", data))
}

func (s *Server) handlePortal(c *gin.Context) {
	data := &PortalPage{Term: strings.TrimSpace(c.Query("q"))}
	p := s.page(c, "Portal Lookup", "portal", data)
	if data.Term == "" || s.svc.Portal == nil {
		if s.svc.Portal == nil {
			p.Warning = "Portal lookup is not configured."
		}
		s.renderTemplate(c, http.StatusOK, tmplPortal, p)
		return
	}

	table, err := s.svc.Portal.Lookup(c.Request.Context(), data.Term)
	if err != nil {
		p.Error = err.Error()
		s.renderTemplate(c, http.StatusOK, tmplPortal, p)
		return
	}
	data.Table = table
	s.renderTemplate(c, http.StatusOK, tmplPortal, p)
}

func (s *Server) handleClearCache(c *gin.Context) {
	if err := s.svc.Loader.ClearCache(c.Request.Context()); err != nil {
		s.renderError(c, "Clear cache", "", err)
		return
	}
	c.Redirect(http.StatusSeeOther, backTo(c, "/tickets/new"))
}
