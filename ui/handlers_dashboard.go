package ui

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"salondesk/adapters/excel"
	"salondesk/app"
	"salondesk/internal/api"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ManagerPage backs the manager dashboard
type ManagerPage struct {
	Dashboard *app.Dashboard
	Rows      [][]string
	Query     template.URL // filter parameters for export links
}

func (s *Server) handleDashboard(c *gin.Context) {
	sb := sidebarFrom(c)
	if !sb.Manager {
		p := s.page(c, "Dashboard", "dashboard", nil)
		p.Warning = s.opts.MaintenanceNote
		s.renderTemplate(c, http.StatusOK, tmplDashboard, p)
		return
	}
	if s.needSheets(c, "dashboard") {
		return
	}

	d, err := s.loadDashboard(c)
	if err != nil {
		s.renderError(c, "Manager Dashboard", "dashboard", err)
		return
	}
	data := &ManagerPage{Dashboard: d, Rows: d.Rows(), Query: template.URL(c.Request.URL.RawQuery)}
	p := s.page(c, "Manager Dashboard", "dashboard", data)
	if d.Empty {
		p.Warning = d.Hint
	}
	s.renderTemplate(c, http.StatusOK, tmplManager, p)
}

func (s *Server) loadDashboard(c *gin.Context) (*app.Dashboard, error) {
	filter, err := api.FilterFrom(c.Request.URL.Query())
	if err != nil {
		return nil, err
	}
	return s.svc.Dashboard.Load(c.Request.Context(), sidebarFrom(c).Selected, filter, s.svc.Now())
}

func (s *Server) handleExportCSV(c *gin.Context) {
	d, err := s.loadDashboard(c)
	if err != nil {
		s.renderError(c, "Export", "dashboard", err)
		return
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", app.ExportFileName(s.svc.Now())))
	c.Status(http.StatusOK)
	// BOM so Excel opens Vietnamese names correctly
	c.Writer.WriteString("\ufeff")
	if err := excel.WriteCSV(c.Writer, d.Columns, d.Rows()); err != nil {
		c.Error(err)
	}
}

func (s *Server) handleExportXLSX(c *gin.Context) {
	d, err := s.loadDashboard(c)
	if err != nil {
		s.renderError(c, "Export", "dashboard", err)
		return
	}
	name := strings.TrimSuffix(app.ExportFileName(s.svc.Now()), ".csv") + ".xlsx"
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Status(http.StatusOK)
	if err := excel.ExportTickets(c.Writer, d.Detail, d.Columns); err != nil {
		c.Error(err)
	}
}

func (s *Server) handleLoginPage(c *gin.Context) {
	s.renderTemplate(c, http.StatusOK, tmplLogin, s.page(c, "Manager Login", "dashboard", nil))
}

func (s *Server) handleLogin(c *gin.Context) {
	if c.PostForm("password") != s.opts.ManagerPassword || s.opts.ManagerPassword == "" {
		p := s.page(c, "Manager Login", "dashboard", nil)
		p.Error = "Wrong password."
		s.renderTemplate(c, http.StatusUnauthorized, tmplLogin, p)
		return
	}
	s.startManagerSession(c)
	c.Redirect(http.StatusSeeOther, sidebarFrom(c).Link("/dashboard"))
}

func (s *Server) handleLogout(c *gin.Context) {
	s.endManagerSession(c)
	c.Redirect(http.StatusSeeOther, sidebarFrom(c).Link("/dashboard"))
}
