package ui

import (
	"bytes"
	"log"
	"net/http"

	"salondesk/internal/errors"

	"github.com/gin-gonic/gin"
)

// Template names
const (
	tmplNewTicket   = "new_ticket.html"
	tmplSearch      = "search.html"
	tmplEditTicket  = "edit_ticket.html"
	tmplDashboard   = "dashboard.html"
	tmplManager     = "manager.html"
	tmplLogin       = "login.html"
	tmplReports     = "reports.html"
	tmplPortal      = "portal.html"
	tmplSelectSheet = "select_sheet.html"
	tmplError       = "error.html"
)

// Page is the data every template receives
type Page struct {
	Title   string
	Active  string
	Sidebar *Sidebar
	Path    string
	Flash   string
	Warning string
	Error   string
	Data    interface{}
}

func (s *Server) page(c *gin.Context, title, active string, data interface{}) *Page {
	return &Page{Title: title, Active: active, Sidebar: sidebarFrom(c), Path: c.Request.URL.RequestURI(), Data: data}
}

// renderTemplate executes a template with the given data
func (s *Server) renderTemplate(c *gin.Context, status int, templateName string, data interface{}) {
	// First render to a buffer to catch any errors before writing to response
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		log.Printf("Template error for %s: %v", templateName, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Template rendering failed", "details": err.Error()})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(status)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		log.Printf("Error writing template response: %v", err)
	}
}

func (s *Server) renderError(c *gin.Context, title, active string, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[UI] %s failed: %v", title, err)
	}
	p := s.page(c, title, active, nil)
	p.Error = err.Error()
	s.renderTemplate(c, status, tmplError, p)
}

// needSheets renders the sheet picker when nothing is selected
func (s *Server) needSheets(c *gin.Context, active string) bool {
	if len(sidebarFrom(c).Selected) > 0 {
		return false
	}
	s.renderTemplate(c, http.StatusOK, tmplSelectSheet, s.page(c, "Select a sheet", active, nil))
	return true
}
