// Package ui serves the agent and manager web pages
package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"salondesk/internal/api"
	"salondesk/internal/metrics"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html static/*
var embeddedFiles embed.FS

// Options are the settings the pages need besides the services
type Options struct {
	Sheets          []string
	Agents          []string
	ManagerPassword string
	MaintenanceNote string
	GinMode         string
}

// Server represents the web server for the CRM pages
type Server struct {
	router    *gin.Engine
	templates *template.Template
	svc       api.Services
	opts      Options

	// manager sessions by cookie token
	sessionsMu sync.Mutex
	sessions   map[string]time.Time
}

// NewServer creates a new web server instance
func NewServer(svc api.Services, opts Options) (*Server, error) {
	if opts.GinMode != "" {
		gin.SetMode(opts.GinMode)
	}
	if svc.Now == nil {
		svc.Now = time.Now
	}
	if len(svc.DefaultSheets) == 0 && len(opts.Sheets) > 0 {
		svc.DefaultSheets = opts.Sheets[len(opts.Sheets)-1:]
	}

	s := &Server{
		router:   gin.New(),
		svc:      svc,
		opts:     opts,
		sessions: make(map[string]time.Time),
	}

	funcMap := template.FuncMap{
		"join":  strings.Join,
		"qs":    url.QueryEscape,
		"add":   func(a, b int) int { return a + b },
		"pct":   func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
		"hours": func(v float64) string { return fmt.Sprintf("%.1f", v) },
		"day": func(t interface{}) string {
			switch v := t.(type) {
			case time.Time:
				return v.Format(api.DateLayout)
			case *time.Time:
				if v != nil {
					return v.Format(api.DateLayout)
				}
			}
			return ""
		},
		"field": func(row []string, i int) string {
			if i < len(row) {
				return row[i]
			}
			return ""
		},
	}

	templatesFS, err := fs.Sub(embeddedFiles, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to create templates filesystem: %w", err)
	}
	s.templates, err = template.New("").Funcs(funcMap).ParseFS(templatesFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	log.Printf("[TemplateInit] parsed %d templates", len(s.templates.Templates()))

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger(), gin.Recovery())
	s.router.Use(s.sidebarMiddleware())

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		log.Printf("[setupMiddleware] Error creating static filesystem: %v", err)
		return
	}
	s.router.StaticFS("/static", http.FS(staticFS))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, sidebarFrom(c).Link("/tickets/new"))
	})

	s.router.GET("/tickets/new", s.handleNewTicket)
	s.router.POST("/tickets/new", s.handleCreateTicket)
	s.router.GET("/search", s.handleSearch)
	s.router.GET("/tickets/:ref/edit", s.handleEditTicket)
	s.router.POST("/tickets/:ref/edit", s.handleUpdateTicket)

	s.router.GET("/dashboard", s.handleDashboard)
	s.router.GET("/dashboard/export.csv", s.requireManager, s.handleExportCSV)
	s.router.GET("/dashboard/export.xlsx", s.requireManager, s.handleExportXLSX)

	s.router.GET("/manager/login", s.handleLoginPage)
	s.router.POST("/manager/login", s.handleLogin)
	s.router.POST("/manager/logout", s.handleLogout)
	s.router.POST("/agent", s.handleSelectAgent)
	s.router.POST("/cache/clear", s.handleClearCache)

	s.router.GET("/reports", s.handleReports)
	s.router.GET("/portal", s.handlePortal)

	if s.svc.Events != nil {
		s.router.GET("/events", gin.WrapH(s.svc.Events))
	}
	if s.svc.Metrics {
		s.router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
}

// Handler exposes the router for tests and custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	log.Printf("Starting CRM UI on http://%s", addr)
	return s.router.Run(addr)
}
