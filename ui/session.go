package ui

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"salondesk/internal/api"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	agentCookie   = "crm_agent"
	managerCookie = "crm_manager"
	sidebarKey    = "sidebar"

	// pickedParam marks a sidebar submit, so an empty selection is not mistaken for "use the default"
	pickedParam = "picked"

	cookieMaxAge   = 30 * 24 * 3600
	managerSession = 12 * time.Hour
)

// SheetOption is one entry of the sheet multiselect
type SheetOption struct {
	Name     string
	Selected bool
}

// Sidebar is the per-request state shared by every page
type Sidebar struct {
	Sheets   []SheetOption
	Selected []string
	Agents   []string
	Agent    string
	Manager  bool
	query    string
}

// Link appends the current sheet selection to path
func (sb *Sidebar) Link(path string) string {
	if sb == nil || sb.query == "" {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + sb.query
}

// HiddenSheets returns the selection as form values, for forms that must carry it
func (sb *Sidebar) HiddenSheets() []string {
	if sb == nil {
		return nil
	}
	return sb.Selected
}

func (s *Server) sidebarMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Request.URL.Query()
		if c.Request.Method == http.MethodPost {
			if err := c.Request.ParseForm(); err == nil {
				for _, v := range c.Request.PostForm["sheet"] {
					q.Add("sheet", v)
				}
			}
		}

		selected := api.SheetsFrom(q, nil)
		if len(selected) == 0 && q.Get(pickedParam) == "" {
			selected = s.svc.DefaultSheets
		}

		sb := &Sidebar{
			Selected: selected,
			Agents:   s.opts.Agents,
			Manager:  s.isManager(c),
		}
		if agent, err := c.Cookie(agentCookie); err == nil {
			sb.Agent = agent
		}
		chosen := make(map[string]bool, len(selected))
		for _, name := range selected {
			chosen[name] = true
		}
		for _, name := range s.opts.Sheets {
			sb.Sheets = append(sb.Sheets, SheetOption{Name: name, Selected: chosen[name]})
		}

		values := url.Values{}
		for _, name := range selected {
			values.Add("sheet", name)
		}
		if len(selected) == 0 {
			values.Set(pickedParam, "1")
		}
		sb.query = values.Encode()

		c.Set(sidebarKey, sb)
		c.Next()
	}
}

func sidebarFrom(c *gin.Context) *Sidebar {
	if v, ok := c.Get(sidebarKey); ok {
		if sb, ok := v.(*Sidebar); ok {
			return sb
		}
	}
	return &Sidebar{}
}

func (s *Server) startManagerSession(c *gin.Context) {
	token := uuid.NewString()
	s.sessionsMu.Lock()
	s.sessions[token] = s.svc.Now().Add(managerSession)
	s.sessionsMu.Unlock()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(managerCookie, token, int(managerSession.Seconds()), "/", "", false, true)
}

func (s *Server) endManagerSession(c *gin.Context) {
	if token, err := c.Cookie(managerCookie); err == nil {
		s.sessionsMu.Lock()
		delete(s.sessions, token)
		s.sessionsMu.Unlock()
	}
	c.SetCookie(managerCookie, "", -1, "/", "", false, true)
}

func (s *Server) isManager(c *gin.Context) bool {
	token, err := c.Cookie(managerCookie)
	if err != nil || token == "" {
		return false
	}
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	expires, ok := s.sessions[token]
	if !ok {
		return false
	}
	if s.svc.Now().After(expires) {
		delete(s.sessions, token)
		return false
	}
	return true
}

func (s *Server) requireManager(c *gin.Context) {
	if !sidebarFrom(c).Manager {
		c.Redirect(http.StatusSeeOther, sidebarFrom(c).Link("/manager/login"))
		c.Abort()
		return
	}
	c.Next()
}
