package ui

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"salondesk/domain/ticket"
	"salondesk/internal/api"
	"salondesk/internal/errors"

	"github.com/gin-gonic/gin"
)

// TicketForm backs the New Ticket page
type TicketForm struct {
	Input    ticket.NewTicketInput
	Date     string
	Statuses []ticket.Status
}

// SearchRow is one line of the results table
type SearchRow struct {
	DisplayID int
	Ref       string
	Cells     []string
	Source    ticket.Source
}

// SearchPage backs the Search & History page
type SearchPage struct {
	Term    string
	Kind    ticket.SearchKind
	Kinds   []ticket.SearchKind
	Columns []string
	Rows    []SearchRow
	Total   int
}

// EditForm backs the edit dialog
type EditForm struct {
	Ref      string
	Ticket   *ticket.Ticket
	Input    ticket.UpdateInput
	Statuses []ticket.Status
	Back     string
}

func (s *Server) newTicketForm(c *gin.Context) *TicketForm {
	now := s.svc.Now()
	return &TicketForm{
		Input:    ticket.NewTicketInput{AgentName: sidebarFrom(c).Agent, Status: string(ticket.StatusPending)},
		Date:     now.Format(api.DateLayout),
		Statuses: ticket.Statuses(),
	}
}

func (s *Server) handleNewTicket(c *gin.Context) {
	p := s.page(c, "New Ticket", "new", s.newTicketForm(c))
	if c.Query("saved") != "" {
		p.Flash = "Ticket #" + c.Query("saved") + " saved."
	}
	s.renderTemplate(c, http.StatusOK, tmplNewTicket, p)
}

func (s *Server) handleCreateTicket(c *gin.Context) {
	form := &TicketForm{
		Input: ticket.NewTicketInput{
			SalonName:  c.PostForm("salon_name"),
			CID:        c.PostForm("cid"),
			Phone:      c.PostForm("phone"),
			CallerInfo: c.PostForm("caller_info"),
			Issue:      c.PostForm("issue"),
			Training:   c.PostForm("training"),
			Demo:       c.PostForm("demo"),
			Status:     c.PostForm("status"),
			AgentName:  c.PostForm("agent_name"),
		},
		Date:     c.PostForm("date"),
		Statuses: ticket.Statuses(),
	}
	if form.Date != "" {
		day, err := time.ParseInLocation(api.DateLayout, form.Date, time.Local)
		if err != nil {
			p := s.page(c, "New Ticket", "new", form)
			p.Warning = "Date must be a valid date."
			s.renderTemplate(c, http.StatusBadRequest, tmplNewTicket, p)
			return
		}
		now := s.svc.Now()
		form.Input.Date = time.Date(day.Year(), day.Month(), day.Day(), now.Hour(), now.Minute(), now.Second(), 0, time.Local)
	}

	created, err := s.svc.Tickets.Create(c.Request.Context(), form.Input)
	if err != nil {
		if errors.HasCode(err, errors.CodeValidationError) {
			p := s.page(c, "New Ticket", "new", form)
			p.Warning = "Please fill in all required fields. " + err.Error()
			s.renderTemplate(c, http.StatusBadRequest, tmplNewTicket, p)
			return
		}
		s.renderError(c, "New Ticket", "new", err)
		return
	}

	setAgentCookie(c, created.AgentName)
	c.Redirect(http.StatusSeeOther, sidebarFrom(c).Link(fmt.Sprintf("/tickets/new?saved=%d", created.ID)))
}

func (s *Server) handleSearch(c *gin.Context) {
	if s.needSheets(c, "search") {
		return
	}
	sb := sidebarFrom(c)
	data := &SearchPage{
		Term:    strings.TrimSpace(c.Query("q")),
		Kind:    ticket.ParseSearchKind(c.Query("kind")),
		Kinds:   []ticket.SearchKind{ticket.KindAll, ticket.KindTraining, ticket.KindDemo},
		Columns: ticket.SearchColumns,
	}

	results, err := s.svc.Search.Search(c.Request.Context(), data.Term, data.Kind, sb.Selected)
	if err != nil {
		s.renderError(c, "Search & History", "search", err)
		return
	}
	for _, r := range results {
		t := r.Ticket
		data.Rows = append(data.Rows, SearchRow{
			DisplayID: r.DisplayID,
			Ref:       r.Ref,
			Cells:     ticket.Rows([]ticket.Ticket{t}, data.Columns)[0],
			Source:    t.Source,
		})
	}
	data.Total = len(data.Rows)

	p := s.page(c, "Search & History", "search", data)
	if c.Query("updated") != "" {
		p.Flash = "Ticket updated."
	}
	s.renderTemplate(c, http.StatusOK, tmplSearch, p)
}

func (s *Server) handleEditTicket(c *gin.Context) {
	ref, err := ticket.ParseRef(c.Param("ref"))
	if err != nil {
		s.renderError(c, "Edit Ticket", "search", err)
		return
	}
	t, err := s.svc.Tickets.Get(c.Request.Context(), ref)
	if err != nil {
		s.renderError(c, "Edit Ticket", "search", err)
		return
	}
	form := &EditForm{
		Ref:      ref.String(),
		Ticket:   t,
		Input:    ticket.UpdateInputFrom(*t),
		Statuses: ticket.Statuses(),
		Back:     c.Query("q"),
	}
	s.renderTemplate(c, http.StatusOK, tmplEditTicket, s.page(c, "Edit Ticket", "search", form))
}

func (s *Server) handleUpdateTicket(c *gin.Context) {
	ref, err := ticket.ParseRef(c.Param("ref"))
	if err != nil {
		s.renderError(c, "Edit Ticket", "search", err)
		return
	}
	in := ticket.UpdateInput{
		Status:       c.PostForm("status"),
		Note:         c.PostForm("note"),
		SalonName:    c.PostForm("salon_name"),
		Phone:        c.PostForm("phone"),
		CID:          c.PostForm("cid"),
		CallerInfo:   c.PostForm("caller_info"),
		TrainingNote: c.PostForm("training_note"),
		DemoNote:     c.PostForm("demo_note"),
	}
	if _, err := s.svc.Tickets.Update(c.Request.Context(), ref, in); err != nil {
		s.renderError(c, "Edit Ticket", "search", err)
		return
	}
	back := "/search?updated=1&q=" + url.QueryEscape(c.PostForm("back"))
	c.Redirect(http.StatusSeeOther, sidebarFrom(c).Link(back))
}

func (s *Server) handleSelectAgent(c *gin.Context) {
	setAgentCookie(c, c.PostForm("agent"))
	c.Redirect(http.StatusSeeOther, backTo(c, "/tickets/new"))
}

func setAgentCookie(c *gin.Context, agent string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(agentCookie, strings.TrimSpace(agent), cookieMaxAge, "/", "", false, true)
}

// backTo returns the form's "back" path when it is a local path
func backTo(c *gin.Context, fallback string) string {
	back := c.PostForm("back")
	if !strings.HasPrefix(back, "/") || strings.HasPrefix(back, "//") {
		return sidebarFrom(c).Link(fallback)
	}
	return back
}
