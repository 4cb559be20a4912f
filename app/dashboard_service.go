package app

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"salondesk/domain/ticket"
	"salondesk/internal/textnorm"
)

// EmptyDashboardHint is shown when the filters leave no tickets
const EmptyDashboardHint = "No tickets match the selected filters. Try expanding the date range or removing the search keyword."

const (
	optionAll      = "All"
	hoursPerCall   = 0.25
	topStaff       = 10
)

// DetailColumns lead the detail table; remaining canonical columns follow
var DetailColumns = []string{
	ticket.ColDate, ticket.ColAgentName, ticket.ColSalonName, ticket.ColCID, ticket.ColPhone,
	ticket.ColIssueCategory, ticket.ColStatus, ticket.ColNote,
}

// Count is one bar or slice of a dashboard chart
type Count struct {
	Label   string  `json:"label"`
	Value   int     `json:"value"`
	Percent float64 `json:"percent"`
}

// Dashboard is everything the manager page renders
type Dashboard struct {
	DetectedFrom *time.Time `json:"detected_from,omitempty"`
	DetectedTo   *time.Time `json:"detected_to,omitempty"`
	From         time.Time  `json:"from"`
	To           time.Time  `json:"to"`
	Keyword      string     `json:"keyword,omitempty"`

	Empty bool   `json:"empty"`
	Hint  string `json:"hint,omitempty"`

	Total       int     `json:"total"`
	AllTime     int     `json:"all_time"`
	Pending     int     `json:"pending"`
	Resolved    int     `json:"resolved"`
	WorkHours   float64 `json:"work_hours"`
	ActiveStaff int     `json:"active_staff"`

	Staff  []Count `json:"staff"`
	Issues []Count `json:"issues"`

	StaffOptions   []string        `json:"staff_options"`
	StatusOptions  []string        `json:"status_options"`
	SelectedStaff  string          `json:"selected_staff"`
	SelectedStatus string          `json:"selected_status"`
	Columns        []string        `json:"columns"`
	Detail         []ticket.Ticket `json:"detail"`
}

// Rows renders the detail table in column order
func (d *Dashboard) Rows() [][]string {
	return ticket.Rows(d.Detail, d.Columns)
}

// DashboardService computes manager KPIs and charts over the ticket catalog
type DashboardService struct {
	catalog *Catalog
}

// NewDashboardService creates a dashboard service
func NewDashboardService(catalog *Catalog) *DashboardService {
	return &DashboardService{catalog: catalog}
}

// Load builds the dashboard over the selected sheets plus local tickets
func (s *DashboardService) Load(ctx context.Context, sheets []string, filter ticket.Filter, now time.Time) (*Dashboard, error) {
	all, err := s.catalog.All(ctx, sheets)
	if err != nil {
		return nil, err
	}
	return Build(all, filter, now), nil
}

type datedTicket struct {
	ticket.Ticket
	at time.Time
	ok bool
}

// Build filters tickets by date range and keyword and computes the dashboard
func Build(tickets []ticket.Ticket, filter ticket.Filter, now time.Time) *Dashboard {
	d := &Dashboard{AllTime: len(tickets), Keyword: strings.TrimSpace(filter.Keyword)}

	dated := make([]datedTicket, len(tickets))
	for i, t := range tickets {
		at, ok := t.EffectiveTime()
		dated[i] = datedTicket{Ticket: t, at: at, ok: ok}
		if !ok {
			continue
		}
		if d.DetectedFrom == nil || at.Before(*d.DetectedFrom) {
			v := at
			d.DetectedFrom = &v
		}
		if d.DetectedTo == nil || at.After(*d.DetectedTo) {
			v := at
			d.DetectedTo = &v
		}
	}

	d.From, d.To = defaultRange(d.DetectedFrom, d.DetectedTo, now)
	if filter.From != nil {
		d.From = *filter.From
	}
	if filter.To != nil {
		d.To = *filter.To
	}
	from := startOfDay(d.From)
	to := startOfDay(d.To).AddDate(0, 0, 1).Add(-time.Second)

	keyword := textnorm.NewMatcher(d.Keyword)
	var filtered []datedTicket
	for _, t := range dated {
		if !t.ok || t.at.Before(from) || t.at.After(to) {
			continue
		}
		if !keyword.Empty() && !keyword.Match(t.Note, t.IssueCategory) {
			continue
		}
		filtered = append(filtered, t)
	}

	if len(filtered) == 0 {
		d.Empty = true
		d.Hint = EmptyDashboardHint
		return d
	}

	computeKPIs(d, filtered)
	d.Staff = topCounts(filtered, func(t datedTicket) string { return t.AgentName }, topStaff, d.Total)
	d.Issues = topCounts(filtered, func(t datedTicket) string { return t.IssueCategory }, 0, d.Total)
	buildDetail(d, filtered, filter)
	return d
}

func defaultRange(detectedFrom, detectedTo *time.Time, now time.Time) (time.Time, time.Time) {
	if detectedFrom != nil && detectedTo != nil {
		return startOfDay(*detectedFrom), startOfDay(*detectedTo)
	}
	today := startOfDay(now)
	return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()), today
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func computeKPIs(d *Dashboard, filtered []datedTicket) {
	d.Total = len(filtered)
	withTime := 0
	agents := make(map[string]struct{})
	for _, t := range filtered {
		if t.Status != string(ticket.StatusDone) {
			d.Pending++
		}
		if strings.TrimSpace(t.SupportTime) != "" {
			withTime++
		}
		if name := strings.TrimSpace(t.AgentName); name != "" {
			agents[name] = struct{}{}
		}
	}
	d.Resolved = d.Total - d.Pending
	d.ActiveStaff = len(agents)

	units := withTime
	if units == 0 {
		units = d.Total
	}
	d.WorkHours = math.Round(float64(units)*hoursPerCall*10) / 10
}

// topCounts ranks labels by count desc then label; limit 0 keeps all. Blank labels are skipped.
func topCounts(tickets []datedTicket, label func(datedTicket) string, limit, total int) []Count {
	counts := make(map[string]int)
	for _, t := range tickets {
		l := strings.TrimSpace(label(t))
		if l == "" {
			continue
		}
		counts[l]++
	}

	out := make([]Count, 0, len(counts))
	for l, n := range counts {
		out = append(out, Count{Label: l, Value: n, Percent: math.Round(float64(n)/float64(total)*1000) / 10})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Label < out[j].Label
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func buildDetail(d *Dashboard, filtered []datedTicket, filter ticket.Filter) {
	d.StaffOptions = options(filtered, func(t datedTicket) string { return t.AgentName })
	d.StatusOptions = options(filtered, func(t datedTicket) string { return t.Status })
	d.SelectedStaff = selected(filter.Agent)
	d.SelectedStatus = selected(filter.Status)

	d.Columns = append([]string(nil), DetailColumns...)
	for _, c := range ticket.Columns {
		if !contains(DetailColumns, c) {
			d.Columns = append(d.Columns, c)
		}
	}

	var rows []datedTicket
	for _, t := range filtered {
		if d.SelectedStaff != optionAll && t.AgentName != d.SelectedStaff {
			continue
		}
		if d.SelectedStatus != optionAll && t.Status != d.SelectedStatus {
			continue
		}
		rows = append(rows, t)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		di, dj := rowDate(rows[i]), rowDate(rows[j])
		switch {
		case di.IsZero():
			return false
		case dj.IsZero():
			return true
		default:
			return di.After(dj)
		}
	})

	d.Detail = make([]ticket.Ticket, len(rows))
	for i, r := range rows {
		d.Detail[i] = r.Ticket
	}
}

func rowDate(t datedTicket) time.Time {
	if ts, ok := ticket.ParseDate(t.Date); ok {
		return ts
	}
	return time.Time{}
}

func options(tickets []datedTicket, value func(datedTicket) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range tickets {
		v := value(t)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return append([]string{optionAll}, out...)
}

func selected(v string) string {
	if strings.TrimSpace(v) == "" {
		return optionAll
	}
	return v
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// ExportFileName names a dashboard CSV download
func ExportFileName(now time.Time) string {
	return "admin_dashboard_export_" + now.Format("20060102_150405") + ".csv"
}
