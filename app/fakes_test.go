package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"salondesk/domain/reference"
	"salondesk/domain/ticket"
	"salondesk/internal/errors"
	"salondesk/ports"

	"github.com/stretchr/testify/mock"
)

// fakeWorkbook serves tabs from memory and can fail a tab a fixed number of times
type fakeWorkbook struct {
	mu       sync.Mutex
	sheets   map[string][]string
	tabs     map[string][][]string // "sheet/tab" -> rows
	failures map[string]int
	reads    map[string]int
}

func newFakeWorkbook() *fakeWorkbook {
	return &fakeWorkbook{
		sheets:   make(map[string][]string),
		tabs:     make(map[string][][]string),
		failures: make(map[string]int),
		reads:    make(map[string]int),
	}
}

func (f *fakeWorkbook) addTab(sheet, tab string, rows [][]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sheets[sheet] = append(f.sheets[sheet], tab)
	f.tabs[sheet+"/"+tab] = rows
}

func (f *fakeWorkbook) failTab(sheet, tab string, times int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[sheet+"/"+tab] = times
}

func (f *fakeWorkbook) readCount(sheet, tab string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads[sheet+"/"+tab]
}

func (f *fakeWorkbook) Name() string { return "fake" }

func (f *fakeWorkbook) Tabs(ctx context.Context, sheet string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tabs, ok := f.sheets[sheet]
	if !ok {
		return nil, errors.NotFound("workbook " + sheet)
	}
	return append([]string(nil), tabs...), nil
}

func (f *fakeWorkbook) ReadTab(ctx context.Context, sheet, tab string) ([][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := sheet + "/" + tab
	f.reads[key]++
	if f.failures[key] > 0 {
		f.failures[key]--
		return nil, fmt.Errorf("quota exceeded")
	}
	rows, ok := f.tabs[key]
	if !ok {
		return nil, errors.NotFound("tab " + tab)
	}
	return rows, nil
}

// mockWriter records write-backs
type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) UpdateCells(ctx context.Context, origin ticket.Origin, values map[int]string) error {
	args := m.Called(ctx, origin, values)
	return args.Error(0)
}

// memTickets is an in-memory TicketRepository
type memTickets struct {
	mu      sync.Mutex
	nextID  int64
	tickets map[int64]ticket.Ticket
}

func newMemTickets() *memTickets {
	return &memTickets{tickets: make(map[int64]ticket.Ticket)}
}

func (m *memTickets) Create(ctx context.Context, t *ticket.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t.ID = m.nextID
	t.Source = ticket.SourceLocal
	m.tickets[t.ID] = *t
	return nil
}

func (m *memTickets) Update(ctx context.Context, id int64, in ticket.UpdateInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return errors.NotFound(fmt.Sprintf("ticket %d", id))
	}
	for col, v := range in.Values() {
		t.SetField(col, v)
	}
	m.tickets[id] = t
	return nil
}

func (m *memTickets) GetByID(ctx context.Context, id int64) (*ticket.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("ticket %d", id))
	}
	return &t, nil
}

func (m *memTickets) List(ctx context.Context, opts ports.ListOptions) ([]ticket.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ticket.Ticket, 0, len(m.tickets))
	for _, t := range m.tickets {
		if opts.Agent != "" && t.AgentName != opts.Agent {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memTickets) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tickets), nil
}

// memReference is an in-memory ReferenceRepository and SalonRepository
type memReference struct {
	mu     sync.Mutex
	lists  map[string][]reference.Entry
	runs   []reference.Run
	salons []reference.Salon
}

func newMemReference() *memReference {
	return &memReference{lists: make(map[string][]reference.Entry)}
}

func (m *memReference) ReplaceList(ctx context.Context, list string, entries []reference.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[list] = entries
	return nil
}

func (m *memReference) Lists(ctx context.Context) (map[string][]reference.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]reference.Entry, len(m.lists))
	for k, v := range m.lists {
		out[k] = v
	}
	return out, nil
}

func (m *memReference) RecordRun(ctx context.Context, run *reference.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, *run)
	return nil
}

func (m *memReference) LatestRun(ctx context.Context) (*reference.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.runs) == 0 {
		return nil, nil
	}
	r := m.runs[len(m.runs)-1]
	return &r, nil
}

func (m *memReference) ReplaceAll(ctx context.Context, salons []reference.Salon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.salons = salons
	return nil
}

func (m *memReference) GetByCID(ctx context.Context, cid string) (*reference.Salon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.salons {
		if s.CID == cid {
			s := s
			return &s, nil
		}
	}
	return nil, errors.NotFound("salon " + cid)
}

func (m *memReference) Search(ctx context.Context, term string, limit int) ([]reference.Salon, error) {
	return nil, nil
}

func (m *memReference) All(ctx context.Context) ([]reference.Salon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]reference.Salon(nil), m.salons...), nil
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []ticket.Event
}

func (p *recordingPublisher) Publish(ev ticket.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

// memCache is a minimal TicketCache counting hits
type memCache struct {
	mu      sync.Mutex
	entries map[string][]ticket.Ticket
	clears  int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]ticket.Ticket)}
}

func (c *memCache) Get(ctx context.Context, key string) ([]ticket.Ticket, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return append([]ticket.Ticket(nil), v...), true
}

func (c *memCache) Set(ctx context.Context, key string, tickets []ticket.Ticket, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = append([]ticket.Ticket(nil), tickets...)
	return nil
}

func (c *memCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]ticket.Ticket)
	c.clears++
	return nil
}

func dailyRows(rows ...[]string) [][]string {
	header := []string{"STT", "Salon Name", "Phone", "CID", "Note", "Status", "Name", "Time", "Training", "Demo"}
	return append([][]string{{"DAILY REPORT"}, header}, rows...)
}

func newTestLoader(wb *fakeWorkbook, cache *memCache, idx *IndexHolder) *LoaderService {
	svc := NewLoaderService(wb, cache, idx, LoaderConfig{TTL: time.Minute, TabReadAttempts: 3, Concurrency: 2})
	svc.backoff = func(int) time.Duration { return 0 }
	return svc
}
