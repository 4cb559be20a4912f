// Package cache keeps recently loaded report tickets, in process or in Redis
package cache

import (
	"context"
	"sync"
	"time"

	"salondesk/domain/ticket"
)

type entry struct {
	tickets []ticket.Ticket
	expires time.Time
}

// Memory is an in-process TTL cache
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory creates an empty in-process cache
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry), now: time.Now}
}

// Get returns a copy of a live entry
func (m *Memory) Get(ctx context.Context, key string) ([]ticket.Ticket, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || m.now().After(e.expires) {
		return nil, false
	}
	return append([]ticket.Ticket(nil), e.tickets...), true
}

// Set stores tickets until ttl elapses
func (m *Memory) Set(ctx context.Context, key string, tickets []ticket.Ticket, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{
		tickets: append([]ticket.Ticket(nil), tickets...),
		expires: m.now().Add(ttl),
	}
	return nil
}

// Clear drops every entry
func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]entry)
	return nil
}
