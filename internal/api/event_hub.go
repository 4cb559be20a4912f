package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"salondesk/domain/ticket"
)

// Event topics
const (
	TopicTickets   = "tickets"
	TopicReference = "reference"
	TopicAll       = "*"
)

// TopicOf routes an event to its topic
func TopicOf(ev ticket.Event) string {
	if strings.HasPrefix(ev.Type, "ticket.") {
		return TopicTickets
	}
	return TopicReference
}

type subscription struct {
	topic   string
	channel chan ticket.Event
}

// EventHub fans ticket events out to Server-Sent Events subscribers
type EventHub struct {
	clients    map[string]map[chan ticket.Event]bool
	clientsMu  sync.RWMutex
	register   chan subscription
	unregister chan subscription
	broadcast  chan ticket.Event
	stop       chan struct{}
	done       chan struct{}
	stopOnce   sync.Once

	keepAlive time.Duration
}

// NewEventHub starts a hub; call Close to stop it
func NewEventHub() *EventHub {
	hub := &EventHub{
		clients:    make(map[string]map[chan ticket.Event]bool),
		register:   make(chan subscription, 10),
		unregister: make(chan subscription, 10),
		broadcast:  make(chan ticket.Event, 100),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		keepAlive:  30 * time.Second,
	}
	go hub.run()
	return hub
}

func (h *EventHub) run() {
	defer close(h.done)
	for {
		select {
		case <-h.stop:
			h.clientsMu.Lock()
			for topic, clients := range h.clients {
				for ch := range clients {
					close(ch)
				}
				delete(h.clients, topic)
			}
			h.clientsMu.Unlock()
			return

		case sub := <-h.register:
			h.clientsMu.Lock()
			if h.clients[sub.topic] == nil {
				h.clients[sub.topic] = make(map[chan ticket.Event]bool)
			}
			h.clients[sub.topic][sub.channel] = true
			log.Printf("[SSE] client subscribed to %s (total: %d)", sub.topic, len(h.clients[sub.topic]))
			h.clientsMu.Unlock()

		case sub := <-h.unregister:
			h.clientsMu.Lock()
			if clients, ok := h.clients[sub.topic]; ok && clients[sub.channel] {
				delete(clients, sub.channel)
				close(sub.channel)
				if len(clients) == 0 {
					delete(h.clients, sub.topic)
				}
			}
			h.clientsMu.Unlock()

		case ev := <-h.broadcast:
			h.clientsMu.RLock()
			for _, topic := range []string{TopicOf(ev), TopicAll} {
				for ch := range h.clients[topic] {
					select {
					case ch <- ev:
					default:
						log.Printf("[SSE] client channel full on %s, skipping %s", topic, ev.Type)
					}
				}
			}
			h.clientsMu.RUnlock()
		}
	}
}

// Publish queues an event for every subscriber of its topic
func (h *EventHub) Publish(ev ticket.Event) {
	select {
	case h.broadcast <- ev:
	default:
		log.Printf("[SSE] broadcast channel full, dropping %s", ev.Type)
	}
}

// Subscribe registers a channel for a topic. The returned cancel func unregisters it.
func (h *EventHub) Subscribe(topic string) (<-chan ticket.Event, func()) {
	sub := subscription{topic: topic, channel: make(chan ticket.Event, 10)}
	h.register <- sub
	return sub.channel, func() {
		select {
		case h.unregister <- sub:
		case <-h.done:
		}
	}
}

// ClientCount returns the number of subscribers of a topic
func (h *EventHub) ClientCount(topic string) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[topic])
}

// Close stops the hub and closes every subscriber channel
func (h *EventHub) Close() {
	h.stopOnce.Do(func() {
		close(h.stop)
		<-h.done
	})
}

// ServeHTTP streams events of the "topic" query parameter (default all) as SSE
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	topic := r.URL.Query().Get("topic")
	if topic == "" {
		topic = TopicAll
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events, cancel := h.Subscribe(topic)
	defer cancel()

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ctx := r.Context()
	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				log.Printf("[SSE] failed to marshal event: %v", err)
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.Type, data)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case <-ctx.Done():
			return
		}
	}
}
