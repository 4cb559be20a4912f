// Package resilience builds the circuit breakers guarding spreadsheet and portal calls
package resilience

import (
	"context"
	stderrors "errors"
	"log"
	"time"

	"salondesk/internal/errors"

	"github.com/sony/gobreaker"
)

// BreakerSettings tune a circuit breaker
type BreakerSettings struct {
	Name                string
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// NewBreaker trips after a run of consecutive failures. Caller mistakes
// (missing tab, bad input) and cancellations do not count as failures.
func NewBreaker(s BreakerSettings) *gobreaker.CircuitBreaker {
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 5
	}
	if s.OpenTimeout == 0 {
		s.OpenTimeout = 30 * time.Second
	}

	st := gobreaker.Settings{Name: s.Name, Timeout: s.OpenTimeout}
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= s.ConsecutiveFailures
	}
	st.IsSuccessful = func(err error) bool {
		return err == nil ||
			errors.HasCode(err, errors.CodeNotFound) ||
			errors.HasCode(err, errors.CodeInvalidInput) ||
			stderrors.Is(err, context.Canceled)
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Printf("[Breaker] %s: %s -> %s", name, from, to)
	}
	return gobreaker.NewCircuitBreaker(st)
}

// IsOpen reports whether err came from a breaker refusing the call
func IsOpen(err error) bool {
	return stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests)
}
