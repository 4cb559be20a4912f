package app

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"salondesk/domain/reference"

	"github.com/fsnotify/fsnotify"
)

// ReconcileRunner performs one reconcile pass
type ReconcileRunner interface {
	Run(ctx context.Context) (*reference.Run, error)
}

// SchedulerConfig controls when reconcile runs
type SchedulerConfig struct {
	Interval time.Duration
	Watch    bool
	Dir      string
}

// Scheduler runs reconcile at start, on an interval, and when workbook files change
type Scheduler struct {
	mu          sync.Mutex
	runner      ReconcileRunner
	cfg         SchedulerConfig
	watcher     *fsnotify.Watcher
	debounceDur time.Duration
	pendingAt   time.Time
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	runs        int
}

// NewScheduler creates a scheduler; call Start to begin
func NewScheduler(runner ReconcileRunner, cfg SchedulerConfig) *Scheduler {
	return &Scheduler{
		runner:      runner,
		cfg:         cfg,
		debounceDur: 500 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start is non-blocking. A directory that cannot be watched disables watching but keeps the interval.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	if s.cfg.Watch && s.cfg.Dir != "" {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			log.Printf("[Scheduler] file watching unavailable: %v", err)
		} else if err := w.Add(s.cfg.Dir); err != nil {
			log.Printf("[Scheduler] cannot watch %s: %v", s.cfg.Dir, err)
			w.Close()
		} else {
			s.watcher = w
			log.Printf("[Scheduler] watching %s", s.cfg.Dir)
		}
	}

	go s.run(ctx)
	return nil
}

// Stop ends the loop and waits for an in-flight run to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	<-s.doneCh

	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			log.Printf("[Scheduler] error closing watcher: %v", err)
		}
	}
	log.Printf("[Scheduler] stopped")
}

// Runs returns how many reconcile passes were started
func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	s.reconcile(ctx, "startup")

	var tick <-chan time.Time
	if s.cfg.Interval > 0 {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var events <-chan fsnotify.Event
	var errs <-chan error
	if s.watcher != nil {
		events = s.watcher.Events
		errs = s.watcher.Errors
	}

	debounceTicker := time.NewTicker(100 * time.Millisecond)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-tick:
			s.reconcile(ctx, "interval")
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			s.handleEvent(event)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Printf("[Scheduler] watcher error: %v", err)
		case <-debounceTicker.C:
			s.mu.Lock()
			due := !s.pendingAt.IsZero() && time.Since(s.pendingAt) >= s.debounceDur
			if due {
				s.pendingAt = time.Time{}
			}
			s.mu.Unlock()
			if due {
				s.reconcile(ctx, "workbook change")
			}
		}
	}
}

func (s *Scheduler) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if !isWorkbookFile(event.Name) {
		return
	}
	s.mu.Lock()
	s.pendingAt = time.Now()
	s.mu.Unlock()
}

// isWorkbookFile ignores Office lock files and anything that is not a workbook
func isWorkbookFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".xlsx", ".csv":
		return true
	}
	return false
}

func (s *Scheduler) reconcile(ctx context.Context, reason string) {
	s.mu.Lock()
	s.runs++
	s.mu.Unlock()

	if _, err := s.runner.Run(ctx); err != nil {
		log.Printf("[Scheduler] reconcile (%s) failed: %v", reason, err)
	}
}
