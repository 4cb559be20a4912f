package app

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"salondesk/domain/ticket"
	"salondesk/internal/errors"
	"salondesk/internal/metrics"
	"salondesk/internal/resilience"
	"salondesk/internal/sheetparse"
	"salondesk/ports"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// LoaderConfig tunes report sheet loading
type LoaderConfig struct {
	TTL             time.Duration
	TabReadInterval time.Duration
	TabReadAttempts int
	Concurrency     int
}

// LoaderService reads report sheets into tickets, caching the result per sheet selection
type LoaderService struct {
	source  ports.WorkbookSource
	cache   ports.TicketCache
	index   *IndexHolder
	cfg     LoaderConfig
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker

	// backoff returns the pause after a failed read attempt (0-based)
	backoff func(attempt int) time.Duration
}

// NewLoaderService creates a loader over a workbook source
func NewLoaderService(source ports.WorkbookSource, cache ports.TicketCache, index *IndexHolder, cfg LoaderConfig) *LoaderService {
	if cfg.TabReadAttempts < 1 {
		cfg.TabReadAttempts = 1
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	limit := rate.Inf
	if cfg.TabReadInterval > 0 {
		limit = rate.Every(cfg.TabReadInterval)
	}
	return &LoaderService{
		source:  source,
		cache:   cache,
		index:   index,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		breaker: resilience.NewBreaker(resilience.BreakerSettings{Name: "workbook-" + source.Name()}),
		backoff: func(attempt int) time.Duration {
			return time.Second + time.Duration(attempt)*time.Second
		},
	}
}

// CacheKey identifies a sheet selection regardless of order
func CacheKey(sheets []string) string {
	sorted := append([]string(nil), sheets...)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}

// Load returns the tickets of every selected sheet, sheet order then tab order.
// Sheets and tabs that cannot be read are logged and skipped. While the workbook
// breaker is open a sheet stops at the first refused read, keeps the rows read so
// far, and the incomplete result is not cached.
func (s *LoaderService) Load(ctx context.Context, sheets []string) ([]ticket.Ticket, error) {
	if len(sheets) == 0 {
		return nil, nil
	}

	key := CacheKey(sheets)
	if cached, ok := s.cache.Get(ctx, key); ok {
		metrics.CacheRequests.WithLabelValues(metrics.ResultHit).Inc()
		s.index.Get().AnnotateAll(cached)
		return cached, nil
	}
	metrics.CacheRequests.WithLabelValues(metrics.ResultMiss).Inc()

	start := time.Now()
	perSheet := make([][]ticket.Ticket, len(sheets))
	var incomplete atomic.Bool

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, sheet := range sheets {
		i, sheet := i, sheet
		g.Go(func() error {
			tickets, err := s.loadSheet(gctx, sheet)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				if resilience.IsOpen(err) {
					incomplete.Store(true)
					perSheet[i] = tickets
					log.Printf("[Loader] sheet %q cut short after %d row(s): %v", sheet, len(tickets), err)
					return nil
				}
				log.Printf("[Loader] skipping sheet %q: %v", sheet, err)
				return nil
			}
			perSheet[i] = tickets
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "sheet load interrupted")
	}

	var all []ticket.Ticket
	for _, tickets := range perSheet {
		all = append(all, tickets...)
	}
	metrics.SheetLoadSeconds.Observe(time.Since(start).Seconds())
	log.Printf("[Loader] loaded %d rows from %d sheet(s) in %s", len(all), len(sheets), time.Since(start).Round(time.Millisecond))

	if incomplete.Load() {
		log.Printf("[Loader] workbook breaker open, result for %q not cached", key)
	} else if err := s.cache.Set(ctx, key, all, s.cfg.TTL); err != nil {
		log.Printf("[Loader] cache write failed: %v", err)
	}
	s.index.Get().AnnotateAll(all)
	return all, nil
}

func (s *LoaderService) loadSheet(ctx context.Context, sheet string) ([]ticket.Ticket, error) {
	res, err := s.breaker.Execute(func() (interface{}, error) {
		return s.source.Tabs(ctx, sheet)
	})
	if err != nil {
		return nil, err
	}
	tabs := res.([]string)

	isTotal := sheetparse.IsTotalReport(sheet)
	var out []ticket.Ticket
	for _, tab := range tabs[sheetparse.DataTabStart(isTotal, len(tabs)):] {
		rows, err := s.readTabWithRetry(ctx, sheet, tab)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			metrics.SheetTabsLoaded.WithLabelValues(metrics.ResultError).Inc()
			if resilience.IsOpen(err) {
				return out, errors.Wrapf(err, "tab %q refused", tab)
			}
			log.Printf("[Loader] skipping tab %q of %q: %v", tab, sheet, err)
			continue
		}

		tickets, ok := sheetparse.ParseTicketTab(sheet, tab, rows)
		if !ok {
			metrics.SheetTabsLoaded.WithLabelValues(metrics.ResultSkipped).Inc()
			log.Printf("[Loader] tab %q of %q has no salon header, skipped", tab, sheet)
			continue
		}
		metrics.SheetTabsLoaded.WithLabelValues(metrics.ResultOK).Inc()
		out = append(out, tickets...)
	}
	return out, nil
}

func (s *LoaderService) readTabWithRetry(ctx context.Context, sheet, tab string) ([][]string, error) {
	var lastErr error
	for attempt := 0; attempt < s.cfg.TabReadAttempts; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		res, err := s.breaker.Execute(func() (interface{}, error) {
			return s.source.ReadTab(ctx, sheet, tab)
		})
		if err == nil {
			return res.([][]string), nil
		}
		lastErr = err
		if errors.HasCode(err, errors.CodeNotFound) || resilience.IsOpen(err) || ctx.Err() != nil {
			break
		}
		if attempt+1 < s.cfg.TabReadAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.backoff(attempt)):
			}
		}
	}
	return nil, lastErr
}

// ClearCache drops every cached sheet selection
func (s *LoaderService) ClearCache(ctx context.Context) error {
	if err := s.cache.Clear(ctx); err != nil {
		return errors.Wrap(err, "failed to clear sheet cache")
	}
	log.Printf("[Loader] cache cleared")
	return nil
}
