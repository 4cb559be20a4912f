// Package portal drives a headless browser through the vendor web portal to look salons up
package portal

import (
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"strings"
	"time"

	"salondesk/domain/portal"
	"salondesk/internal/errors"
	"salondesk/internal/metrics"
	"salondesk/internal/resilience"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sony/gobreaker"
)

const (
	loginPath  = "/login"
	searchPath = "/salon/web/pos/list"
)

// Config holds portal credentials and browser settings
type Config struct {
	BaseURL  string
	Username string
	Password string
	Headless bool
	Timeout  time.Duration
	// Bin overrides the browser binary; empty lets the launcher find or download one
	Bin string
}

// Bot performs one-shot portal lookups. Every lookup starts and closes its own browser.
type Bot struct {
	cfg     Config
	breaker *gobreaker.CircuitBreaker
}

// New creates a portal bot
func New(cfg Config) *Bot {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Bot{
		cfg:     cfg,
		breaker: resilience.NewBreaker(resilience.BreakerSettings{Name: "portal", ConsecutiveFailures: 3, OpenTimeout: time.Minute}),
	}
}

// Lookup logs in, searches for term and returns the first result table
func (b *Bot) Lookup(ctx context.Context, term string) (*portal.Table, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, errors.InvalidInput("search term is required")
	}
	if b.cfg.Username == "" || b.cfg.Password == "" {
		return nil, errors.ConfigInvalid("PORTAL_USERNAME and PORTAL_PASSWORD must be set")
	}

	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	start := time.Now()
	res, err := b.breaker.Execute(func() (interface{}, error) {
		return b.scrape(ctx, term)
	})
	if err != nil {
		if errors.HasCode(err, errors.CodeNotFound) {
			metrics.PortalLookups.WithLabelValues(metrics.ResultMiss).Inc()
			return nil, err
		}
		metrics.PortalLookups.WithLabelValues(metrics.ResultError).Inc()
		log.Printf("[Portal] lookup %q failed after %s: %v", term, time.Since(start).Round(time.Millisecond), err)
		return nil, errors.ExternalServiceError("portal", err)
	}

	table := res.(*portal.Table)
	metrics.PortalLookups.WithLabelValues(metrics.ResultOK).Inc()
	log.Printf("[Portal] lookup %q returned %d row(s) in %s", term, len(table.Rows), time.Since(start).Round(time.Millisecond))
	return table, nil
}

func (b *Bot) scrape(ctx context.Context, term string) (*portal.Table, error) {
	l := launcher.New().Context(ctx).Headless(b.cfg.Headless).
		Set("no-sandbox").
		Set("disable-dev-shm-usage")
	if b.cfg.Bin != "" {
		l = l.Bin(b.cfg.Bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer l.Cleanup()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: b.cfg.BaseURL + loginPath})
	if err != nil {
		return nil, fmt.Errorf("failed to open login page: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed to load login page: %w", err)
	}

	if err := b.login(page); err != nil {
		return nil, err
	}

	if err := page.Navigate(b.cfg.BaseURL + searchPath); err != nil {
		return nil, fmt.Errorf("failed to open search page: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed to load search page: %w", err)
	}

	search, err := page.Element("input[placeholder='Search']")
	if err != nil {
		return nil, fmt.Errorf("search box not found: %w", err)
	}
	if err := search.SelectAllText(); err != nil {
		return nil, fmt.Errorf("failed to clear search box: %w", err)
	}
	if err := search.Input(term); err != nil {
		return nil, fmt.Errorf("failed to type search term: %w", err)
	}
	button, err := page.ElementR("button", "SEARCH")
	if err != nil {
		return nil, fmt.Errorf("search button not found: %w", err)
	}
	if err := button.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return nil, fmt.Errorf("failed to click search: %w", err)
	}
	if err := page.WaitStable(time.Second); err != nil {
		return nil, fmt.Errorf("search results did not settle: %w", err)
	}

	if _, err := page.Timeout(10 * time.Second).Element("table"); err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, errors.NotFound("result table")
		}
		return nil, fmt.Errorf("failed waiting for results: %w", err)
	}
	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to read results page: %w", err)
	}
	return ParseTable(html)
}

func (b *Bot) login(page *rod.Page) error {
	has, user, err := page.Has("input[name='username']")
	if err != nil {
		return fmt.Errorf("failed to look for username field: %w", err)
	}
	if !has {
		if user, err = page.Element("input[type='text']"); err != nil {
			return fmt.Errorf("username field not found: %w", err)
		}
	}
	if err := user.Input(b.cfg.Username); err != nil {
		return fmt.Errorf("failed to type username: %w", err)
	}

	pass, err := page.Element("input[type='password']")
	if err != nil {
		return fmt.Errorf("password field not found: %w", err)
	}
	if err := pass.Input(b.cfg.Password); err != nil {
		return fmt.Errorf("failed to type password: %w", err)
	}

	submit, err := page.ElementR("button", "SUBMIT")
	if err != nil {
		return fmt.Errorf("submit button not found: %w", err)
	}
	wait := page.WaitNavigation(proto.PageLifecycleEventNameLoad)
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to submit login: %w", err)
	}
	wait()
	return nil
}
