package container

import (
	"context"
	"fmt"
	"log"

	"salondesk/adapters/cache"
	"salondesk/adapters/excel"
	"salondesk/adapters/gsheets"
	"salondesk/adapters/portal"
	"salondesk/adapters/sqlstore"
	"salondesk/app"
	"salondesk/internal/api"
	"salondesk/internal/config"
	"salondesk/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB     *sqlx.DB
	Events *api.EventHub

	// Repositories (data access layer)
	TicketRepo    ports.TicketRepository
	ReferenceRepo ports.ReferenceRepository
	SalonRepo     ports.SalonRepository

	// Workbook access
	Source   ports.WorkbookSource
	Writer   ports.WorkbookWriter
	Cache    ports.TicketCache
	Exporter ports.TableExporter

	// Services
	Index     *app.IndexHolder
	Loader    *app.LoaderService
	Catalog   *app.Catalog
	Tickets   *app.TicketService
	Search    *app.SearchService
	Dashboard *app.DashboardService
	Analysis  *app.AnalysisService
	Reconcile *app.ReconcileService
	History   *app.HistoryService
	Scheduler *app.Scheduler
	Portal    ports.PortalScraper
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
	}

	return c, nil
}

// InitWithDatabase initializes components that require database access
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	c.DB = db

	// Test database connection
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	c.initRepositories()

	if err := c.initWorkbooks(ctx); err != nil {
		return fmt.Errorf("failed to initialize workbook access: %w", err)
	}

	c.initServices()

	// A failed index load leaves tickets unannotated until the first reconcile
	if err := c.Reconcile.LoadIndex(ctx); err != nil {
		log.Printf("Warning: failed to load reference index: %v", err)
	}

	log.Printf("Container initialized successfully with %s workbooks and %s database", c.Source.Name(), db.DriverName())
	return nil
}

// initRepositories initializes data access repositories
func (c *Container) initRepositories() {
	c.TicketRepo = sqlstore.NewTicketRepository(c.DB)
	c.ReferenceRepo = sqlstore.NewReferenceRepository(c.DB)
	c.SalonRepo = sqlstore.NewSalonRepository(c.DB)
}

// initWorkbooks picks the workbook source, writer and sheet cache from config
func (c *Container) initWorkbooks(ctx context.Context) error {
	wb := c.Config.Workbook
	switch wb.Source {
	case "gsheets":
		client, err := gsheets.New(ctx, wb.CredentialsFile, c.Config.CRM.SpreadsheetIDs)
		if err != nil {
			return err
		}
		c.Source, c.Writer = client, client
	default:
		source := excel.NewSource(wb.Dir)
		c.Source, c.Writer = source, excel.NewWriter(source)
	}

	c.Cache = cache.NewMemory()
	if c.Config.Cache.RedisAddr != "" {
		redisCache, err := cache.NewRedis(ctx, c.Config.Cache.RedisAddr, c.Config.Cache.RedisPass, c.Config.Cache.RedisDB)
		if err != nil {
			log.Printf("Warning: Redis cache unavailable, using in-process cache: %v", err)
		} else {
			c.Cache = redisCache
		}
	}

	c.Exporter = excel.CSVFiles{BOM: true}
	return nil
}

// initServices wires application services
func (c *Container) initServices() {
	cfg := c.Config

	c.Events = api.NewEventHub()
	c.Index = app.NewIndexHolder()
	c.Loader = app.NewLoaderService(c.Source, c.Cache, c.Index, app.LoaderConfig{
		TTL:             cfg.Cache.TTL,
		TabReadInterval: cfg.Workbook.TabReadInterval,
		TabReadAttempts: cfg.Workbook.TabReadAttempts,
		Concurrency:     cfg.Workbook.Concurrency,
	})
	c.Catalog = app.NewCatalog(c.Loader, c.TicketRepo, c.Index)

	c.Tickets = app.NewTicketService(c.TicketRepo, c.Loader, c.Writer, c.Events)
	c.Search = app.NewSearchService(c.Catalog)
	c.Dashboard = app.NewDashboardService(c.Catalog)
	c.Analysis = app.NewAnalysisService(c.Catalog)
	c.History = app.NewHistoryService(c.Source, c.TicketRepo)
	c.Reconcile = app.NewReconcileService(c.Source, c.ReferenceRepo, c.SalonRepo, c.Index, c.Loader, c.Events,
		app.ReconcileConfig{
			ReferenceSheet: cfg.CRM.ReferenceSheet,
			ReferenceTabs:  cfg.CRM.ReferenceTabs,
			SalonMasterTab: cfg.CRM.SalonMasterTab,
		})

	// Only local workbooks can be watched
	watchDir := ""
	if cfg.Workbook.Source == "excel" && cfg.Reconcile.Watch {
		watchDir = cfg.Workbook.Dir
	}
	c.Scheduler = app.NewScheduler(c.Reconcile, app.SchedulerConfig{
		Interval: cfg.Reconcile.Interval,
		Watch:    watchDir != "",
		Dir:      watchDir,
	})

	c.Portal = portal.New(portal.Config{
		BaseURL:  cfg.Portal.BaseURL,
		Username: cfg.Portal.Username,
		Password: cfg.Portal.Password,
		Headless: cfg.Portal.Headless,
		Timeout:  cfg.Portal.Timeout,
	})
}

// APIServices exposes the services the JSON API and UI serve
func (c *Container) APIServices() api.Services {
	return api.Services{
		Tickets:       c.Tickets,
		Search:        c.Search,
		Dashboard:     c.Dashboard,
		Analysis:      c.Analysis,
		Loader:        c.Loader,
		Reconcile:     c.Reconcile,
		Salons:        c.SalonRepo,
		Portal:        c.Portal,
		Events:        c.Events,
		DefaultSheets: c.DefaultSheets(),
		Metrics:       c.Config.Metrics.Enabled,
	}
}

// DefaultSheets is the selection used when a request names no sheet: the last configured one
func (c *Container) DefaultSheets() []string {
	sheets := c.Config.CRM.Sheets
	if len(sheets) == 0 {
		return nil
	}
	return sheets[len(sheets)-1:]
}

// Close stops background components and closes the database
func (c *Container) Close() {
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}
	if c.Events != nil {
		c.Events.Close()
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Printf("Warning: failed to close database: %v", err)
		}
	}
}
