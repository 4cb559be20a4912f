package app

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"salondesk/domain/core"
	"salondesk/domain/reference"
	"salondesk/domain/ticket"
	"salondesk/internal/errors"
	"salondesk/internal/metrics"
	"salondesk/internal/sheetparse"
	"salondesk/ports"
)

// ReconcileConfig names the workbook and tabs holding reference lists
type ReconcileConfig struct {
	ReferenceSheet string
	ReferenceTabs  []string
	SalonMasterTab string
}

// cleanedFiles maps reference lists to their export file names
var cleanedFiles = map[string]string{
	reference.ListTraining: "cleaned_training.csv",
	reference.List16Digits: "cleaned_16digits.csv",
	reference.ListContact:  "cleaned_contact.csv",
}

// SalonMasterFile is the export name of the salon master list
const SalonMasterFile = "cleaned_salons_master.csv"

// ReconcileService refreshes reference lists from the workbook and republishes the index
type ReconcileService struct {
	source    ports.WorkbookSource
	refs      ports.ReferenceRepository
	salons    ports.SalonRepository
	index     *IndexHolder
	loader    *LoaderService
	publisher ports.EventPublisher
	cfg       ReconcileConfig

	mu  sync.Mutex
	now func() time.Time
}

// NewReconcileService creates a reconcile service
func NewReconcileService(source ports.WorkbookSource, refs ports.ReferenceRepository, salons ports.SalonRepository,
	index *IndexHolder, loader *LoaderService, publisher ports.EventPublisher, cfg ReconcileConfig) *ReconcileService {
	return &ReconcileService{
		source:    source,
		refs:      refs,
		salons:    salons,
		index:     index,
		loader:    loader,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Run reads every reference tab, stores the cleaned lists and swaps the in-memory index.
// Tabs that fail are logged and keep their previously stored entries.
func (s *ReconcileService) Run(ctx context.Context) (*reference.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := &reference.Run{
		ID:        core.NewRunID(),
		StartedAt: s.now(),
		Counts:    make(map[string]int),
	}
	log.Printf("[Reconcile] run %s started", run.ID)

	var failures []string
	for _, tab := range s.cfg.ReferenceTabs {
		cleaned, err := s.readReference(ctx, tab)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("[Reconcile] skipping %q: %v", tab, err)
			failures = append(failures, tab)
			continue
		}
		if !cleaned.CIDFound {
			log.Printf("[Reconcile] no CID column in %q, matching by phone only", tab)
		}

		entries := sheetparse.ReferenceEntries(tab, cleaned)
		if err := s.refs.ReplaceList(ctx, tab, entries); err != nil {
			return nil, s.fail(ctx, run, errors.Wrapf(err, "failed to store %s list", tab))
		}
		run.Counts[tab] = len(entries)
	}

	if s.cfg.SalonMasterTab != "" {
		salons, err := s.readSalonMaster(ctx)
		if err != nil {
			log.Printf("[Reconcile] skipping salon master: %v", err)
			failures = append(failures, s.cfg.SalonMasterTab)
		} else {
			if err := s.salons.ReplaceAll(ctx, salons); err != nil {
				return nil, s.fail(ctx, run, errors.Wrap(err, "failed to store salon master"))
			}
			run.Salons = len(salons)
		}
	}

	if err := s.LoadIndex(ctx); err != nil {
		return nil, s.fail(ctx, run, err)
	}

	switch {
	case len(failures) == 0:
		run.Status = reference.RunSucceeded
	case len(failures) == len(s.cfg.ReferenceTabs)+boolToInt(s.cfg.SalonMasterTab != ""):
		run.Status = reference.RunFailed
		run.Error = "no reference tab could be read: " + strings.Join(failures, ", ")
	default:
		run.Status = reference.RunPartial
		run.Error = "skipped: " + strings.Join(failures, ", ")
	}
	run.FinishedAt = s.now()
	if err := s.refs.RecordRun(ctx, run); err != nil {
		log.Printf("[Reconcile] failed to record run %s: %v", run.ID, err)
	}
	metrics.ReconcileRuns.WithLabelValues(runResult(run.Status)).Inc()

	if s.loader != nil {
		if err := s.loader.ClearCache(ctx); err != nil {
			log.Printf("[Reconcile] %v", err)
		}
	}
	if s.publisher != nil {
		ev := ticket.NewEvent(ticket.EventReconciled, nil, run.FinishedAt)
		s.publisher.Publish(ev)
	}

	log.Printf("[Reconcile] run %s %s: %v, %d salons", run.ID, run.Status, run.Counts, run.Salons)
	return run, nil
}

// LoadIndex rebuilds the in-memory index from stored lists
func (s *ReconcileService) LoadIndex(ctx context.Context) error {
	lists, err := s.refs.Lists(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load reference lists")
	}
	salons, err := s.salons.All(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load salon master")
	}
	s.index.Set(reference.NewIndex(lists, salons))
	return nil
}

// ExportCleaned writes the cleaned reference tabs and salon master as CSV files in dir
func (s *ReconcileService) ExportCleaned(ctx context.Context, dir string, exporter ports.TableExporter) ([]string, error) {
	var written []string
	for _, tab := range s.cfg.ReferenceTabs {
		cleaned, err := s.readReference(ctx, tab)
		if err != nil {
			log.Printf("[Reconcile] skipping export of %q: %v", tab, err)
			continue
		}
		name, ok := cleanedFiles[tab]
		if !ok {
			name = "cleaned_" + strings.ToLower(strings.ReplaceAll(tab, " ", "")) + ".csv"
		}
		path := filepath.Join(dir, name)
		if err := exporter.WriteTable(path, cleaned.Headers, cleaned.Rows); err != nil {
			return written, errors.Wrapf(err, "failed to export %s", tab)
		}
		log.Printf("[Reconcile] wrote %s (%d rows)", path, len(cleaned.Rows))
		written = append(written, path)
	}

	if s.cfg.SalonMasterTab != "" {
		salons, err := s.readSalonMaster(ctx)
		if err != nil {
			log.Printf("[Reconcile] skipping export of salon master: %v", err)
			return written, nil
		}
		rows := make([][]string, len(salons))
		for i, salon := range salons {
			rows[i] = []string{salon.CID, salon.Name}
		}
		path := filepath.Join(dir, SalonMasterFile)
		if err := exporter.WriteTable(path, []string{"CID", "Salon Name"}, rows); err != nil {
			return written, errors.Wrap(err, "failed to export salon master")
		}
		written = append(written, path)
	}
	return written, nil
}

// LatestRun returns the most recent recorded run, nil when none
func (s *ReconcileService) LatestRun(ctx context.Context) (*reference.Run, error) {
	return s.refs.LatestRun(ctx)
}

func (s *ReconcileService) readReference(ctx context.Context, tab string) (sheetparse.CleanedReference, error) {
	rows, err := s.source.ReadTab(ctx, s.cfg.ReferenceSheet, tab)
	if err != nil {
		return sheetparse.CleanedReference{}, fmt.Errorf("failed to read %s / %s: %w", s.cfg.ReferenceSheet, tab, err)
	}
	return sheetparse.CleanReferenceSheet(rows), nil
}

func (s *ReconcileService) readSalonMaster(ctx context.Context) ([]reference.Salon, error) {
	rows, err := s.source.ReadTab(ctx, s.cfg.ReferenceSheet, s.cfg.SalonMasterTab)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s / %s: %w", s.cfg.ReferenceSheet, s.cfg.SalonMasterTab, err)
	}
	return sheetparse.ParseSalonMaster(rows), nil
}

func (s *ReconcileService) fail(ctx context.Context, run *reference.Run, err error) error {
	run.Status = reference.RunFailed
	run.Error = err.Error()
	run.FinishedAt = s.now()
	if recErr := s.refs.RecordRun(ctx, run); recErr != nil {
		log.Printf("[Reconcile] failed to record run %s: %v", run.ID, recErr)
	}
	metrics.ReconcileRuns.WithLabelValues(metrics.ResultError).Inc()
	return err
}

func runResult(status reference.RunStatus) string {
	switch status {
	case reference.RunSucceeded:
		return metrics.ResultOK
	case reference.RunPartial:
		return metrics.ResultPartial
	default:
		return metrics.ResultError
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
