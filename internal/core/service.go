package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/JonMunkholm/catalog/internal/config"
	"github.com/JonMunkholm/catalog/internal/logging"
	"github.com/google/uuid"
)

var (
	// ErrTooManyRows is returned when a batch exceeds IMPORT_MAX_ROWS.
	ErrTooManyRows = errors.New("too many rows in import")

	// ErrRowsRequired is returned when a request carries no rows array.
	ErrRowsRequired = errors.New("rows are required")

	// ErrInvalidRequest is returned for request bodies that cannot be decoded.
	ErrInvalidRequest = errors.New("invalid request body")
)

// Service runs validate and commit requests against a Store.
type Service struct {
	store    Store
	cfg      config.ImportConfig
	limiter  *ImportLimiter
	observer Observer
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithMetrics reports validate and commit activity to o.
func WithMetrics(o Observer) ServiceOption {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewService creates a Service over store using the import settings in cfg.
func NewService(store Store, cfg config.ImportConfig, opts ...ServiceOption) *Service {
	s := &Service{
		store:    store,
		cfg:      cfg,
		limiter:  NewImportLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
		observer: noopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidationReport is the dry-run answer: the validation result plus the
// breakdown of what a commit would do.
type ValidationReport struct {
	ValidationResult
	Summary ImportSummary `json:"summary"`
}

// CommitReport is the outcome of a commit request.
// Result is nil when server-side validation rejected the batch.
type CommitReport struct {
	ImportID   string           `json:"importId"`
	Validation ValidationResult `json:"validation"`
	Result     *ImportResult    `json:"results"`
}

// Validate checks rows against the current catalog without writing.
// Only setup failures (row limit, store unreachable) are returned as errors.
func (s *Service) Validate(ctx context.Context, rows []ImportRow) (ValidationReport, error) {
	start := time.Now()
	logger := logging.WithFields(ctx, "mode", ModeValidate, "rows", len(rows))

	report, err := s.validate(ctx, rows)
	s.observer.BatchFinished(ModeValidate, len(rows), time.Since(start), err)
	if err != nil {
		logger.Error("import validation failed", "error", err)
		return ValidationReport{}, err
	}

	logger.Info("import validated",
		"valid", report.Valid,
		"errors", len(report.Errors),
		"warnings", len(report.Warnings),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}

func (s *Service) validate(ctx context.Context, rows []ImportRow) (ValidationReport, error) {
	if err := s.checkRowLimit(rows); err != nil {
		return ValidationReport{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	snap, err := LoadSnapshot(ctx, s.store)
	if err != nil {
		return ValidationReport{}, err
	}

	v := NewValidator(snap.Categories, snap.Products)
	result := v.ValidateAll(rows)
	return ValidationReport{
		ValidationResult: result,
		Summary:          v.Summarize(rows, result),
	}, nil
}

// Commit re-validates rows and, when they pass, imports them one by one.
// updateExisting controls whether stored SKUs are overwritten or fail.
//
// A non-nil error means the batch never started (limit, busy, setup) or
// stopped part way because ctx ended. In the latter case the report still
// carries the partial Result.
func (s *Service) Commit(ctx context.Context, rows []ImportRow, updateExisting bool) (CommitReport, error) {
	start := time.Now()
	report := CommitReport{ImportID: uuid.NewString()}
	logger := logging.WithFields(ctx,
		"import_id", report.ImportID,
		"mode", ModeCommit,
		"rows", len(rows),
		"update_existing", updateExisting,
	)

	err := s.commit(ctx, rows, updateExisting, &report, logger)
	s.observer.BatchFinished(ModeCommit, len(rows), time.Since(start), err)
	if err != nil {
		logger.Error("import commit failed", "error", err)
		return report, err
	}

	if report.Result == nil {
		logger.Info("import rejected by validation", "errors", len(report.Validation.Errors))
		return report, nil
	}

	logger.Info("import committed",
		"created", report.Result.Created,
		"updated", report.Result.Updated,
		"failed", report.Result.Failed,
		"skipped", report.Result.Skipped,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}

func (s *Service) commit(ctx context.Context, rows []ImportRow, updateExisting bool, report *CommitReport, logger *slog.Logger) error {
	if err := s.checkRowLimit(rows); err != nil {
		return err
	}

	release, err := s.limiter.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire import slot: %w", err)
	}
	defer release()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	snap, err := LoadSnapshot(ctx, s.store)
	if err != nil {
		return err
	}

	report.Validation = NewValidator(snap.Categories, snap.Products).ValidateAll(rows)
	if !report.Validation.Valid {
		return nil
	}

	importer := NewImporter(s.store, snap,
		WithMissingCategoryPolicy(s.cfg.MissingCategory),
		WithLogger(logger),
		WithObserver(s.observer),
	)

	result, err := importer.Run(ctx, rows, updateExisting)
	report.Result = &result
	if err != nil {
		logger.Warn("import interrupted", "processed", result.Processed(), "total", len(rows))
		return err
	}
	return nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.Timeout)
}

func (s *Service) checkRowLimit(rows []ImportRow) error {
	if s.cfg.MaxRows > 0 && len(rows) > s.cfg.MaxRows {
		return fmt.Errorf("%w: %d rows, limit is %d", ErrTooManyRows, len(rows), s.cfg.MaxRows)
	}
	return nil
}

// Categories lists the categories rows may reference.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	categories, err := s.store.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return categories, nil
}

// ExportProducts writes every stored product to w as CSV.
func (s *Service) ExportProducts(ctx context.Context, w io.Writer) error {
	products, err := s.store.Products(ctx)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	return WriteProductsCSV(w, products)
}

// Ping checks that the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Limiter exposes the import limiter for health output and shutdown.
func (s *Service) Limiter() *ImportLimiter {
	return s.limiter
}

// UpdateExistingDefault is used when a commit request omits updateExisting.
func (s *Service) UpdateExistingDefault() bool {
	return s.cfg.UpdateExisting
}
