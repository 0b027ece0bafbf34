package scanner

import (
	"context"
	"errors"
	"fmt"
	"primes/internal/config"
	"primes/pkg/domain"
	"primes/pkg/logger"
	"primes/pkg/metrics"
	"primes/pkg/primality"
	"primes/pkg/serrors"
	"primes/pkg/storage"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Options configure range limits, how scan jobs are enqueued and how results
// are cached. These settings are typically derived from application configuration.
type Options struct {
	// MaxUpper is the largest accepted upper bound. Zero disables the limit.
	MaxUpper int64
	// MaxAttempts is the maximum number of attempts the background worker should
	// make when processing a scan job before marking it failed.
	MaxAttempts int
	// ResultCacheTTL is the duration during which a completed result makes new
	// scan requests for the same range reuse that result instead of enqueueing
	// a duplicate job.
	ResultCacheTTL time.Duration
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		MaxUpper:       cfg.Scanner.MaxUpper,
		MaxAttempts:    cfg.Scanner.MaxAttempts,
		ResultCacheTTL: cfg.Scanner.ResultCacheTTL,
	}
}

type scanner struct {
	options Options
	// storage may be nil for one-shot use where only Check and ScanRange are needed.
	storage storage.Storage
	metrics *metrics.Scanner
	tracer  trace.Tracer
}

// Check validates n and reports whether it is prime.
func (s scanner) Check(ctx context.Context, n int64) (bool, error) {
	if err := primality.Validate(n); err != nil {
		return false, serrors.Wrap(serrors.ErrBadRequest, err, "invalid candidate %d", n)
	}

	prime := primality.IsPrime(n)
	s.metrics.CandidatesChecked.Add(ctx, 1)
	if prime {
		s.metrics.PrimesFound.Add(ctx, 1)
	}

	return prime, nil
}

func (s scanner) validateRange(r primality.Range) error {
	if err := r.Validate(); err != nil {
		return serrors.Wrap(serrors.ErrBadRequest, err, "invalid range")
	}
	if s.options.MaxUpper > 0 && r.Upper > s.options.MaxUpper {
		return serrors.With(serrors.ErrBadRequest, "upper bound %d exceeds %d", r.Upper, s.options.MaxUpper)
	}

	return nil
}

// ScanRange walks r in ascending order and calls emit (when non-nil) for every
// prime. The context is checked periodically so long scans can be abandoned.
func (s scanner) ScanRange(ctx context.Context, r primality.Range, emit func(int64)) (primality.Result, error) {
	if err := s.validateRange(r); err != nil {
		return primality.Result{}, err
	}

	ctx, span := s.tracer.Start(ctx, "scanner.ScanRange", trace.WithAttributes(
		attribute.Int64("range.upper", r.Upper),
		attribute.Bool("range.inclusive", r.Inclusive),
	))
	defer span.End()

	start := time.Now()
	res, checked, err := r.ScanContext(ctx, emit)
	s.metrics.CandidatesChecked.Add(ctx, checked)
	s.metrics.PrimesFound.Add(ctx, int64(len(res.Primes)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scan interrupted")

		return primality.Result{}, serrors.Wrap(serrors.ErrTimeout, err,
			"scan of %s interrupted at %d", r, checked+primality.SmallestPrime)
	}

	s.metrics.ScanDuration.Record(ctx, time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("primes.count", len(res.Primes)), attribute.Int64("primes.max", res.Max))

	return res, nil
}

// Enqueue stores a new scan request for the given range and user, and attempts
// to enqueue a background job to process it. If a recent completed result exists
// for the same range (within ResultCacheTTL), the new scan is immediately marked
// as completed with that result.
func (s scanner) Enqueue(ctx context.Context, userID domain.UserID, r primality.Range) (*domain.Scan, error) {
	if err := s.validateRange(r); err != nil {
		return nil, err
	}

	var scan *domain.Scan
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		res, err := tx.StoreScans(ctx, domain.Scan{
			UserID: userID,
			Range:  r,
			Status: domain.ScanStatusPending,
		})
		if err != nil {
			return fmt.Errorf("could not store scan: %w", err)
		}
		scan = &res[0]

		jobAdded, err := tx.AddJob(ctx, NewJobArgs(r, s.options.MaxAttempts, s.options.ResultCacheTTL), nil)
		if err != nil {
			return fmt.Errorf("could not add job: %w", err)
		}

		// an existing job for the range either still runs and will complete this
		// scan with the others, or already finished and left a result behind
		if !jobAdded {
			lastResult, err := tx.LastCompletedScanByRange(ctx, r)
			if err != nil {
				return fmt.Errorf("could not get last completed scan: %w", err)
			}

			if lastResult != nil {
				updated, err := tx.UpdateScanByID(ctx, scan.ID, storage.ScanUpdates{
					Status: domain.ScanStatusCompleted,
					Result: &lastResult.Result,
				})
				if err != nil {
					return fmt.Errorf("could not update scan: %w", err)
				}
				scan = updated
			}
		}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("could not enqueue range %s: %w", r, err)
	}

	return scan, nil
}

// Process scans r on behalf of every pending scan of the range. It returns a
// conflict when nothing is pending anymore, e.g. all scans were deleted.
func (s scanner) Process(ctx context.Context, r primality.Range) error {
	ctx = logger.WithFields(ctx, zap.Stringer("range", r))

	pending, err := s.storage.PendingScanCountByRange(ctx, r)
	if err != nil {
		return fmt.Errorf("could not count pending scans: %w", err)
	}
	if pending == 0 {
		return serrors.With(serrors.ErrConflict, "no pending scans for %s", r)
	}

	res, scanErr := s.ScanRange(ctx, r, nil)
	if scanErr != nil {
		msg := scanErr.Error()
		// the job context may be done already; record the failure regardless
		updateCtx := context.WithoutCancel(ctx)
		if err := s.storage.UpdatePendingScansByRange(updateCtx, r, storage.ScanUpdates{
			Status:      domain.ScanStatusFailed,
			LastError:   &msg,
			MaxAttempts: s.options.MaxAttempts,
		}); err != nil {
			return errors.Join(scanErr, fmt.Errorf("could not record scan failure: %w", err))
		}

		return fmt.Errorf("could not scan range: %w", scanErr)
	}

	cleared := ""
	if err := s.storage.UpdatePendingScansByRange(ctx, r, storage.ScanUpdates{
		Status:    domain.ScanStatusCompleted,
		Result:    &res,
		LastError: &cleared,
	}); err != nil {
		return fmt.Errorf("could not complete pending scans: %w", err)
	}

	logger.Info(ctx, "range scanned",
		zap.Int64("pending", pending),
		zap.Int("primes", len(res.Primes)),
		zap.Int64("max", res.Max))

	return nil
}

// UserScans returns a page of scans for the given user filtered by status.
// The cursor is opaque to callers: pass back the returned next cursor, which is
// empty on the last page.
func (s scanner) UserScans(ctx context.Context,
	userID domain.UserID,
	status domain.ScanStatus,
	cursor string,
	limit uint) ([]domain.Scan, string, error) {
	if status != "" && !status.Valid() {
		return nil, "", serrors.With(serrors.ErrBadRequest, "unknown status %q", status)
	}

	var pos storage.Cursor
	if cursor != "" {
		c, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", serrors.Wrap(serrors.ErrBadRequest, err, "invalid cursor")
		}
		pos = c
	}

	page, err := s.storage.UserScans(ctx, userID, status, pos, limit)
	if err != nil {
		if errors.Is(err, storage.ErrZeroLimit) {
			return nil, "", serrors.Wrap(serrors.ErrBadRequest, err, "invalid limit")
		}

		return nil, "", fmt.Errorf("could not get user scans: %w", err)
	}

	var next string
	if page.NextCursor != nil {
		next = encodeCursor(*page.NextCursor)
	}

	return page.Scans, next, nil
}

// Result fetches a single scan by ID for the given user.
func (s scanner) Result(ctx context.Context, userID domain.UserID, scanID domain.ScanID) (*domain.Scan, error) {
	res, err := s.storage.ScanByID(ctx, userID, scanID)
	if err != nil {
		return nil, fmt.Errorf("could not get scan results: %w", err)
	}
	if res == nil {
		return nil, serrors.With(serrors.ErrNotFound, "scan not found")
	}

	return res, nil
}

// Delete soft-deletes a scan belonging to the given user. Jobs are left in the
// queue since other pending scans of the same range may depend on them; Process
// cancels jobs that have nothing left to complete.
func (s scanner) Delete(ctx context.Context, userID domain.UserID, scanID domain.ScanID) error {
	res, err := s.storage.DeleteScan(ctx, userID, scanID)
	if err != nil {
		return fmt.Errorf("could not delete scan: %w", err)
	}
	if res == nil {
		return serrors.With(serrors.ErrNotFound, "scan not found")
	}

	return nil
}

// New creates a new Scanner backed by the provided storage, recording into m.
// A nil m falls back to instruments of the global MeterProvider.
func New(storage storage.Storage, m *metrics.Scanner, options Options) (Scanner, error) {
	if m == nil {
		var err error
		if m, err = metrics.NewScanner(); err != nil {
			return nil, fmt.Errorf("could not create scanner metrics: %w", err)
		}
	}

	return &scanner{
		options: options,
		storage: storage,
		metrics: m,
		tracer:  otel.Tracer("primes/internal/scanner"),
	}, nil
}
