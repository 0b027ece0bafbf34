package worker

import (
	"context"
	"errors"
	"fmt"
	"primes/internal/scanner"
	"primes/pkg/logger"
	"primes/pkg/serrors"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"
)

// RangeScanWorker is a River worker that scans a range once for all pending
// scans of that range.
type RangeScanWorker struct {
	river.WorkerDefaults[scanner.JobArgs]

	scanner scanner.Scanner
	timeout time.Duration
}

// NewRangeScanWorker constructs a RangeScanWorker. A zero timeout keeps River's
// default job timeout.
func NewRangeScanWorker(s scanner.Scanner, timeout time.Duration) *RangeScanWorker {
	return &RangeScanWorker{scanner: s, timeout: timeout}
}

// Timeout overrides River's job timeout when configured.
func (w *RangeScanWorker) Timeout(_ *river.Job[scanner.JobArgs]) time.Duration {
	return w.timeout
}

// Work processes a single scan job. Jobs left without pending scans are
// cancelled, other errors are returned so River retries them.
func (w *RangeScanWorker) Work(ctx context.Context, job *river.Job[scanner.JobArgs]) error {
	r := job.Args.Range()
	ctx = logger.WithFields(ctx, zap.Int64("jobID", job.ID), zap.Stringer("range", r))

	if err := w.scanner.Process(ctx, r); err != nil {
		if errors.Is(err, serrors.ErrConflict) {
			logger.Info(ctx, "no pending scans left, cancelling job")

			return river.JobCancel(err) //nolint: wrapcheck
		}

		logger.Error(ctx, "error in scanning range", zap.Error(err))

		return fmt.Errorf("could not scan range: %w", err)
	}

	logger.Info(ctx, "range scanned successfully")

	return nil
}
