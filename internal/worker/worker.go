// Package worker runs the River client that processes persisted range scans.
package worker

import (
	"context"
	"fmt"
	"primes/internal/config"
	"primes/internal/scanner"
	"primes/pkg/logger"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

const defaultMaxWorkers = 100

// Options configure the River client.
type Options struct {
	// MaxWorkers is the number of jobs processed concurrently.
	MaxWorkers int
	// JobTimeout bounds a single job. Zero keeps River's default.
	JobTimeout time.Duration
}

// NewOptions constructs Options from the application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		MaxWorkers: cfg.Worker.MaxWorkers,
		JobTimeout: cfg.Worker.JobTimeout,
	}
}

// NewWorkers registers every worker of the application.
func NewWorkers(s scanner.Scanner, opts Options) *river.Workers {
	workers := river.NewWorkers()
	river.AddWorker(workers, NewRangeScanWorker(s, opts.JobTimeout))

	return workers
}

// Start creates and starts a River client working the default queue.
func Start(ctx context.Context,
	dbPool *pgxpool.Pool,
	s scanner.Scanner,
	opts Options) (*river.Client[pgx.Tx], error) {
	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = defaultMaxWorkers
	}

	riverClient, err := river.NewClient(riverpgxv5.New(dbPool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: maxWorkers},
		},
		Workers: NewWorkers(s, opts),
		Logger:  logger.Slog(ctx),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create river queue client: %w", err)
	}

	if err := riverClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("could not start river queue client: %w", err)
	}

	return riverClient, nil
}
