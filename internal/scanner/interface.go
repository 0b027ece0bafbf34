// Package scanner is the application service around pkg/primality: synchronous
// checks and range scans with validation, metrics and tracing, plus persisted
// scans that are processed asynchronously by River workers.
package scanner

import (
	"context"
	"primes/pkg/domain"
	"primes/pkg/primality"
)

//go:generate mockgen -package mockscanner -source=interface.go -destination=mock/mockscanner.go *
type Scanner interface {
	// Check reports whether n is prime.
	Check(ctx context.Context, n int64) (bool, error)
	// ScanRange scans r synchronously, calling emit for each prime in ascending order.
	ScanRange(ctx context.Context, r primality.Range, emit func(int64)) (primality.Result, error)

	Enqueue(ctx context.Context, userID domain.UserID, r primality.Range) (*domain.Scan, error)
	// Process runs the scan of r and completes every pending scan of the range.
	Process(ctx context.Context, r primality.Range) error
	UserScans(ctx context.Context,
		userID domain.UserID,
		status domain.ScanStatus,
		cursor string,
		limit uint) ([]domain.Scan, string, error)
	Result(ctx context.Context, userID domain.UserID, scanID domain.ScanID) (*domain.Scan, error)
	Delete(ctx context.Context, userID domain.UserID, scanID domain.ScanID) error
}
