// Package primesclient defines the client side of the primes v1 API: checking
// candidates, scanning ranges and managing persisted scans of a remote server.
package primesclient

import (
	"context"
	"primes/pkg/domain"
	"primes/pkg/primality"
)

// ScanList is one page of the caller's scans.
type ScanList struct {
	Items []domain.Scan
	// NextCursor is passed to Client.Scans to fetch the next page; empty on the last page.
	NextCursor string
}

// ListOptions filters and paginates Client.Scans. Zero values use the server defaults.
type ListOptions struct {
	Status domain.ScanStatus
	Cursor string
	Limit  uint
}

// Client is the abstraction over a primes server.
//
// Failures reported by the server carry the serrors kind named by the
// response code, so callers can match them with errors.Is.
//
//go:generate mockgen -package mockprimesclient -source=interface.go -destination=mock/mockprimesclient.go *
type Client interface {
	// Check reports whether n is prime.
	Check(ctx context.Context, n int64) (bool, error)
	// Primes scans r synchronously and returns its primes and their maximum.
	Primes(ctx context.Context, r primality.Range) (primality.Result, error)
	// StreamPrimes scans r and calls emit for every prime in ascending order as
	// the server reports it.
	StreamPrimes(ctx context.Context, r primality.Range, emit func(int64)) error
	// CreateScan enqueues a persisted scan of r.
	CreateScan(ctx context.Context, r primality.Range) (*domain.Scan, error)
	// Scan fetches a persisted scan by its ID.
	Scan(ctx context.Context, id domain.ScanID) (*domain.Scan, error)
	// Scans lists the caller's scans, newest first.
	Scans(ctx context.Context, opts ListOptions) (ScanList, error)
	// DeleteScan removes a persisted scan.
	DeleteScan(ctx context.Context, id domain.ScanID) error
}
