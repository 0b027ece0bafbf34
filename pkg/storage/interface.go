// Package storage defines the persistence interfaces for scans and their jobs,
// including transaction management. pkg/storage/postgres implements them.
//
//go:generate mockgen -package mockstorage -source=interface.go -destination=mock/mockstorage.go *
package storage

import "context"

// AllStorage is every storage capability the application needs.
type AllStorage interface {
	ScanStorage
	JobStorage
}

// TxStorage is a storage handle bound to a transaction. It must not be used
// after Commit or Rollback.
type TxStorage interface {
	AllStorage

	Commit() error
	Rollback() error
}

// Storage is a non-transactional storage handle that can start transactions.
type Storage interface {
	AllStorage

	// Close releases the underlying connection pool.
	Close() error

	// Begin starts a new transaction.
	Begin(ctx context.Context) (TxStorage, error)
	// WithTx runs cb inside a transaction, committing when cb returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, cb func(storage AllStorage) error) error
}
