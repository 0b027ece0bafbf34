package domain

import (
	"primes/pkg/primality"
	"time"

	"github.com/google/uuid"
)

// ScanID uniquely identifies a range scan.
type ScanID uuid.UUID

// String returns the canonical UUID form of the ID.
func (id ScanID) String() string { return uuid.UUID(id).String() }

// ScanStatus represents the lifecycle state of a scan.
type ScanStatus string

const (
	// ScanStatusPending indicates the scan has been enqueued but not processed yet.
	ScanStatusPending ScanStatus = "PENDING"
	// ScanStatusCompleted indicates the scan finished and Result is available.
	ScanStatusCompleted ScanStatus = "COMPLETED"
	// ScanStatusFailed indicates every attempt failed; see LastError.
	ScanStatusFailed ScanStatus = "FAILED"
)

// Valid reports whether s is a known status. The empty status is not valid.
func (s ScanStatus) Valid() bool {
	switch s {
	case ScanStatusPending, ScanStatusCompleted, ScanStatusFailed:
		return true
	default:
		return false
	}
}

// Scan is a persisted request to find the primes of a range.
type Scan struct {
	ID     ScanID `json:"id"`
	UserID UserID `json:"userId"`

	// Range is the scanned range; its lower bound is always primality.SmallestPrime.
	Range primality.Range `json:"range"`
	// Status is the current lifecycle state of the scan.
	Status ScanStatus `json:"status"`
	// Result holds the primes and their maximum once the scan completed.
	Result primality.Result `json:"result"`

	// Attempts is the number of times the system has tried to process this scan.
	Attempts uint `json:"attempts"`
	// LastError stores the most recent processing error, if any.
	LastError string `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	// DeletedAt marks when the scan was soft-deleted; zero value means not deleted.
	DeletedAt time.Time `json:"-"`
}
