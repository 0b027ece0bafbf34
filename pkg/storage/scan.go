package storage

import (
	"context"
	"primes/pkg/domain"
	"primes/pkg/primality"
	"time"
)

// ScanUpdates describes the fields applied to existing scans during an update.
type ScanUpdates struct {
	// Status is the new status to set for the scan.
	Status domain.ScanStatus
	// Result, when provided, replaces the stored primes and maximum.
	Result *primality.Result
	// LastError, when provided, sets the last error text. An empty string value
	// clears it (set to NULL).
	LastError *string
	// MaxAttempts, when provided alongside a Failed status, only moves scans to
	// Failed once their attempts after increment reach this threshold. A value
	// <= 0 disables this guard.
	MaxAttempts int
}

// Cursor is the position of the last scan of a page in (created_at, id) order.
// Scans sharing a creation time are told apart by their ID.
type Cursor struct {
	CreatedAt time.Time
	ID        domain.ScanID
}

// IsZero reports whether the cursor points before the first page.
func (c Cursor) IsZero() bool { return c.CreatedAt.IsZero() }

// UserScans groups a page of scans returned for a user together with an
// optional NextCursor used for pagination.
type UserScans struct {
	Scans []domain.Scan
	// NextCursor is the cursor to pass for the next page. It is nil when there
	// is no next page.
	NextCursor *Cursor
}

// ScanStorage defines CRUD and query operations related to scans. Soft-deleted
// scans are invisible to every operation except LastCompletedScanByRange.
type ScanStorage interface {
	// StoreScans inserts one or more scans and returns the stored rows
	// including generated fields.
	StoreScans(ctx context.Context, scans ...domain.Scan) ([]domain.Scan, error)
	// UpdatePendingScansByRange updates all pending scans of the given range.
	// Attempts is incremented by 1 and updated_at is set automatically.
	UpdatePendingScansByRange(ctx context.Context, r primality.Range, updates ScanUpdates) error
	// PendingScanCountByRange returns the number of pending scans of the range
	// across all users.
	PendingScanCountByRange(ctx context.Context, r primality.Range) (int64, error)
	// UpdateScanByID updates a single scan and returns the updated row, or nil
	// when it does not exist.
	UpdateScanByID(ctx context.Context, ID domain.ScanID, updates ScanUpdates) (*domain.Scan, error)
	// DeleteScan soft-deletes a scan of the user and returns it, or nil if it
	// was not found.
	DeleteScan(ctx context.Context, userID domain.UserID, ID domain.ScanID) (*domain.Scan, error)
	// UserScans returns a page of the user's scans positioned after cursor (when
	// non-zero), newest first. A non-empty status filters the results.
	UserScans(ctx context.Context,
		userID domain.UserID,
		status domain.ScanStatus,
		cursor Cursor,
		limit uint) (UserScans, error)
	// ScanByID fetches a scan of the user, or nil when not found.
	ScanByID(ctx context.Context, userID domain.UserID, ID domain.ScanID) (*domain.Scan, error)
	// LastCompletedScanByRange returns the most recent completed scan of the
	// range across all users, or nil when none exists. Deleted scans count too:
	// their result stays valid for the range.
	LastCompletedScanByRange(ctx context.Context, r primality.Range) (*domain.Scan, error)
}
