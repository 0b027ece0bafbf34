package postgres_test

import (
	"context"
	"primes/pkg/domain"
	"primes/pkg/primality"
	"primes/pkg/storage"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	upTo20  = primality.Range{Upper: 20, Inclusive: true}
	below10 = primality.Range{Upper: 10}
)

func pendingScan(userID domain.UserID, r primality.Range) domain.Scan {
	return domain.Scan{UserID: userID, Range: r, Status: domain.ScanStatusPending}
}

func TestPgSQL_StoreScans(t *testing.T) {
	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)

	ctx := context.Background()
	userID := domain.UserID(uuid.New())

	t.Run("store single scan", func(t *testing.T) {
		res, err := pgSQL.StoreScans(ctx, pendingScan(userID, upTo20))
		require.NoError(t, err)
		require.Len(t, res, 1)
		require.Equal(t, upTo20, res[0].Range)
		require.Equal(t, domain.ScanStatusPending, res[0].Status)
		require.Equal(t, primality.SmallestPrime, res[0].Result.Max)
		require.Empty(t, res[0].Result.Primes)
		require.NotEqual(t, domain.ScanID{}, res[0].ID)
		require.False(t, res[0].CreatedAt.IsZero())
	})

	t.Run("store multiple scans", func(t *testing.T) {
		res, err := pgSQL.StoreScans(ctx, pendingScan(userID, upTo20), pendingScan(userID, below10))
		require.NoError(t, err)
		require.Len(t, res, 2)
	})

	t.Run("store empty scans", func(t *testing.T) {
		res, err := pgSQL.StoreScans(ctx)
		require.NoError(t, err)
		require.Empty(t, res)
	})

	t.Run("empty range is rejected by the schema", func(t *testing.T) {
		_, err := pgSQL.StoreScans(ctx, pendingScan(userID, primality.Range{Upper: 2}))
		require.Error(t, err)
	})
}

func TestPgSQL_UpdatePendingScansByRange(t *testing.T) {
	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	userA := domain.UserID(uuid.New())
	userB := domain.UserID(uuid.New())

	stored, err := pgSQL.StoreScans(ctx,
		pendingScan(userA, upTo20),
		pendingScan(userB, upTo20),
		pendingScan(userA, below10),
	)
	require.NoError(t, err)

	result := upTo20.Scan(nil)
	require.NoError(t, pgSQL.UpdatePendingScansByRange(ctx, upTo20, storage.ScanUpdates{
		Status: domain.ScanStatusCompleted,
		Result: &result,
	}))

	for _, s := range stored[:2] {
		got, err := pgSQL.ScanByID(ctx, s.UserID, s.ID)
		require.NoError(t, err)
		require.Equal(t, domain.ScanStatusCompleted, got.Status)
		require.Equal(t, []int64{2, 3, 5, 7, 11, 13, 17, 19}, got.Result.Primes)
		require.Equal(t, int64(19), got.Result.Max)
		require.Equal(t, uint(1), got.Attempts)
		require.False(t, got.UpdatedAt.IsZero())
	}

	other, err := pgSQL.ScanByID(ctx, userA, stored[2].ID)
	require.NoError(t, err)
	require.Equal(t, domain.ScanStatusPending, other.Status, "other ranges are untouched")

	count, err := pgSQL.PendingScanCountByRange(ctx, upTo20)
	require.NoError(t, err)
	require.Zero(t, count)

	count, err = pgSQL.PendingScanCountByRange(ctx, below10)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestPgSQL_UpdatePendingScansByRange_FailedRespectsMaxAttempts(t *testing.T) {
	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	userID := domain.UserID(uuid.New())
	stored, err := pgSQL.StoreScans(ctx, pendingScan(userID, below10))
	require.NoError(t, err)

	msg := "worker crashed"
	failed := storage.ScanUpdates{Status: domain.ScanStatusFailed, LastError: &msg, MaxAttempts: 2}

	require.NoError(t, pgSQL.UpdatePendingScansByRange(ctx, below10, failed))
	got, err := pgSQL.ScanByID(ctx, userID, stored[0].ID)
	require.NoError(t, err)
	require.Equal(t, domain.ScanStatusPending, got.Status, "first failure keeps the scan pending")
	require.Equal(t, uint(1), got.Attempts)
	require.Equal(t, msg, got.LastError)

	require.NoError(t, pgSQL.UpdatePendingScansByRange(ctx, below10, failed))
	got, err = pgSQL.ScanByID(ctx, userID, stored[0].ID)
	require.NoError(t, err)
	require.Equal(t, domain.ScanStatusFailed, got.Status)
	require.Equal(t, uint(2), got.Attempts)
}

func TestPgSQL_UpdateScanByID(t *testing.T) {
	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	userID := domain.UserID(uuid.New())
	stored, err := pgSQL.StoreScans(ctx, pendingScan(userID, below10))
	require.NoError(t, err)

	result := below10.Scan(nil)
	cleared := ""
	updated, err := pgSQL.UpdateScanByID(ctx, stored[0].ID, storage.ScanUpdates{
		Status:    domain.ScanStatusCompleted,
		Result:    &result,
		LastError: &cleared,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Equal(t, domain.ScanStatusCompleted, updated.Status)
	require.Equal(t, []int64{2, 3, 5, 7}, updated.Result.Primes)
	require.Equal(t, int64(7), updated.Result.Max)
	require.Empty(t, updated.LastError)

	missing, err := pgSQL.UpdateScanByID(ctx, domain.ScanID(uuid.New()), storage.ScanUpdates{
		Status: domain.ScanStatusCompleted,
	})
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestPgSQL_DeleteScan(t *testing.T) {
	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	owner := domain.UserID(uuid.New())
	stranger := domain.UserID(uuid.New())
	stored, err := pgSQL.StoreScans(ctx, pendingScan(owner, upTo20))
	require.NoError(t, err)
	id := stored[0].ID

	deleted, err := pgSQL.DeleteScan(ctx, stranger, id)
	require.NoError(t, err)
	require.Nil(t, deleted, "other users cannot delete the scan")

	deleted, err = pgSQL.DeleteScan(ctx, owner, id)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	require.False(t, deleted.DeletedAt.IsZero())

	again, err := pgSQL.DeleteScan(ctx, owner, id)
	require.NoError(t, err)
	require.Nil(t, again)

	got, err := pgSQL.ScanByID(ctx, owner, id)
	require.NoError(t, err)
	require.Nil(t, got)

	count, err := pgSQL.PendingScanCountByRange(ctx, upTo20)
	require.NoError(t, err)
	require.Zero(t, count, "soft-deleted scans are not pending")
}

func TestPgSQL_UserScans_Pagination(t *testing.T) {
	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	userID := domain.UserID(uuid.New())
	for upper := int64(3); upper < 8; upper++ {
		_, err := pgSQL.StoreScans(ctx, pendingScan(userID, primality.Range{Upper: upper}))
		require.NoError(t, err)
		// distinct created_at values keep the cursor unambiguous
		time.Sleep(5 * time.Millisecond)
	}
	_, err := pgSQL.StoreScans(ctx, pendingScan(domain.UserID(uuid.New()), upTo20))
	require.NoError(t, err)

	page, err := pgSQL.UserScans(ctx, userID, "", storage.Cursor{}, 2)
	require.NoError(t, err)
	require.Len(t, page.Scans, 2)
	require.Equal(t, int64(7), page.Scans[0].Range.Upper, "newest first")
	require.Equal(t, int64(6), page.Scans[1].Range.Upper)
	require.NotNil(t, page.NextCursor)

	var seen []int64
	for _, s := range page.Scans {
		seen = append(seen, s.Range.Upper)
	}
	for page.NextCursor != nil {
		page, err = pgSQL.UserScans(ctx, userID, "", *page.NextCursor, 2)
		require.NoError(t, err)
		for _, s := range page.Scans {
			seen = append(seen, s.Range.Upper)
		}
	}
	require.Equal(t, []int64{7, 6, 5, 4, 3}, seen)

	_, err = pgSQL.UserScans(ctx, userID, "", storage.Cursor{}, 0)
	require.ErrorIs(t, err, storage.ErrZeroLimit)
}

func TestPgSQL_UserScans_PaginationSharedCreatedAt(t *testing.T) {
	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	userID := domain.UserID(uuid.New())
	// one statement stamps every row with the same created_at
	stored, err := pgSQL.StoreScans(ctx,
		pendingScan(userID, primality.Range{Upper: 3}),
		pendingScan(userID, primality.Range{Upper: 4}),
		pendingScan(userID, primality.Range{Upper: 5}),
		pendingScan(userID, primality.Range{Upper: 6}),
	)
	require.NoError(t, err)
	for _, s := range stored[1:] {
		require.True(t, stored[0].CreatedAt.Equal(s.CreatedAt))
	}

	var seen []domain.ScanID
	var cursor storage.Cursor
	for {
		page, err := pgSQL.UserScans(ctx, userID, "", cursor, 1)
		require.NoError(t, err)
		for _, s := range page.Scans {
			seen = append(seen, s.ID)
		}
		if page.NextCursor == nil {
			break
		}
		cursor = *page.NextCursor
	}

	want := make([]domain.ScanID, 0, len(stored))
	for _, s := range stored {
		want = append(want, s.ID)
	}
	require.ElementsMatch(t, want, seen)
	require.Len(t, seen, len(stored), "no scan is returned twice")
}

func TestPgSQL_UserScans_StatusFilter(t *testing.T) {
	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	userID := domain.UserID(uuid.New())
	stored, err := pgSQL.StoreScans(ctx, pendingScan(userID, upTo20), pendingScan(userID, below10))
	require.NoError(t, err)

	result := below10.Scan(nil)
	_, err = pgSQL.UpdateScanByID(ctx, stored[1].ID, storage.ScanUpdates{
		Status: domain.ScanStatusCompleted,
		Result: &result,
	})
	require.NoError(t, err)

	page, err := pgSQL.UserScans(ctx, userID, domain.ScanStatusCompleted, storage.Cursor{}, 10)
	require.NoError(t, err)
	require.Len(t, page.Scans, 1)
	require.Equal(t, below10, page.Scans[0].Range)
	require.Nil(t, page.NextCursor)
}

func TestPgSQL_LastCompletedScanByRange(t *testing.T) {
	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	none, err := pgSQL.LastCompletedScanByRange(ctx, upTo20)
	require.NoError(t, err)
	require.Nil(t, none)

	userID := domain.UserID(uuid.New())
	_, err = pgSQL.StoreScans(ctx, pendingScan(userID, upTo20))
	require.NoError(t, err)

	result := upTo20.Scan(nil)
	require.NoError(t, pgSQL.UpdatePendingScansByRange(ctx, upTo20, storage.ScanUpdates{
		Status: domain.ScanStatusCompleted,
		Result: &result,
	}))

	last, err := pgSQL.LastCompletedScanByRange(ctx, upTo20)
	require.NoError(t, err)
	require.NotNil(t, last)
	require.Equal(t, int64(19), last.Result.Max)

	other, err := pgSQL.LastCompletedScanByRange(ctx, primality.Range{Upper: 20})
	require.NoError(t, err)
	require.Nil(t, other, "exclusive bound is a different range")
}

func TestPgSQL_LastCompletedScanByRange_AfterDelete(t *testing.T) {
	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	userID := domain.UserID(uuid.New())
	stored, err := pgSQL.StoreScans(ctx, pendingScan(userID, upTo20))
	require.NoError(t, err)

	result := upTo20.Scan(nil)
	require.NoError(t, pgSQL.UpdatePendingScansByRange(ctx, upTo20, storage.ScanUpdates{
		Status: domain.ScanStatusCompleted,
		Result: &result,
	}))

	deleted, err := pgSQL.DeleteScan(ctx, userID, stored[0].ID)
	require.NoError(t, err)
	require.NotNil(t, deleted)

	// the range is requested again while its completed job still dedups inserts
	again, err := pgSQL.StoreScans(ctx, pendingScan(domain.UserID(uuid.New()), upTo20))
	require.NoError(t, err)

	last, err := pgSQL.LastCompletedScanByRange(ctx, upTo20)
	require.NoError(t, err)
	require.NotNil(t, last, "a deleted scan still serves its result")
	require.Equal(t, stored[0].ID, last.ID)
	require.Equal(t, result, last.Result)

	updated, err := pgSQL.UpdateScanByID(ctx, again[0].ID, storage.ScanUpdates{
		Status: domain.ScanStatusCompleted,
		Result: &last.Result,
	})
	require.NoError(t, err)
	require.Equal(t, domain.ScanStatusCompleted, updated.Status)
	require.Equal(t, int64(19), updated.Result.Max)
}

func TestPgSQL_WithTx_ScanVisibility(t *testing.T) {
	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	userID := domain.UserID(uuid.New())
	var id domain.ScanID
	err := pgSQL.WithTx(ctx, func(tx storage.AllStorage) error {
		res, err := tx.StoreScans(ctx, pendingScan(userID, upTo20))
		if err != nil {
			return err //nolint: wrapcheck
		}
		id = res[0].ID

		// not visible outside the tx yet
		outside, err := pgSQL.ScanByID(ctx, userID, id)
		require.NoError(t, err)
		require.Nil(t, outside)

		return nil
	})
	require.NoError(t, err)

	got, err := pgSQL.ScanByID(ctx, userID, id)
	require.NoError(t, err)
	require.NotNil(t, got)
}
