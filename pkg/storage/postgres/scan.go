package postgres

import (
	"context"
	"fmt"
	"primes/pkg/domain"
	"primes/pkg/primality"
	"primes/pkg/storage"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
)

const (
	scansTable = "scans"
)

// rangeIs matches rows of exactly the given range.
func rangeIs(r primality.Range) []exp.Expression {
	return []exp.Expression{
		goqu.I("upper").Eq(r.Upper),
		goqu.I("inclusive").Eq(r.Inclusive),
	}
}

// updateRecord builds the SET clause shared by range and ID updates.
func updateRecord(updates storage.ScanUpdates) goqu.Record {
	rec := goqu.Record{
		"updated_at": goqu.L("CURRENT_TIMESTAMP"),
		"attempts":   goqu.L("attempts + 1"),
		"status":     string(updates.Status),
	}
	if updates.Status == domain.ScanStatusFailed && updates.MaxAttempts > 0 {
		// stay pending until the attempts budget is spent
		rec["status"] = goqu.L("CASE WHEN attempts + 1 >= ? THEN ? ELSE status END",
			updates.MaxAttempts, string(domain.ScanStatusFailed))
	}
	if updates.Result != nil {
		rec["primes"] = string(EncodePrimes(updates.Result.Primes))
		rec["max_prime"] = updates.Result.Max
	}
	if updates.LastError != nil {
		if *updates.LastError == "" {
			rec["last_error"] = goqu.L("NULL")
		} else {
			rec["last_error"] = *updates.LastError
		}
	}

	return rec
}

func (p *PgSQL) StoreScans(ctx context.Context, scans ...domain.Scan) ([]domain.Scan, error) {
	if len(scans) == 0 {
		return nil, nil
	}

	var result []PgScan
	if err := p.Builder.Insert(scansTable).
		Rows(domainScansToPg(scans)).
		Returning(&PgScan{}).
		Executor().ScanStructsContext(ctx, &result); err != nil {
		return nil, fmt.Errorf("could not store scans into pg: %w", err)
	}

	return pgScansToDomain(result)
}

// UpdatePendingScansByRange updates all pending scans of the range.
func (p *PgSQL) UpdatePendingScansByRange(ctx context.Context,
	r primality.Range,
	updates storage.ScanUpdates) error {
	where := append(rangeIs(r),
		goqu.I("status").Eq(string(domain.ScanStatusPending)),
		goqu.I("deleted_at").IsNull(),
	)

	_, err := p.Builder.Update(scansTable).
		Set(updateRecord(updates)).
		Where(where...).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not update pending scans by range in pg: %w", err)
	}

	return nil
}

func (p *PgSQL) PendingScanCountByRange(ctx context.Context, r primality.Range) (int64, error) {
	where := append(rangeIs(r),
		goqu.I("status").Eq(string(domain.ScanStatusPending)),
		goqu.I("deleted_at").IsNull(),
	)

	count, err := p.Builder.From(scansTable).Where(where...).CountContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not count pending scans in pg: %w", err)
	}

	return count, nil
}

func (p *PgSQL) UpdateScanByID(ctx context.Context, id domain.ScanID, updates storage.ScanUpdates) (*domain.Scan, error) {
	var row PgScan
	found, err := p.Builder.Update(scansTable).
		Set(updateRecord(updates)).
		Where(
			goqu.I("id").Eq(uuid.UUID(id)),
			goqu.I("deleted_at").IsNull(),
		).
		Returning(&PgScan{}).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not update scan in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

// DeleteScan performs a soft delete by setting deleted_at.
func (p *PgSQL) DeleteScan(ctx context.Context, userID domain.UserID, id domain.ScanID) (*domain.Scan, error) {
	var row PgScan
	found, err := p.Builder.Update(scansTable).
		Set(goqu.Record{
			"deleted_at": goqu.L("CURRENT_TIMESTAMP"),
		}).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
		goqu.I("user_id").Eq(uuid.UUID(userID)),
		goqu.I("deleted_at").IsNull(),
	).Returning(&PgScan{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not delete scan in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

// UserScans returns the user's scans ordered by created_at DESC, id DESC.
func (p *PgSQL) UserScans(ctx context.Context,
	userID domain.UserID,
	status domain.ScanStatus,
	cursor storage.Cursor,
	limit uint) (storage.UserScans, error) {
	if limit == 0 {
		return storage.UserScans{}, storage.ErrZeroLimit
	}

	w := []exp.Expression{
		goqu.I("user_id").Eq(uuid.UUID(userID)),
		goqu.I("deleted_at").IsNull(),
	}
	if status != "" {
		w = append(w, goqu.I("status").Eq(string(status)))
	}
	if !cursor.IsZero() {
		w = append(w, goqu.L("(created_at, id) < (?, ?)", cursor.CreatedAt, uuid.UUID(cursor.ID)))
	}

	// fetch one extra to know whether a next page exists
	ds := p.Builder.From(scansTable).
		Where(w...).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(limit + 1)

	var rows []PgScan
	if err := ds.Executor().ScanStructsContext(ctx, &rows); err != nil {
		return storage.UserScans{}, fmt.Errorf("could not fetch user scans from pg: %w", err)
	}

	var nextCursor *storage.Cursor
	if uint(len(rows)) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = &storage.Cursor{CreatedAt: last.CreatedAt, ID: domain.ScanID(last.ID)}
	}

	domainRows, err := pgScansToDomain(rows)
	if err != nil {
		return storage.UserScans{}, err
	}

	return storage.UserScans{
		Scans:      domainRows,
		NextCursor: nextCursor,
	}, nil
}

// ScanByID returns a scan by its ID, excluding soft-deleted rows.
func (p *PgSQL) ScanByID(ctx context.Context, userID domain.UserID, id domain.ScanID) (*domain.Scan, error) {
	var row PgScan
	found, err := p.Builder.From(scansTable).
		Where(
			goqu.I("id").Eq(uuid.UUID(id)),
			goqu.I("user_id").Eq(uuid.UUID(userID)),
			goqu.I("deleted_at").IsNull(),
		).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch scan by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

// LastCompletedScanByRange includes soft-deleted rows. A completed job keeps
// new scans of its range from enqueueing another one, so its result must stay
// reachable after the scans it completed are deleted.
func (p *PgSQL) LastCompletedScanByRange(ctx context.Context, r primality.Range) (*domain.Scan, error) {
	where := append(rangeIs(r), goqu.I("status").Eq(string(domain.ScanStatusCompleted)))

	var row PgScan
	found, err := p.Builder.From(scansTable).
		Where(where...).
		Order(goqu.I("updated_at").Desc().NullsLast(), goqu.I("created_at").Desc()).
		Limit(1).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch last completed scan: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}
