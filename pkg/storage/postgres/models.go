package postgres

import (
	"database/sql"
	"fmt"
	"primes/pkg/domain"
	"primes/pkg/primality"
	"time"

	"github.com/go-faster/jx"
	"github.com/google/uuid"
)

// PgScan is the row layout of the scans table.
type PgScan struct {
	ID     uuid.UUID `db:"id"      goqu:"skipinsert"`
	UserID uuid.UUID `db:"user_id"`

	Upper     int64  `db:"upper"`
	Inclusive bool   `db:"inclusive"`
	Status    string `db:"status"`
	Primes    []byte `db:"primes"`
	MaxPrime  int64  `db:"max_prime"`

	Attempts  uint           `db:"attempts"   goqu:"skipinsert"`
	LastError sql.NullString `db:"last_error" goqu:"skipinsert"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
	DeletedAt sql.NullTime `db:"deleted_at" goqu:"skipinsert"`
}

// EncodePrimes renders primes as a JSON array for the jsonb primes column.
func EncodePrimes(primes []int64) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, p := range primes {
		e.Int64(p)
	}
	e.ArrEnd()

	return e.Bytes()
}

// DecodePrimes parses the JSON array stored in the primes column.
func DecodePrimes(raw []byte) ([]int64, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var primes []int64
	if err := jx.DecodeBytes(raw).Arr(func(d *jx.Decoder) error {
		p, err := d.Int64()
		if err != nil {
			return err //nolint: wrapcheck
		}
		primes = append(primes, p)

		return nil
	}); err != nil {
		return nil, fmt.Errorf("could not decode primes: %w", err)
	}

	return primes, nil
}

func (p *PgScan) ToDomain() (*domain.Scan, error) {
	primes, err := DecodePrimes(p.Primes)
	if err != nil {
		return nil, err
	}

	return &domain.Scan{
		ID:     domain.ScanID(p.ID),
		UserID: domain.UserID(p.UserID),
		Range: primality.Range{
			Upper:     p.Upper,
			Inclusive: p.Inclusive,
		},
		Status: domain.ScanStatus(p.Status),
		Result: primality.Result{
			Primes: primes,
			Max:    p.MaxPrime,
		},
		Attempts:  p.Attempts,
		LastError: p.LastError.String,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt.Time,
		DeletedAt: p.DeletedAt.Time,
	}, nil
}

func (p *PgScan) FromDomain(scan domain.Scan) {
	maxPrime := scan.Result.Max
	if maxPrime == 0 {
		maxPrime = primality.SmallestPrime
	}

	*p = PgScan{
		ID:        uuid.UUID(scan.ID),
		UserID:    uuid.UUID(scan.UserID),
		Upper:     scan.Range.Upper,
		Inclusive: scan.Range.Inclusive,
		Status:    string(scan.Status),
		Primes:    EncodePrimes(scan.Result.Primes),
		MaxPrime:  maxPrime,
		Attempts:  scan.Attempts,
		LastError: sql.NullString{
			String: scan.LastError,
			Valid:  scan.LastError != "",
		},
		CreatedAt: scan.CreatedAt,
		UpdatedAt: sql.NullTime{
			Time:  scan.UpdatedAt,
			Valid: !scan.UpdatedAt.IsZero(),
		},
		DeletedAt: sql.NullTime{
			Time:  scan.DeletedAt,
			Valid: !scan.DeletedAt.IsZero(),
		},
	}
}

func domainScansToPg(scans []domain.Scan) []PgScan {
	out := make([]PgScan, len(scans))
	for i := range out {
		out[i].FromDomain(scans[i])
	}

	return out
}

func pgScansToDomain(scans []PgScan) ([]domain.Scan, error) {
	out := make([]domain.Scan, 0, len(scans))
	for _, scan := range scans {
		d, err := scan.ToDomain()
		if err != nil {
			return nil, err
		}

		out = append(out, *d)
	}

	return out, nil
}
