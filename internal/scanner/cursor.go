package scanner

import (
	"errors"
	"fmt"
	"primes/pkg/domain"
	"primes/pkg/storage"
	"strings"
	"time"

	"github.com/google/uuid"
)

const cursorSep = "_"

var errMalformedCursor = errors.New("malformed cursor")

// encodeCursor renders c as "<created_at>_<id>" with created_at in RFC3339Nano.
func encodeCursor(c storage.Cursor) string {
	return c.CreatedAt.UTC().Format(time.RFC3339Nano) + cursorSep + c.ID.String()
}

func decodeCursor(s string) (storage.Cursor, error) {
	ts, id, ok := strings.Cut(s, cursorSep)
	if !ok {
		return storage.Cursor{}, errMalformedCursor
	}

	createdAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return storage.Cursor{}, fmt.Errorf("%w: %w", errMalformedCursor, err)
	}
	scanID, err := uuid.Parse(id)
	if err != nil {
		return storage.Cursor{}, fmt.Errorf("%w: %w", errMalformedCursor, err)
	}

	return storage.Cursor{CreatedAt: createdAt, ID: domain.ScanID(scanID)}, nil
}
