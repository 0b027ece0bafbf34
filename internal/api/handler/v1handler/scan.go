package v1handler

import (
	"net/http"
	"primes/pkg/domain"
	"primes/pkg/serrors"
	"strconv"

	"github.com/go-faster/jx"
	"github.com/google/uuid"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

func scanIDFromPath(r *http.Request) (domain.ScanID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return domain.ScanID{}, serrors.Wrap(serrors.ErrBadRequest, err, "invalid scan id")
	}

	return domain.ScanID(id), nil
}

// CreateScan schedules a new scan of the range in the request body.
func (h Handler) CreateScan(w http.ResponseWriter, r *http.Request) {
	rng, err := decodeRange(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	s, err := h.deps.Scanner.Enqueue(r.Context(), GetUserIDFromContext(r.Context()), rng)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	status := http.StatusAccepted
	if s.Status == domain.ScanStatusCompleted {
		status = http.StatusOK
	}
	writeJSON(r.Context(), w, status, func(e *jx.Encoder) { encodeScan(e, s) })
}

// DeleteScan deletes a scan by ID.
func (h Handler) DeleteScan(w http.ResponseWriter, r *http.Request) {
	id, err := scanIDFromPath(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	if err := h.deps.Scanner.Delete(r.Context(), GetUserIDFromContext(r.Context()), id); err != nil {
		h.writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetScan returns details of a scan by ID.
func (h Handler) GetScan(w http.ResponseWriter, r *http.Request) {
	id, err := scanIDFromPath(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	s, err := h.deps.Scanner.Result(r.Context(), GetUserIDFromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	writeJSON(r.Context(), w, http.StatusOK, func(e *jx.Encoder) { encodeScan(e, s) })
}

// ListScans returns a paginated list of scans.
func (h Handler) ListScans(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := DefaultLimit
	if v := q.Get("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 || l > MaxLimit {
			h.writeError(w, r, serrors.With(serrors.ErrBadRequest, "limit must be between 1 and %d", MaxLimit))

			return
		}
		limit = l
	}

	scans, nextCursor, err := h.deps.Scanner.UserScans(r.Context(),
		GetUserIDFromContext(r.Context()),
		domain.ScanStatus(q.Get("status")),
		q.Get("cursor"),
		uint(limit)) //nolint: gosec
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	writeJSON(r.Context(), w, http.StatusOK, func(e *jx.Encoder) { encodeScanList(e, scans, nextCursor) })
}
