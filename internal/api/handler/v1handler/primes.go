package v1handler

import (
	"bufio"
	"errors"
	"net/http"
	"primes/pkg/logger"
	"primes/pkg/primality"
	"primes/pkg/serrors"
	"strconv"

	"github.com/go-faster/jx"
	"go.uber.org/zap"
)

// CheckPrime handles GET /v1/primes/{n}.
func (h Handler) CheckPrime(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.ParseInt(r.PathValue("n"), 10, 64)
	if err != nil {
		h.writeError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "n must be an integer"))

		return
	}

	prime, err := h.deps.Scanner.Check(r.Context(), n)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	writeJSON(r.Context(), w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("n")
		e.Int64(n)
		e.FieldStart("prime")
		e.Bool(prime)
		e.ObjEnd()
	})
}

func (h Handler) rangeFromQuery(r *http.Request) (primality.Range, error) {
	rng := h.deps.DefaultRange
	q := r.URL.Query()

	if v := q.Get("upper"); v != "" {
		upper, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return rng, serrors.Wrap(serrors.ErrBadRequest, err, "upper must be an integer")
		}
		rng.Upper = upper
		// an explicit bound is exclusive unless asked otherwise
		rng.Inclusive = false
	}
	if v := q.Get("inclusive"); v != "" {
		inclusive, err := strconv.ParseBool(v)
		if err != nil {
			return rng, serrors.Wrap(serrors.ErrBadRequest, err, "inclusive must be a boolean")
		}
		rng.Inclusive = inclusive
	}

	return rng, nil
}

// ScanPrimes handles GET /v1/primes. It answers with a JSON result, or with one
// prime per line as the scan progresses when format=text is requested.
func (h Handler) ScanPrimes(w http.ResponseWriter, r *http.Request) {
	rng, err := h.rangeFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	if r.URL.Query().Get("format") == "text" {
		h.streamPrimes(w, r, rng)

		return
	}

	res, err := h.deps.Scanner.ScanRange(r.Context(), rng, nil)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	writeJSON(r.Context(), w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("interval")
		e.Str(rng.String())
		e.FieldStart("primes")
		encodePrimes(e, res.Primes)
		e.FieldStart("max")
		e.Int64(res.Max)
		e.ObjEnd()
	})
}

// Trailers closing a text stream. ScanStatusTrailer is ScanStatusComplete once
// every prime was written, or the error code that cut the stream short, in
// which case ScanErrorTrailer holds the message.
const (
	ScanStatusTrailer  = "X-Scan-Status"
	ScanErrorTrailer   = "X-Scan-Error"
	ScanStatusComplete = "COMPLETE"
)

// IsStreaming reports whether r asks for primes written as they are found.
// Such responses can't be buffered, so they get no response timeout.
func IsStreaming(r *http.Request) bool {
	return r.Method == http.MethodGet && r.URL.Path == "/v1/primes" && r.URL.Query().Get("format") == "text"
}

func (h Handler) streamPrimes(w http.ResponseWriter, r *http.Request, rng primality.Range) {
	if err := rng.Validate(); err != nil {
		h.writeError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "invalid range"))

		return
	}

	w.Header().Set("Trailer", ScanStatusTrailer+", "+ScanErrorTrailer)
	rc := http.NewResponseController(w)
	bw := bufio.NewWriter(w)
	started := false
	var writeErr error
	res, err := h.deps.Scanner.ScanRange(r.Context(), rng, func(p int64) {
		if writeErr != nil {
			return
		}
		if !started {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			started = true
		}
		_, _ = bw.WriteString(strconv.FormatInt(p, 10))
		_ = bw.WriteByte('\n')
		if writeErr = bw.Flush(); writeErr != nil {
			return
		}
		if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
			writeErr = err
		}
	})
	if err != nil && !started {
		h.writeError(w, r, err)

		return
	}
	if writeErr != nil {
		logger.Debug(r.Context(), "could not write primes", zap.Error(writeErr))

		return
	}
	if err != nil {
		logger.Warn(r.Context(), "scan interrupted while streaming", zap.Error(err))
		resErr := h.NewError(r.Context(), err)
		w.Header().Set(ScanStatusTrailer, resErr.Response.Code)
		w.Header().Set(ScanErrorTrailer, resErr.Response.Message)

		return
	}

	w.Header().Set(ScanStatusTrailer, ScanStatusComplete)
	logger.Debug(r.Context(), "primes streamed", zap.Int64("max", res.Max))
}
