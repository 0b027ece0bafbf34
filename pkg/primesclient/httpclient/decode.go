package httpclient

import (
	"io"
	"net/http"
	"primes/pkg/domain"
	"primes/pkg/primality"
	"primes/pkg/primesclient"
	"primes/pkg/serrors"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"
)

// fieldErr annotates a decoding failure with the field it happened in.
func fieldErr(err error, key string) error {
	if err == nil {
		return nil
	}

	return errors.Wrap(err, key)
}

func decodePrimes(d *jx.Decoder) ([]int64, error) {
	primes := []int64{}
	err := d.Arr(func(d *jx.Decoder) error {
		p, err := d.Int64()
		if err != nil {
			return err //nolint: wrapcheck
		}
		primes = append(primes, p)

		return nil
	})

	return primes, err //nolint: wrapcheck
}

// decodeResult reads {"primes": [...], "max": N}. Other fields are skipped.
func decodeResult(d *jx.Decoder) (primality.Result, error) {
	res := primality.Result{Max: primality.SmallestPrime}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "primes":
			res.Primes, err = decodePrimes(d)
		case "max":
			res.Max, err = d.Int64()
		default:
			return d.Skip()
		}

		return fieldErr(err, key)
	})

	return res, err //nolint: wrapcheck
}

func decodeRange(d *jx.Decoder) (primality.Range, error) {
	var r primality.Range
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "upper":
			r.Upper, err = d.Int64()
		case "inclusive":
			r.Inclusive, err = d.Bool()
		default:
			return d.Skip()
		}

		return fieldErr(err, key)
	})

	return r, err //nolint: wrapcheck
}

func decodeTime(d *jx.Decoder) (time.Time, error) {
	s, err := d.Str()
	if err != nil {
		return time.Time{}, err //nolint: wrapcheck
	}

	return time.Parse(time.RFC3339Nano, s) //nolint: wrapcheck
}

func decodeScan(d *jx.Decoder) (domain.Scan, error) {
	s := domain.Scan{Result: primality.Result{Max: primality.SmallestPrime}}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			var raw string
			if raw, err = d.Str(); err == nil {
				var id uuid.UUID
				id, err = uuid.Parse(raw)
				s.ID = domain.ScanID(id)
			}
		case "range":
			s.Range, err = decodeRange(d)
		case "status":
			var raw string
			raw, err = d.Str()
			s.Status = domain.ScanStatus(raw)
		case "result":
			s.Result, err = decodeResult(d)
		case "attempts":
			s.Attempts, err = d.UInt()
		case "createdAt":
			s.CreatedAt, err = decodeTime(d)
		case "updatedAt":
			s.UpdatedAt, err = decodeTime(d)
		default:
			return d.Skip()
		}

		return fieldErr(err, key)
	})
	if err != nil {
		return s, err //nolint: wrapcheck
	}
	if !s.Status.Valid() {
		return s, errors.Errorf("unknown scan status %q", s.Status)
	}

	return s, nil
}

func decodeScanList(d *jx.Decoder) (primesclient.ScanList, error) {
	list := primesclient.ScanList{Items: []domain.Scan{}}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "items":
			return fieldErr(d.Arr(func(d *jx.Decoder) error {
				s, err := decodeScan(d)
				if err != nil {
					return err
				}
				list.Items = append(list.Items, s)

				return nil
			}), key)
		case "nextCursor":
			if d.Next() == jx.Null {
				return d.Null()
			}
			c, err := d.Str()
			list.NextCursor = c

			return fieldErr(err, key)
		default:
			return d.Skip()
		}
	})

	return list, err //nolint: wrapcheck
}

// Trailers the server closes a text stream with.
const (
	scanStatusTrailer  = "X-Scan-Status"
	scanErrorTrailer   = "X-Scan-Error"
	scanStatusComplete = "COMPLETE"
)

// streamError reports how a fully read text stream ended. A stream that was cut
// short carries the error code and message in its trailers; a stream without a
// status is treated as truncated.
func streamError(trailer http.Header) error {
	switch status := trailer.Get(scanStatusTrailer); status {
	case scanStatusComplete:
		return nil
	case "":
		return serrors.With(serrors.ErrInternal, "primes stream ended without a status")
	default:
		msg := trailer.Get(scanErrorTrailer)
		if msg == "" {
			msg = "primes stream interrupted"
		}

		return serrors.With(serrors.ParseKind(status), "%s", msg)
	}
}

// kindByStatus is used when an error body carries no code.
func kindByStatus(status int) serrors.Kind {
	switch status {
	case http.StatusNotFound:
		return serrors.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return serrors.ErrUnauthorized
	case http.StatusBadRequest:
		return serrors.ErrBadRequest
	case http.StatusConflict:
		return serrors.ErrConflict
	case http.StatusGatewayTimeout, http.StatusServiceUnavailable:
		return serrors.ErrTimeout
	default:
		return serrors.ErrInternal
	}
}

// responseError turns a non-2xx response into a semantic error. The kind is
// taken from the {"code","message"} body when present.
func responseError(resp *http.Response) error {
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return serrors.Wrap(kindByStatus(resp.StatusCode), err, "could not read error response")
	}

	var code, msg string
	if jx.DecodeBytes(b).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "code":
			code, err = d.Str()
		case "message":
			msg, err = d.Str()
		default:
			return d.Skip()
		}

		return err //nolint: wrapcheck
	}) != nil || code == "" {
		text := strings.TrimSpace(string(b))
		if text == "" {
			text = http.StatusText(resp.StatusCode)
		}

		return serrors.With(kindByStatus(resp.StatusCode), "request failed with status %d: %s", resp.StatusCode, text)
	}

	return serrors.With(serrors.ParseKind(code), "%s", msg)
}
