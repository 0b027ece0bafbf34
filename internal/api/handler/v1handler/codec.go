package v1handler

import (
	"io"
	"primes/pkg/domain"
	"primes/pkg/primality"
	"primes/pkg/serrors"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// maxBodyBytes limits request bodies.
const maxBodyBytes = 1 << 16

func encodeRange(e *jx.Encoder, r primality.Range) {
	e.ObjStart()
	e.FieldStart("upper")
	e.Int64(r.Upper)
	e.FieldStart("inclusive")
	e.Bool(r.Inclusive)
	e.ObjEnd()
}

func encodePrimes(e *jx.Encoder, primes []int64) {
	e.ArrStart()
	for _, p := range primes {
		e.Int64(p)
	}
	e.ArrEnd()
}

func encodeResult(e *jx.Encoder, res primality.Result) {
	e.ObjStart()
	e.FieldStart("primes")
	encodePrimes(e, res.Primes)
	e.FieldStart("max")
	e.Int64(res.Max)
	e.ObjEnd()
}

func encodeScan(e *jx.Encoder, s *domain.Scan) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(s.ID.String())
	e.FieldStart("range")
	encodeRange(e, s.Range)
	e.FieldStart("interval")
	e.Str(s.Range.String())
	e.FieldStart("status")
	e.Str(string(s.Status))
	if s.Status == domain.ScanStatusCompleted {
		e.FieldStart("result")
		encodeResult(e, s.Result)
	}
	e.FieldStart("attempts")
	e.UInt(s.Attempts)
	e.FieldStart("createdAt")
	e.Str(s.CreatedAt.UTC().Format(time.RFC3339Nano))
	if !s.UpdatedAt.IsZero() {
		e.FieldStart("updatedAt")
		e.Str(s.UpdatedAt.UTC().Format(time.RFC3339Nano))
	}
	e.ObjEnd()
}

func encodeScanList(e *jx.Encoder, scans []domain.Scan, nextCursor string) {
	e.ObjStart()
	e.FieldStart("items")
	e.ArrStart()
	for i := range scans {
		encodeScan(e, &scans[i])
	}
	e.ArrEnd()
	e.FieldStart("nextCursor")
	if nextCursor == "" {
		e.Null()
	} else {
		e.Str(nextCursor)
	}
	e.ObjEnd()
}

// decodeRange reads a {"upper": N, "inclusive": B} body. Upper is required.
func decodeRange(body io.Reader) (primality.Range, error) {
	var (
		r        primality.Range
		hasUpper bool
	)

	d := jx.Decode(body, 0)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "upper":
			v, err := d.Int64()
			if err != nil {
				return errors.Wrap(err, "upper")
			}
			r.Upper, hasUpper = v, true
		case "inclusive":
			v, err := d.Bool()
			if err != nil {
				return errors.Wrap(err, "inclusive")
			}
			r.Inclusive = v
		default:
			return d.Skip()
		}

		return nil
	}); err != nil {
		return r, serrors.Wrap(serrors.ErrBadRequest, err, "invalid request body")
	}
	if !hasUpper {
		return r, serrors.With(serrors.ErrBadRequest, "upper is required")
	}

	return r, nil
}
