package primality

import (
	"context"
	"fmt"
	"iter"
)

// ctxCheckInterval is the number of candidates tested between context checks.
const ctxCheckInterval = 4096

// Range describes the candidates [SmallestPrime, Upper] when Inclusive is set and
// [SmallestPrime, Upper) otherwise.
type Range struct {
	// Upper is the upper bound of the range.
	Upper int64 `json:"upper"`
	// Inclusive makes Upper itself part of the range.
	Inclusive bool `json:"inclusive"`
}

// Result is the outcome of scanning a Range.
type Result struct {
	// Primes holds every prime of the range in ascending order.
	Primes []int64 `json:"primes"`
	// Max is the largest prime found. It starts at SmallestPrime.
	Max int64 `json:"max"`
}

// Last returns the last candidate of the range. For empty ranges it is below
// SmallestPrime.
func (r Range) Last() int64 {
	switch {
	case r.Upper < SmallestPrime:
		return SmallestPrime - 1
	case r.Inclusive:
		return r.Upper
	default:
		return r.Upper - 1
	}
}

// Validate makes sure the range contains SmallestPrime.
func (r Range) Validate() error {
	if r.Last() < SmallestPrime {
		return fmt.Errorf("%w: %s", ErrEmptyRange, r)
	}

	return nil
}

// String renders the range in interval notation, e.g. "[2, 20]" or "[2, 10)".
func (r Range) String() string {
	closing := ")"
	if r.Inclusive {
		closing = "]"
	}

	return fmt.Sprintf("[%d, %d%s", SmallestPrime, r.Upper, closing)
}

// Candidates returns every integer of the range in ascending order.
func (r Range) Candidates() iter.Seq[int64] {
	return func(yield func(int64) bool) {
		last := r.Last()
		for n := SmallestPrime; n <= last; n++ {
			if !yield(n) {
				return
			}
			// stop before n++ can overflow when last is math.MaxInt64
			if n == last {
				return
			}
		}
	}
}

// Primes returns a lazy sequence of the primes of the range in ascending order.
// The sequence is restartable: every iteration scans the range from the start.
func (r Range) Primes() iter.Seq[int64] {
	return func(yield func(int64) bool) {
		for n := range r.Candidates() {
			if IsPrime(n) && !yield(n) {
				return
			}
		}
	}
}

// Scan walks the range, calls emit (when non-nil) for every prime as it is found
// and returns the collected primes together with the maximum.
func (r Range) Scan(emit func(int64)) Result {
	// a background context is never done, so the scan always runs to the end
	res, _, _ := r.ScanContext(context.Background(), emit)

	return res
}

// ScanContext is Scan with cancellation. ctx is checked before the first
// candidate and then every ctxCheckInterval candidates. It also returns the
// number of candidates tested. When ctx is done the primes found so far are
// returned along with ctx.Err().
func (r Range) ScanContext(ctx context.Context, emit func(int64)) (Result, int64, error) {
	res := Result{Max: SmallestPrime}
	var checked int64
	for n := range r.Candidates() {
		if checked%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return res, checked, err
			}
		}
		checked++

		if !IsPrime(n) {
			continue
		}
		if emit != nil {
			emit(n)
		}
		res.Primes = append(res.Primes, n)
		if n > res.Max {
			res.Max = n
		}
	}

	return res, checked, nil
}
