// Package primality implements trial-division primality testing and scanning of
// bounded integer ranges for primes.
//
// Candidates are int64 values and must be non-negative. Scans always start at
// SmallestPrime and walk the range in ascending order.
package primality

import "errors"

// SmallestPrime is the lower bound of every scanned range and the initial value
// of Result.Max.
const SmallestPrime int64 = 2

var (
	// ErrNegativeCandidate is returned by Validate for candidates below zero.
	ErrNegativeCandidate = errors.New("candidate must be a non-negative integer")
	// ErrEmptyRange is returned by Range.Validate when the range does not contain SmallestPrime.
	ErrEmptyRange = errors.New("range must contain at least the smallest prime")
)

// Validate reports whether n satisfies the precondition of IsPrime.
func Validate(n int64) error {
	if n < 0 {
		return ErrNegativeCandidate
	}

	return nil
}

// IsPrime reports whether n is prime using trial division by odd divisors up to
// the square root of n. Values below 2 (including negative ones) are not prime.
func IsPrime(n int64) bool {
	if n < SmallestPrime {
		return false
	}
	// 2 is the only even prime; the check is done here rather than in callers.
	if n == SmallestPrime {
		return true
	}
	if n%2 == 0 {
		return false
	}

	// k <= n/k is k*k <= n without overflow near math.MaxInt64.
	for k := int64(3); k <= n/k; k += 2 {
		if n%k == 0 {
			return false
		}
	}

	return true
}
