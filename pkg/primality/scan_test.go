package primality_test

import (
	"context"
	"math"
	"primes/pkg/primality"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRange_Scan(t *testing.T) {
	tests := []struct {
		name       string
		rng        primality.Range
		wantPrimes []int64
		wantMax    int64
	}{
		{
			name:       "two to twenty inclusive",
			rng:        primality.Range{Upper: 20, Inclusive: true},
			wantPrimes: []int64{2, 3, 5, 7, 11, 13, 17, 19},
			wantMax:    19,
		},
		{
			name:       "two to ten exclusive",
			rng:        primality.Range{Upper: 10},
			wantPrimes: []int64{2, 3, 5, 7},
			wantMax:    7,
		},
		{
			name:       "only two",
			rng:        primality.Range{Upper: 2, Inclusive: true},
			wantPrimes: []int64{2},
			wantMax:    2,
		},
		{
			name:       "prime upper bound excluded",
			rng:        primality.Range{Upper: 19},
			wantPrimes: []int64{2, 3, 5, 7, 11, 13, 17},
			wantMax:    17,
		},
		{
			name:       "prime upper bound included",
			rng:        primality.Range{Upper: 19, Inclusive: true},
			wantPrimes: []int64{2, 3, 5, 7, 11, 13, 17, 19},
			wantMax:    19,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var emitted []int64
			res := tt.rng.Scan(func(p int64) { emitted = append(emitted, p) })

			require.Equal(t, tt.wantPrimes, res.Primes)
			require.Equal(t, tt.wantPrimes, emitted, "emitted primes should match the result, in order")
			require.Equal(t, tt.wantMax, res.Max)
		})
	}
}

func TestRange_ScanNilEmit(t *testing.T) {
	res := primality.Range{Upper: 20, Inclusive: true}.Scan(nil)
	require.Len(t, res.Primes, 8)
	require.Equal(t, int64(19), res.Max)
}

func TestRange_EmptyRangeKeepsInitialMax(t *testing.T) {
	res := primality.Range{Upper: 2}.Scan(nil)
	require.Empty(t, res.Primes)
	require.Equal(t, primality.SmallestPrime, res.Max)
}

func TestRange_PrimesIsRestartable(t *testing.T) {
	seq := primality.Range{Upper: 10}.Primes()

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	require.Equal(t, []int64{2, 3, 5, 7}, first)
	require.Equal(t, first, second)
}

func TestRange_PrimesIsLazy(t *testing.T) {
	// a huge range only does the work needed for the consumed prefix
	seq := primality.Range{Upper: math.MaxInt64, Inclusive: true}.Primes()

	var got []int64
	for p := range seq {
		got = append(got, p)
		if len(got) == 5 {
			break
		}
	}
	require.Equal(t, []int64{2, 3, 5, 7, 11}, got)
}

func TestRange_CandidatesStopAtMaxInt64(t *testing.T) {
	r := primality.Range{Upper: math.MaxInt64, Inclusive: true}

	var last int64
	for n := range r.Candidates() {
		last = n
		if n == 5 {
			break
		}
	}
	require.Equal(t, int64(5), last)
	require.Equal(t, int64(math.MaxInt64), r.Last())
}

func TestRange_Validate(t *testing.T) {
	require.NoError(t, primality.Range{Upper: 2, Inclusive: true}.Validate())
	require.NoError(t, primality.Range{Upper: 3}.Validate())
	require.ErrorIs(t, primality.Range{Upper: 2}.Validate(), primality.ErrEmptyRange)
	require.ErrorIs(t, primality.Range{Upper: 1, Inclusive: true}.Validate(), primality.ErrEmptyRange)
	require.ErrorIs(t, primality.Range{Upper: -5}.Validate(), primality.ErrEmptyRange)
}

func TestRange_String(t *testing.T) {
	require.Equal(t, "[2, 20]", primality.Range{Upper: 20, Inclusive: true}.String())
	require.Equal(t, "[2, 10)", primality.Range{Upper: 10}.String())
}

func TestRange_ScanContext(t *testing.T) {
	rng := primality.Range{Upper: 20, Inclusive: true}

	res, checked, err := rng.ScanContext(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, rng.Scan(nil), res)
	require.Equal(t, int64(19), checked)
}

func TestRange_ScanContextCanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	res, checked, err := primality.Range{Upper: 20, Inclusive: true}.ScanContext(ctx, func(int64) { called = true })
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, checked)
	require.Empty(t, res.Primes)
	require.Equal(t, primality.SmallestPrime, res.Max)
	require.False(t, called)
}

func TestRange_ScanContextCanceledMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var emitted []int64
	res, checked, err := primality.Range{Upper: 100_000}.ScanContext(ctx, func(p int64) {
		emitted = append(emitted, p)
		if p > 5000 {
			cancel()
		}
	})
	require.ErrorIs(t, err, context.Canceled)
	// the context is looked at every 4096 candidates
	require.Equal(t, int64(8192), checked)
	require.Equal(t, emitted, res.Primes)
	require.Less(t, res.Max, checked+primality.SmallestPrime)
	require.Equal(t, emitted[len(emitted)-1], res.Max)
}
