package scanner_test

import (
	"primes/internal/scanner"
	"primes/pkg/primality"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJobArgs(t *testing.T) {
	r := primality.Range{Upper: 10}
	args := scanner.NewJobArgs(r, 5, time.Hour)

	require.Equal(t, "ScanRangeJob", args.Kind())
	require.Equal(t, r, args.Range())

	opts := args.InsertOpts()
	require.Equal(t, 5, opts.MaxAttempts)
	require.True(t, opts.UniqueOpts.ByArgs)
	require.Equal(t, time.Hour, opts.UniqueOpts.ByPeriod)
	require.NotEmpty(t, opts.UniqueOpts.ByState)
}
