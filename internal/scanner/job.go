package scanner

import (
	"primes/pkg/primality"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// JobArgs contains the arguments for a range scan job submitted to River.
// Upper and Inclusive form the unique key, so one job serves every pending
// scan of the same range.
type JobArgs struct {
	Upper     int64 `json:"upper"     river:"unique"`
	Inclusive bool  `json:"inclusive" river:"unique"`

	maxAttempts     int
	uniqueJobPeriod time.Duration
}

// NewJobArgs builds the job arguments for scanning r.
func NewJobArgs(r primality.Range, maxAttempts int, uniqueJobPeriod time.Duration) JobArgs {
	return JobArgs{
		Upper:           r.Upper,
		Inclusive:       r.Inclusive,
		maxAttempts:     maxAttempts,
		uniqueJobPeriod: uniqueJobPeriod,
	}
}

// Range returns the range the job scans.
func (args JobArgs) Range() primality.Range {
	return primality.Range{Upper: args.Upper, Inclusive: args.Inclusive}
}

// Kind returns the River job kind used to register and dispatch the scan worker.
func (args JobArgs) Kind() string { return "ScanRangeJob" }

// InsertOpts limits retries and keeps a single job per range in any live or
// recently completed state.
func (args JobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		MaxAttempts: args.maxAttempts,
		UniqueOpts: river.UniqueOpts{
			ByArgs:   true,
			ByPeriod: args.uniqueJobPeriod,
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStateCompleted,
				rivertype.JobStatePending,
				rivertype.JobStateRunning,
				rivertype.JobStateRetryable,
				rivertype.JobStateScheduled,
			},
		},
	}
}
