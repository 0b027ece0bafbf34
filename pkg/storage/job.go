package storage

import (
	"context"

	"github.com/riverqueue/river"
)

// JobStorage enqueues background jobs in the same backend as the scans, so a
// job and the scan rows it serves can be written atomically.
type JobStorage interface {
	// AddJob enqueues a job and reports whether it was inserted. It returns
	// false without error when River skipped the job as a unique duplicate.
	AddJob(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error)
}
