package storage

import "errors"

var (
	// ErrAlreadyInTx is returned by Begin on a handle that is already transactional.
	ErrAlreadyInTx = errors.New("already in tx")
	// ErrNotInTx is returned by Commit and Rollback outside of a transaction.
	ErrNotInTx = errors.New("not in tx")
	// ErrZeroLimit is returned by paginated queries asked for an empty page.
	ErrZeroLimit = errors.New("limit must be greater than zero")
)
