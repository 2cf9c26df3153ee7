package common

import (
	"errors"
)

// Failure taxonomy for the analysis pipeline. Sentinel errors are matched
// with errors.Is so callers can map them to job failures or HTTP statuses.
var (
	// ErrUnsupportedType is returned when an upload's extension is outside
	// the allowed set. Surfaced as a client error at upload time.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrNotFound is returned when a file or job identifier does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrNoFilesFound is returned when none of a job's file identifiers
	// resolve to a stored file.
	ErrNoFilesFound = errors.New("no valid files found")

	// ErrNoValidData is returned when none of the resolved files parse.
	ErrNoValidData = errors.New("no data could be loaded from the provided files")

	// ErrSchemaMismatch is returned when merged files have diverging column
	// sets and schema drift is not allowed.
	ErrSchemaMismatch = errors.New("column sets diverge across files")

	// ErrUnsupportedFormat is returned for an unrecognized report format.
	ErrUnsupportedFormat = errors.New("unsupported report format")

	// ErrStageTimeout is returned when a pipeline stage exceeds its
	// configured deadline.
	ErrStageTimeout = errors.New("pipeline stage timed out")
)
