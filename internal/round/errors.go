package round

import "fmt"

// ValidationError reports a malformed Entry, naming the field that failed.
// It is always a defect at the boundary that produced the entry, never a
// value to coerce or ignore.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid entry: field %q %s", e.Field, e.Reason)
}

// ComparisonError reports that one side of a comparison was not a valid
// Entry. Side is "previous" or "current".
type ComparisonError struct {
	Side string
	Err  error
}

func (e *ComparisonError) Error() string {
	return fmt.Sprintf("compare: %s entry is invalid: %v", e.Side, e.Err)
}

func (e *ComparisonError) Unwrap() error { return e.Err }

// ExhaustedError is the sentinel returned when every acquisition attempt
// failed. It carries the last attempt's cause so the run failure names it.
type ExhaustedError struct {
	Attempts int
	LastErr  error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("acquisition exhausted after %d attempts: %v", e.Attempts, e.LastErr)
}

func (e *ExhaustedError) Unwrap() error { return e.LastErr }

// StorageError reports a failed durable write. The previously persisted
// entry is intact whenever this is returned.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
