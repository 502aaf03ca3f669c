package jobs

import "fmt"

// UnsupportedJobError is returned when a dispatch carries an identifier with
// no registered handler. It keeps the identifier exactly as received, before
// alias normalization.
type UnsupportedJobError struct {
	Identifier string
}

func (e *UnsupportedJobError) Error() string {
	return fmt.Sprintf("unsupported job identifier: %q", e.Identifier)
}

// DimensionMismatchError is returned when the embedding provider yields a
// vector whose width differs from the configured schema. The rebuild job
// aborts before any vector upsert.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding dimensions mismatch: expected %d, got %d", e.Expected, e.Actual)
}
