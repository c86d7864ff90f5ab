package feed

import "fmt"

// ErrNotFound is returned when a job is missing or does not belong to the
// requesting user.
var ErrNotFound = fmt.Errorf("job not found")

// ErrZipNotFound is returned when a zip lookup resolves to no coordinates.
var ErrZipNotFound = fmt.Errorf("zip not found")

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
