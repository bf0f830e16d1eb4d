package errs

// ErrorKind identifies a kind of internal error.
// Wrapped kinds are matched with errors.Is.
type ErrorKind string

const (
	// NotFound is returned when a requested record does not exist.
	NotFound = ErrorKind("not found")
	// Duplicate is returned when an append-only record key is already taken.
	Duplicate = ErrorKind("duplicate record")
	// OutOfOrder is returned when an event is older than the last one applied for its source.
	OutOfOrder = ErrorKind("event out of order")
	// AlreadyPending is reported when a proposal replaces an in-flight one.
	AlreadyPending = ErrorKind("update already pending")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}
