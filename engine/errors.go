package engine

import "fmt"

// ValidationError marks a locally recoverable input problem: the offending
// operation is blocked, nothing changes state, and the message is safe to show
// to the user.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ExternalIOError wraps a failure from the backing store. Calls that already
// completed are not rolled back; the caller may retry the whole operation.
type ExternalIOError struct {
	Op  string
	Err error
}

func (e *ExternalIOError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *ExternalIOError) Unwrap() error { return e.Err }

// InvariantError signals a computation defect, e.g. split shares that do not
// sum to the item total. It should never occur in practice.
type InvariantError struct {
	Detail string
}

func (e *InvariantError) Error() string { return "invariant violation: " + e.Detail }
