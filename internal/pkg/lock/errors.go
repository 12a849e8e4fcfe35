package lock

import "errors"

// Lock-related errors.
var (
	// ErrLockTimeout is returned when a table lock cannot be acquired in time.
	ErrLockTimeout = errors.New("table lock acquisition timeout")
)
