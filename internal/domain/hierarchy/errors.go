package hierarchy

import "errors"

var (
	// ErrCycle indicates a parent assignment that would create a cycle.
	ErrCycle = errors.New("parent assignment would create a cycle")
	// ErrEntryNotFound indicates the entry doesn't exist.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrParentNotFound indicates the candidate parent doesn't exist.
	ErrParentNotFound = errors.New("parent entry not found")
)
