package timer

import "errors"

var (
	// ErrNoCurrentEntry indicates a transition that needs a current entry.
	ErrNoCurrentEntry = errors.New("no current entry")
	// ErrEntryNotFound indicates the target entry doesn't exist.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrParentNotFound indicates the requested parent doesn't exist.
	ErrParentNotFound = errors.New("parent entry not found")
)
