package entry

import "errors"

var (
	// ErrEmptyTitle indicates a title that is empty after trimming.
	ErrEmptyTitle = errors.New("entry title must not be empty")
	// ErrInvalidRange indicates a segment whose end precedes its start.
	ErrInvalidRange = errors.New("segment end time precedes start time")
	// ErrEntryNotFound indicates the entry doesn't exist.
	ErrEntryNotFound = errors.New("entry not found")
)
