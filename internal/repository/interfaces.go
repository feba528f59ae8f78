package repository

import (
	"context"
	"time"

	"github.com/nkall/chronotrack/internal/domain/entry"
)

// EntryRepository manages entry persistence. Implementations back the timer,
// hierarchy and interchange services; aggregation reads snapshots through
// List and never writes.
type EntryRepository interface {
	Create(ctx context.Context, e *entry.Entry) error
	Get(ctx context.Context, id string) (*entry.Entry, error)
	Update(ctx context.Context, e *entry.Entry) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]entry.Entry, error)
	ListRecent(ctx context.Context, limit int) ([]entry.Entry, error)
	ListChildren(ctx context.Context, parentID string) ([]entry.Entry, error)

	// AppendSegment adds a new segment to the entry, updating the cached
	// duration and UpdatedAt.
	AppendSegment(ctx context.Context, entryID string, seg entry.Segment) error
	// CloseSegment closes the entry's open segment. It is a no-op when the
	// entry has no open segment.
	CloseSegment(ctx context.Context, entryID string, end time.Time) error
	// SetActive flips the entry's active flag without touching segments.
	SetActive(ctx context.Context, entryID string, active bool) error
	// FindOpenSegmentEntry returns the entry owning the single open segment,
	// or ErrNotFound when no segment is open anywhere.
	FindOpenSegmentEntry(ctx context.Context) (*entry.Entry, error)
	// FindActiveEntry returns the most recently updated entry still flagged
	// active, or ErrNotFound.
	FindActiveEntry(ctx context.Context) (*entry.Entry, error)
	// FlushRunningDuration overwrites the cached duration of a running entry
	// so displayed totals survive a crash. The cache is recomputed from
	// segments when the open segment closes, so flushed values are advisory.
	FlushRunningDuration(ctx context.Context, entryID string, total int64) error

	// InTx runs fn against a repository whose operations apply atomically:
	// either every write inside fn commits or none do.
	InTx(ctx context.Context, fn func(EntryRepository) error) error
}
