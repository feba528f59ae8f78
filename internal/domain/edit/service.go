// Package edit applies direct user edits to stored entries: titles, notes,
// tags, and closed segments. The timer owns segment lifecycle; this package
// only handles explicit after-the-fact corrections.
package edit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nkall/chronotrack/internal/domain/entry"
	"github.com/nkall/chronotrack/internal/repository"
)

// ErrSegmentOpen indicates an attempt to edit the running segment.
var ErrSegmentOpen = errors.New("cannot edit an open segment")

// ErrSegmentIndex indicates a segment index outside the entry's segments.
var ErrSegmentIndex = errors.New("segment index out of range")

// Service handles entry field edits.
type Service struct {
	entries repository.EntryRepository
	logger  *slog.Logger
}

// NewService creates a new edit service.
func NewService(entries repository.EntryRepository, logger *slog.Logger) *Service {
	return &Service{entries: entries, logger: logger}
}

// Request carries field edits; nil fields are left unchanged. Tags replaces
// the whole tag set when non-nil.
type Request struct {
	Title *string
	Notes *string
	Tags  []string
}

// Apply edits an entry's fields and returns the updated entry.
func (s *Service) Apply(ctx context.Context, id string, req Request) (*entry.Entry, error) {
	e, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if err := entry.ValidateTitle(*req.Title); err != nil {
			return nil, err
		}
		e.Title = strings.TrimSpace(*req.Title)
	}
	if req.Notes != nil {
		e.Notes = *req.Notes
	}
	if req.Tags != nil {
		e.Tags = entry.NormalizeTags(req.Tags)
	}
	e.UpdatedAt = time.Now()

	if err := s.persist(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// EditSegment rewrites the time range of a closed segment and recomputes the
// cached duration. Open segments belong to the timer and are rejected.
func (s *Service) EditSegment(ctx context.Context, id string, index int, start, end time.Time) (*entry.Entry, error) {
	e, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(e.Segments) {
		return nil, ErrSegmentIndex
	}
	if e.Segments[index].Open() {
		return nil, ErrSegmentOpen
	}

	seg := entry.Segment{StartTime: start, EndTime: &end}
	if err := entry.ValidateSegment(seg); err != nil {
		return nil, err
	}
	seg.Duration = int64(end.Sub(start) / time.Second)

	e.Segments[index] = seg
	e.Duration = e.TotalSeconds()
	e.UpdatedAt = time.Now()

	if err := s.persist(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Get returns an entry by ID.
func (s *Service) Get(ctx context.Context, id string) (*entry.Entry, error) {
	return s.get(ctx, id)
}

// List returns all entries.
func (s *Service) List(ctx context.Context) ([]entry.Entry, error) {
	return s.entries.List(ctx)
}

// Recent returns the most recently touched entries.
func (s *Service) Recent(ctx context.Context, limit int) ([]entry.Entry, error) {
	return s.entries.ListRecent(ctx, limit)
}

func (s *Service) get(ctx context.Context, id string) (*entry.Entry, error) {
	e, err := s.entries.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, entry.ErrEntryNotFound
		}
		return nil, fmt.Errorf("loading entry: %w", err)
	}
	return e, nil
}

func (s *Service) persist(ctx context.Context, e *entry.Entry) error {
	err := s.entries.InTx(ctx, func(tx repository.EntryRepository) error {
		return tx.Update(ctx, e)
	})
	if err != nil {
		return fmt.Errorf("updating entry: %w", err)
	}
	return nil
}
