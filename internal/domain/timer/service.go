package timer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nkall/chronotrack/internal/domain/entry"
	"github.com/nkall/chronotrack/internal/repository"
)

// State is the timer lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

// Service is the timer state machine. It owns the single current entry and
// serializes every transition through one mutex, which is what guarantees at
// most one open segment exists across the whole store. Persistence completes
// before in-memory state advances; a failed write leaves the machine where it
// was.
type Service struct {
	entries repository.EntryRepository
	logger  *slog.Logger
	clock   func() time.Time

	mu      sync.Mutex
	current *entry.Entry
	state   State
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source, used by tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// NewService creates a new timer service in the Idle state.
func NewService(entries repository.EntryRepository, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		entries: entries,
		logger:  logger,
		clock:   time.Now,
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartRequest describes a timer start.
type StartRequest struct {
	Title    string
	Notes    string
	Tags     []string
	ParentID *string
}

// Snapshot is a read-only view of the machine for display.
type Snapshot struct {
	State          State
	Entry          *entry.Entry
	ElapsedSeconds int64
}

// Restore rebuilds the machine state from storage: the entry owning an open
// segment is Running; failing that, the most recently active entry is Paused.
func (s *Service) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	running, err := s.entries.FindOpenSegmentEntry(ctx)
	if err == nil {
		s.current = running
		s.state = StateRunning
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("restoring running entry: %w", err)
	}

	paused, err := s.entries.FindActiveEntry(ctx)
	if err == nil {
		s.current = paused
		s.state = StatePaused
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("restoring paused entry: %w", err)
	}

	s.current = nil
	s.state = StateIdle
	return nil
}

// Start stops any current entry, then creates and starts tracking a new one.
// The stop of the previous entry and the creation of the new one commit in a
// single transaction so two open segments can never coexist.
func (s *Service) Start(ctx context.Context, req StartRequest) (*entry.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := entry.ValidateTitle(req.Title); err != nil {
		return nil, err
	}

	var parent *entry.Entry
	if req.ParentID != nil {
		p, err := s.entries.Get(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, fmt.Errorf("loading parent: %w", err)
		}
		parent = p
	}

	now := s.clock()
	e := &entry.Entry{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(req.Title),
		Notes:     req.Notes,
		Tags:      entry.NormalizeTags(req.Tags),
		Segments:  []entry.Segment{{StartTime: now}},
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if parent != nil {
		parentID := parent.ID
		e.ParentID = &parentID
		e.Path = append(append([]string(nil), parent.Path...), parent.ID)
		e.Depth = parent.Depth + 1
	}

	prev := s.current
	prevState := s.state
	err := s.entries.InTx(ctx, func(tx repository.EntryRepository) error {
		if prev != nil {
			if err := s.settle(ctx, tx, prev, prevState, now); err != nil {
				return err
			}
		}
		if err := tx.Create(ctx, e); err != nil {
			return fmt.Errorf("creating entry: %w", err)
		}
		if parent != nil {
			// Re-read inside the transaction: the parent can be the entry
			// just settled, and Update rewrites the whole row from its
			// argument. A pre-transaction copy would resurrect the closed
			// segment and the active flag.
			fresh, err := tx.Get(ctx, parent.ID)
			if err != nil {
				return fmt.Errorf("loading parent: %w", err)
			}
			fresh.ChildCount++
			fresh.UpdatedAt = now
			if err := tx.Update(ctx, fresh); err != nil {
				return fmt.Errorf("updating parent: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.current = e
	s.state = StateRunning
	s.logf("timer started", "entry", e.ID, "title", e.Title)
	return e.Clone(), nil
}

// Pause closes the open segment of the current entry. Calling it while Idle
// or already Paused is a no-op.
func (s *Service) Pause(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return nil
	}

	now := s.clock()
	err := s.entries.InTx(ctx, func(tx repository.EntryRepository) error {
		return tx.CloseSegment(ctx, s.current.ID, now)
	})
	if err != nil {
		return fmt.Errorf("pausing entry: %w", err)
	}

	s.closeCurrent(now)
	s.state = StatePaused
	s.logf("timer paused", "entry", s.current.ID)
	return nil
}

// Resume appends a fresh open segment to the paused current entry. Calling
// it while already Running is a no-op; with no current entry it fails.
func (s *Service) Resume(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		return nil
	}
	if s.state == StateIdle {
		return ErrNoCurrentEntry
	}

	now := s.clock()
	seg := entry.Segment{StartTime: now}
	err := s.entries.InTx(ctx, func(tx repository.EntryRepository) error {
		return tx.AppendSegment(ctx, s.current.ID, seg)
	})
	if err != nil {
		return fmt.Errorf("resuming entry: %w", err)
	}

	s.current.Segments = append(s.current.Segments, seg)
	s.current.UpdatedAt = now
	s.state = StateRunning
	s.logf("timer resumed", "entry", s.current.ID)
	return nil
}

// Stop closes the open segment if running, deactivates the current entry,
// and returns the machine to Idle. Calling it while Idle is a no-op.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateIdle {
		return nil
	}

	now := s.clock()
	stopped := s.current
	err := s.entries.InTx(ctx, func(tx repository.EntryRepository) error {
		return s.settle(ctx, tx, stopped, s.state, now)
	})
	if err != nil {
		return fmt.Errorf("stopping entry: %w", err)
	}

	if s.state == StateRunning {
		s.closeCurrent(now)
	}
	stopped.Active = false
	s.current = nil
	s.state = StateIdle
	s.logf("timer stopped", "entry", stopped.ID)
	return nil
}

// ResumeEntry stops the current entry if any, then starts tracking an
// existing entry with a fresh segment.
func (s *Service) ResumeEntry(ctx context.Context, entryID string) (*entry.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, err := s.entries.Get(ctx, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("loading entry: %w", err)
	}

	now := s.clock()
	seg := entry.Segment{StartTime: now}
	prev := s.current
	prevState := s.state
	err = s.entries.InTx(ctx, func(tx repository.EntryRepository) error {
		if prev != nil && prev.ID != target.ID {
			if err := s.settle(ctx, tx, prev, prevState, now); err != nil {
				return err
			}
		}
		if prev != nil && prev.ID == target.ID && prevState == StateRunning {
			// Already tracking this entry with an open segment.
			return nil
		}
		if err := tx.AppendSegment(ctx, target.ID, seg); err != nil {
			return fmt.Errorf("appending segment: %w", err)
		}
		return tx.SetActive(ctx, target.ID, true)
	})
	if err != nil {
		return nil, err
	}

	if prev != nil && prev.ID == target.ID && prevState == StateRunning {
		return s.current.Clone(), nil
	}

	target.Segments = append(target.Segments, seg)
	target.Active = true
	target.UpdatedAt = now
	s.current = target
	s.state = StateRunning
	s.logf("entry resumed", "entry", target.ID, "title", target.Title)
	return target.Clone(), nil
}

// Current returns a snapshot for display. The returned entry is a deep copy.
func (s *Service) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{State: s.state}
	if s.current != nil {
		snap.Entry = s.current.Clone()
		snap.ElapsedSeconds = s.elapsedLocked()
	}
	return snap
}

// FlushRunning writes the running entry's elapsed total to storage so the
// displayed duration survives a crash. Best-effort; the cache is rebuilt
// from segments on the next close.
func (s *Service) FlushRunning(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return nil
	}
	return s.entries.FlushRunningDuration(ctx, s.current.ID, s.elapsedLocked())
}

// settle persists the stop of an entry: close its open segment when running,
// clear its active flag. Runs inside the caller's transaction.
func (s *Service) settle(ctx context.Context, tx repository.EntryRepository, e *entry.Entry, state State, now time.Time) error {
	if state == StateRunning {
		if err := tx.CloseSegment(ctx, e.ID, now); err != nil {
			return fmt.Errorf("closing segment: %w", err)
		}
	}
	if err := tx.SetActive(ctx, e.ID, false); err != nil {
		return fmt.Errorf("deactivating entry: %w", err)
	}
	return nil
}

// closeCurrent mirrors the persisted segment close on the in-memory entry.
func (s *Service) closeCurrent(now time.Time) {
	if seg := s.current.OpenSegment(); seg != nil {
		seg.Close(now)
	}
	s.current.Duration = s.current.TotalSeconds()
	s.current.UpdatedAt = now
}

// elapsedLocked returns closed seconds plus the open segment's age.
func (s *Service) elapsedLocked() int64 {
	total := int64(0)
	for _, seg := range s.current.Segments {
		if seg.Open() {
			total += int64(s.clock().Sub(seg.StartTime) / time.Second)
		} else {
			total += seg.Duration
		}
	}
	return total
}

func (s *Service) logf(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}
