// Package mocks provides testify mocks for the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/nkall/chronotrack/internal/domain/entry"
	"github.com/nkall/chronotrack/internal/repository"
)

// EntryRepository is a mock for repository.EntryRepository.
type EntryRepository struct {
	mock.Mock
}

func (m *EntryRepository) Create(ctx context.Context, e *entry.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *EntryRepository) Get(ctx context.Context, id string) (*entry.Entry, error) {
	args := m.Called(ctx, id)
	if e, ok := args.Get(0).(*entry.Entry); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EntryRepository) Update(ctx context.Context, e *entry.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *EntryRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *EntryRepository) List(ctx context.Context) ([]entry.Entry, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]entry.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EntryRepository) ListRecent(ctx context.Context, limit int) ([]entry.Entry, error) {
	args := m.Called(ctx, limit)
	if list, ok := args.Get(0).([]entry.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EntryRepository) ListChildren(ctx context.Context, parentID string) ([]entry.Entry, error) {
	args := m.Called(ctx, parentID)
	if list, ok := args.Get(0).([]entry.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EntryRepository) AppendSegment(ctx context.Context, entryID string, seg entry.Segment) error {
	args := m.Called(ctx, entryID, seg)
	return args.Error(0)
}

func (m *EntryRepository) CloseSegment(ctx context.Context, entryID string, end time.Time) error {
	args := m.Called(ctx, entryID, end)
	return args.Error(0)
}

func (m *EntryRepository) SetActive(ctx context.Context, entryID string, active bool) error {
	args := m.Called(ctx, entryID, active)
	return args.Error(0)
}

func (m *EntryRepository) FindOpenSegmentEntry(ctx context.Context) (*entry.Entry, error) {
	args := m.Called(ctx)
	if e, ok := args.Get(0).(*entry.Entry); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EntryRepository) FindActiveEntry(ctx context.Context) (*entry.Entry, error) {
	args := m.Called(ctx)
	if e, ok := args.Get(0).(*entry.Entry); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EntryRepository) FlushRunningDuration(ctx context.Context, entryID string, total int64) error {
	args := m.Called(ctx, entryID, total)
	return args.Error(0)
}

// InTx records the call, then runs fn against the mock itself so expectations
// set on the mock cover the transactional operations too. A configured error
// short-circuits without running fn, simulating a failed begin.
func (m *EntryRepository) InTx(ctx context.Context, fn func(repository.EntryRepository) error) error {
	args := m.Called(ctx, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m)
}
