package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nkall/chronotrack/internal/domain/entry"
	"github.com/nkall/chronotrack/internal/repository"
)

func testEntry(id string) *entry.Entry {
	now := time.Now()
	return &entry.Entry{
		ID:        id,
		Title:     "Test entry",
		Notes:     "some notes",
		Tags:      []string{"alpha", "beta"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestEntryRepository_CreateGet(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewEntryRepository(db)

	e := testEntry("e1")
	start := time.Now().Add(-time.Hour)
	end := start.Add(30 * time.Minute)
	e.Segments = []entry.Segment{
		{StartTime: start, EndTime: &end, Duration: 1800},
		{StartTime: end},
	}
	e.Duration = 1800

	require.NoError(t, repo.Create(ctx, e))

	loaded, err := repo.Get(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, e.Title, loaded.Title)
	require.Equal(t, e.Notes, loaded.Notes)
	require.Equal(t, []string{"alpha", "beta"}, loaded.Tags)
	require.Len(t, loaded.Segments, 2)
	require.WithinDuration(t, start, loaded.Segments[0].StartTime, time.Millisecond)
	require.NotNil(t, loaded.Segments[0].EndTime)
	require.Equal(t, int64(1800), loaded.Segments[0].Duration)
	require.True(t, loaded.Segments[1].Open())
}

func TestEntryRepository_GetNotFound(t *testing.T) {
	db := NewTestDB(t)
	repo := NewEntryRepository(db)

	_, err := repo.Get(context.Background(), "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEntryRepository_UpdateRewritesDetails(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewEntryRepository(db)

	e := testEntry("e1")
	require.NoError(t, repo.Create(ctx, e))

	e.Title = "Renamed"
	e.Tags = []string{"gamma"}
	start := time.Now().Add(-time.Minute)
	end := start.Add(time.Minute)
	e.Segments = []entry.Segment{{StartTime: start, EndTime: &end, Duration: 60}}
	e.Duration = 60
	require.NoError(t, repo.Update(ctx, e))

	loaded, err := repo.Get(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, "Renamed", loaded.Title)
	require.Equal(t, []string{"gamma"}, loaded.Tags)
	require.Len(t, loaded.Segments, 1)
	require.Equal(t, int64(60), loaded.Duration)
}

func TestEntryRepository_UpdateNotFound(t *testing.T) {
	db := NewTestDB(t)
	repo := NewEntryRepository(db)

	err := repo.Update(context.Background(), testEntry("ghost"))
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEntryRepository_DeleteWithChildrenRejected(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewEntryRepository(db)

	parent := testEntry("parent")
	require.NoError(t, repo.Create(ctx, parent))

	child := testEntry("child")
	parentID := "parent"
	child.ParentID = &parentID
	child.Path = []string{"parent"}
	child.Depth = 1
	require.NoError(t, repo.Create(ctx, child))

	err := repo.Delete(ctx, "parent")
	require.ErrorIs(t, err, repository.ErrForeignKeyViolation)

	require.NoError(t, repo.Delete(ctx, "child"))
	require.NoError(t, repo.Delete(ctx, "parent"))
	require.ErrorIs(t, repo.Delete(ctx, "parent"), repository.ErrNotFound)
}

func TestEntryRepository_ListChildren(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewEntryRepository(db)

	require.NoError(t, repo.Create(ctx, testEntry("root")))
	for _, id := range []string{"c1", "c2"} {
		child := testEntry(id)
		parentID := "root"
		child.ParentID = &parentID
		child.Path = []string{"root"}
		child.Depth = 1
		require.NoError(t, repo.Create(ctx, child))
	}

	children, err := repo.ListChildren(ctx, "root")
	require.NoError(t, err)
	require.Len(t, children, 2)
	require.Equal(t, []string{"root"}, children[0].Path)
	require.Equal(t, 1, children[0].Depth)
}

func TestEntryRepository_ListRecentOrder(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewEntryRepository(db)

	old := testEntry("old")
	old.UpdatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, old))

	fresh := testEntry("fresh")
	require.NoError(t, repo.Create(ctx, fresh))

	recent, err := repo.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, "fresh", recent[0].ID)
}

func TestEntryRepository_AppendAndCloseSegment(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewEntryRepository(db)

	e := testEntry("e1")
	require.NoError(t, repo.Create(ctx, e))

	start := time.Now().Add(-90 * time.Second)
	require.NoError(t, repo.AppendSegment(ctx, "e1", entry.Segment{StartTime: start}))

	running, err := repo.FindOpenSegmentEntry(ctx)
	require.NoError(t, err)
	require.Equal(t, "e1", running.ID)

	end := start.Add(90 * time.Second)
	require.NoError(t, repo.CloseSegment(ctx, "e1", end))

	loaded, err := repo.Get(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, loaded.Segments, 1)
	require.False(t, loaded.Segments[0].Open())
	require.Equal(t, int64(90), loaded.Segments[0].Duration)
	require.Equal(t, int64(90), loaded.Duration)

	// No open segment left: closing again is a no-op.
	require.NoError(t, repo.CloseSegment(ctx, "e1", end.Add(time.Hour)))
	_, err = repo.FindOpenSegmentEntry(ctx)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEntryRepository_SetActiveAndFindActive(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewEntryRepository(db)

	require.NoError(t, repo.Create(ctx, testEntry("e1")))

	_, err := repo.FindActiveEntry(ctx)
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.SetActive(ctx, "e1", true))
	active, err := repo.FindActiveEntry(ctx)
	require.NoError(t, err)
	require.Equal(t, "e1", active.ID)
	require.True(t, active.Active)

	require.NoError(t, repo.SetActive(ctx, "e1", false))
	_, err = repo.FindActiveEntry(ctx)
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.ErrorIs(t, repo.SetActive(ctx, "ghost", true), repository.ErrNotFound)
}

func TestEntryRepository_FlushRunningDuration(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewEntryRepository(db)

	require.NoError(t, repo.Create(ctx, testEntry("e1")))
	require.NoError(t, repo.FlushRunningDuration(ctx, "e1", 123))

	loaded, err := repo.Get(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, int64(123), loaded.Duration)
}

func TestEntryRepository_InTxRollsBack(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewEntryRepository(db)

	boom := errors.New("boom")
	err := repo.InTx(ctx, func(tx repository.EntryRepository) error {
		if err := tx.Create(ctx, testEntry("e1")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repo.Get(ctx, "e1")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEntryRepository_InTxCommits(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewEntryRepository(db)

	err := repo.InTx(ctx, func(tx repository.EntryRepository) error {
		return tx.Create(ctx, testEntry("e1"))
	})
	require.NoError(t, err)

	_, err = repo.Get(ctx, "e1")
	require.NoError(t, err)
}
