package hierarchy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nkall/chronotrack/internal/domain/entry"
	"github.com/nkall/chronotrack/internal/domain/hierarchy"
	"github.com/nkall/chronotrack/internal/repository"
	"github.com/nkall/chronotrack/internal/repository/mocks"
)

func ptr(s string) *string { return &s }

func TestAssignParent_SelfIsCycle(t *testing.T) {
	repo := &mocks.EntryRepository{}
	svc := hierarchy.NewService(repo, nil)

	err := svc.AssignParent(context.Background(), "a", ptr("a"))
	require.ErrorIs(t, err, hierarchy.ErrCycle)
	repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestAssignParent_DescendantIsCycle(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.EntryRepository{}
	svc := hierarchy.NewService(repo, nil)

	repo.On("Get", ctx, "a").Return(&entry.Entry{ID: "a"}, nil)
	// b is a grandchild of a: its path carries a.
	repo.On("Get", ctx, "b").Return(&entry.Entry{
		ID:    "b",
		Path:  []string{"a", "mid"},
		Depth: 2,
	}, nil)

	err := svc.AssignParent(ctx, "a", ptr("b"))
	require.ErrorIs(t, err, hierarchy.ErrCycle)
	repo.AssertNotCalled(t, "InTx", mock.Anything, mock.Anything)
}

func TestAssignParent_EntryNotFound(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.EntryRepository{}
	svc := hierarchy.NewService(repo, nil)

	repo.On("Get", ctx, "ghost").Return(nil, repository.ErrNotFound)

	require.ErrorIs(t, svc.AssignParent(ctx, "ghost", nil), hierarchy.ErrEntryNotFound)
}

func TestAssignParent_ParentNotFound(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.EntryRepository{}
	svc := hierarchy.NewService(repo, nil)

	repo.On("Get", ctx, "a").Return(&entry.Entry{ID: "a"}, nil)
	repo.On("Get", ctx, "ghost").Return(nil, repository.ErrNotFound)

	require.ErrorIs(t, svc.AssignParent(ctx, "a", ptr("ghost")), hierarchy.ErrParentNotFound)
}

func TestAssignParent_SameParentIsNoop(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.EntryRepository{}
	svc := hierarchy.NewService(repo, nil)

	repo.On("Get", ctx, "a").Return(&entry.Entry{ID: "a", ParentID: ptr("p")}, nil)

	require.NoError(t, svc.AssignParent(ctx, "a", ptr("p")))
	repo.AssertNotCalled(t, "InTx", mock.Anything, mock.Anything)
}

func TestAssignParent_MovesAndCascades(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.EntryRepository{}
	svc := hierarchy.NewService(repo, nil)

	repo.On("Get", ctx, "a").Return(&entry.Entry{ID: "a", Title: "A"}, nil)
	repo.On("Get", ctx, "b").Return(&entry.Entry{ID: "b", Title: "B", ChildCount: 2}, nil)
	repo.On("InTx", ctx, mock.Anything).Return(nil)

	// a itself: under b with a rewritten path.
	repo.On("Update", ctx, mock.MatchedBy(func(e *entry.Entry) bool {
		return e.ID == "a" && *e.ParentID == "b" &&
			len(e.Path) == 1 && e.Path[0] == "b" && e.Depth == 1
	})).Return(nil)
	// b: child counter bumped.
	repo.On("Update", ctx, mock.MatchedBy(func(e *entry.Entry) bool {
		return e.ID == "b" && e.ChildCount == 3
	})).Return(nil)

	// a's child gets its path rewritten through the new chain.
	child := entry.Entry{ID: "c", ParentID: ptr("a"), Path: []string{"a"}, Depth: 1}
	repo.On("ListChildren", ctx, "a").Return([]entry.Entry{child}, nil)
	repo.On("ListChildren", ctx, "c").Return([]entry.Entry{}, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(e *entry.Entry) bool {
		return e.ID == "c" && len(e.Path) == 2 &&
			e.Path[0] == "b" && e.Path[1] == "a" && e.Depth == 2
	})).Return(nil)

	require.NoError(t, svc.AssignParent(ctx, "a", ptr("b")))
	repo.AssertExpectations(t)
}

func TestAssignParent_ToRootDecrementsOldParent(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.EntryRepository{}
	svc := hierarchy.NewService(repo, nil)

	repo.On("Get", ctx, "a").Return(&entry.Entry{
		ID:       "a",
		ParentID: ptr("p"),
		Path:     []string{"p"},
		Depth:    1,
	}, nil)
	repo.On("Get", ctx, "p").Return(&entry.Entry{ID: "p", ChildCount: 1}, nil)
	repo.On("InTx", ctx, mock.Anything).Return(nil)

	repo.On("Update", ctx, mock.MatchedBy(func(e *entry.Entry) bool {
		return e.ID == "p" && e.ChildCount == 0
	})).Return(nil)
	repo.On("Update", ctx, mock.MatchedBy(func(e *entry.Entry) bool {
		return e.ID == "a" && e.ParentID == nil && len(e.Path) == 0 && e.Depth == 0
	})).Return(nil)
	repo.On("ListChildren", ctx, "a").Return([]entry.Entry{}, nil)

	require.NoError(t, svc.AssignParent(ctx, "a", nil))
	repo.AssertExpectations(t)
}

func TestAssignParent_ChildCountFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.EntryRepository{}
	svc := hierarchy.NewService(repo, nil)

	// Old parent's counter already drifted to zero.
	repo.On("Get", ctx, "a").Return(&entry.Entry{
		ID:       "a",
		ParentID: ptr("p"),
		Path:     []string{"p"},
		Depth:    1,
	}, nil)
	repo.On("Get", ctx, "p").Return(&entry.Entry{ID: "p", ChildCount: 0}, nil)
	repo.On("InTx", ctx, mock.Anything).Return(nil)

	repo.On("Update", ctx, mock.MatchedBy(func(e *entry.Entry) bool {
		return e.ID == "p" && e.ChildCount == 0
	})).Return(nil)
	repo.On("Update", ctx, mock.MatchedBy(func(e *entry.Entry) bool {
		return e.ID == "a"
	})).Return(nil)
	repo.On("ListChildren", ctx, "a").Return([]entry.Entry{}, nil)

	require.NoError(t, svc.AssignParent(ctx, "a", nil))
	repo.AssertExpectations(t)
}

func TestDelete_ReparentsChildrenToGrandparent(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.EntryRepository{}
	svc := hierarchy.NewService(repo, nil)

	repo.On("Get", ctx, "mid").Return(&entry.Entry{
		ID:       "mid",
		ParentID: ptr("root"),
		Path:     []string{"root"},
		Depth:    1,
	}, nil)
	child := entry.Entry{ID: "leaf", ParentID: ptr("mid"), Path: []string{"root", "mid"}, Depth: 2}
	repo.On("ListChildren", ctx, "mid").Return([]entry.Entry{child}, nil)
	repo.On("InTx", ctx, mock.Anything).Return(nil)

	// The child moves up: root becomes its parent, path loses mid.
	repo.On("Update", ctx, mock.MatchedBy(func(e *entry.Entry) bool {
		return e.ID == "leaf" && *e.ParentID == "root" &&
			len(e.Path) == 1 && e.Path[0] == "root" && e.Depth == 1
	})).Return(nil)
	repo.On("ListChildren", ctx, "leaf").Return([]entry.Entry{}, nil)

	// root: loses mid, gains leaf, net zero.
	repo.On("Get", ctx, "root").Return(&entry.Entry{ID: "root", ChildCount: 1}, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(e *entry.Entry) bool {
		return e.ID == "root" && e.ChildCount == 1
	})).Return(nil)

	repo.On("Delete", ctx, "mid").Return(nil)

	require.NoError(t, svc.Delete(ctx, "mid"))
	repo.AssertExpectations(t)
}

func TestTree_DepthFirstOrder(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.EntryRepository{}
	svc := hierarchy.NewService(repo, nil)

	// Creation order interleaves the subtrees; Tree must regroup them.
	repo.On("List", ctx).Return([]entry.Entry{
		{ID: "a"},
		{ID: "b"},
		{ID: "a1", ParentID: ptr("a"), Path: []string{"a"}, Depth: 1},
		{ID: "b1", ParentID: ptr("b"), Path: []string{"b"}, Depth: 1},
		{ID: "a1x", ParentID: ptr("a1"), Path: []string{"a", "a1"}, Depth: 2},
		{ID: "stray", ParentID: ptr("gone")},
	}, nil)

	tree, err := svc.Tree(ctx)
	require.NoError(t, err)

	ids := make([]string, len(tree))
	for i, e := range tree {
		ids[i] = e.ID
	}
	require.Equal(t, []string{"a", "a1", "a1x", "b", "b1", "stray"}, ids)
}

func TestDelete_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.EntryRepository{}
	svc := hierarchy.NewService(repo, nil)

	repo.On("Get", ctx, "ghost").Return(nil, repository.ErrNotFound)

	require.ErrorIs(t, svc.Delete(ctx, "ghost"), hierarchy.ErrEntryNotFound)
}
