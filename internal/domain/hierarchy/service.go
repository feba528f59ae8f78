package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nkall/chronotrack/internal/domain/entry"
	"github.com/nkall/chronotrack/internal/repository"
)

// Service maintains the entry tree: parent pointers, ancestor paths, depths,
// and child counters. Every multi-record change runs in one transaction so a
// failure cannot leave counters or paths half-applied.
//
// Paths are cascaded: moving an entry rewrites Path and Depth for its whole
// subtree in the same transaction, which keeps the ancestor-path cycle check
// sound for later moves.
type Service struct {
	entries repository.EntryRepository
	logger  *slog.Logger
}

// NewService creates a new hierarchy service.
func NewService(entries repository.EntryRepository, logger *slog.Logger) *Service {
	return &Service{entries: entries, logger: logger}
}

// AssignParent moves an entry under newParentID (nil for root). It fails
// with ErrCycle when the candidate parent is the entry itself or one of its
// descendants. Assigning the current parent again is a no-op.
func (s *Service) AssignParent(ctx context.Context, id string, newParentID *string) error {
	if newParentID != nil && *newParentID == id {
		return ErrCycle
	}

	e, err := s.entries.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("loading entry: %w", err)
	}

	if sameParent(e.ParentID, newParentID) {
		return nil
	}

	var newParent *entry.Entry
	if newParentID != nil {
		p, err := s.entries.Get(ctx, *newParentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrParentNotFound
			}
			return fmt.Errorf("loading parent: %w", err)
		}
		// The candidate's path holds its full ancestor chain, so containment
		// is a complete descendant check.
		if p.HasAncestor(id) {
			return ErrCycle
		}
		newParent = p
	}

	now := time.Now()
	err = s.entries.InTx(ctx, func(tx repository.EntryRepository) error {
		if e.ParentID != nil {
			if err := s.adjustChildCount(ctx, tx, *e.ParentID, -1, now); err != nil {
				return err
			}
		}

		if newParent != nil {
			parentID := newParent.ID
			e.ParentID = &parentID
			e.Path = append(append([]string(nil), newParent.Path...), newParent.ID)
			e.Depth = newParent.Depth + 1
			if err := s.adjustChildCount(ctx, tx, newParent.ID, +1, now); err != nil {
				return err
			}
		} else {
			e.ParentID = nil
			e.Path = nil
			e.Depth = 0
		}
		e.UpdatedAt = now
		if err := tx.Update(ctx, e); err != nil {
			return fmt.Errorf("updating entry: %w", err)
		}

		return s.rewriteSubtree(ctx, tx, e, now)
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("parent assigned", "entry", id, "depth", e.Depth)
	}
	return nil
}

// Delete removes an entry, re-parenting its children to the entry's own
// parent so no child is left pointing at a missing id. The children, their
// subtrees' paths, the grandparent's child count and the delete itself
// commit together.
func (s *Service) Delete(ctx context.Context, id string) error {
	e, err := s.entries.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("loading entry: %w", err)
	}

	children, err := s.entries.ListChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("loading children: %w", err)
	}

	now := time.Now()
	err = s.entries.InTx(ctx, func(tx repository.EntryRepository) error {
		for i := range children {
			child := &children[i]
			child.ParentID = nil
			if e.ParentID != nil {
				parentID := *e.ParentID
				child.ParentID = &parentID
			}
			child.Path = append([]string(nil), e.Path...)
			child.Depth = e.Depth
			child.UpdatedAt = now
			if err := tx.Update(ctx, child); err != nil {
				return fmt.Errorf("re-parenting child: %w", err)
			}
			if err := s.rewriteSubtree(ctx, tx, child, now); err != nil {
				return err
			}
		}

		if e.ParentID != nil {
			// The parent loses this entry but gains its children.
			if err := s.adjustChildCount(ctx, tx, *e.ParentID, len(children)-1, now); err != nil {
				return err
			}
		}

		if err := tx.Delete(ctx, id); err != nil {
			return fmt.Errorf("deleting entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("entry deleted", "entry", id, "reparented", len(children))
	}
	return nil
}

// Children returns the direct children of an entry.
func (s *Service) Children(ctx context.Context, id string) ([]entry.Entry, error) {
	return s.entries.ListChildren(ctx, id)
}

// Tree returns all entries in depth-first order, each subtree's children in
// creation order, so a renderer can indent by Depth and get a coherent tree.
// Entries whose parent is missing are listed as roots.
func (s *Service) Tree(ctx context.Context) ([]entry.Entry, error) {
	all, err := s.entries.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	byID := make(map[string]bool, len(all))
	for i := range all {
		byID[all[i].ID] = true
	}

	childIdx := make(map[string][]int)
	var rootIdx []int
	for i := range all {
		if p := all[i].ParentID; p != nil && byID[*p] {
			childIdx[*p] = append(childIdx[*p], i)
			continue
		}
		rootIdx = append(rootIdx, i)
	}

	// Explicit stack: user trees can be arbitrarily deep.
	out := make([]entry.Entry, 0, len(all))
	stack := make([]int, 0, len(rootIdx))
	for i := len(rootIdx) - 1; i >= 0; i-- {
		stack = append(stack, rootIdx[i])
	}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, all[idx])
		children := childIdx[all[idx].ID]
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return out, nil
}

// rewriteSubtree walks root's descendants breadth-first, rewriting Path and
// Depth from the (already updated) parent chain.
func (s *Service) rewriteSubtree(ctx context.Context, tx repository.EntryRepository, root *entry.Entry, now time.Time) error {
	queue := []*entry.Entry{root}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]

		children, err := tx.ListChildren(ctx, parent.ID)
		if err != nil {
			return fmt.Errorf("loading subtree children: %w", err)
		}
		for i := range children {
			child := &children[i]
			child.Path = append(append([]string(nil), parent.Path...), parent.ID)
			child.Depth = parent.Depth + 1
			child.UpdatedAt = now
			if err := tx.Update(ctx, child); err != nil {
				return fmt.Errorf("rewriting descendant path: %w", err)
			}
			queue = append(queue, child)
		}
	}
	return nil
}

// adjustChildCount applies a delta to a parent's child counter, floored at
// zero, touching UpdatedAt.
func (s *Service) adjustChildCount(ctx context.Context, tx repository.EntryRepository, parentID string, delta int, now time.Time) error {
	parent, err := tx.Get(ctx, parentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrParentNotFound
		}
		return fmt.Errorf("loading parent: %w", err)
	}
	parent.ChildCount += delta
	if parent.ChildCount < 0 {
		parent.ChildCount = 0
	}
	parent.UpdatedAt = now
	if err := tx.Update(ctx, parent); err != nil {
		return fmt.Errorf("updating parent: %w", err)
	}
	return nil
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
