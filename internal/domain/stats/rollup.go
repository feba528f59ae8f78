package stats

import (
	"sort"

	"github.com/nkall/chronotrack/internal/domain/entry"
)

// RollupNode is one project in the tree aggregation.
type RollupNode struct {
	ID           string
	Title        string
	OwnSeconds   int64
	TotalSeconds int64
	Percent      float64
	Children     []*RollupNode
}

// Rollup is the full tree aggregation for a window.
type Rollup struct {
	Roots        []*RollupNode
	TotalSeconds int64
}

// ProjectRollup aggregates in-window time up the project tree. Own seconds
// are the clipped overlap of an entry's own segments; total seconds add all
// descendants. Totals come from an explicit adjacency map and an iterative
// post-order walk with a memo table, so arbitrarily deep trees neither
// recompute subtrees nor blow the stack. Entries whose parent is missing
// from the snapshot are treated as roots. Siblings sort descending by total.
func ProjectRollup(entries []entry.Entry, w Window) Rollup {
	byID := make(map[string]*entry.Entry, len(entries))
	for i := range entries {
		byID[entries[i].ID] = &entries[i]
	}

	childIDs := make(map[string][]string)
	var rootIDs []string
	for i := range entries {
		e := &entries[i]
		if e.ParentID != nil {
			if _, ok := byID[*e.ParentID]; ok {
				childIDs[*e.ParentID] = append(childIDs[*e.ParentID], e.ID)
				continue
			}
		}
		rootIDs = append(rootIDs, e.ID)
	}

	own := make(map[string]int64, len(entries))
	for i := range entries {
		own[entries[i].ID] = windowSeconds(&entries[i], w)
	}

	// Iterative post-order: children's totals are memoized before their
	// parent is finalized, and each node is visited exactly once.
	totals := make(map[string]int64, len(entries))
	type frame struct {
		id       string
		expanded bool
	}
	for _, rootID := range rootIDs {
		stack := []frame{{id: rootID}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if !top.expanded {
				top.expanded = true
				for _, childID := range childIDs[top.id] {
					if _, done := totals[childID]; !done {
						stack = append(stack, frame{id: childID})
					}
				}
				continue
			}
			total := own[top.id]
			for _, childID := range childIDs[top.id] {
				total += totals[childID]
			}
			totals[top.id] = total
			stack = stack[:len(stack)-1]
		}
	}

	nodes := make(map[string]*RollupNode, len(entries))
	for i := range entries {
		e := &entries[i]
		nodes[e.ID] = &RollupNode{
			ID:           e.ID,
			Title:        e.Title,
			OwnSeconds:   own[e.ID],
			TotalSeconds: totals[e.ID],
		}
	}
	for parentID, ids := range childIDs {
		for _, id := range ids {
			nodes[parentID].Children = append(nodes[parentID].Children, nodes[id])
		}
	}

	var overall int64
	roots := make([]*RollupNode, 0, len(rootIDs))
	for _, id := range rootIDs {
		roots = append(roots, nodes[id])
		overall += totals[id]
	}

	sortNodes(roots)
	for _, node := range nodes {
		sortNodes(node.Children)
	}
	for _, node := range nodes {
		if overall > 0 {
			node.Percent = float64(node.TotalSeconds) / float64(overall) * 100
		}
	}

	return Rollup{Roots: roots, TotalSeconds: overall}
}

func sortNodes(nodes []*RollupNode) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].TotalSeconds != nodes[j].TotalSeconds {
			return nodes[i].TotalSeconds > nodes[j].TotalSeconds
		}
		return nodes[i].Title < nodes[j].Title
	})
}
