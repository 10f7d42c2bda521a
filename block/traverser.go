// Package block provides traversals over the basic blocks of a function.
package block

import (
	"golang.org/x/tools/go/ssa"
)

// Edge is a control flow edge between two blocks.
// From is nil for the pseudo-edge into the entry block.
type Edge struct {
	From, To *ssa.BasicBlock
}

// TraverseEdges takes a Function and apply visit to each edge.
//
// Blocks are expanded breadth-first from the entry block, each at most once.
// visit is called on every edge out of an expanded block, including edges into
// blocks that were already expanded, so back edges of loops are also visited.
// Unreachable blocks are not visited.
func TraverseEdges(fn *ssa.Function, visit func(from, to *ssa.BasicBlock)) {
	if len(fn.Blocks) == 0 {
		return
	}
	expanded := make(map[*ssa.BasicBlock]bool)
	queue := []Edge{{To: fn.Blocks[0]}}
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		visit(e.From, e.To)
		if expanded[e.To] {
			continue
		}
		expanded[e.To] = true
		for _, succ := range e.To.Succs {
			queue = append(queue, Edge{From: e.To, To: succ})
		}
	}
}

// BackEdges returns the edges of fn whose target dominates their source, in
// the order TraverseEdges visits them.
func BackEdges(fn *ssa.Function) []Edge {
	var edges []Edge
	TraverseEdges(fn, func(from, to *ssa.BasicBlock) {
		if from != nil && to.Dominates(from) {
			edges = append(edges, Edge{From: from, To: to})
		}
	})
	return edges
}
