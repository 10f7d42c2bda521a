package loop

import (
	"go/token"
	"sort"

	"github.com/nickng/loopannot/block"
	"golang.org/x/tools/go/ssa"
)

// blockSet is a set of blocks forming the body of a loop.
type blockSet map[*ssa.BasicBlock]bool

// Detect returns the Forest of natural loops of fn.
// A Function without body (declaration) has an empty Forest.
func Detect(fn *ssa.Function) *Forest {
	f := NewForest(fn.String())
	if len(fn.Blocks) == 0 {
		return f
	}

	latches := make(map[*ssa.BasicBlock][]*ssa.BasicBlock)
	var headers []*ssa.BasicBlock
	for _, e := range block.BackEdges(fn) {
		if _, seen := latches[e.To]; !seen {
			headers = append(headers, e.To)
		}
		latches[e.To] = append(latches[e.To], e.From)
	}

	bodies := make(map[*ssa.BasicBlock]blockSet, len(headers))
	for _, h := range headers {
		bodies[h] = naturalLoop(h, latches[h])
	}

	// The parent is the smallest other loop containing the header.
	parent := make(map[*ssa.BasicBlock]*ssa.BasicBlock)
	for _, h := range headers {
		for _, o := range headers {
			if o == h || !bodies[o][h] {
				continue
			}
			if p, ok := parent[h]; !ok || len(bodies[o]) < len(bodies[p]) {
				parent[h] = o
			}
		}
	}
	depth := make(map[*ssa.BasicBlock]int, len(headers))
	var depthOf func(h *ssa.BasicBlock) int
	depthOf = func(h *ssa.BasicBlock) int {
		if d, ok := depth[h]; ok {
			return d
		}
		d := 1
		if p, ok := parent[h]; ok {
			d = depthOf(p) + 1
		}
		depth[h] = d
		return d
	}

	sort.Slice(headers, func(i, j int) bool {
		di, dj := depthOf(headers[i]), depthOf(headers[j])
		if di != dj {
			return di < dj
		}
		return headers[i].Index < headers[j].Index
	})
	index := make(map[*ssa.BasicBlock]int, len(headers))
	for _, h := range headers {
		p := NoParent
		if ph, ok := parent[h]; ok {
			p = index[ph]
		}
		l := f.Add(p, h.Index, position(fn, h, bodies[h]))
		index[h] = l.Index
	}
	return f
}

// naturalLoop returns the blocks of the natural loop with header h and
// latches (sources of the back edges into h).
func naturalLoop(h *ssa.BasicBlock, latches []*ssa.BasicBlock) blockSet {
	body := blockSet{h: true}
	work := append([]*ssa.BasicBlock(nil), latches...)
	for len(work) > 0 {
		b := work[len(work)-1]
		work = work[:len(work)-1]
		if body[b] {
			continue
		}
		body[b] = true
		work = append(work, b.Preds...)
	}
	return body
}

// position returns the source location of the loop: the first non-phi
// instruction with a valid position in the header, or failing that in the other blocks of
// the loop by block index.
func position(fn *ssa.Function, h *ssa.BasicBlock, body blockSet) token.Position {
	blocks := make([]*ssa.BasicBlock, 0, len(body))
	for b := range body {
		if b != h {
			blocks = append(blocks, b)
		}
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Index < blocks[j].Index })
	blocks = append([]*ssa.BasicBlock{h}, blocks...)

	for _, b := range blocks {
		for _, instr := range b.Instrs {
			if _, isPhi := instr.(*ssa.Phi); isPhi {
				continue // Phis carry the position of the variable.
			}
			if pos := instr.Pos(); pos.IsValid() {
				return fn.Prog.Fset.Position(pos)
			}
		}
	}
	return token.Position{}
}
