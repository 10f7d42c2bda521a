package block

import (
	"strings"
	"testing"

	"golang.org/x/tools/go/ssa"

	gssa "github.com/nickng/loopannot/ssa"
	"github.com/nickng/loopannot/ssa/build"
)

func getTestMainFn(t *testing.T, prog string) *ssa.Function {
	conf := build.FromReader(strings.NewReader(prog))
	info, err := conf.Build()
	if err != nil {
		t.Fatalf("SSA build failed: %v", err)
	}
	mains, err := gssa.MainPkgs(info.Prog)
	if err != nil {
		t.Fatalf("cannot find main package: %v", err)
	}
	return mains[0].Func("main")
}

// Tests that every reachable edge is visited exactly once.
func TestTraverseEdges(t *testing.T) {
	mainFn := getTestMainFn(t, `package main
	func main() {  // Block 0
		x := 1
		if x < 2 { // Block 1
			x++
		}
		x = 0      // Block 2
		x++
	}`)

	type pair struct{ from, to int }
	seen := make(map[pair]int)
	entries := 0
	TraverseEdges(mainFn, func(from, to *ssa.BasicBlock) {
		if from == nil {
			entries++
			if to != mainFn.Blocks[0] {
				t.Errorf("entry edge should go to block 0, got %d", to.Index)
			}
			return
		}
		seen[pair{from.Index, to.Index}]++
	})
	if entries != 1 {
		t.Errorf("expects 1 entry edge but got %d", entries)
	}
	nEdges := 0
	for _, b := range mainFn.Blocks {
		for _, succ := range b.Succs {
			nEdges++
			if n := seen[pair{b.Index, succ.Index}]; n != 1 {
				t.Errorf("edge %d → %d visited %d times", b.Index, succ.Index, n)
			}
		}
	}
	if len(seen) != nEdges {
		t.Errorf("expects %d distinct edges but visited %d", nEdges, len(seen))
	}
}

func TestBackEdges(t *testing.T) {
	mainFn := getTestMainFn(t, `package main
	func main() {
		for i := 0; i < 10; i++ {
			for j := 0; j < i; j++ {
			}
		}
	}`)
	edges := BackEdges(mainFn)
	if len(edges) != 2 {
		t.Fatalf("expects 2 back edges (one per loop) but got %d", len(edges))
	}
	for _, e := range edges {
		if !e.To.Dominates(e.From) {
			t.Errorf("%d → %d is not a back edge", e.From.Index, e.To.Index)
		}
	}
	if edges[0].To == edges[1].To {
		t.Errorf("back edges should target different headers")
	}
}

func TestBackEdgesNoLoop(t *testing.T) {
	mainFn := getTestMainFn(t, `package main
	func main() {
		x := 1
		if x < 2 {
			x++
		}
	}`)
	if edges := BackEdges(mainFn); len(edges) != 0 {
		t.Errorf("expects no back edge but got %d", len(edges))
	}
}
