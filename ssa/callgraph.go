package ssa

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"

	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/callgraph/cha"
	"golang.org/x/tools/go/callgraph/rta"
	"golang.org/x/tools/go/callgraph/static"
	"golang.org/x/tools/go/ssa"
)

// ErrUnknownAlgo is returned for callgraph algorithms not in CallGraphAlgos.
var ErrUnknownAlgo = errors.New("unknown callgraph algorithm")

// CallGraphAlgos lists the algorithms accepted by BuildCallGraph.
var CallGraphAlgos = []string{"static", "cha", "rta"}

// CallGraph is a callgraph of a Program.
type CallGraph struct {
	cg   *callgraph.Graph
	prog *ssa.Program

	reachable map[*ssa.Function]bool // Cached result of Reachable.
}

// Reachable returns the set of functions reachable from main.init and
// main.main of the main packages.
func (g *CallGraph) Reachable() (map[*ssa.Function]bool, error) {
	if g.reachable != nil {
		return g.reachable, nil
	}
	work, err := roots(g.prog)
	if err != nil {
		return nil, errors.Wrap(err, "callgraph: no entry points")
	}
	seen := make(map[*ssa.Function]bool)
	for len(work) > 0 {
		fn := work[len(work)-1]
		work = work[:len(work)-1]
		if fn == nil || seen[fn] {
			continue
		}
		seen[fn] = true
		node := g.cg.Nodes[fn]
		if node == nil {
			continue
		}
		for _, out := range node.Out {
			work = append(work, out.Callee.Func)
		}
	}
	g.reachable = seen
	return seen, nil
}

// WriteGraphviz writes the callgraph to w in graphviz dot format, one edge per
// line in sorted order.
func (g *CallGraph) WriteGraphviz(w io.Writer) error {
	var edges []string
	if err := callgraph.GraphVisitEdges(g.cg, func(e *callgraph.Edge) error {
		edges = append(edges, fmt.Sprintf("  %q -> %q\n", e.Caller.Func.String(), e.Callee.Func.String()))
		return nil
	}); err != nil {
		return err
	}
	sort.Strings(edges)

	bufw := bufio.NewWriter(w)
	bufw.WriteString("digraph callgraph {\n")
	for _, e := range edges {
		bufw.WriteString(e)
	}
	bufw.WriteString("}\n")
	return bufw.Flush()
}

// roots returns main.init and main.main of every main package.
func roots(prog *ssa.Program) ([]*ssa.Function, error) {
	mains, err := MainPkgs(prog)
	if err != nil {
		return nil, err
	}
	var fns []*ssa.Function
	for _, main := range mains {
		if main.Func("main") != nil {
			fns = append(fns, main.Func("init"), main.Func("main"))
		}
	}
	return fns, nil
}

// BuildCallGraph builds the callgraph of the program with algo, one of
// CallGraphAlgos:
//
//   - static: static calls only
//   - cha: class hierarchy analysis
//   - rta: rapid type analysis from the main entry points
func (info *Info) BuildCallGraph(algo string) (*CallGraph, error) {
	var cg *callgraph.Graph
	switch algo {
	case "static":
		cg = static.CallGraph(info.Prog)

	case "cha":
		cg = cha.CallGraph(info.Prog)

	case "rta":
		entries, err := roots(info.Prog)
		if err != nil {
			return nil, err
		}
		cg = rta.Analyze(entries, true).CallGraph

	default:
		return nil, errors.Wrapf(ErrUnknownAlgo, "callgraph: %q", algo)
	}

	cg.DeleteSyntheticNodes()

	return &CallGraph{cg: cg, prog: info.Prog}, nil
}
