package ssa

import (
	"go/types"
	"sort"

	"golang.org/x/tools/go/ssa"
)

// members is slice of ssa.Function. Used only for sorting by Pos.
type members []*ssa.Function

func (m members) Len() int { return len(m) }
func (m members) Less(i, j int) bool {
	if m[i].Pos() != m[j].Pos() {
		return m[i].Pos() < m[j].Pos()
	}
	return m[i].String() < m[j].String()
}
func (m members) Swap(i, j int) { m[i], m[j] = m[j], m[i] }

// Functions returns the functions of the packages built from source, in their
// natural order: packages by import path, functions and declared methods by
// source position, each function followed by its anonymous functions.
//
// The order only depends on the source, so two builds of the same program
// enumerate the same functions in the same order.
func (info *Info) Functions() []*ssa.Function {
	pkgs := make([]*ssa.Package, len(info.Pkgs))
	copy(pkgs, info.Pkgs)
	sort.Slice(pkgs, func(i, j int) bool {
		return pkgs[i].Pkg.Path() < pkgs[j].Pkg.Path()
	})

	var fns []*ssa.Function
	for _, pkg := range pkgs {
		for _, f := range pkgFuncs(info.Prog, pkg) {
			fns = appendWithAnon(fns, f)
		}
	}
	return fns
}

// pkgFuncs returns the package-level functions and declared methods of pkg
// sorted by position.
func pkgFuncs(prog *ssa.Program, pkg *ssa.Package) members {
	var fns members
	for _, mem := range pkg.Members {
		switch mem := mem.(type) {
		case *ssa.Function:
			fns = append(fns, mem)
		case *ssa.Type:
			named, ok := mem.Type().(*types.Named)
			if !ok {
				continue
			}
			for i := 0; i < named.NumMethods(); i++ {
				if fn := prog.FuncValue(named.Method(i)); fn != nil {
					fns = append(fns, fn)
				}
			}
		}
	}
	sort.Sort(fns)
	return fns
}

func appendWithAnon(fns []*ssa.Function, fn *ssa.Function) []*ssa.Function {
	fns = append(fns, fn)
	for _, anon := range fn.AnonFuncs {
		fns = appendWithAnon(fns, anon)
	}
	return fns
}

// ReachableFunctions returns the subset of Functions() reachable from the main
// packages in the callgraph built with algo, keeping the natural order.
func (info *Info) ReachableFunctions(algo string) ([]*ssa.Function, error) {
	graph, err := info.BuildCallGraph(algo)
	if err != nil {
		return nil, err
	}
	reachable, err := graph.Reachable()
	if err != nil {
		return nil, err
	}
	var fns []*ssa.Function
	for _, fn := range info.Functions() {
		if reachable[fn] {
			fns = append(fns, fn)
		}
	}
	return fns, nil
}
