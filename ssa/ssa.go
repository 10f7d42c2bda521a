// Package ssa wraps golang.org/x/tools/go/ssa for loop annotation.
//
// An Info is the result of building a program (see the build subpackage). Its
// functions are enumerated in a fixed order derived from the source, so that
// independent builds of the same program visit them identically.
package ssa

import (
	"go/token"
	"io"

	"golang.org/x/tools/go/ssa"
)

// Info is a built SSA program.
type Info struct {
	IgnoredPkgs []string // Packages whose function bodies were not built.

	FSet *token.FileSet
	Prog *ssa.Program
	Pkgs []*ssa.Package // Packages of the source files, nil entries removed.

	BldLog io.Writer
}
