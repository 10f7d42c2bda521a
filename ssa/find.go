package ssa

import (
	"golang.org/x/tools/go/ssa"
)

// FindFunc returns the Function whose full name (e.g. "main.main",
// "(*main.T).String" or "main.main$1") is name, or nil if no built function
// has that name.
func (info *Info) FindFunc(name string) *ssa.Function {
	for _, fn := range info.Functions() {
		if fn.String() == name {
			return fn
		}
	}
	return nil
}
