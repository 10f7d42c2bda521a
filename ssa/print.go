package ssa

import (
	"io"

	"github.com/pkg/errors"
)

// WriteTo writes the Functions of the Program to w in human readable SSA IR
// instruction format, in the same order as Functions.
func (info *Info) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, f := range info.Functions() {
		if f.Blocks == nil {
			continue
		}
		written, err := f.WriteTo(w)
		if err != nil {
			return n, err
		}
		n += written
	}
	return n, nil
}

// WriteFunc writes the Function named name to w in SSA IR instruction format.
func (info *Info) WriteFunc(w io.Writer, name string) (int64, error) {
	fn := info.FindFunc(name)
	if fn == nil {
		return 0, errors.Errorf("function %s not found", name)
	}
	return fn.WriteTo(w)
}
