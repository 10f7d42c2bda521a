package annotateloops

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/nickng/loopannot/store"
	"github.com/pkg/errors"
)

// Range is the half-open interval [Start, End) of identifiers assigned to the
// loops of one function.
type Range struct {
	Start, End store.ID
}

// Site locates a loop: its function and, if known and requested, its line and
// file.
type Site struct {
	Func string
	Line int
	File string
}

// Record is what the report says about one loop identifier.
type Record struct {
	Site
	Lines bool  // Line and File of Site are reported.
	Top   *Site // Outermost enclosing loop, if reported.
}

// Stats is the statistics of a single run.
type Stats struct {
	NumFunctionsProcessed int
	FunctionsAltered      map[string]Range
	LoopsAnnotated        map[store.ID]Record
}

func newStats() *Stats {
	return &Stats{
		FunctionsAltered: make(map[string]Range),
		LoopsAnnotated:   make(map[store.ID]Record),
	}
}

// addRange records the range of fn. The first range recorded for a function
// is kept.
func (s *Stats) addRange(fn string, r Range) {
	if _, exists := s.FunctionsAltered[fn]; !exists {
		s.FunctionsAltered[fn] = r
	}
}

// addLoop records the loop with identifier id. The first record for an
// identifier is kept.
func (s *Stats) addLoop(id store.ID, r Record) {
	if _, exists := s.LoopsAnnotated[id]; !exists {
		s.LoopsAnnotated[id] = r
	}
}

// WriteTo writes the report to w.
//
// The report is the number of functions processed, then one line per altered
// function with its identifier range, then (if any function was altered) a
// "--" separator, then one line per loop identifier.
func (s *Stats) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d\n", s.NumFunctionsProcessed)

	fns := make([]string, 0, len(s.FunctionsAltered))
	for fn := range s.FunctionsAltered {
		fns = append(fns, fn)
	}
	sort.Strings(fns)
	for _, fn := range fns {
		r := s.FunctionsAltered[fn]
		fmt.Fprintf(&buf, "%s %d %d\n", fn, r.Start, r.End)
	}
	if len(fns) > 0 {
		buf.WriteString("--\n")
	}

	ids := make([]store.ID, 0, len(s.LoopsAnnotated))
	for id := range s.LoopsAnnotated {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		r := s.LoopsAnnotated[id]
		fmt.Fprintf(&buf, "%d %s", id, r.Func)
		if r.Lines {
			fmt.Fprintf(&buf, " %d %s", r.Line, r.File)
		}
		if r.Top != nil {
			fmt.Fprintf(&buf, " %s %d %s", r.Top.Func, r.Top.Line, r.Top.File)
		}
		buf.WriteString("\n")
	}
	return buf.WriteTo(w)
}

// WriteFile writes the report to the file at path.
func (s *Stats) WriteFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not open file: %q", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "could not close file: %q", path)
		}
	}()
	bufw := bufio.NewWriter(f)
	if _, err := s.WriteTo(bufw); err != nil {
		return errors.Wrapf(err, "could not write file: %q", path)
	}
	return bufw.Flush()
}
