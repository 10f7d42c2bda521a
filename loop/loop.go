package loop

import (
	"fmt"
	"go/token"
)

// NoParent is the Parent of a top-level loop.
const NoParent = -1

// Key identifies a loop across independent builds of the same program.
type Key struct {
	Func   string `msgpack:"func"`   // Full name of the enclosing function.
	Header int    `msgpack:"header"` // Block index of the loop header.
}

func (k Key) String() string {
	return fmt.Sprintf("%s#%d", k.Func, k.Header)
}

// Loop is a single loop in a Forest.
type Loop struct {
	Index    int   // Index of this loop in the Forest.
	Header   int   // Block index of the loop header.
	Depth    int   // Nesting depth, 1 for top-level loops.
	Parent   int   // Index of the enclosing loop, or NoParent.
	Children []int // Indices of the immediately nested loops, in discovery order.

	Pos token.Position // Source location, Line is 0 if unknown.

	key Key
}

// Key returns the identity of the loop.
func (l *Loop) Key() Key { return l.key }

// IsTopLevel returns true if l is not nested in another loop.
func (l *Loop) IsTopLevel() bool { return l.Parent == NoParent }

// HasPos returns true if the source location of l is known.
func (l *Loop) HasPos() bool { return l.Pos.IsValid() }

func (l *Loop) String() string {
	if l.HasPos() {
		return fmt.Sprintf("loop %s (depth %d) at %s", l.key, l.Depth, l.Pos)
	}
	return fmt.Sprintf("loop %s (depth %d)", l.key, l.Depth)
}

// Forest is the set of loops of one function.
// Loops are added parents first, and siblings in their discovery order.
type Forest struct {
	Func string // Full name of the function.

	loops []*Loop
	roots []int
}

// NewForest returns an empty Forest for the function named fn.
func NewForest(fn string) *Forest {
	return &Forest{Func: fn}
}

// Add adds a new loop with the given header block nested in the loop at index
// parent (or NoParent for a top-level loop) and returns it.
// Add panics if parent is not a loop already in the Forest.
func (f *Forest) Add(parent, header int, pos token.Position) *Loop {
	l := &Loop{
		Index:  len(f.loops),
		Header: header,
		Depth:  1,
		Parent: parent,
		Pos:    pos,
		key:    Key{Func: f.Func, Header: header},
	}
	if parent == NoParent {
		f.roots = append(f.roots, l.Index)
	} else {
		p := f.loops[parent]
		p.Children = append(p.Children, l.Index)
		l.Depth = p.Depth + 1
	}
	f.loops = append(f.loops, l)
	return l
}

// Len returns the number of loops in the Forest.
func (f *Forest) Len() int { return len(f.loops) }

// Loop returns the loop at index i.
func (f *Forest) Loop(i int) *Loop { return f.loops[i] }

// Roots returns the top-level loops in discovery order.
func (f *Forest) Roots() []*Loop {
	roots := make([]*Loop, len(f.roots))
	for i, idx := range f.roots {
		roots[i] = f.loops[idx]
	}
	return roots
}

// Top returns the outermost loop enclosing l, which is l itself if l is a
// top-level loop.
func (f *Forest) Top(l *Loop) *Loop {
	for !l.IsTopLevel() {
		l = f.loops[l.Parent]
	}
	return l
}

// Preorder returns all loops of the Forest such that every loop comes
// immediately before its children, and siblings are in discovery order.
func (f *Forest) Preorder() []*Loop {
	order := make([]*Loop, 0, len(f.loops))
	s := NewStack()
	for i := len(f.roots) - 1; i >= 0; i-- {
		s.Push(f.loops[f.roots[i]])
	}
	for !s.IsEmpty() {
		l, err := s.Pop()
		if err != nil {
			break
		}
		order = append(order, l)
		for i := len(l.Children) - 1; i >= 0; i-- {
			s.Push(f.loops[l.Children[i]])
		}
	}
	return order
}
