// Package annotate generates loop identifiers and attaches them to loops.
//
// Identifiers start from a configured value and advance by a fixed interval
// with every loop annotated. Two Annotators with the same start and interval
// that annotate the loops of an unmodified program in the same order assign
// the same identifiers, which is what allows identifiers written by one run to
// be correlated with loops seen by another.
package annotate

import (
	"github.com/nickng/loopannot/loop"
	"github.com/nickng/loopannot/store"
	"github.com/pkg/errors"
)

// ErrNotAnnotated is the error when reading the identifier of a loop that has
// none attached.
var ErrNotAnnotated = errors.New("loop is not annotated")

// Tagger attaches identifiers to loops. It is implemented by *store.Tags.
type Tagger interface {
	Set(k loop.Key, id store.ID)
	Get(k loop.Key) (store.ID, bool)
}

// Annotator generates monotonic loop identifiers.
type Annotator struct {
	start    store.ID
	interval store.ID
	current  store.ID

	tags Tagger
}

// New returns an Annotator whose first identifier is start, attaching
// identifiers through tags.
func New(start, interval store.ID, tags Tagger) *Annotator {
	return &Annotator{
		start:    start,
		interval: interval,
		current:  start,
		tags:     tags,
	}
}

// Peek returns the identifier the next call to Annotate will attach.
func (a *Annotator) Peek() store.ID {
	return a.current
}

// Annotate attaches a new identifier to l and returns it.
// An already annotated loop gets a new identifier replacing the old one.
func (a *Annotator) Annotate(l *loop.Loop) store.ID {
	id := a.current
	a.tags.Set(l.Key(), id)
	a.current += a.interval
	return id
}

// Has returns true if l has an identifier attached.
func (a *Annotator) Has(l *loop.Loop) bool {
	_, ok := a.tags.Get(l.Key())
	return ok
}

// Get returns the identifier attached to l, or ErrNotAnnotated.
func (a *Annotator) Get(l *loop.Loop) (store.ID, error) {
	id, ok := a.tags.Get(l.Key())
	if !ok {
		return 0, errors.Wrapf(ErrNotAnnotated, "%s", l.Key())
	}
	return id, nil
}
