package annotate

import (
	"go/token"
	"testing"

	"github.com/nickng/loopannot/loop"
	"github.com/nickng/loopannot/store"
	"github.com/pkg/errors"
)

func testLoops(n int) []*loop.Loop {
	f := loop.NewForest("main.f")
	var loops []*loop.Loop
	for i := 0; i < n; i++ {
		loops = append(loops, f.Add(loop.NoParent, i+1, token.Position{}))
	}
	return loops
}

func TestMonotonic(t *testing.T) {
	a := New(5, 10, store.New())
	if a.Peek() != 5 {
		t.Errorf("expects first id 5 but got %d", a.Peek())
	}
	for i, l := range testLoops(3) {
		want := store.ID(5 + 10*i)
		if got := a.Annotate(l); got != want {
			t.Errorf("loop %d: expects id %d but got %d", i, want, got)
		}
	}
	if a.Peek() != 35 {
		t.Errorf("expects next id 35 but got %d", a.Peek())
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	a := New(1, 1, store.New())
	a.Peek()
	a.Peek()
	if got := a.Annotate(testLoops(1)[0]); got != 1 {
		t.Errorf("expects id 1 after peeking but got %d", got)
	}
}

// Annotating the same loop twice gives two identifiers, the latest is kept.
func TestNotIdempotent(t *testing.T) {
	a := New(1, 1, store.New())
	l := testLoops(1)[0]
	first := a.Annotate(l)
	second := a.Annotate(l)
	if first == second {
		t.Fatalf("re-annotating gave the same id %d", first)
	}
	if !a.Has(l) {
		t.Errorf("annotated loop should have an id")
	}
	if id, err := a.Get(l); err != nil || id != second {
		t.Errorf("expects latest id %d but got %d (err=%v)", second, id, err)
	}
}

func TestGetNotAnnotated(t *testing.T) {
	a := New(1, 1, store.New())
	l := testLoops(1)[0]
	if a.Has(l) {
		t.Errorf("new loop should not have an id")
	}
	if _, err := a.Get(l); errors.Cause(err) != ErrNotAnnotated {
		t.Errorf("expects ErrNotAnnotated but got %v", err)
	}
}

// Two Annotators over the same loops agree.
func TestDeterministic(t *testing.T) {
	tags1, tags2 := store.New(), store.New()
	a1, a2 := New(3, 7, tags1), New(3, 7, tags2)
	loops := testLoops(4)
	for _, l := range loops {
		a1.Annotate(l)
		a2.Annotate(l)
	}
	for _, l := range loops {
		id1, _ := a1.Get(l)
		id2, _ := a2.Get(l)
		if id1 != id2 {
			t.Errorf("%s: ids differ %d != %d", l.Key(), id1, id2)
		}
	}
	if tags1.String() != tags2.String() {
		t.Errorf("tag tables differ")
	}
}
