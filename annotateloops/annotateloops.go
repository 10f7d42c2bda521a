// Package annotateloops assigns stable identifiers to the loops of a program.
//
// A Pass walks the functions of a program in order. In Write mode it attaches
// a fresh identifier to every selected loop; in Read mode it reports the
// identifiers attached by an earlier Write run without changing them.
//
// The loops of each function are visited in preorder (a loop immediately
// before the loops nested in it, siblings in discovery order), and
// identifiers increase by a fixed interval across the whole run. Tools reading
// the identifier range of a function rely on this order.
package annotateloops

import (
	"github.com/nickng/loopannot/annotate"
	"github.com/nickng/loopannot/filter"
	"github.com/nickng/loopannot/loop"
	"go.uber.org/zap"
	"golang.org/x/tools/go/ssa"
)

// Function is a function of the program representation walked by a Pass.
type Function interface {
	Name() string        // Unique name of the function.
	IsDeclaration() bool // True if the function has no body.
	Loops() *loop.Forest // Loops of the function, computed on each call.
}

// ssaFunction is a Function backed by SSA.
type ssaFunction struct {
	fn *ssa.Function
}

func (f ssaFunction) Name() string        { return f.fn.String() }
func (f ssaFunction) IsDeclaration() bool { return len(f.fn.Blocks) == 0 }
func (f ssaFunction) Loops() *loop.Forest { return loop.Detect(f.fn) }

// FromSSA wraps SSA functions as Functions, keeping their order.
func FromSSA(fns []*ssa.Function) []Function {
	funcs := make([]Function, len(fns))
	for i, fn := range fns {
		funcs[i] = ssaFunction{fn: fn}
	}
	return funcs
}

// Pass is the main loop annotation entry point.
type Pass struct {
	Config Config          // Configuration, fixed for every Run.
	Tags   annotate.Tagger // Loop identifier storage.
	*Logger
}

// New returns a new Pass with configuration cfg attaching identifiers in tags.
func New(cfg Config, tags annotate.Tagger) *Pass {
	return &Pass{
		Config: cfg,
		Tags:   tags,
		Logger: newLogger(),
	}
}

// SetLogger replaces the logger of the Pass.
func (p *Pass) SetLogger(l *zap.SugaredLogger) {
	p.Logger = &Logger{SugaredLogger: l, module: p.Logger.Module()}
}

// AddLogFiles extends current Logger and writes additional log to files.
func (p *Pass) AddLogFiles(file ...string) {
	p.Logger = newFileLogger(file...)
}

// run is the state of a single Run.
type run struct {
	*Pass
	annotator *annotate.Annotator
	whitelist *filter.Whitelist // nil if filtering is disabled.
	stats     *Stats
	changed   bool
}

// Run walks fns once and returns true iff at least one function got new
// identifiers, along with the statistics of the run.
//
// Problems reading the whitelist or writing the report are logged and do not
// stop the run: an unreadable whitelist or one without a valid pattern
// disables filtering, an unwritable report is skipped.
func (p *Pass) Run(fns []Function) (bool, *Stats) {
	// Sync error ignored. See https://github.com/uber-go/zap/issues/328
	defer p.Logger.Sync()

	r := &run{
		Pass:      p,
		annotator: annotate.New(p.Config.LoopStartID, p.Config.LoopIDInterval, p.Tags),
		stats:     newStats(),
	}
	if p.Config.whitelisting() {
		wl, err := filter.LoadFile(p.Config.WhitelistPath, p.Logger.SugaredLogger)
		switch {
		case err != nil:
			p.Warnf("%s %v: function filtering disabled", p.Module(), err)
		case wl.Len() == 0:
			p.Warnf("%s %s has no valid pattern: function filtering disabled", p.Module(), p.Config.WhitelistPath)
		default:
			r.whitelist = wl
		}
	}

	for _, fn := range fns {
		r.visitFunc(fn)
	}

	if p.Config.reporting() {
		if err := r.stats.WriteFile(p.Config.StatsPath); err != nil {
			p.Errorf("%s %v", p.Module(), err)
		}
	}
	p.Infof("%s %s: %d function(s) processed, changed=%t",
		p.Module(), p.Config.Mode, r.stats.NumFunctionsProcessed, r.changed)
	return r.changed, r.stats
}

// visitFunc processes the loops of a single function.
func (r *run) visitFunc(fn Function) {
	if fn.IsDeclaration() {
		return
	}
	if r.whitelist != nil && !r.whitelist.Matches(fn.Name()) {
		return
	}
	r.stats.NumFunctionsProcessed++

	forest := fn.Loops()
	loops := r.selectDepth(forest.Preorder())

	rangeStart := r.annotator.Peek()
	switch r.Config.Mode {
	case Write:
		for _, l := range loops {
			id := r.annotator.Annotate(l)
			r.Debugf("%s Annotate: %s ↦ %d", r.Module(), l, id)
			if r.Config.reporting() {
				r.stats.addLoop(id, r.writeRecord(fn, forest, l))
			}
		}
	case Read:
		if !r.Config.reporting() {
			break
		}
		for _, l := range loops {
			if !r.annotator.Has(l) {
				continue
			}
			id, err := r.annotator.Get(l)
			if err != nil {
				r.Debugf("%s %v", r.Module(), err)
				continue
			}
			r.Debugf("%s Read: %s ↦ %d", r.Module(), l, id)
			r.stats.addLoop(id, Record{Site: Site{Func: fn.Name()}})
		}
	}
	rangeEnd := r.annotator.Peek()

	if r.Config.Mode == Write && len(loops) > 0 {
		r.changed = true
		if r.Config.reporting() {
			r.stats.addRange(fn.Name(), Range{Start: rangeStart, End: rangeEnd})
		}
	}
}

// selectDepth drops the loops nested deeper than the depth threshold.
func (r *run) selectDepth(loops []*loop.Loop) []*loop.Loop {
	threshold := r.Config.LoopDepthThreshold
	if threshold == 0 {
		return loops
	}
	selected := loops[:0]
	for _, l := range loops {
		if uint(l.Depth) <= threshold {
			selected = append(selected, l)
		}
	}
	return selected
}

// writeRecord returns the report record of loop l annotated in Write mode.
func (r *run) writeRecord(fn Function, forest *loop.Forest, l *loop.Loop) Record {
	rec := Record{
		Site:  r.site(fn, l),
		Lines: r.Config.ReportLineNumbers,
	}
	if r.Config.ReportTopParent {
		top := r.site(fn, forest.Top(l))
		rec.Top = &top
	}
	return rec
}

// site returns the location of l, with line and file only if line numbers are
// reported.
func (r *run) site(fn Function, l *loop.Loop) Site {
	s := Site{Func: fn.Name()}
	if r.Config.ReportLineNumbers && l.HasPos() {
		s.Line, s.File = l.Pos.Line, l.Pos.Filename
	}
	return s
}
