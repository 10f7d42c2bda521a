// Package filter selects functions by name from a list of patterns.
//
// A pattern list is read from a line-oriented source, one pattern per line.
// Blank lines and lines starting with '#' are ignored. A line is a regular
// expression which must match the whole name, unless it starts with "glob:",
// in which case the rest of the line is a glob pattern (see
// github.com/gobwas/glob).
package filter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// GlobPrefix marks a glob pattern line.
const GlobPrefix = "glob:"

// PatternError is the error when a line of the pattern source does not compile.
type PatternError struct {
	Line    int    // Line number in the source (1-based).
	Pattern string // The offending pattern.
	Err     error  // Compile error.
}

func (e PatternError) Error() string {
	return fmt.Sprintf("line %d: bad pattern %q: %v", e.Line, e.Pattern, e.Err)
}

// matcher is a compiled pattern.
type matcher interface {
	Match(name string) bool
}

type regexMatcher struct{ *regexp.Regexp }

func (m regexMatcher) Match(name string) bool { return m.MatchString(name) }

// Whitelist is an ordered list of compiled patterns.
type Whitelist struct {
	patterns []matcher
	logger   *zap.SugaredLogger
}

// Load reads the patterns from r.
// Lines that do not compile are logged and skipped; the error returned is only
// for failing to read r, in which case the patterns read so far are kept.
func Load(r io.Reader, logger *zap.SugaredLogger) (*Whitelist, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	wl := &Whitelist{logger: logger}
	scanner := bufio.NewScanner(r)
	for lineno := 1; scanner.Scan(); lineno++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m, err := compile(line)
		if err != nil {
			logger.Warnw("Skip pattern", "error", PatternError{Line: lineno, Pattern: line, Err: err})
			continue
		}
		wl.patterns = append(wl.patterns, m)
	}
	if err := scanner.Err(); err != nil {
		return wl, errors.Wrap(err, "cannot read patterns")
	}
	return wl, nil
}

// LoadFile reads the patterns from the file at path.
func LoadFile(path string, logger *zap.SugaredLogger) (*Whitelist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open file: %q", path)
	}
	defer f.Close()
	return Load(f, logger)
}

func compile(pattern string) (matcher, error) {
	if strings.HasPrefix(pattern, GlobPrefix) {
		return glob.Compile(strings.TrimSpace(strings.TrimPrefix(pattern, GlobPrefix)))
	}
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, err
	}
	return regexMatcher{re}, nil
}

// Matches returns true iff name matches at least one pattern.
func (wl *Whitelist) Matches(name string) bool {
	for _, p := range wl.patterns {
		if p.Match(name) {
			return true
		}
	}
	return false
}

// Len returns the number of patterns.
func (wl *Whitelist) Len() int {
	return len(wl.patterns)
}
