// Package store provides the side table holding the identifiers attached to
// loops.
//
// Loops are keyed by their loop.Key, which stays the same across independent
// builds of an unmodified program. The table can be saved to and loaded from a
// file, so identifiers attached in one process can be read back in another.
package store

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/nickng/loopannot/loop"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

// formatVersion is the version of the file format written by Save.
const formatVersion = 1

// ErrBadVersion is returned by Load for files of an unknown format version.
var ErrBadVersion = errors.New("unsupported tag file version")

// ID is the identifier attached to a loop.
type ID uint64

// Tags is a key-value storage of loop.Key to ID.
type Tags struct {
	logger *zap.SugaredLogger
	ids    map[loop.Key]ID
}

// New returns an empty Tags.
func New() *Tags {
	return &Tags{
		logger: zap.NewNop().Sugar(),
		ids:    make(map[loop.Key]ID),
	}
}

// SetLogger sets debug output to l.
func (t *Tags) SetLogger(l *zap.SugaredLogger) {
	if l != nil {
		t.logger = l
	}
}

// Set attaches id to the loop k, replacing any previous identifier.
func (t *Tags) Set(k loop.Key, id ID) {
	t.logger.Debugf("Set: %s ↦ %d", k, id)
	t.ids[k] = id
}

// Get returns the identifier attached to the loop k.
func (t *Tags) Get(k loop.Key) (ID, bool) {
	id, ok := t.ids[k]
	return id, ok
}

// Len returns the number of tagged loops.
func (t *Tags) Len() int { return len(t.ids) }

// Keys returns the tagged loops sorted by function name then header.
func (t *Tags) Keys() []loop.Key {
	keys := make([]loop.Key, 0, len(t.ids))
	for k := range t.ids {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Func != keys[j].Func {
			return keys[i].Func < keys[j].Func
		}
		return keys[i].Header < keys[j].Header
	})
	return keys
}

func (t *Tags) String() string {
	var buf bytes.Buffer
	buf.WriteString("┌─────┄ loop: id ┄──────\n")
	for _, k := range t.Keys() {
		buf.WriteString(fmt.Sprintf("│ %s:\t%d\n", k, t.ids[k]))
	}
	buf.WriteString("└───────────────────────\n")
	return buf.String()
}

// entry is a single tag in the file format.
type entry struct {
	Key loop.Key `msgpack:"key"`
	ID  ID       `msgpack:"id"`
}

// file is the on-disk representation of Tags.
type file struct {
	Version int     `msgpack:"version"`
	Entries []entry `msgpack:"entries"`
}

// Save writes all tags to w in msgpack format.
func (t *Tags) Save(w io.Writer) error {
	f := file{Version: formatVersion}
	for _, k := range t.Keys() {
		f.Entries = append(f.Entries, entry{Key: k, ID: t.ids[k]})
	}
	if err := msgpack.NewEncoder(w).Encode(&f); err != nil {
		return errors.Wrap(err, "cannot encode tags")
	}
	return nil
}

// Load reads tags written by Save from r and adds them to t, replacing the
// identifiers of loops already tagged.
func (t *Tags) Load(r io.Reader) error {
	var f file
	if err := msgpack.NewDecoder(r).Decode(&f); err != nil {
		return errors.Wrap(err, "cannot decode tags")
	}
	if f.Version != formatVersion {
		return errors.Wrapf(ErrBadVersion, "version %d", f.Version)
	}
	for _, e := range f.Entries {
		t.ids[e.Key] = e.ID
	}
	t.logger.Debugf("Load: %d tags", len(f.Entries))
	return nil
}

// SaveFile saves the tags to the file at path, replacing its content.
func (t *Tags) SaveFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create tag file %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "cannot close tag file %s", path)
		}
	}()
	return t.Save(f)
}

// LoadFile loads tags from the file at path.
// A file that does not exist holds no tags and is not an error.
func (t *Tags) LoadFile(path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		t.logger.Debugf("LoadFile: %s does not exist", path)
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "cannot open tag file %s", path)
	}
	defer f.Close()
	return errors.Wrapf(t.Load(f), "tag file %s", path)
}
