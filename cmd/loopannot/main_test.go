package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/nickng/loopannot/annotateloops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProg = "testdata/loops.go"

// execute runs loopannot with args and returns its standard output.
func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute(), out.String())
	return out.String()
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestConfigFromFlags(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "loopannot.toml")
	require.NoError(t, os.WriteFile(conf, []byte("loop-start-id = 5\nloop-id-interval = 10\nreport-top-parent = true\n"), 0644))

	cmd := newRunCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", conf, "--loop-start-id", "7", "--mode", "read"}))
	cfg, err := configFromFlags(cmd)
	require.NoError(t, err)
	assert.Equal(t, annotateloops.Read, cfg.Mode)
	assert.EqualValues(t, 7, cfg.LoopStartID)
	assert.EqualValues(t, 10, cfg.LoopIDInterval)
	assert.True(t, cfg.ReportTopParent)
	assert.Equal(t, uint(1), cfg.LoopDepthThreshold)
}

func TestConfigFromFlagsInvalid(t *testing.T) {
	cmd := newRunCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--loop-id-interval", "0"}))
	_, err := configFromFlags(cmd)
	assert.ErrorIs(t, err, annotateloops.ErrZeroInterval)

	cmd = newRunCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--mode", "rewrite"}))
	_, err = configFromFlags(cmd)
	assert.ErrorIs(t, err, annotateloops.ErrBadMode)
}

func TestRunWriteThenRead(t *testing.T) {
	dir := t.TempDir()
	tags := filepath.Join(dir, "loops.tags")
	wstats := filepath.Join(dir, "write.txt")
	rstats := filepath.Join(dir, "read.txt")

	execute(t, "run", "--tags", tags, "--stats", wstats, testProg)
	assert.Equal(t, "3\nmain.main 1 2\nmain.sum 2 3\n--\n1 main.main\n2 main.sum\n", readFile(t, wstats))
	written := readFile(t, tags)

	execute(t, "run", "--mode", "read", "--loop-depth-threshold", "0", "--tags", tags, "--stats", rstats, testProg)
	assert.Equal(t, "3\n1 main.main\n2 main.sum\n", readFile(t, rstats))
	assert.Equal(t, written, readFile(t, tags), "read mode rewrote the tag file")
}

func TestRunReachable(t *testing.T) {
	dir := t.TempDir()
	stats := filepath.Join(dir, "stats.txt")
	execute(t, "run", "--callgraph", "static", "--tags", filepath.Join(dir, "loops.tags"), "--stats", stats, testProg)
	assert.Equal(t, "3\nmain.main 1 2\nmain.sum 2 3\n--\n1 main.main\n2 main.sum\n", readFile(t, stats))
}

func TestView(t *testing.T) {
	tags := filepath.Join(t.TempDir(), "loops.tags")
	execute(t, "run", "--tags", tags, testProg)

	out := execute(t, "view", "--tags", tags, testProg)
	assert.Contains(t, out, "main.main\n")
	assert.Contains(t, out, "main.sum\n")
	assert.Contains(t, out, "(depth 2)")
	assert.Contains(t, out, "↦ 1\n")
	assert.Contains(t, out, "↦ 2\n")
	assert.NotContains(t, out, "↦ 3")
}

func TestSSA(t *testing.T) {
	out := execute(t, "ssa", "--func", "main.sum", testProg)
	assert.Contains(t, out, "main.sum")
	assert.NotContains(t, out, "main.main")
}
