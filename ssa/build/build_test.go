package build_test

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/nickng/loopannot/loop"
	"github.com/nickng/loopannot/ssa"
	"github.com/nickng/loopannot/ssa/build"
)

var (
	helloProg = `
	package main
	import "fmt"
	func main() {
		fmt.Println("hello")
	}`
	emptyProg = `package main; func main() {}`

	testdir string
)

func init() {
	testdir, _ = os.Getwd() // Save the dir where the test files are, for the runnable examples.
}

// Test loading from files.
func TestBuildFromFiles(t *testing.T) {
	files := []string{"testdata/main.go", "testdata/foo.go", "testdata/bar.go"}
	conf := build.FromFiles(files)
	info, err := conf.Build()
	if err != nil {
		t.Fatalf("SSA build failed: %v", err)
	}
	mains, err := ssa.MainPkgs(info.Prog)
	if err != nil {
		t.Fatalf("cannot find main package: %v", err)
	}
	for _, main := range mains {
		if main.Func("main") == nil {
			t.Errorf("cannot find main.main()")
		}
		if main.Func("foo") == nil {
			t.Errorf("cannot find main.foo()")
		}
		if main.Func("bar") == nil {
			t.Errorf("cannot find main.bar()")
		}
	}
	if len(info.Pkgs) != 1 {
		t.Errorf("expects 1 initial package but got %d", len(info.Pkgs))
	}
}

// Files named on the command line are named after their package, not the
// go command's ad-hoc package.
func TestBuildFromFilesNames(t *testing.T) {
	files := []string{"testdata/main.go", "testdata/foo.go", "testdata/bar.go"}
	info, err := build.FromFiles(files).Default().Build()
	if err != nil {
		t.Fatalf("SSA build failed: %v", err)
	}
	if len(info.Pkgs) != 1 || info.Pkgs[0].Pkg.Path() != "main" {
		t.Fatalf("expects a single package with path main but got %v", info.Pkgs)
	}
	for _, name := range []string{"main.main", "main.foo", "main.bar"} {
		if info.FindFunc(name) == nil {
			t.Errorf("cannot find %s", name)
		}
	}
	for _, fn := range info.Functions() {
		if strings.Contains(fn.String(), "command-line-arguments") {
			t.Errorf("unexpected ad-hoc package name in %s", fn)
		}
	}
}

// The same source gives the same loop keys whether read from a file or from
// a Reader.
func TestBuildersAgree(t *testing.T) {
	src, err := os.ReadFile("testdata/bar.go")
	if err != nil {
		t.Fatalf("cannot read testdata: %v", err)
	}
	fromFile, err := build.FromFiles([]string{"testdata/bar.go"}).Default().Build()
	if err != nil {
		t.Fatalf("SSA build failed: %v", err)
	}
	fromReader, err := build.FromReader(bytes.NewReader(src)).Default().Build()
	if err != nil {
		t.Fatalf("SSA build failed: %v", err)
	}
	fn1, fn2 := fromFile.FindFunc("main.bar"), fromReader.FindFunc("main.bar")
	if fn1 == nil || fn2 == nil {
		t.Fatalf("cannot find main.bar (files: %v, reader: %v)", fn1, fn2)
	}
	l1, l2 := loop.Detect(fn1).Preorder(), loop.Detect(fn2).Preorder()
	if len(l1) != 1 || len(l2) != 1 {
		t.Fatalf("expects 1 loop in main.bar but got %d and %d", len(l1), len(l2))
	}
	if l1[0].Key() != l2[0].Key() {
		t.Errorf("loop keys differ: %s and %s", l1[0].Key(), l2[0].Key())
	}
}

// Test loading from string/reader.
func TestBuildFromReader(t *testing.T) {
	conf := build.FromReader(strings.NewReader(helloProg))
	info, err := conf.Build()
	if err != nil {
		t.Fatalf("SSA build failed: %v", err)
	}
	mains, err := ssa.MainPkgs(info.Prog)
	if err != nil {
		t.Fatalf("cannot find main package: %v", err)
	}
	for _, main := range mains {
		if main.Func("main") == nil {
			t.Errorf("cannot find main.main()")
		}
	}
}

func TestBuildParseError(t *testing.T) {
	conf := build.FromReader(strings.NewReader("package main; func main() {"))
	if _, err := conf.Build(); err == nil {
		t.Errorf("expects parse error but build succeeded")
	}
}

func TestWithBuildLog(t *testing.T) {
	buf := new(bytes.Buffer)
	conf := build.FromReader(strings.NewReader(helloProg)).WithBuildLog(buf)
	info, err := conf.Build()
	if err != nil {
		t.Fatalf("SSA build failed: %v", err)
	}
	if info.BldLog != buf {
		t.Errorf("Expects build log to propagate to built SSA, but got: %v",
			info.BldLog)
	}
	if !strings.Contains(buf.String(), "Program loaded and type checked") {
		t.Errorf("Build log was set but not written to\nlog contains:\n%s",
			buf.String())
	}
}

func TestAddBadPkg(t *testing.T) {
	confNoMain := build.FromReader(strings.NewReader(emptyProg)).AddBadPkg("main", "skip main body")
	info, err := confNoMain.Build()
	if err != nil {
		t.Fatalf("SSA build failed: %v", err)
	}
	foundMain := false
	for _, pkg := range info.IgnoredPkgs {
		if pkg == "main" {
			foundMain = true
		}
	}
	if !foundMain {
		t.Errorf("Expects main to be ignored during build (in config.badPkgs)")
	}
}

func ExampleFromFiles() {
	os.Chdir(testdir)
	files := []string{"testdata/main.go", "testdata/foo.go", "testdata/bar.go"}
	conf := build.FromFiles(files)
	info, err := conf.Build()
	if err != nil {
		log.Fatalf("SSA build failed: %v", err)
	}
	_ = info // Use info here
	// output:
}

func ExampleFromReader() {
	conf := build.FromReader(strings.NewReader("package main; func main() {}"))
	info, err := conf.Build()
	if err != nil {
		log.Fatalf("SSA build failed: %v", err)
	}
	_ = info // Use info here
	// output:
}
