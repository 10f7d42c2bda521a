package build

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"io"

	"github.com/nickng/loopannot/ssa"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/tools/go/packages"
	gossa "golang.org/x/tools/go/ssa"
)

// tmpFile is the file name given to source read from a Reader.
const tmpFile = "tmp"

// adHocPkgPath is the import path the go command gives to a package made of
// files named on the command line.
const adHocPkgPath = "command-line-arguments"

// Mode is the SSA builder mode used for all builds.
const Mode = gossa.GlobalDebug | gossa.BareInits

// ErrPkgErrors is returned when the loaded packages contain errors.
var ErrPkgErrors = errors.New("packages contain errors")

type Configurer interface {
	Builder
	Default() Configurer
	AddBadPkg(pkg, reason string) Configurer
	WithBuildLog(l io.Writer) Configurer
}

// Config represents a build configuration.
type Config struct {
	badPkgs map[string]string

	bldLog io.Writer // Build log.

	src interface{} // src points to the program source (*FileSrc or *CachedSrc).
}

func newConfig(src interface{}) *Config {
	return &Config{
		badPkgs: make(map[string]string),
		src:     src,
	}
}

// WithBuildLog adds build log to config.
func (c *Config) WithBuildLog(l io.Writer) Configurer {
	c.bldLog = l
	return c
}

// AddBadPkg marks a package 'bad' so its function bodies are not built.
func (c *Config) AddBadPkg(pkg, reason string) Configurer {
	c.badPkgs[pkg] = reason
	return c
}

// buildLogger returns the logger writing to the build log, or a no-op logger
// if no build log is configured.
func (c *Config) buildLogger() *zap.SugaredLogger {
	if c.bldLog == nil {
		return zap.NewNop().Sugar()
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(enc, zapcore.AddSync(c.bldLog), zapcore.DebugLevel)
	return zap.New(core).Named("ssabuild").Sugar()
}

func (c *Config) Build() (*ssa.Info, error) {
	bldLog := c.buildLogger()
	defer bldLog.Sync()

	fset := token.NewFileSet()
	var (
		prog *gossa.Program
		pkgs []*gossa.Package
	)

	switch src := c.src.(type) {
	case *FileSrc:
		cfg := &packages.Config{Mode: packages.LoadSyntax, Fset: fset}
		initial, err := packages.Load(cfg, src.Files...)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load packages")
		}
		if n := packages.PrintErrors(initial); n > 0 {
			return nil, errors.Wrapf(ErrPkgErrors, "%d error(s)", n)
		}
		prog = gossa.NewProgram(fset, Mode)
		seen := make(map[*types.Package]bool)
		for _, p := range initial {
			tpkg, tinfo := p.Types, p.TypesInfo
			if p.PkgPath == adHocPkgPath {
				if tpkg, tinfo, err = checkAdHoc(fset, p); err != nil {
					return nil, err
				}
			}
			seen[tpkg] = true
			pkgs = append(pkgs, prog.CreatePackage(tpkg, p.Syntax, tinfo, false))
		}
		// Initial packages are created first so imports among them keep
		// their bodies.
		for _, pkg := range pkgs {
			createImports(prog, pkg.Pkg.Imports(), seen)
		}

	case *CachedSrc:
		if src.err != nil {
			return nil, src.err
		}
		f, err := parser.ParseFile(fset, tmpFile, src.NewReader(), parser.ParseComments)
		if err != nil {
			return nil, err
		}
		tconf := &types.Config{Importer: importer.Default()}
		tinfo := newTypesInfo()
		pkg, err := tconf.Check(f.Name.Name, fset, []*ast.File{f}, tinfo)
		if err != nil {
			return nil, err
		}
		prog = gossa.NewProgram(fset, Mode)
		pkgs = []*gossa.Package{prog.CreatePackage(pkg, []*ast.File{f}, tinfo, false)}
		createImports(prog, pkg.Imports(), map[*types.Package]bool{pkg: true})

	default:
		return nil, errors.Errorf("unknown source type %T", src)
	}
	bldLog.Info("Program loaded and type checked")

	var ignoredPkgs []string
	for _, pkg := range prog.AllPackages() {
		if reason, badPkg := c.badPkgs[pkg.Pkg.Name()]; badPkg {
			bldLog.Infof("Skip package: %s (%s)", pkg.Pkg.Name(), reason)
			ignoredPkgs = append(ignoredPkgs, pkg.Pkg.Name())
			continue
		}
		pkg.Build()
	}

	var built []*gossa.Package
	for _, pkg := range pkgs {
		if pkg != nil {
			built = append(built, pkg)
		}
	}

	return &ssa.Info{
		IgnoredPkgs: ignoredPkgs,
		FSet:        fset,
		Prog:        prog,
		Pkgs:        built,
		BldLog:      c.bldLog,
	}, nil
}

// Default returns a default configuration for static analysis.
func (c *Config) Default() Configurer {
	return c.
		AddBadPkg("reflect", "Reflection is not supported").
		AddBadPkg("runtime", "Runtime is ignored for static analysis")
}

// createImports creates SSA packages (without bodies) for the imported
// packages, transitively.
func createImports(prog *gossa.Program, imports []*types.Package, seen map[*types.Package]bool) {
	for _, p := range imports {
		if seen[p] {
			continue
		}
		seen[p] = true
		if prog.Package(p) == nil {
			prog.CreatePackage(p, nil, nil, true)
		}
		createImports(prog, p.Imports(), seen)
	}
}

// checkAdHoc type checks the files of the ad-hoc package p again under its
// package name, so its functions are named like those of a package read from
// source (main.main, not command-line-arguments.main).
func checkAdHoc(fset *token.FileSet, p *packages.Package) (*types.Package, *types.Info, error) {
	tconf := &types.Config{
		Importer: importerFunc(func(path string) (*types.Package, error) {
			if imp, ok := p.Imports[path]; ok && imp.Types != nil {
				return imp.Types, nil
			}
			return nil, errors.Errorf("import %q not loaded", path)
		}),
		Sizes: p.TypesSizes,
	}
	tinfo := newTypesInfo()
	tpkg, err := tconf.Check(p.Name, fset, p.Syntax, tinfo)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "cannot type check package %s", p.Name)
	}
	return tpkg, tinfo, nil
}

type importerFunc func(path string) (*types.Package, error)

func (f importerFunc) Import(path string) (*types.Package, error) { return f(path) }

func newTypesInfo() *types.Info {
	return &types.Info{
		Types:      make(map[ast.Expr]types.TypeAndValue),
		Defs:       make(map[*ast.Ident]types.Object),
		Uses:       make(map[*ast.Ident]types.Object),
		Implicits:  make(map[ast.Node]types.Object),
		Instances:  make(map[*ast.Ident]types.Instance),
		Scopes:     make(map[ast.Node]*types.Scope),
		Selections: make(map[*ast.SelectorExpr]*types.Selection),
	}
}
