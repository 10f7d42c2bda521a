// Package build builds the SSA IR of Go source code into an ssa.Info.
//
// Source is given either as a list of files, loaded through the go command as
// a single package:
//
//	info, err := build.FromFiles(files).Default().Build()
//
// or read from an io.Reader, parsed as a file named "tmp" and type checked
// against the export data of its imports, which is what tests use:
//
//	info, err := build.FromReader(strings.NewReader(src)).Build()
//
// Default marks the runtime and reflect packages as bad, so their function
// bodies are not built.
package build
