package main

import (
	"io"
	"os"

	"github.com/nickng/loopannot/ssa"
	"github.com/nickng/loopannot/ssa/build"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// newRootCmd returns the loopannot command with all subcommands.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "loopannot",
		Short: "loopannot - stable loop identifiers for Go programs",
		Long: `loopannot attaches identifiers to the loops of Go source code and reports
them, so that loops can be recognised across independent builds.

Commands:
  run         Annotate loops (write mode) or report identifiers (read mode)
  view        Print the loop forest of each function
  ssa         Print SSA IR

Use "loopannot [command] --help" for more information about a command.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("log", "", "Specify analysis log file (use '-' for stderr)")

	root.AddCommand(newRunCmd())
	root.AddCommand(newViewCmd())
	root.AddCommand(newSSACmd())
	return root
}

// buildLog is the destination of the build log selected by --log.
type buildLog struct {
	io.Writer
	file *os.File // Set if the log goes to a file.
}

func (l *buildLog) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// openLog opens the log named by the --log flag.
func openLog(cmd *cobra.Command) (*buildLog, error) {
	path, _ := cmd.Flags().GetString("log")
	switch path {
	case "":
		return &buildLog{Writer: io.Discard}, nil
	case "-":
		return &buildLog{Writer: os.Stderr}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create log %s", path)
	}
	return &buildLog{Writer: f, file: f}, nil
}

// buildSSA builds the SSA program of files with default options.
func buildSSA(files []string, log io.Writer) (*ssa.Info, error) {
	info, err := build.FromFiles(files).Default().WithBuildLog(log).Build()
	if err != nil {
		return nil, errors.Wrap(err, "cannot build SSA from files")
	}
	return info, nil
}
