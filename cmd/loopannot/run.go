package main

import (
	"github.com/nickng/loopannot/annotateloops"
	"github.com/nickng/loopannot/ssa"
	"github.com/nickng/loopannot/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	gossa "golang.org/x/tools/go/ssa"
)

const defaultTagsPath = "loopannot.tags"

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] file.go [files.go...]",
		Short: "Annotate loops or report their identifiers",
		Long: `Run walks the functions of the program and, in write mode, attaches a new
identifier to every loop within the depth threshold. Identifiers are kept in
the tag file, which read mode loads to report them.

Options are taken from the defaults, then the --config file, then the flags
given on the command line.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runPass,
	}
	f := cmd.Flags()
	f.String("config", "", "TOML configuration file")
	f.String("mode", "write", "Operation mode (write or read)")
	f.Uint("loop-depth-threshold", 1, "Deepest loop nesting processed (0 for no limit)")
	f.Uint64("loop-start-id", 1, "First loop identifier")
	f.Uint64("loop-id-interval", 1, "Stride between loop identifiers")
	f.String("stats", "", "Write the report to this file")
	f.String("fn-whitelist", "", "Only process functions matching the patterns in this file")
	f.Bool("report-line-numbers", false, "Include source line and file of loops in the report")
	f.Bool("report-top-parent", false, "Include the outermost enclosing loop in the report")
	f.String("tags", defaultTagsPath, "Loop identifier file")
	f.String("callgraph", "", "Only process functions reachable in the callgraph (static, cha or rta)")
	return cmd
}

// configFromFlags returns the configuration of cmd: the defaults, overlaid
// with the --config file, overlaid with the flags set.
func configFromFlags(cmd *cobra.Command) (annotateloops.Config, error) {
	flags := cmd.Flags()
	cfg := annotateloops.DefaultConfig()
	if path, _ := flags.GetString("config"); path != "" {
		var err error
		if cfg, err = annotateloops.LoadConfig(path); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("mode") {
		s, _ := flags.GetString("mode")
		mode, err := annotateloops.ParseMode(s)
		if err != nil {
			return cfg, err
		}
		cfg.Mode = mode
	}
	if flags.Changed("loop-depth-threshold") {
		cfg.LoopDepthThreshold, _ = flags.GetUint("loop-depth-threshold")
	}
	if flags.Changed("loop-start-id") {
		v, _ := flags.GetUint64("loop-start-id")
		cfg.LoopStartID = store.ID(v)
	}
	if flags.Changed("loop-id-interval") {
		v, _ := flags.GetUint64("loop-id-interval")
		cfg.LoopIDInterval = store.ID(v)
	}
	if flags.Changed("stats") {
		cfg.StatsPath, _ = flags.GetString("stats")
	}
	if flags.Changed("fn-whitelist") {
		cfg.WhitelistPath, _ = flags.GetString("fn-whitelist")
	}
	if flags.Changed("report-line-numbers") {
		cfg.ReportLineNumbers, _ = flags.GetBool("report-line-numbers")
	}
	if flags.Changed("report-top-parent") {
		cfg.ReportTopParent, _ = flags.GetBool("report-top-parent")
	}
	return cfg, cfg.Validate()
}

// selectFuncs returns the functions of info to process, all of them or only
// those reachable in the callgraph built with algo.
func selectFuncs(info *ssa.Info, algo string) ([]*gossa.Function, error) {
	if algo == "" {
		return info.Functions(), nil
	}
	return info.ReachableFunctions(algo)
}

func runPass(cmd *cobra.Command, args []string) error {
	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}
	log, err := openLog(cmd)
	if err != nil {
		return err
	}
	defer log.Close()

	info, err := buildSSA(args, log)
	if err != nil {
		return err
	}
	algo, _ := cmd.Flags().GetString("callgraph")
	fns, err := selectFuncs(info, algo)
	if err != nil {
		return err
	}

	tags := store.New()
	pass := annotateloops.New(cfg, tags)
	if log.file != nil {
		pass.AddLogFiles(log.file.Name())
	}
	tags.SetLogger(pass.SugaredLogger)

	tagsPath, _ := cmd.Flags().GetString("tags")
	if err := tags.LoadFile(tagsPath); err != nil {
		return err
	}
	changed, _ := pass.Run(annotateloops.FromSSA(fns))
	if cfg.Mode == annotateloops.Write && changed {
		if err := tags.SaveFile(tagsPath); err != nil {
			return errors.Wrap(err, "cannot save loop identifiers")
		}
	}
	return nil
}
