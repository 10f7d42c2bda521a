package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newSSACmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ssa [flags] file.go [files.go...]",
		Short: "Print SSA IR",
		Long:  `SSA prints the SSA IR of the program, or of a single function with --func.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := openLog(cmd)
			if err != nil {
				return err
			}
			defer log.Close()

			info, err := buildSSA(args, log)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if fn, _ := cmd.Flags().GetString("func"); fn != "" {
				_, err = info.WriteFunc(out, fn)
			} else {
				_, err = info.WriteTo(out)
			}
			return errors.Wrap(err, "cannot write SSA")
		},
	}
	cmd.Flags().String("func", "", "Specify the function to view (format: (import/path).FuncName)")
	return cmd
}
