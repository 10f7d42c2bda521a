package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/nickng/loopannot/loop"
	"github.com/nickng/loopannot/store"
	"github.com/spf13/cobra"
	gossa "golang.org/x/tools/go/ssa"
)

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [flags] file.go [files.go...]",
		Short: "Print the loop forest of each function",
		Long: `View prints the loops of each function with loops in preorder, indented by
nesting depth, with the identifier attached in the tag file if any.`,
		Args: cobra.MinimumNArgs(1),
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
			tags := store.New()
			tagsPath, _ := cmd.Flags().GetString("tags")
			if err := tags.LoadFile(tagsPath); err != nil {
				return err
			}
			return writeForests(cmd.OutOrStdout(), info.Functions(), tags)
		},
	}
	cmd.Flags().String("tags", defaultTagsPath, "Loop identifier file")
	return cmd
}

// writeForests writes the loop forests of fns to w, skipping functions
// without loops.
func writeForests(w io.Writer, fns []*gossa.Function, tags *store.Tags) error {
	for _, fn := range fns {
		forest := loop.Detect(fn)
		if forest.Len() == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s\n", forest.Func); err != nil {
			return err
		}
		for _, l := range forest.Preorder() {
			var id string
			if v, ok := tags.Get(l.Key()); ok {
				id = fmt.Sprintf(" ↦ %d", v)
			}
			indent := strings.Repeat("  ", l.Depth)
			if _, err := fmt.Fprintf(w, "%s%s%s\n", indent, l, id); err != nil {
				return err
			}
		}
	}
	return nil
}
