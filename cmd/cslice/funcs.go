package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cslice/internal/decomp"
)

var funcsCmd = &cobra.Command{
	Use:   "funcs [snapshot.mp]",
	Short: "List the snapshot's function universe",
	Long:  `Funcs prints every function the snapshot knows about, with its entry address and tags, in discovery order. Useful for building --only and --addrs filters.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snapPath, _, err := resolveSnapshotPath(args)
		if err != nil {
			return err
		}
		prov, err := decomp.Load(snapPath)
		if err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
		funcs, err := prov.ListFunctions(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, fn := range funcs {
			line := fmt.Sprintf("%-12s %s", fn.ID.Addr(), fn.Name)
			if len(fn.Tags) > 0 {
				line += "  [" + strings.Join(fn.Tags, ",") + "]"
			}
			fmt.Fprintln(out, line)
		}
		fmt.Fprintf(out, "%d functions in %s\n", len(funcs), prov.ProgramName())
		return nil
	},
}
