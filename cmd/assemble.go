package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/easyparts/easyparts/internal/assemble"
	"github.com/easyparts/easyparts/internal/output"
	"github.com/easyparts/easyparts/internal/parts"
)

func newAssembleCmd() *cobra.Command {
	var base string

	cmd := &cobra.Command{
		Use:   "assemble [DIR]",
		Short: "Join numeric split volumes (.001, .002, ...) into a single archive",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			sets, err := parts.Scan(dir)
			if err != nil {
				return err
			}
			joined := 0
			for i := range sets {
				set := &sets[i]
				if base != "" && set.Base != base {
					continue
				}
				if len(set.Parts) == 0 || !parts.IsNumericVolume(set.Parts[0].Name) {
					continue
				}
				target, err := assemble.Join(dir, set)
				if err != nil {
					return err
				}
				output.PrintSuccess(fmt.Sprintf("Assembled %s", target))
				joined++
			}
			if joined == 0 {
				return fmt.Errorf("no numeric split volumes found in %s", dir)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&base, "base", "", "Only assemble the set with this base name")
	return cmd
}
