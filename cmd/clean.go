package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/easyparts/easyparts/internal/output"
	"github.com/easyparts/easyparts/internal/utils"
)

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [path]",
		Short: "Clean up temporary chunk files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			var err error
			if len(args) == 0 {
				err = utils.CleanLocal()
			} else {
				err = utils.CleanFunction(args[0])
			}
			if err != nil {
				output.PrintError(fmt.Sprintf("Cleanup failed: %v", err))
			}
			return err
		},
	}
}
