package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/easyparts/easyparts/internal/extract"
	"github.com/easyparts/easyparts/internal/output"
	"github.com/easyparts/easyparts/internal/parts"
)

func newExtractCmd() *cobra.Command {
	var destDir string
	var removeParts bool

	cmd := &cobra.Command{
		Use:   "extract [ARCHIVE|DIR]",
		Short: "Extract an archive, or every complete part set in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			path := args[0]
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("error checking path: %v", err)
			}
			if !info.IsDir() {
				if destDir == "" {
					destDir = filepath.Dir(path)
				}
				return extract.Extract(path, extract.Options{DestDir: destDir, StreamFunc: output.PrintDebug})
			}
			sets, err := parts.Scan(path)
			if err != nil {
				return err
			}
			if len(sets) == 0 {
				return fmt.Errorf("no archives found in %s", path)
			}
			if destDir == "" {
				destDir = path
			}
			for i := range sets {
				set := &sets[i]
				report := parts.VerifySet(set)
				if !report.OK() {
					printReport(report)
					return fmt.Errorf("set %s is incomplete: %s", set.Base, report.Summary())
				}
				if err := extract.ExtractSet(path, set, extract.Options{DestDir: destDir, StreamFunc: output.PrintDebug}); err != nil {
					return err
				}
				output.PrintSuccess(fmt.Sprintf("Extracted %s", set.Base))
				if removeParts {
					if err := extract.CleanupParts(path, set); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&destDir, "output", "o", "", "Destination directory (defaults next to the archive)")
	cmd.Flags().BoolVar(&removeParts, "remove-parts", false, "Delete part files after successful extraction")
	return cmd
}
