package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/easyparts/easyparts/internal/output"
	"github.com/easyparts/easyparts/internal/parts"
)

func newVerifyCmd() *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "verify [DIR]",
		Short: "Check a part set for missing or corrupted parts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			if manifestPath == "" {
				// Use the manifest written next to the set, when present
				candidate := filepath.Join(dir, parts.ManifestName)
				if _, err := os.Stat(candidate); err == nil {
					manifestPath = candidate
				}
			}
			if manifestPath != "" {
				manifest, err := parts.LoadManifest(manifestPath)
				if err != nil {
					return err
				}
				report, err := parts.VerifyManifest(dir, manifest)
				if err != nil {
					return err
				}
				printReport(report)
				if !report.OK() {
					return fmt.Errorf("verification failed: %s", report.Summary())
				}
				return nil
			}
			// No manifest: structural checks only
			sets, err := parts.Scan(dir)
			if err != nil {
				return err
			}
			if len(sets) == 0 {
				return fmt.Errorf("no part sets found in %s", dir)
			}
			failed := false
			for i := range sets {
				set := &sets[i]
				report := parts.VerifySet(set)
				output.PrintHeader(fmt.Sprintf("%s (%d parts)", set.Base, len(set.Parts)))
				printReport(report)
				if !report.OK() {
					failed = true
				}
			}
			if failed {
				return fmt.Errorf("one or more part sets are incomplete")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "Part manifest (YAML) with sizes and SHA-256 sums")
	return cmd
}
