package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/easyparts/easyparts/internal/extract"
	"github.com/easyparts/easyparts/internal/output"
	"github.com/easyparts/easyparts/internal/parts"
	"github.com/easyparts/easyparts/internal/scheduler"
	"github.com/easyparts/easyparts/internal/utils"
)

type getOptions struct {
	outputDir     string
	listFile      string
	manifestPath  string
	writeManifest bool
	extract       bool
	keepParts     bool
}

func newGetCmd() *cobra.Command {
	var opts getOptions

	cmd := &cobra.Command{
		Use:   "get [URL...]",
		Short: "Download part URLs in parallel, then verify, assemble and extract",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runGet(args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "downloads", "Output directory for part files")
	cmd.Flags().StringVarP(&opts.listFile, "list", "l", "", "Path to text file with one part URL per line")
	cmd.Flags().StringVarP(&opts.manifestPath, "manifest", "m", "", "Part manifest (YAML) to verify downloads against")
	cmd.Flags().BoolVar(&opts.writeManifest, "write-manifest", false, "Write a part manifest after download")
	cmd.Flags().BoolVarP(&opts.extract, "extract", "e", false, "Auto-extract after all parts complete")
	cmd.Flags().BoolVar(&opts.keepParts, "keep-parts", false, "Keep part files after extraction")
	return cmd
}

func runGet(urls []string, opts getOptions) error {
	if opts.listFile != "" {
		listed, err := utils.ReadURLList(opts.listFile)
		if err != nil {
			return fmt.Errorf("error reading URL list: %v", err)
		}
		urls = append(urls, listed...)
	}
	if len(urls) == 0 {
		return fmt.Errorf("no part URLs provided")
	}
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("error creating output directory: %v", err)
	}

	connectionsPerLink := connections
	maxConnections := 64
	if workers*connectionsPerLink > maxConnections {
		connectionsPerLink = max(maxConnections/workers, 1)
	}

	var jobs []utils.Job
	for _, url := range urls {
		jobs = append(jobs, utils.Job{
			JobType:          jobTypeForURL(url),
			URL:              url,
			OutputPath:       filepath.Join(opts.outputDir, parts.InferFilename(url)),
			Connections:      connectionsPerLink,
			ProgressType:     "progress",
			HTTPClientConfig: globalHTTPConfig,
			Metadata:         make(map[string]any),
		})
	}
	if err := scheduler.Run(jobs, workers); err != nil {
		return err
	}
	return postProcess(opts)
}

// postProcess runs the manifest/verify/extract pipeline on the output
// directory once every part is on disk.
func postProcess(opts getOptions) error {
	dir := opts.outputDir
	sets, err := parts.Scan(dir)
	if err != nil {
		return err
	}

	if opts.writeManifest {
		var names []string
		for _, set := range sets {
			for _, p := range set.Parts {
				names = append(names, p.Name)
			}
		}
		if len(names) > 0 {
			manifest, err := parts.GenerateManifest(dir, names)
			if err != nil {
				return err
			}
			if err := manifest.Write(dir); err != nil {
				return err
			}
			output.PrintInfo(fmt.Sprintf("Wrote manifest for %d parts", len(names)))
		}
	}

	if opts.manifestPath != "" {
		manifest, err := parts.LoadManifest(opts.manifestPath)
		if err != nil {
			return err
		}
		report, err := parts.VerifyManifest(dir, manifest)
		if err != nil {
			return err
		}
		printReport(report)
		if !report.OK() {
			return fmt.Errorf("part verification failed: %s", report.Summary())
		}
	}

	if !opts.extract {
		return nil
	}
	if len(sets) == 0 {
		output.PrintWarning("No archive found to extract")
		return nil
	}
	for i := range sets {
		set := &sets[i]
		report := parts.VerifySet(set)
		if !report.OK() {
			printReport(report)
			return fmt.Errorf("set %s is incomplete: %s", set.Base, report.Summary())
		}
		output.PrintPending(fmt.Sprintf("Extracting %s ...", set.Base))
		if err := extract.ExtractSet(dir, set, extract.Options{DestDir: dir, StreamFunc: output.PrintDebug}); err != nil {
			return err
		}
		output.PrintSuccess(fmt.Sprintf("Extracted %s", set.Base))
		if !opts.keepParts {
			if err := extract.CleanupParts(dir, set); err != nil {
				return err
			}
		}
	}
	return nil
}

func printReport(report *parts.Report) {
	for _, name := range report.Missing {
		output.PrintError(fmt.Sprintf("missing: %s", name))
	}
	for _, detail := range report.Corrupted {
		output.PrintError(fmt.Sprintf("corrupted: %s", detail))
	}
	if report.OK() {
		output.PrintSuccess(report.Summary())
	}
}
