package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"imagededup/dedup"
	"imagededup/logging"
	"imagededup/signalhandler"
	"imagededup/types"
)

func main() {
	signalhandler.SetupHandler()

	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		var cfgErr *types.ConfigError
		if errors.As(err, &cfgErr) {
			if cfgErr.Code == types.ExitNotEnoughDirs {
				_ = cmd.Usage()
			}
			os.Exit(cfgErr.Code)
		}
		os.Exit(1)
	}
}

type rootOptions struct {
	output    string
	jobs      int
	verbosity int
	database  string
	replace   bool
}

func newRootCommand() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:   "imagededup main_directory directory [directory...]",
		Short: "Remove duplicate images spread across two or more directories",
		Long: `imagededup fingerprints every file in the given directories, keeps one
copy of each distinct image in the output directory (the main directory
unless -o is given) and deletes the rest.

WARNING: after reconciliation every source directory other than the output
directory is removed recursively, including any non-image content and any
files that failed fingerprinting.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return &types.ConfigError{
					Code: types.ExitNotEnoughDirs,
					Msg:  "not enough arguments: a main directory and at least one more directory are required",
				}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Setup(opts.verbosity)

			jobs := opts.jobs
			if jobs <= 0 {
				jobs = signalhandler.SuggestedWorkers()
			}

			cfg := dedup.Config{
				MainDir:      args[0],
				ExtraDirs:    args[1:],
				OutputDir:    opts.output,
				Jobs:         jobs,
				Replace:      opts.replace,
				DatabasePath: opts.database,
			}

			report, err := dedup.Run(cfg)
			if err != nil {
				return err
			}
			printSummary(report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "",
		"output directory for unique images (default: the main directory; created if absent)")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 8,
		"concurrency limit per fan-out level (0 picks a CPU-based value)")
	cmd.Flags().IntVarP(&opts.verbosity, "verbosity", "v", 0,
		"verbosity, 0-5 (0 disables logging)")
	cmd.Flags().StringVar(&opts.database, "database", "",
		"optional fingerprint cache database; unchanged files skip rehashing on later runs")
	cmd.Flags().BoolVar(&opts.replace, "replace", false,
		"overwrite same-named files in the output directory instead of renaming the incoming file")

	return cmd
}

func printSummary(report *types.RunReport) {
	fmt.Printf("Deduplication complete in %v.\n", report.Elapsed.Round(time.Millisecond))
	fmt.Printf("Fingerprinted %d files into %d groups.\n", report.Scan.Succeeded(), report.Groups)
	fmt.Printf("Moved %d files, deleted %d duplicates, removed %d directories.\n",
		report.Move.Succeeded(), report.Delete.Succeeded(), report.DirsRemoved)

	failed := len(report.Scan.Failures()) + len(report.Move.Failures()) + len(report.Delete.Failures())
	if failed > 0 {
		fmt.Printf("Skipped %d items due to errors; increase verbosity for details.\n", failed)
	}
}
