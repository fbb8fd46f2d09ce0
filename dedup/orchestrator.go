// Package dedup sequences the deduplication pipeline: validate directories,
// scan and fingerprint them in parallel, merge per-directory results into a
// global signature index, plan which copies survive, and reconcile the plan
// against the filesystem.
package dedup

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"imagededup/database"
	"imagededup/imagehash"
	"imagededup/logging"
	"imagededup/reconciler"
	"imagededup/scanner"
	"imagededup/types"
	"imagededup/workpool"
)

// Config carries every knob of a run. The concurrency limit travels here
// instead of in a process-wide variable.
type Config struct {
	MainDir   string
	ExtraDirs []string
	// OutputDir defaults to MainDir when empty. It is created if absent.
	OutputDir string
	// Jobs bounds concurrent work per fan-out level; with D directories up
	// to D×Jobs fingerprint computations can run at once.
	Jobs int
	// Replace overwrites same-named files in the output directory instead
	// of renaming the incoming file.
	Replace bool
	// DatabasePath, when set, enables the persistent fingerprint cache.
	DatabasePath string
}

// Run executes the full pipeline and returns a report of every per-item
// outcome. The returned error is non-nil only for fatal conditions:
// configuration validation failures (before any filesystem mutation) and
// directory cleanup failures (after partial completion).
func Run(cfg Config) (*types.RunReport, error) {
	start := time.Now()

	cfg = normalize(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}

	order := ResolveDirectoryOrder(cfg.MainDir, cfg.ExtraDirs, cfg.OutputDir)

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", cfg.OutputDir, err)
	}

	pool := workpool.New(cfg.Jobs)
	provider := imagehash.NewPerceptionHasher()

	var cache *database.FingerprintCache
	if cfg.DatabasePath != "" {
		opened, err := database.Open(cfg.DatabasePath)
		if err != nil {
			logging.Warnf("fingerprint cache disabled: %v", err)
		} else {
			cache = opened
			defer cache.Close()
		}
	}

	opts := scanner.Options{Provider: provider, Pool: pool, Cache: cache}

	// Scan and fingerprint, one task per directory. Directory tasks share
	// the same limit as the per-file fan-out inside each of them.
	logging.Infof("scanning %d directories with %d jobs", len(order), cfg.Jobs)
	results := make([]*scanner.DirResult, len(order))
	pool.Run(len(order), func(i int) {
		result, err := scanner.ScanDirectory(order[i], opts)
		if err != nil {
			// The directory existed at validation time; a listing failure
			// now drops the whole directory from the index but does not
			// abort its siblings.
			logging.Errorf("scan failed for %s: %v", order[i], err)
			return
		}
		results[i] = result
	})

	report := &types.RunReport{}
	report.Scan = types.PhaseReport{Phase: "scan"}
	for _, result := range results {
		if result != nil {
			report.Scan.Items = append(report.Scan.Items, result.Items...)
		}
	}

	index := Merge(results)
	report.Groups = len(index)
	logging.Infof("merged %d fingerprint groups from %d files",
		len(index), report.Scan.Succeeded())

	plan := BuildPlan(index, cfg.OutputDir)
	logging.Infof("planned %d moves and %d deletions", len(plan.Moves), len(plan.Deletes))

	report.Move = reconciler.MoveFiles(plan.Moves, pool, cfg.Replace)
	report.Delete = reconciler.RemoveFiles(plan.Deletes, pool)

	logging.Errorf("removing source directories (everything outside %s is discarded)", cfg.OutputDir)
	removed, cleanupErr := reconciler.CleanupDirs(order, cfg.OutputDir)
	report.DirsRemoved = removed
	report.Elapsed = time.Since(start)
	if cleanupErr != nil {
		return report, cleanupErr
	}

	logging.Infof("done in %s", report.Elapsed.Round(time.Millisecond))
	return report, nil
}

// normalize cleans paths and applies the output-directory default.
func normalize(cfg Config) Config {
	cfg.MainDir = filepath.Clean(cfg.MainDir)
	for i, dir := range cfg.ExtraDirs {
		cfg.ExtraDirs[i] = filepath.Clean(dir)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = cfg.MainDir
	}
	cfg.OutputDir = filepath.Clean(cfg.OutputDir)
	if cfg.Jobs < 1 {
		cfg.Jobs = 1
	}
	return cfg
}

// validate checks the run configuration before any filesystem mutation.
func validate(cfg Config) error {
	if len(cfg.ExtraDirs) < 1 {
		return &types.ConfigError{
			Code: types.ExitNotEnoughDirs,
			Msg:  "not enough directories: a main directory and at least one more are required",
		}
	}
	dirs := append([]string{cfg.MainDir}, cfg.ExtraDirs...)
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return &types.ConfigError{
				Code: types.ExitMissingDir,
				Msg:  fmt.Sprintf("path %s is not a directory or does not exist", dir),
			}
		}
	}
	return nil
}
