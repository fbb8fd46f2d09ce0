// Package reconciler converts a deduplication plan into filesystem state:
// move the keep records into the output directory, unlink the duplicates,
// then tear down the emptied source directories.
package reconciler

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"imagededup/logging"
	"imagededup/types"
	"imagededup/workpool"
)

// MoveFiles relocates every planned move into its destination directory,
// bounded by the pool's limit. A per-file failure is logged and recorded;
// the rest of the batch continues.
func MoveFiles(moves []types.Move, pool *workpool.Pool, replace bool) types.PhaseReport {
	items := make([]types.ItemResult, len(moves))
	pool.Run(len(moves), func(i int) {
		move := moves[i]
		err := moveFileToDir(move.Record.Path, move.DestDir, replace)
		logging.ItemProcessed("move", move.Record.Path, err)
		items[i] = types.ItemResult{Path: move.Record.Path, Err: err}
		if err != nil {
			items[i].Kind = types.KindMove
		}
	})
	return types.PhaseReport{Phase: "move", Items: items}
}

// RemoveFiles unlinks every planned deletion, bounded by the pool's limit.
// Failures are logged and recorded, never fatal.
func RemoveFiles(records []types.ImageRecord, pool *workpool.Pool) types.PhaseReport {
	items := make([]types.ItemResult, len(records))
	pool.Run(len(records), func(i int) {
		record := records[i]
		err := os.Remove(record.Path)
		if err != nil {
			err = fmt.Errorf("remove %s: %w", record.Path, err)
		}
		logging.ItemProcessed("delete", record.Path, err)
		items[i] = types.ItemResult{Path: record.Path, Err: err}
		if err != nil {
			items[i].Kind = types.KindDelete
		}
	})
	return types.PhaseReport{Phase: "delete", Items: items}
}

// CleanupDirs recursively removes every directory in dirs other than the
// resolved output directory — unconditionally, including entries that never
// fingerprinted. A removal failure terminates the run after partial
// completion.
func CleanupDirs(dirs []string, outputDir string) (int, error) {
	removed := 0
	for _, dir := range dirs {
		if dir == outputDir {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			return removed, fmt.Errorf("remove directory %s: %w", dir, err)
		}
		logging.Debugf("removed directory %s", dir)
		removed++
	}
	return removed, nil
}

// moveFileToDir moves src into dstDir under its own base name. When that
// name is already taken and replace is off, src is first renamed in place
// with a small random numeric suffix on its stem. The suffix is unchecked
// against existing names, so two concurrent renames can still collide.
func moveFileToDir(src, dstDir string, replace bool) error {
	dst := filepath.Join(dstDir, filepath.Base(src))
	if !replace {
		if _, err := os.Stat(dst); err == nil {
			renamed := randomizedStem(src)
			logging.Debugf("renaming %s to %s to avoid collision", src, renamed)
			if err := os.Rename(src, renamed); err != nil {
				return fmt.Errorf("rename %s: %w", src, err)
			}
			src = renamed
			dst = filepath.Join(dstDir, filepath.Base(renamed))
		}
	}
	logging.Tracef("moving %s to %s", src, dst)
	return moveFile(src, dst)
}

// randomizedStem appends a random number in [0, 10] to the file stem,
// keeping directory and extension.
func randomizedStem(path string) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	name := fmt.Sprintf("%s%d%s", stem, rand.IntN(11), ext)
	return filepath.Join(filepath.Dir(path), name)
}

// moveFile renames src to dst, falling back to copy-then-delete when the
// rename fails (typically a cross-filesystem move).
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("move %s to %s: %w", src, dst, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove %s after copy: %w", src, err)
	}
	return nil
}

// copyFile streams src to dst with default permissions.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
