package dedup

import (
	"imagededup/scanner"
	"imagededup/types"
)

// ResolveDirectoryOrder returns the fixed directory processing order: the
// resolved output directory first when it is not already among the inputs,
// then the main directory, then the extra directories in caller order. The
// merge appends in this order, so the order also decides which copy of a
// duplicate survives.
func ResolveDirectoryOrder(mainDir string, extraDirs []string, outputDir string) []string {
	dirs := make([]string, 0, len(extraDirs)+2)
	dirs = append(dirs, mainDir)
	dirs = append(dirs, extraDirs...)
	for _, dir := range dirs {
		if dir == outputDir {
			return dirs
		}
	}
	return append([]string{outputDir}, dirs...)
}

// Merge folds per-directory signature maps into one global map. It runs
// single-threaded after every directory task has joined, appending each
// directory's per-fingerprint list in the order results are given — so
// cross-directory order is deterministic while order within one directory
// reflects fingerprint completion. Nil results (directories whose listing
// failed) are skipped.
func Merge(results []*scanner.DirResult) types.SignatureMap {
	merged := make(types.SignatureMap)
	for _, result := range results {
		if result == nil {
			continue
		}
		for fp, records := range result.Signatures {
			merged[fp] = append(merged[fp], records...)
		}
	}
	return merged
}
