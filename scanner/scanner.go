// Package scanner lists directory candidates and fingerprints them with
// bounded concurrency. Scanning is deliberately indiscriminate: every
// immediate entry of a directory is a candidate, and anything the
// fingerprint provider cannot handle becomes a per-item failure rather than
// a filter rule.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"imagededup/database"
	"imagededup/imagehash"
	"imagededup/logging"
	"imagededup/types"
	"imagededup/workpool"
)

// Options carries the collaborators a directory scan needs. Cache may be
// nil, in which case every candidate is decoded and hashed.
type Options struct {
	Provider imagehash.FingerprintProvider
	Pool     *workpool.Pool
	Cache    *database.FingerprintCache
}

// DirResult holds one directory's fingerprint map along with the per-item
// outcomes that produced it.
type DirResult struct {
	Dir        string
	Signatures types.SignatureMap
	Items      []types.ItemResult
}

// ListCandidates returns the immediate entries of dir in enumeration order.
// No recursion, no extension filtering: subdirectories and non-image files
// are candidates too and fail fingerprinting individually.
func ListCandidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list directory %s: %w", dir, err)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}

// ScanDirectory fingerprints every candidate in dir, running up to the
// pool's limit of computations concurrently. Results are inserted into the
// signature map as they complete, so order within a fingerprint group
// follows completion, not enumeration. A candidate that cannot be read or
// decoded is logged, recorded as a failed item and dropped from the map.
func ScanDirectory(dir string, opts Options) (*DirResult, error) {
	logging.Debugf("scanning directory %s", dir)

	candidates, err := ListCandidates(dir)
	if err != nil {
		return nil, err
	}

	result := &DirResult{
		Dir:        dir,
		Signatures: make(types.SignatureMap),
		Items:      make([]types.ItemResult, 0, len(candidates)),
	}

	var mu sync.Mutex
	opts.Pool.Run(len(candidates), func(i int) {
		path := candidates[i]
		fp, err := fingerprintFile(path, opts)

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			logging.ItemProcessed("fingerprint", path, err)
			result.Items = append(result.Items, types.ItemResult{
				Path: path,
				Kind: types.KindFingerprint,
				Err:  err,
			})
			return
		}
		logging.Tracef("fingerprinted %s as %s", path, fp)
		result.Signatures[fp] = append(result.Signatures[fp], types.ImageRecord{
			Path: path,
			Dir:  dir,
		})
		result.Items = append(result.Items, types.ItemResult{Path: path})
	})

	report := types.PhaseReport{Items: result.Items}
	logging.Debugf("directory %s: %d candidates, %d fingerprinted",
		dir, len(candidates), report.Succeeded())
	return result, nil
}

// fingerprintFile opens path read-only for the duration of decode and hash.
// With a cache attached, unchanged files are answered from the cache and
// fresh results written back; cache trouble falls through to hashing.
func fingerprintFile(path string, opts Options) (types.Fingerprint, error) {
	var info os.FileInfo
	if opts.Cache != nil {
		var err error
		info, err = os.Stat(path)
		if err == nil {
			fp, ok, lookupErr := opts.Cache.Lookup(path, info.Size(), info.ModTime())
			if lookupErr != nil {
				logging.Warnf("fingerprint cache lookup failed for %s: %v", path, lookupErr)
			} else if ok {
				logging.Tracef("fingerprint cache hit for %s", path)
				return fp, nil
			}
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, err := imagehash.Decode(f)
	if err != nil {
		return 0, fmt.Errorf("decode %s: %w", path, err)
	}

	fp, err := opts.Provider.Fingerprint(img)
	if err != nil {
		return 0, fmt.Errorf("fingerprint %s: %w", path, err)
	}

	if opts.Cache != nil && info != nil {
		if err := opts.Cache.Store(path, info.Size(), info.ModTime(), fp); err != nil {
			logging.Warnf("fingerprint cache store failed for %s: %v", path, err)
		}
	}
	return fp, nil
}
