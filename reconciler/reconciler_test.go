package reconciler

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"imagededup/types"
	"imagededup/workpool"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestMoveFilesRelocates(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	path := filepath.Join(src, "a.png")
	writeFile(t, path, "pixels")

	report := MoveFiles([]types.Move{
		{Record: types.ImageRecord{Path: path, Dir: src}, DestDir: dst},
	}, workpool.New(2), false)

	if report.Succeeded() != 1 {
		t.Fatalf("move failed: %+v", report.Failures())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("source file still present after move")
	}
	if got := readFile(t, filepath.Join(dst, "a.png")); got != "pixels" {
		t.Fatalf("moved content = %q, want %q", got, "pixels")
	}
}

func TestMoveFilesCollisionRenames(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	path := filepath.Join(src, "a.png")
	writeFile(t, path, "incoming")
	writeFile(t, filepath.Join(dst, "a.png"), "already there")

	report := MoveFiles([]types.Move{
		{Record: types.ImageRecord{Path: path, Dir: src}, DestDir: dst},
	}, workpool.New(2), false)

	if report.Succeeded() != 1 {
		t.Fatalf("move failed: %+v", report.Failures())
	}
	if got := readFile(t, filepath.Join(dst, "a.png")); got != "already there" {
		t.Fatalf("existing file overwritten without replace: %q", got)
	}

	entries, err := os.ReadDir(dst)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("destination holds %d files, want 2", len(entries))
	}
	renamed := regexp.MustCompile(`^a(10|[0-9])\.png$`)
	found := false
	for _, entry := range entries {
		if renamed.MatchString(entry.Name()) {
			found = true
			if got := readFile(t, filepath.Join(dst, entry.Name())); got != "incoming" {
				t.Fatalf("renamed file content = %q, want %q", got, "incoming")
			}
		}
	}
	if !found {
		t.Fatalf("no suffix-renamed file in destination: %v", entries)
	}
}

func TestMoveFilesReplaceOverwrites(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	path := filepath.Join(src, "a.png")
	writeFile(t, path, "incoming")
	writeFile(t, filepath.Join(dst, "a.png"), "already there")

	report := MoveFiles([]types.Move{
		{Record: types.ImageRecord{Path: path, Dir: src}, DestDir: dst},
	}, workpool.New(2), true)

	if report.Succeeded() != 1 {
		t.Fatalf("move failed: %+v", report.Failures())
	}
	entries, err := os.ReadDir(dst)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("destination holds %d files, want 1", len(entries))
	}
	if got := readFile(t, filepath.Join(dst, "a.png")); got != "incoming" {
		t.Fatalf("destination content = %q, want %q", got, "incoming")
	}
}

func TestMoveFilesFailureDoesNotAbortBatch(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	good := filepath.Join(src, "good.png")
	writeFile(t, good, "fine")

	report := MoveFiles([]types.Move{
		{Record: types.ImageRecord{Path: filepath.Join(src, "ghost.png"), Dir: src}, DestDir: dst},
		{Record: types.ImageRecord{Path: good, Dir: src}, DestDir: dst},
	}, workpool.New(2), false)

	failures := report.Failures()
	if len(failures) != 1 || failures[0].Kind != types.KindMove {
		t.Fatalf("unexpected failures: %+v", failures)
	}
	if _, err := os.Stat(filepath.Join(dst, "good.png")); err != nil {
		t.Fatalf("healthy move did not complete: %v", err)
	}
}

func TestRemoveFiles(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "dup.png")
	writeFile(t, present, "dup")

	report := RemoveFiles([]types.ImageRecord{
		{Path: present, Dir: dir},
		{Path: filepath.Join(dir, "ghost.png"), Dir: dir},
	}, workpool.New(2))

	if report.Succeeded() != 1 {
		t.Fatalf("succeeded = %d, want 1", report.Succeeded())
	}
	failures := report.Failures()
	if len(failures) != 1 || failures[0].Kind != types.KindDelete {
		t.Fatalf("unexpected failures: %+v", failures)
	}
	if _, err := os.Stat(present); !os.IsNotExist(err) {
		t.Fatal("duplicate still present after delete phase")
	}
}

func TestCleanupDirsSparesOutputDirectory(t *testing.T) {
	base := t.TempDir()
	out := filepath.Join(base, "out")
	srcA := filepath.Join(base, "a")
	srcB := filepath.Join(base, "b")
	for _, d := range []string{out, srcA, srcB} {
		if err := os.Mkdir(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	// Cleanup is unconditional: leftovers do not protect a directory.
	writeFile(t, filepath.Join(srcB, "leftover.txt"), "never scanned")

	removed, err := CleanupDirs([]string{out, srcA, srcB}, out)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Fatalf("removed %d directories, want 2", removed)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("output directory was removed: %v", err)
	}
	for _, gone := range []string{srcA, srcB} {
		if _, err := os.Stat(gone); !os.IsNotExist(err) {
			t.Fatalf("source directory %s survived cleanup", gone)
		}
	}
}
