package types

import (
	"fmt"
	"time"
)

// Fingerprint is an opaque content-based signature of an image. Two files
// holding the same picture yield equal fingerprints regardless of name or
// location; the value carries no ordering semantics beyond equality.
type Fingerprint uint64

func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}

// ImageRecord identifies one scanned file and the directory it was found in.
// Identity is the path; records are never mutated after scanning.
type ImageRecord struct {
	Path string
	Dir  string
}

// SignatureMap maps fingerprints to the records that produced them. Within a
// key, records appear in insertion order: directory processing order first,
// then per-directory completion order.
type SignatureMap map[Fingerprint][]ImageRecord

// Move schedules one record for relocation into a destination directory.
type Move struct {
	Record  ImageRecord
	DestDir string
}

// Plan is the transient move-one/delete-rest product of planning, consumed
// by reconciliation and discarded afterwards.
type Plan struct {
	Moves   []Move
	Deletes []ImageRecord
}

// ErrorKind classifies per-item failures. Per-item failures are recovered
// locally and never abort a run.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindFingerprint
	KindMove
	KindDelete
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindFingerprint:
		return "fingerprint"
	case KindMove:
		return "move"
	case KindDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// ItemResult records the outcome of processing one file in one phase.
type ItemResult struct {
	Path string
	Kind ErrorKind
	Err  error
}

// Failed reports whether the item ended in an error.
func (r ItemResult) Failed() bool {
	return r.Err != nil
}

// PhaseReport aggregates per-item outcomes of one pipeline phase. It is
// assembled single-threaded between fan-out phases and surfaced to the
// caller instead of being logged and forgotten.
type PhaseReport struct {
	Phase string
	Items []ItemResult
}

// Succeeded counts items that completed without error.
func (p PhaseReport) Succeeded() int {
	n := 0
	for _, item := range p.Items {
		if !item.Failed() {
			n++
		}
	}
	return n
}

// Failures returns the items that ended in an error.
func (p PhaseReport) Failures() []ItemResult {
	var failed []ItemResult
	for _, item := range p.Items {
		if item.Failed() {
			failed = append(failed, item)
		}
	}
	return failed
}

// RunReport is the aggregate outcome of a full deduplication run.
type RunReport struct {
	Scan        PhaseReport
	Move        PhaseReport
	Delete      PhaseReport
	Groups      int
	DirsRemoved int
	Elapsed     time.Duration
}

// Process exit codes. Per-item failures never influence the exit code; only
// configuration validation does.
const (
	ExitOK            = 0
	ExitNotEnoughDirs = -1
	ExitMissingDir    = -2
)

// ConfigError is a fatal pre-flight misconfiguration. It aborts the run
// before any filesystem mutation and carries the process exit code.
type ConfigError struct {
	Code int
	Msg  string
}

func (e *ConfigError) Error() string {
	return e.Msg
}
