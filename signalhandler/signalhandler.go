package signalhandler

import (
	"os"
	"os/signal"
	"runtime"
	"syscall"
)

// SetupHandler installs SIGINT/SIGTERM handling so an interrupted run exits
// cleanly instead of dying in the middle of a file operation.
func SetupHandler() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		os.Exit(0)
	}()
}

// SuggestedWorkers returns a CPU-derived worker count, used when the caller
// does not pin one explicitly.
func SuggestedWorkers() int {
	workers := (runtime.NumCPU() * 3) / 4
	if workers < 1 {
		workers = 1
	}
	return workers
}
