package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// RunLock is the single-instance guard over the persisted state. The design
// assumes single-writer, run-to-completion semantics; a second concurrent
// invocation must fail fast instead of racing the ledger file.
type RunLock struct {
	path string
}

// AcquireRunLock creates an exclusive lock file in the state directory.
func AcquireRunLock(stateDir string) (*RunLock, error) {
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	path := filepath.Join(stateDir, "run.lock")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("another run holds %s; if no run is active, remove the file and retry", path)
		}
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	f.Close()
	return &RunLock{path: path}, nil
}

// Release removes the lock file.
func (l *RunLock) Release() error {
	return os.Remove(l.path)
}
