// Package workspace implements the authoritative WorkspaceState, the
// path-level FileLockManager, and the per-task TaskWorkspace transaction
// layer: copy-on-write file isolation per task, path-level locking for
// conflicting writes, and commit/rollback of a task's staged changes back
// onto the shared workspace.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	wsdomain "github.com/agentcore/agentcore/internal/domain/workspace"
)

// WorkspaceState is the authoritative, on-disk-backed file store. All
// mutation goes through ApplyChanges, which holds the write lock; reads and
// snapshots take the shared read lock and copy the affected subset.
type WorkspaceState struct {
	root string
	mu   sync.RWMutex
}

// NewWorkspaceState builds a WorkspaceState rooted at root.
func NewWorkspaceState(root string) *WorkspaceState {
	return &WorkspaceState{root: root}
}

// Root returns the workspace's root directory.
func (w *WorkspaceState) Root() string { return w.root }

// ReadFile returns the current content of path relative to the workspace
// root, and whether it exists.
func (w *WorkspaceState) ReadFile(path string) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	data, err := os.ReadFile(w.abs(path))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Snapshot captures the current content of paths into an immutable
// WorkspaceSnapshot.
func (w *WorkspaceState) Snapshot(paths []string) wsdomain.WorkspaceSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	files := make(map[string]string, len(paths))
	for _, p := range paths {
		if data, err := os.ReadFile(w.abs(p)); err == nil {
			files[p] = string(data)
		}
	}
	return wsdomain.WorkspaceSnapshot{Files: files}
}

// ApplyChanges applies changes atomically with respect to external
// observers: the write lock is held for the whole batch, so a concurrent
// Snapshot or ReadFile either sees all of the batch's effects or none.
func (w *WorkspaceState) ApplyChanges(changes []wsdomain.FileChange) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, change := range changes {
		abs := w.abs(change.Path)
		switch change.Kind {
		case wsdomain.ChangeCreate, wsdomain.ChangeModify:
			if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
				return fmt.Errorf("create parent dirs for %s: %w", change.Path, err)
			}
			if err := os.WriteFile(abs, []byte(change.Content), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", change.Path, err)
			}
		case wsdomain.ChangeDelete:
			if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("delete %s: %w", change.Path, err)
			}
		}
	}
	return nil
}

func (w *WorkspaceState) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(w.root, path)
}
