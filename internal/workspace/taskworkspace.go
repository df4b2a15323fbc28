package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	wsdomain "github.com/agentcore/agentcore/internal/domain/workspace"
	coreerrors "github.com/agentcore/agentcore/internal/shared/errors"
)

// fileStateKind is the closed set of file states a task transaction
// tracks: Created/Modified/Deleted.
type fileStateKind int

const (
	stateCreated fileStateKind = iota
	stateModified
	stateDeleted
)

type fileState struct {
	kind    fileStateKind
	content string
}

// TaskWorkspace is a single task's isolated, transactional view over a
// WorkspaceState: a frozen base snapshot plus a pending-changes overlay,
// committed or rolled back as a unit.
type TaskWorkspace struct {
	taskID         string
	global         *WorkspaceState
	lockManager    *FileLockManager
	writeGuard     *WriteLockGuard
	baseSnapshot   wsdomain.WorkspaceSnapshot
	pendingChanges map[string]fileState
}

// NewTaskWorkspace acquires write locks on filesToModify and snapshots
// their current content from global before any pending change is made.
func NewTaskWorkspace(taskID string, filesToModify []string, global *WorkspaceState, lockManager *FileLockManager) (*TaskWorkspace, error) {
	guard, err := lockManager.AcquireWriteLocks(taskID, filesToModify)
	if err != nil {
		return nil, err
	}

	return &TaskWorkspace{
		taskID:         taskID,
		global:         global,
		lockManager:    lockManager,
		writeGuard:     guard,
		baseSnapshot:   global.Snapshot(filesToModify),
		pendingChanges: make(map[string]fileState),
	}, nil
}

// Root returns the underlying global workspace's root directory.
func (w *TaskWorkspace) Root() string { return w.global.Root() }

// ModifyFile stages a modification to an existing file.
func (w *TaskWorkspace) ModifyFile(path, content string) {
	w.pendingChanges[path] = fileState{kind: stateModified, content: content}
}

// CreateFile stages a new file.
func (w *TaskWorkspace) CreateFile(path, content string) {
	w.pendingChanges[path] = fileState{kind: stateCreated, content: content}
}

// DeleteFile stages a deletion.
func (w *TaskWorkspace) DeleteFile(path string) {
	w.pendingChanges[path] = fileState{kind: stateDeleted}
}

// ReadFile returns the pending override for path if one is staged,
// otherwise the frozen base-snapshot content.
func (w *TaskWorkspace) ReadFile(path string) (string, bool) {
	if state, ok := w.pendingChanges[path]; ok {
		if state.kind == stateDeleted {
			return "", false
		}
		return state.content, true
	}
	return w.baseSnapshot.Get(path)
}

// CheckConflicts recomputes, for every pending path, whether global's
// current content still matches this workspace's base snapshot. Any
// divergence is reported with a unified diff (via sergi/go-diff) attached
// for readability, supplementing the base/current hash comparison the
// conflict report requires.
func (w *TaskWorkspace) CheckConflicts() []coreerrors.FileConflict {
	var conflicts []coreerrors.FileConflict
	dmp := diffmatchpatch.New()

	for path := range w.pendingChanges {
		baseContent, baseOK := w.baseSnapshot.Get(path)
		currentContent, currentOK := w.global.ReadFile(path)

		if baseOK == currentOK && baseContent == currentContent {
			continue
		}

		diffs := dmp.DiffMain(baseContent, currentContent, false)
		conflicts = append(conflicts, coreerrors.FileConflict{
			Path:        path,
			BaseHash:    hashOf(baseContent, baseOK),
			CurHash:     hashOf(currentContent, currentOK),
			UnifiedDiff: dmp.DiffPrettyText(diffs),
		})
	}
	return conflicts
}

// Commit checks for conflicts and, if none are found, applies the pending
// changes to global atomically. On conflict, pending state is left intact
// so the caller may inspect it (e.g. to retry after a rebase) and must
// call Rollback explicitly to release locks.
func (w *TaskWorkspace) Commit() (int, error) {
	if conflicts := w.CheckConflicts(); len(conflicts) > 0 {
		return 0, &coreerrors.ConflictDetectedError{Conflicts: conflicts}
	}

	changes := make([]wsdomain.FileChange, 0, len(w.pendingChanges))
	for path, state := range w.pendingChanges {
		switch state.kind {
		case stateCreated:
			changes = append(changes, wsdomain.NewCreate(path, state.content))
		case stateModified:
			changes = append(changes, wsdomain.NewModify(path, state.content))
		case stateDeleted:
			changes = append(changes, wsdomain.NewDelete(path))
		}
	}

	if err := w.global.ApplyChanges(changes); err != nil {
		return 0, fmt.Errorf("apply changes: %w", err)
	}

	count := len(changes)
	w.Rollback()
	return count, nil
}

// Rollback discards pending state and releases this workspace's write
// locks. Safe to call more than once.
func (w *TaskWorkspace) Rollback() {
	w.pendingChanges = make(map[string]fileState)
	w.writeGuard.Release()
}

// Materialize copies the committed workspace root plus this workspace's
// pending (uncommitted) changes into dir, so an opt-in validation stage
// (build/test/lint) can run against what the task's edits would look like
// post-commit without ever mutating global, per spec.md §4.9's "isolated
// copy of the workspace" requirement.
func (w *TaskWorkspace) Materialize(dir string) error {
	root := w.global.Root()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		if d.IsDir() && strings.HasPrefix(d.Name(), ".git") {
			return filepath.SkipDir
		}
		dest := filepath.Join(dir, rel)
		if d.IsDir() {
			return os.MkdirAll(dest, 0o755)
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		if mkErr := os.MkdirAll(filepath.Dir(dest), 0o755); mkErr != nil {
			return mkErr
		}
		return os.WriteFile(dest, data, 0o644)
	})
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("copy workspace root: %w", err)
	}

	for path, state := range w.pendingChanges {
		dest := filepath.Join(dir, path)
		if state.kind == stateDeleted {
			_ = os.Remove(dest)
			continue
		}
		if mkErr := os.MkdirAll(filepath.Dir(dest), 0o755); mkErr != nil {
			return fmt.Errorf("stage pending change for %s: %w", path, mkErr)
		}
		if writeErr := os.WriteFile(dest, []byte(state.content), 0o644); writeErr != nil {
			return fmt.Errorf("stage pending change for %s: %w", path, writeErr)
		}
	}
	return nil
}

func hashOf(content string, present bool) string {
	if !present {
		return "absent"
	}
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
