package workspace

import (
	"os"
	"path/filepath"
	"testing"

	wsdomain "github.com/agentcore/agentcore/internal/domain/workspace"
	coreerrors "github.com/agentcore/agentcore/internal/shared/errors"
	"github.com/stretchr/testify/require"
)

func TestTaskWorkspace_IsolationFromGlobal(t *testing.T) {
	global := NewWorkspaceState(t.TempDir())
	require.NoError(t, global.ApplyChanges([]wsdomain.FileChange{wsdomain.NewCreate("test.go", "original")}))

	locks := NewFileLockManager()
	tw, err := NewTaskWorkspace("task-1", []string{"test.go"}, global, locks)
	require.NoError(t, err)

	tw.ModifyFile("test.go", "modified")

	content, ok := tw.ReadFile("test.go")
	require.True(t, ok)
	require.Equal(t, "modified", content)

	globalContent, ok := global.ReadFile("test.go")
	require.True(t, ok)
	require.Equal(t, "original", globalContent)
}

func TestTaskWorkspace_CommitAppliesToGlobal(t *testing.T) {
	global := NewWorkspaceState(t.TempDir())
	require.NoError(t, global.ApplyChanges([]wsdomain.FileChange{wsdomain.NewCreate("test.go", "original")}))

	locks := NewFileLockManager()
	tw, err := NewTaskWorkspace("task-1", []string{"test.go"}, global, locks)
	require.NoError(t, err)

	tw.ModifyFile("test.go", "modified")
	count, err := tw.Commit()
	require.NoError(t, err)
	require.Equal(t, 1, count)

	content, ok := global.ReadFile("test.go")
	require.True(t, ok)
	require.Equal(t, "modified", content)
}

func TestTaskWorkspace_CommitReleasesLocksForReacquisition(t *testing.T) {
	global := NewWorkspaceState(t.TempDir())
	locks := NewFileLockManager()

	tw, err := NewTaskWorkspace("task-1", []string{"a.go"}, global, locks)
	require.NoError(t, err)
	tw.CreateFile("a.go", "v1")
	_, err = tw.Commit()
	require.NoError(t, err)

	_, err = NewTaskWorkspace("task-2", []string{"a.go"}, global, locks)
	require.NoError(t, err)
}

func TestTaskWorkspace_CheckConflictsDetectsDivergence(t *testing.T) {
	global := NewWorkspaceState(t.TempDir())
	require.NoError(t, global.ApplyChanges([]wsdomain.FileChange{wsdomain.NewCreate("test.go", "original")}))

	locks := NewFileLockManager()
	readGuard, err := locks.AcquireReadLocks("observer", []string{})
	require.NoError(t, err)
	_ = readGuard

	tw, err := NewTaskWorkspace("task-1", []string{"test.go"}, global, locks)
	require.NoError(t, err)
	tw.ModifyFile("test.go", "task's version")

	// Simulate a concurrent external writer changing global out from under
	// the task's base snapshot (bypassing the lock manager, as a test
	// double for "another process wrote this file directly").
	require.NoError(t, global.ApplyChanges([]wsdomain.FileChange{wsdomain.NewModify("test.go", "externally changed")}))

	conflicts := tw.CheckConflicts()
	require.Len(t, conflicts, 1)
	require.Equal(t, "test.go", conflicts[0].Path)
	require.NotEmpty(t, conflicts[0].UnifiedDiff)

	_, err = tw.Commit()
	require.Error(t, err)
	var conflictErr *coreerrors.ConflictDetectedError
	require.ErrorAs(t, err, &conflictErr)
}

func TestTaskWorkspace_RollbackDiscardsPendingChanges(t *testing.T) {
	global := NewWorkspaceState(t.TempDir())
	require.NoError(t, global.ApplyChanges([]wsdomain.FileChange{wsdomain.NewCreate("test.go", "original")}))

	locks := NewFileLockManager()
	tw, err := NewTaskWorkspace("task-1", []string{"test.go"}, global, locks)
	require.NoError(t, err)

	tw.ModifyFile("test.go", "modified")
	tw.Rollback()

	content, ok := global.ReadFile("test.go")
	require.True(t, ok)
	require.Equal(t, "original", content)

	_, err = NewTaskWorkspace("task-2", []string{"test.go"}, global, locks)
	require.NoError(t, err)
}

func TestTaskWorkspace_MaterializeAppliesPendingOverCommitted(t *testing.T) {
	global := NewWorkspaceState(t.TempDir())
	require.NoError(t, global.ApplyChanges([]wsdomain.FileChange{
		wsdomain.NewCreate("keep.go", "unchanged"),
		wsdomain.NewCreate("old.go", "stale"),
	}))

	locks := NewFileLockManager()
	tw, err := NewTaskWorkspace("task-1", []string{"old.go"}, global, locks)
	require.NoError(t, err)
	tw.ModifyFile("old.go", "fresh")
	tw.CreateFile("new.go", "brand new")

	dest := t.TempDir()
	require.NoError(t, tw.Materialize(dest))

	keep, err := os.ReadFile(filepath.Join(dest, "keep.go"))
	require.NoError(t, err)
	require.Equal(t, "unchanged", string(keep))

	old, err := os.ReadFile(filepath.Join(dest, "old.go"))
	require.NoError(t, err)
	require.Equal(t, "fresh", string(old))

	fresh, err := os.ReadFile(filepath.Join(dest, "new.go"))
	require.NoError(t, err)
	require.Equal(t, "brand new", string(fresh))

	// Pending state must still be untouched in global.
	stale, ok := global.ReadFile("old.go")
	require.True(t, ok)
	require.Equal(t, "stale", stale)
}
