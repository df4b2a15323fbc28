package workspace

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileLockManager_WriteLockExclusive(t *testing.T) {
	m := NewFileLockManager()
	_, err := m.AcquireWriteLocks("task-a", []string{"test.go"})
	require.NoError(t, err)

	_, err = m.AcquireWriteLocks("task-b", []string{"test.go"})
	require.Error(t, err)
}

func TestFileLockManager_ReadLocksShared(t *testing.T) {
	m := NewFileLockManager()
	_, err := m.AcquireReadLocks("task-a", []string{"test.go"})
	require.NoError(t, err)
	_, err = m.AcquireReadLocks("task-b", []string{"test.go"})
	require.NoError(t, err)
}

func TestFileLockManager_WriteBlocksRead(t *testing.T) {
	m := NewFileLockManager()
	_, err := m.AcquireWriteLocks("task-a", []string{"test.go"})
	require.NoError(t, err)

	_, err = m.AcquireReadLocks("task-b", []string{"test.go"})
	require.Error(t, err)
}

func TestFileLockManager_ReadBlocksWriteFromOtherTask(t *testing.T) {
	m := NewFileLockManager()
	_, err := m.AcquireReadLocks("task-a", []string{"test.go"})
	require.NoError(t, err)

	_, err = m.AcquireWriteLocks("task-b", []string{"test.go"})
	require.Error(t, err)
}

func TestFileLockManager_ReleaseAllowsReacquire(t *testing.T) {
	m := NewFileLockManager()
	guard, err := m.AcquireWriteLocks("task-a", []string{"test.go"})
	require.NoError(t, err)
	guard.Release()

	_, err = m.AcquireWriteLocks("task-b", []string{"test.go"})
	require.NoError(t, err)
}

func TestFileLockManager_AllOrNothingAcquisition(t *testing.T) {
	m := NewFileLockManager()
	_, err := m.AcquireWriteLocks("task-a", []string{"locked.go"})
	require.NoError(t, err)

	_, err = m.AcquireWriteLocks("task-b", []string{"free.go", "locked.go"})
	require.Error(t, err)

	// "free.go" must not have been partially locked by task-b's failed attempt.
	_, err = m.AcquireWriteLocks("task-c", []string{"free.go"})
	require.NoError(t, err)
}

func TestFileLockManager_SameTaskReacquiresWriteLock(t *testing.T) {
	m := NewFileLockManager()
	_, err := m.AcquireWriteLocks("task-a", []string{"test.go"})
	require.NoError(t, err)
	_, err = m.AcquireWriteLocks("task-a", []string{"test.go"})
	require.NoError(t, err)
}
