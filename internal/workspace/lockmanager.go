package workspace

import (
	"sync"

	coreerrors "github.com/agentcore/agentcore/internal/shared/errors"
)

// FileLockManager is the sole authority on path-level mutual exclusion,
// per spec.md §5. It tracks a single writer and a set of readers per path.
type FileLockManager struct {
	mu          sync.Mutex
	writeLocks  map[string]string          // path -> holder task ID
	readLocks   map[string]map[string]bool // path -> set of holder task IDs
}

// NewFileLockManager builds an empty lock manager.
func NewFileLockManager() *FileLockManager {
	return &FileLockManager{
		writeLocks: make(map[string]string),
		readLocks:  make(map[string]map[string]bool),
	}
}

// WriteLockGuard releases its write locks exactly once, on Release — an
// explicit Go method standing in for RAII-style scope-exit release, since
// Go has no destructors.
type WriteLockGuard struct {
	manager *FileLockManager
	taskID  string
	paths   []string
	once    sync.Once
}

// Release drops every path this guard holds a write lock on. Safe to call
// more than once; only the first call has effect.
func (g *WriteLockGuard) Release() {
	g.once.Do(func() {
		g.manager.releaseWriteLocks(g.taskID, g.paths)
	})
}

// ReadLockGuard is the read-lock analogue of WriteLockGuard.
type ReadLockGuard struct {
	manager *FileLockManager
	taskID  string
	paths   []string
	once    sync.Once
}

// Release drops every path this guard holds a read lock on.
func (g *ReadLockGuard) Release() {
	g.once.Do(func() {
		g.manager.releaseReadLocks(g.taskID, g.paths)
	})
}

// AcquireWriteLocks acquires exclusive locks on every path in paths, all or
// nothing: it fails if any path already has a writer held by a different
// task, or any reader held by a different task, and in that case no locks
// are taken at all.
func (m *FileLockManager) AcquireWriteLocks(taskID string, paths []string) (*WriteLockGuard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, path := range paths {
		if holder, ok := m.writeLocks[path]; ok && holder != taskID {
			return nil, &coreerrors.FileLockedByTaskError{Path: path, Holder: holder}
		}
		if readers, ok := m.readLocks[path]; ok {
			others := readersExcluding(readers, taskID)
			if len(others) > 0 {
				return nil, &coreerrors.FileHasActiveReadersError{Path: path, Readers: others}
			}
		}
	}

	for _, path := range paths {
		m.writeLocks[path] = taskID
	}

	return &WriteLockGuard{manager: m, taskID: taskID, paths: append([]string(nil), paths...)}, nil
}

// AcquireReadLocks acquires shared locks on every path in paths, all or
// nothing: it fails if any path has a writer held by a different task.
func (m *FileLockManager) AcquireReadLocks(taskID string, paths []string) (*ReadLockGuard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, path := range paths {
		if holder, ok := m.writeLocks[path]; ok && holder != taskID {
			return nil, &coreerrors.FileLockedByTaskError{Path: path, Holder: holder}
		}
	}

	for _, path := range paths {
		if m.readLocks[path] == nil {
			m.readLocks[path] = make(map[string]bool)
		}
		m.readLocks[path][taskID] = true
	}

	return &ReadLockGuard{manager: m, taskID: taskID, paths: append([]string(nil), paths...)}, nil
}

func (m *FileLockManager) releaseWriteLocks(taskID string, paths []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, path := range paths {
		if holder, ok := m.writeLocks[path]; ok && holder == taskID {
			delete(m.writeLocks, path)
		}
	}
}

func (m *FileLockManager) releaseReadLocks(taskID string, paths []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, path := range paths {
		if readers, ok := m.readLocks[path]; ok {
			delete(readers, taskID)
			if len(readers) == 0 {
				delete(m.readLocks, path)
			}
		}
	}
}

func readersExcluding(readers map[string]bool, exclude string) []string {
	var out []string
	for id := range readers {
		if id != exclude {
			out = append(out, id)
		}
	}
	return out
}
