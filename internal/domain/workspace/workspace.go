// Package workspace defines the closed FileChange variant and the
// WorkspaceSnapshot value type shared by the authoritative WorkspaceState
// and per-task TaskWorkspace implementations.
package workspace

// ChangeKind is the closed set of file mutation kinds.
type ChangeKind int

const (
	ChangeCreate ChangeKind = iota
	ChangeModify
	ChangeDelete
)

// FileChange is the closed variant type from spec.md §3: Create{path,
// content}, Modify{path, content}, Delete{path}.
type FileChange struct {
	Kind    ChangeKind
	Path    string
	Content string
}

// NewCreate builds a Create FileChange.
func NewCreate(path, content string) FileChange {
	return FileChange{Kind: ChangeCreate, Path: path, Content: content}
}

// NewModify builds a Modify FileChange.
func NewModify(path, content string) FileChange {
	return FileChange{Kind: ChangeModify, Path: path, Content: content}
}

// NewDelete builds a Delete FileChange.
func NewDelete(path string) FileChange {
	return FileChange{Kind: ChangeDelete, Path: path}
}

// WorkspaceSnapshot is an immutable path->content mapping captured at a
// point in time.
type WorkspaceSnapshot struct {
	Files map[string]string
}

// Get returns the snapshotted content for path, if any.
func (s WorkspaceSnapshot) Get(path string) (string, bool) {
	content, ok := s.Files[path]
	return content, ok
}
