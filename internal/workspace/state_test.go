package workspace

import (
	"testing"

	wsdomain "github.com/agentcore/agentcore/internal/domain/workspace"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceState_ApplyChangesThenReadFile(t *testing.T) {
	ws := NewWorkspaceState(t.TempDir())

	err := ws.ApplyChanges([]wsdomain.FileChange{wsdomain.NewCreate("test.go", "original")})
	require.NoError(t, err)

	content, ok := ws.ReadFile("test.go")
	require.True(t, ok)
	require.Equal(t, "original", content)
}

func TestWorkspaceState_SnapshotIsIndependentOfLaterWrites(t *testing.T) {
	ws := NewWorkspaceState(t.TempDir())
	require.NoError(t, ws.ApplyChanges([]wsdomain.FileChange{wsdomain.NewCreate("a.go", "v1")}))

	snap := ws.Snapshot([]string{"a.go"})
	require.NoError(t, ws.ApplyChanges([]wsdomain.FileChange{wsdomain.NewModify("a.go", "v2")}))

	content, ok := snap.Get("a.go")
	require.True(t, ok)
	require.Equal(t, "v1", content)

	current, ok := ws.ReadFile("a.go")
	require.True(t, ok)
	require.Equal(t, "v2", current)
}

func TestWorkspaceState_DeleteRemovesFile(t *testing.T) {
	ws := NewWorkspaceState(t.TempDir())
	require.NoError(t, ws.ApplyChanges([]wsdomain.FileChange{wsdomain.NewCreate("a.go", "v1")}))
	require.NoError(t, ws.ApplyChanges([]wsdomain.FileChange{wsdomain.NewDelete("a.go")}))

	_, ok := ws.ReadFile("a.go")
	require.False(t, ok)
}
