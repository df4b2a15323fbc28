package toolregistry

import (
	"context"
	"testing"

	ctxdomain "github.com/agentcore/agentcore/internal/domain/context"
	"github.com/agentcore/agentcore/internal/domain/ports"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	files []ctxdomain.FileContext
}

func (s *stubSearcher) SearchFiles(ctx context.Context, pattern string, maxFiles int) ([]ctxdomain.FileContext, error) {
	return s.files, nil
}

type recordingStore struct {
	taskID string
	reason string
	files  []ctxdomain.FileContext
}

func (r *recordingStore) AppendSupplemental(taskID, reason string, files []ctxdomain.FileContext) {
	r.taskID = taskID
	r.reason = reason
	r.files = files
}

func TestRequestContextTool_PersistsSupplementalContext(t *testing.T) {
	searcher := &stubSearcher{files: []ctxdomain.FileContext{{Path: "a.go", Content: "x"}}}
	store := &recordingStore{}
	tool := NewRequestContextTool(searcher, store)

	result, err := tool.Execute(context.Background(), ports.ToolCall{
		ID: "rc1", TaskID: "task-1",
		Arguments: map[string]any{"pattern": "*.go", "reason": "need build tags"},
	})
	require.NoError(t, err)
	require.Empty(t, result.Error)
	require.Equal(t, "task-1", store.taskID)
	require.Equal(t, "need build tags", store.reason)
	require.Len(t, store.files, 1)
}

func TestRequestContextTool_RequiresPatternAndReason(t *testing.T) {
	tool := NewRequestContextTool(&stubSearcher{}, &recordingStore{})
	result, err := tool.Execute(context.Background(), ports.ToolCall{ID: "rc1"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Error)
}
