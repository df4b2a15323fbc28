package executor

import (
	"context"
	"strings"
	"sync"

	ctxdomain "github.com/agentcore/agentcore/internal/domain/context"
	"github.com/agentcore/agentcore/internal/contextengine"
)

// indexSearcher adapts a contextengine.ContextIndex to
// toolregistry.ContextSearcher: requestContext's "pattern" argument is run
// as a relevance query against the hybrid BM25/vector index rather than a
// literal glob, since that is the only retrieval primitive the index
// exposes (spec.md §4.2).
type indexSearcher struct {
	index *contextengine.ContextIndex
}

func newIndexSearcher(index *contextengine.ContextIndex) *indexSearcher {
	return &indexSearcher{index: index}
}

func (s *indexSearcher) SearchFiles(ctx context.Context, pattern string, maxFiles int) ([]ctxdomain.FileContext, error) {
	results, err := s.index.Search(ctx, pattern, maxFiles)
	if err != nil {
		return nil, err
	}
	files := make([]ctxdomain.FileContext, 0, len(results))
	for _, r := range results {
		path, _, _ := strings.Cut(r.FilePath, "#")
		files = append(files, ctxdomain.FileContext{Path: path, Content: r.Preview})
	}
	return files, nil
}

// supplementalStore records requestContext's additions per task ID, so the
// executor can fold them into every later ContextBuilder.Build call within
// the same Execute invocation — the requestContext-persistence resolution
// documented in DESIGN.md. Entries are cleared once a task finishes
// executing; this is a within-task cache, not a cross-task one.
type supplementalStore struct {
	mu    sync.Mutex
	files map[string][]ctxdomain.FileContext
}

func newSupplementalStore() *supplementalStore {
	return &supplementalStore{files: make(map[string][]ctxdomain.FileContext)}
}

func (s *supplementalStore) AppendSupplemental(taskID, reason string, files []ctxdomain.FileContext) {
	if len(files) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[taskID] = append(s.files[taskID], files...)
}

// Files returns the supplemental files accumulated so far for taskID.
func (s *supplementalStore) Files(taskID string) []ctxdomain.FileContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ctxdomain.FileContext, len(s.files[taskID]))
	copy(out, s.files[taskID])
	return out
}

// Forget drops taskID's accumulated supplemental files once its task
// terminates.
func (s *supplementalStore) Forget(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, taskID)
}

// mergeSupplemental appends extra file excerpts already fetched via
// requestContext to a freshly-built Context, skipping any path ContextBuilder
// already included.
func mergeSupplemental(base ctxdomain.Context, extra []ctxdomain.FileContext) ctxdomain.Context {
	if len(extra) == 0 {
		return base
	}
	seen := make(map[string]bool, len(base.Files))
	for _, f := range base.Files {
		seen[f.Path] = true
	}
	for _, f := range extra {
		if seen[f.Path] {
			continue
		}
		base.Files = append(base.Files, f)
		seen[f.Path] = true
	}
	return base
}
