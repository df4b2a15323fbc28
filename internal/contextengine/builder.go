package contextengine

import (
	"context"
	"fmt"
	"strings"

	ctxdomain "github.com/agentcore/agentcore/internal/domain/context"
	taskdomain "github.com/agentcore/agentcore/internal/domain/task"
)

// HistoryReader is a pure reader over a conversation thread's recent
// messages, consulted to blend conversational context into retrieval, per
// spec.md §4.2 and §4.8.
type HistoryReader interface {
	RecentMessages(threadID string, limit int) []string
}

// ContextBuilderConfig bounds the assembled Context.
type ContextBuilderConfig struct {
	TopK        int
	TokenBudget int
}

func (c ContextBuilderConfig) normalize() ContextBuilderConfig {
	if c.TopK <= 0 {
		c.TopK = 10
	}
	if c.TokenBudget <= 0 {
		c.TokenBudget = 8000
	}
	return c
}

// ContextBuilder assembles a token-budgeted Context for a task by querying
// a ContextIndex and optionally blending recent thread history into the
// query, per spec.md §4.2's querying steps.
type ContextBuilder struct {
	index   *ContextIndex
	config  ContextBuilderConfig
	history HistoryReader
}

// NewContextBuilder builds a ContextBuilder over index. history may be nil
// when no thread is attached to the task.
func NewContextBuilder(index *ContextIndex, config ContextBuilderConfig, history HistoryReader) *ContextBuilder {
	return &ContextBuilder{index: index, config: config.normalize(), history: history}
}

// Build runs the query described in spec.md §4.2 steps 1-4: score, rank,
// and concatenate previews with their paths until the token budget is
// reached. The system prompt itself is assembled by the caller (task
// description + conversation history); Build only fills in file excerpts.
func (b *ContextBuilder) Build(ctx context.Context, t *taskdomain.Task) (ctxdomain.Context, error) {
	query := b.buildQuery(t)

	results, err := b.index.Search(ctx, query, b.config.TopK)
	if err != nil {
		return ctxdomain.Context{}, fmt.Errorf("search context index: %w", err)
	}

	out := ctxdomain.Context{SystemPrompt: t.Description}
	budget := b.config.TokenBudget
	used := estimateTokens(t.Description)

	for _, r := range results {
		excerpt := fmt.Sprintf("%s\n%s", r.FilePath, r.Preview)
		tokens := estimateTokens(excerpt)
		if used+tokens > budget {
			break
		}
		out.Files = append(out.Files, ctxdomain.FileContext{Path: r.FilePath, Content: r.Preview})
		used += tokens
	}

	return out, nil
}

func (b *ContextBuilder) buildQuery(t *taskdomain.Task) string {
	if b.history == nil || t.ThreadID == "" {
		return t.Description
	}
	recent := b.history.RecentMessages(t.ThreadID, 5)
	if len(recent) == 0 {
		return t.Description
	}
	return t.Description + "\n" + strings.Join(recent, "\n")
}
