package contextengine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBM25Index_EmptyIndexScoresNothing(t *testing.T) {
	idx := NewBM25Index()
	idx.Finalize()
	require.True(t, idx.IsEmpty())
	require.Empty(t, idx.Search("anything", 10))
}

func TestBM25Index_RanksExactTermMatchHigher(t *testing.T) {
	idx := NewBM25Index()
	idx.AddDocument("a.go", "func router dispatch model tier selection logic")
	idx.AddDocument("b.go", "func unrelated string formatting helper utilities")
	idx.Finalize()

	require.Equal(t, 2, idx.Len())

	results := idx.Search("router dispatch", 10)
	require.NotEmpty(t, results)
	require.Equal(t, "a.go", results[0].ID)
}

func TestBM25Index_SpecialTokensPreserved(t *testing.T) {
	idx := NewBM25Index()
	idx.AddDocument("a.go", "call router::select_model with --verbose flag")
	idx.AddDocument("b.go", "nothing special here at all")
	idx.Finalize()

	results := idx.Search("router::select_model", 10)
	require.NotEmpty(t, results)
	require.Equal(t, "a.go", results[0].ID)
}

func TestBM25Index_AddingDocumentIncreasesLen(t *testing.T) {
	idx := NewBM25Index()
	require.Equal(t, 0, idx.Len())
	idx.AddDocument("a.go", "some content here")
	require.Equal(t, 1, idx.Len())
	idx.AddDocument("b.go", "more content there")
	require.Equal(t, 2, idx.Len())
}

func TestTokenize_BigramsAndStopwordFiltering(t *testing.T) {
	terms := tokenize("the quick brown fox")
	require.NotContains(t, terms, "the")
	require.Contains(t, terms, "quick")
	require.Contains(t, terms, "brown")
	require.Contains(t, terms, "quick_brown")
	require.Contains(t, terms, "brown_fox")
}
