package contextengine

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"
)

// Document is one embedded chunk stored in the vector half of the index,
// with the ID/Content/Embedding/Metadata shape a chromem-go collection
// expects for Add/Delete/Count.
type Document struct {
	ID        string
	Content   string
	Embedding []float32
	Metadata  map[string]string
}

// StoreConfig configures a VectorStore. An empty PersistPath keeps the
// store in memory; a non-empty one persists to disk across process
// restarts, matching chromem-go's persistent/in-memory DB split.
type StoreConfig struct {
	PersistPath string
	Collection  string
}

// VectorStore wraps a chromem-go collection, adapting its embedding
// function to the Embedder interface this module depends on.
type VectorStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   Embedder
}

// NewVectorStore builds a VectorStore backed by chromem-go. When
// config.PersistPath is set, the DB persists its collection to disk
// (gob-encoded, chromem-go's own format); otherwise it is purely in-memory.
func NewVectorStore(config StoreConfig, embedder Embedder) (*VectorStore, error) {
	var db *chromem.DB
	var err error
	if config.PersistPath != "" {
		db, err = chromem.NewPersistentDB(config.PersistPath, false)
	} else {
		db = chromem.NewDB()
	}
	if err != nil {
		return nil, fmt.Errorf("open vector store: %w", err)
	}

	name := config.Collection
	if name == "" {
		name = "default"
	}

	embedFunc := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.Embed(ctx, text)
	}

	collection, err := db.GetOrCreateCollection(name, nil, embedFunc)
	if err != nil {
		return nil, fmt.Errorf("create collection %q: %w", name, err)
	}

	return &VectorStore{db: db, collection: collection, embedder: embedder}, nil
}

// Add upserts docs into the store, embedding any that don't already carry
// an Embedding.
func (s *VectorStore) Add(ctx context.Context, docs []Document) error {
	for _, doc := range docs {
		cd := chromem.Document{
			ID:        doc.ID,
			Content:   doc.Content,
			Embedding: doc.Embedding,
			Metadata:  doc.Metadata,
		}
		if err := s.collection.AddDocument(ctx, cd); err != nil {
			return fmt.Errorf("add document %q: %w", doc.ID, err)
		}
	}
	return nil
}

// Delete removes documents by ID.
func (s *VectorStore) Delete(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if err := s.collection.Delete(ctx, nil, nil, id); err != nil {
			return fmt.Errorf("delete document %q: %w", id, err)
		}
	}
	return nil
}

// Count returns the number of stored documents.
func (s *VectorStore) Count() int {
	return s.collection.Count()
}

// VectorResult is one scored match from Search.
type VectorResult struct {
	ID         string
	Content    string
	Metadata   map[string]string
	Similarity float64
}

// Search embeds query and returns the topK nearest documents by cosine
// similarity.
func (s *VectorStore) Search(ctx context.Context, query string, topK int) ([]VectorResult, error) {
	if s.collection.Count() == 0 {
		return nil, nil
	}
	n := topK
	if n > s.collection.Count() {
		n = s.collection.Count()
	}
	results, err := s.collection.Query(ctx, query, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query vector store: %w", err)
	}
	out := make([]VectorResult, 0, len(results))
	for _, r := range results {
		out = append(out, VectorResult{
			ID:         r.ID,
			Content:    r.Content,
			Metadata:   r.Metadata,
			Similarity: float64(r.Similarity),
		})
	}
	return out, nil
}
