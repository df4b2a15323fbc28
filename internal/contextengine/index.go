package contextengine

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agentcore/agentcore/internal/shared/logging"
)

// ContextIndexConfig configures an index build.
type ContextIndexConfig struct {
	WorkspaceRoot string
	Extensions    []string
	Chunker       ChunkerConfig
}

func (c ContextIndexConfig) normalize() ContextIndexConfig {
	if len(c.Extensions) == 0 {
		c.Extensions = DefaultExtensions
	}
	return c
}

// SearchResult is one ranked hit from ContextIndex.Search, per spec.md
// §4.2: a chunk-suffixed path, its combined score, a preview, and the two
// component scores (bm25/vector are optional — vector is absent when the
// embedding backend was unavailable for this query).
type SearchResult struct {
	FilePath      string
	CombinedScore float64
	Preview       string
	BM25Score     *float64
	VectorScore   *float64
}

// ContextIndex is the hybrid BM25+vector search index over a workspace's
// source files, with an on-disk cache of embeddings keyed by
// (path, modified_time, content_hash).
type ContextIndex struct {
	config   ContextIndexConfig
	chunker  *Chunker
	bm25     *BM25Index
	store    *VectorStore
	embedder Embedder
	logger   *logging.Logger

	previews map[string]string // chunk id -> preview text
	vectorOK bool
}

// NewContextIndex builds an empty index; call Build to populate it.
func NewContextIndex(config ContextIndexConfig, embedder Embedder) (*ContextIndex, error) {
	config = config.normalize()
	chunker, err := NewChunker(config.Chunker)
	if err != nil {
		return nil, fmt.Errorf("new chunker: %w", err)
	}
	store, err := NewVectorStore(StoreConfig{Collection: "context"}, embedder)
	if err != nil {
		return nil, fmt.Errorf("new vector store: %w", err)
	}
	return &ContextIndex{
		config:   config,
		chunker:  chunker,
		bm25:     NewBM25Index(),
		store:    store,
		embedder: embedder,
		logger:   logging.NewComponentLogger("context-index"),
		previews: make(map[string]string),
		vectorOK: true,
	}, nil
}

// ProgressFunc reports rebuild progress so a UI doesn't appear frozen while
// the cache is rebuilt, per spec.md §4.2.
type ProgressFunc func(current, total int, path string)

// Build walks the workspace root, reuses valid cache entries, and
// re-embeds everything else. Embedding backend unavailability during
// rebuild is recoverable: Build continues with a lexical-only index and
// returns a non-nil warning error alongside a usable index (nil data
// error), per the Failure model in spec.md §4.2.
func (idx *ContextIndex) Build(ctx context.Context, onProgress ProgressFunc) error {
	cacheDir := CacheDir(idx.config.WorkspaceRoot)
	cached := LoadCache(cacheDir)
	cacheByPath := make(map[string][]CacheEntry)
	for _, e := range cached {
		cacheByPath[e.Path] = append(cacheByPath[e.Path], e)
	}

	var files []string
	err := filepath.Walk(idx.config.WorkspaceRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if HasIndexableExtension(path, idx.config.Extensions) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk workspace: %w", err)
	}
	sort.Strings(files)

	// Reading, chunking and embedding is fanned out across files with a
	// bounded errgroup — I/O and (potential network) embedding calls
	// dominate this loop, so per-file parallelism pays off. BM25/vector
	// store mutation happens afterwards, serially, since neither is safe
	// for concurrent writers.
	fileResults := make([]*fileIndexResult, len(files))
	var vectorOKMu sync.Mutex
	var progressMu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			result := idx.indexOneFile(gctx, path, cacheByPath[path], &vectorOKMu)
			fileResults[i] = result

			if onProgress != nil {
				progressMu.Lock()
				done++
				onProgress(done, len(files), path)
				progressMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait() // indexOneFile never returns an error; failures are logged and skipped per-file

	var fresh []CacheEntry
	embeddingFailed := false

	for _, result := range fileResults {
		if result == nil {
			continue
		}
		if result.embeddingFailed {
			embeddingFailed = true
		}
		for _, chunk := range result.chunks {
			idx.bm25.AddDocument(chunk.entry.ChunkID, chunk.content)
			idx.previews[chunk.entry.ChunkID] = chunk.entry.Preview
			fresh = append(fresh, chunk.entry)

			if idx.vectorOK && len(chunk.entry.Embedding) > 0 {
				if err := idx.store.Add(ctx, []Document{{
					ID: chunk.entry.ChunkID, Content: chunk.content, Embedding: chunk.entry.Embedding,
					Metadata: map[string]string{"file_path": result.rel},
				}}); err != nil {
					idx.logger.Warn("vector store add %s: %v", chunk.entry.ChunkID, err)
				}
			}
		}
	}

	idx.bm25.Finalize()

	if err := SaveCache(cacheDir, fresh); err != nil {
		idx.logger.Warn("save cache: %v", err)
	}

	if embeddingFailed {
		return fmt.Errorf("embedding backend unavailable during rebuild: continuing with a lexical-only index")
	}
	return nil
}

type indexedChunk struct {
	entry   CacheEntry
	content string
}

type fileIndexResult struct {
	rel             string
	chunks          []indexedChunk
	embeddingFailed bool
}

// indexOneFile reads, chunks and (where needed) embeds a single file. It
// never returns an error: per-file failures are logged and the file is
// skipped, so one unreadable or unchunkable file never aborts a build.
func (idx *ContextIndex) indexOneFile(ctx context.Context, path string, cached []CacheEntry, vectorOKMu *sync.Mutex) *fileIndexResult {
	data, err := os.ReadFile(path)
	if err != nil {
		idx.logger.Warn("skip unreadable file %s: %v", path, err)
		return nil
	}
	content := string(data)
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	hash := ContentHash(content)

	rel, _ := filepath.Rel(idx.config.WorkspaceRoot, path)
	chunks, err := idx.chunker.ChunkText(content, map[string]string{"file_path": rel})
	if err != nil {
		idx.logger.Warn("chunk %s: %v", path, err)
		return nil
	}

	reusable := matchingCacheEntries(cached, info.ModTime(), hash)
	result := &fileIndexResult{rel: rel}

	for chunkIdx, chunk := range chunks {
		chunkID := fmt.Sprintf("%s#%d", rel, chunkIdx)

		var embedding []float32
		if chunkIdx < len(reusable) {
			embedding = reusable[chunkIdx].Embedding
		} else {
			vectorOKMu.Lock()
			vectorOK := idx.vectorOK
			vectorOKMu.Unlock()

			if vectorOK {
				embedding, err = idx.embedder.Embed(ctx, chunk.Content)
				if err != nil {
					idx.logger.Warn("embedding backend unavailable, falling back to lexical-only: %v", err)
					vectorOKMu.Lock()
					idx.vectorOK = false
					vectorOKMu.Unlock()
					result.embeddingFailed = true
				}
			}
		}

		result.chunks = append(result.chunks, indexedChunk{
			entry: CacheEntry{
				Path:         path,
				ModifiedTime: info.ModTime(),
				ContentHash:  hash,
				ChunkID:      chunkID,
				Preview:      previewOf(chunk.Content),
				Embedding:    embedding,
			},
			content: chunk.Content,
		})
	}
	return result
}

func matchingCacheEntries(entries []CacheEntry, modTime time.Time, hash [32]byte) []CacheEntry {
	if len(entries) == 0 {
		return nil
	}
	if !entries[0].StillValid(modTime, hash) {
		return nil
	}
	return entries
}

func previewOf(content string) string {
	const maxPreview = 240
	if len(content) <= maxPreview {
		return content
	}
	return content[:maxPreview] + "…"
}

// Len returns the number of indexed chunks (BM25 documents).
func (idx *ContextIndex) Len() int { return idx.bm25.Len() }

// Search scores every chunk by BM25 and, when the vector backend is
// available, cosine similarity, combining both into a ranked top-K list
// per spec.md §4.2.
func (idx *ContextIndex) Search(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	bm25Results := idx.bm25.Search(query, 0) // score all; combine before truncating
	bm25ByID := make(map[string]float64, len(bm25Results))
	for _, r := range bm25Results {
		bm25ByID[r.ID] = r.Score
	}

	vectorByID := make(map[string]float64)
	hasVector := idx.vectorOK && idx.store.Count() > 0
	if hasVector {
		vecResults, err := idx.store.Search(ctx, query, max(topK*3, topK))
		if err != nil {
			idx.logger.Warn("vector search unavailable: %v", err)
			hasVector = false
		} else {
			for _, r := range vecResults {
				// Clamp the raw [-1,1] cosine to [0,1]: negative similarity
				// carries no relevance signal in the hybrid score.
				vectorByID[r.ID] = math.Max(0, math.Min(1, r.Similarity))
			}
		}
	}

	ids := make(map[string]struct{}, len(bm25ByID)+len(vectorByID))
	for id := range bm25ByID {
		ids[id] = struct{}{}
	}
	for id := range vectorByID {
		ids[id] = struct{}{}
	}

	results := make([]SearchResult, 0, len(ids))
	for id := range ids {
		bm25Score, hasBM25 := bm25ByID[id]
		vecScore, hasVec := vectorByID[id]
		combined := combineScores(vecScore, hasVec, bm25Score)

		result := SearchResult{FilePath: id, CombinedScore: combined, Preview: idx.previews[id]}
		if hasBM25 {
			v := bm25Score
			result.BM25Score = &v
		}
		if hasVec {
			v := vecScore
			result.VectorScore = &v
		}
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].CombinedScore > results[j].CombinedScore })
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}
