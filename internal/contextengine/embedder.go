package contextengine

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// Embedder is the embedding backend contract the context engine depends on
// (spec.md §6): fixed-dimension vectors per session, batch and single-text
// forms, modelled on an OpenAI-backed, cache-fronted production embedder;
// this module ships a deterministic hash-based fallback so the index is
// exercised end-to-end without a network dependency.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// HashEmbedder is a deterministic, dependency-free Embedder: it hashes text
// into a fixed-dimension unit vector. It is not semantically meaningful —
// it exists so ContextIndex, chromem-go's EmbeddingFunc plumbing and tests
// run without a real embedding provider, per spec.md §6's external-interface
// note that a real HTTP embedding backend is out of scope for this core.
type HashEmbedder struct {
	dims int
}

// NewHashEmbedder builds a HashEmbedder producing dims-dimensional vectors.
func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = 32
	}
	return &HashEmbedder{dims: dims}
}

func (e *HashEmbedder) Dimensions() int { return e.dims }

func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dims)
	sum := sha256.Sum256([]byte(text))
	for i := 0; i < e.dims; i++ {
		byteIdx := i % len(sum)
		shift := (i / len(sum)) % 4
		v := binary.BigEndian.Uint32([]byte{sum[byteIdx], sum[(byteIdx+1)%len(sum)], sum[(byteIdx+2)%len(sum)], sum[(byteIdx+3)%len(sum)]})
		v = v >> (shift * 4)
		vec[i] = float32(v%1000)/1000.0 - 0.5
	}
	normalize(vec)
	return vec, nil
}

func (e *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func normalize(vec []float32) {
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	if sumSq == 0 {
		return
	}
	norm := float32(math.Sqrt(sumSq))
	for i := range vec {
		vec[i] /= norm
	}
}

// cosineSimilarity returns the cosine similarity of a and b, clamped to
// [0,1] per spec.md §4.2's hybrid score combination (the raw value lives in
// [-1,1]; negative similarity carries no positive relevance signal here).
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
