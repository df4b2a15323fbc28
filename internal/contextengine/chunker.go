// Package contextengine builds the ranked, token-budgeted Context handed to
// a provider call: chunking, a BM25 lexical index, a chromem-go-backed
// vector store, an on-disk cache, and the ContextBuilder that ties them
// together. API shapes (ChunkerConfig/NewChunker/ChunkText/CountTokens,
// StoreConfig/Document/NewVectorStore) follow a RAG-style retrieval
// package's conventions; the BM25 scoring function is the standard
// Okapi BM25 formula.
package contextengine

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// MaxChunkTokens is the default ChunkSize. The chunker does not enforce
// MinChunkTokens: small blocks and small files yield chunks below it.
const (
	MinChunkTokens = 64
	MaxChunkTokens = 512
)

// Chunk is one indexed unit of source text.
type Chunk struct {
	Content   string
	Metadata  map[string]string
	StartLine int
	EndLine   int
}

// ChunkerConfig configures chunk sizing. ChunkSize and ChunkOverlap are
// measured in tokens as CountTokens counts them (tiktoken when available,
// else char_count/4). ChunkOverlap is normalized but not applied by
// ChunkText.
type ChunkerConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

func (c ChunkerConfig) normalize() ChunkerConfig {
	if c.ChunkSize <= 0 {
		c.ChunkSize = MaxChunkTokens
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		c.ChunkOverlap = c.ChunkSize / 10
	}
	return c
}

// Chunker splits source text into token-budgeted chunks and estimates token
// counts, falling back to char_count/4 when the tokenizer is unavailable.
type Chunker struct {
	config ChunkerConfig
	enc    *tiktoken.Tiktoken
}

// NewChunker builds a Chunker. It never fails on tokenizer unavailability:
// CountTokens falls back to the char/4 estimate documented in spec.md §4.2.
func NewChunker(config ChunkerConfig) (*Chunker, error) {
	enc, _ := tiktoken.GetEncoding("cl100k_base")
	return &Chunker{config: config.normalize(), enc: enc}, nil
}

// CountTokens estimates the token count of text, preferring the tiktoken
// encoder and falling back to char_count/4 if it isn't available.
func (c *Chunker) CountTokens(text string) (int, error) {
	if c.enc != nil {
		return len(c.enc.Encode(text, nil, nil)), nil
	}
	return estimateTokens(text), nil
}

func estimateTokens(text string) int {
	n := len(text) / 4
	if n == 0 && len(text) > 0 {
		n = 1
	}
	return n
}

// ChunkText splits text into chunks sized by the chunker's configured
// ChunkSize; consecutive chunks do not overlap. Splitting uses two
// strategies: blank-line boundaries, then, only when that yields no chunk,
// a by-line split. A single block larger than ChunkSize is kept whole, so
// such a chunk can exceed ChunkSize. metadata is copied onto every
// resulting chunk.
func (c *Chunker) ChunkText(text string, metadata map[string]string) ([]Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	blocks, lineStarts := splitOnBlankLines(text)
	var chunks []Chunk
	var currentLines []string
	currentStart := 0
	currentTokens := 0

	flush := func(endLineExclusive int) {
		if len(currentLines) == 0 {
			return
		}
		content := strings.Join(currentLines, "\n")
		chunks = append(chunks, Chunk{
			Content:   content,
			Metadata:  copyMetadata(metadata),
			StartLine: currentStart,
			EndLine:   endLineExclusive - 1,
		})
		currentLines = nil
		currentTokens = 0
	}

	for i, block := range blocks {
		blockLines := strings.Split(block, "\n")
		tokens, _ := c.CountTokens(block)

		if len(currentLines) == 0 {
			currentStart = lineStarts[i]
		}

		if currentTokens > 0 && currentTokens+tokens > c.config.ChunkSize {
			flush(lineStarts[i])
			currentStart = lineStarts[i]
		}

		currentLines = append(currentLines, blockLines...)
		currentTokens += tokens

		if currentTokens > c.config.ChunkSize*2 {
			// Guarantee forward progress on a single oversized block: flush
			// everything accumulated so far as one chunk.
			flush(lineStarts[i] + len(blockLines))
		}
	}
	flush(currentStart + totalLines(currentLines))

	if len(chunks) == 0 {
		return c.chunkByLine(text, metadata)
	}
	return chunks, nil
}

func totalLines(lines []string) int {
	return len(lines)
}

func (c *Chunker) chunkByLine(text string, metadata map[string]string) ([]Chunk, error) {
	lines := strings.Split(text, "\n")
	var chunks []Chunk
	start := 0
	for start < len(lines) {
		end := start
		tokens := 0
		for end < len(lines) && tokens < c.config.ChunkSize {
			t, _ := c.CountTokens(lines[end])
			tokens += t
			end++
		}
		if end == start {
			end = start + 1
		}
		chunks = append(chunks, Chunk{
			Content:   strings.Join(lines[start:end], "\n"),
			Metadata:  copyMetadata(metadata),
			StartLine: start,
			EndLine:   end - 1,
		})
		start = end
	}
	return chunks, nil
}

// splitOnBlankLines splits text into blocks separated by blank lines,
// returning each block alongside the 0-based source line it starts on.
func splitOnBlankLines(text string) ([]string, []int) {
	lines := strings.Split(text, "\n")
	var blocks []string
	var starts []int
	var current []string
	blockStart := 0

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				blocks = append(blocks, strings.Join(current, "\n"))
				starts = append(starts, blockStart)
				current = nil
			}
			blockStart = i + 1
			continue
		}
		if len(current) == 0 {
			blockStart = i
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, strings.Join(current, "\n"))
		starts = append(starts, blockStart)
	}
	return blocks, starts
}

func copyMetadata(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// DefaultExtensions is the source-file allow-list resolving spec.md §9's
// second Open Question.
var DefaultExtensions = []string{
	".go", ".rs", ".py", ".js", ".ts", ".tsx", ".jsx", ".java", ".c", ".h",
	".cpp", ".hpp", ".cc", ".rb", ".md", ".txt", ".yaml", ".yml", ".toml", ".json",
}

// HasIndexableExtension reports whether path carries one of extensions
// (case-sensitive suffix match).
func HasIndexableExtension(path string, extensions []string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
