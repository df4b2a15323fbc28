package contextengine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCache_SaveAndLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	now := time.Now().Truncate(time.Second)
	entries := []CacheEntry{
		{Path: "a.go", ModifiedTime: now, ContentHash: ContentHash("package a"), ChunkID: "a.go#0", Preview: "package a", Embedding: []float32{0.1, 0.2}},
		{Path: "b.go", ModifiedTime: now, ContentHash: ContentHash("package b"), ChunkID: "b.go#0", Preview: "package b", Embedding: []float32{0.3, 0.4}},
	}

	require.NoError(t, SaveCache(dir, entries))
	loaded := LoadCache(dir)
	require.Len(t, loaded, 2)
	require.Equal(t, entries[0].ChunkID, loaded[0].ChunkID)
	require.Equal(t, entries[1].Preview, loaded[1].Preview)
	require.True(t, loaded[0].StillValid(now, ContentHash("package a")))
	require.False(t, loaded[0].StillValid(now, ContentHash("package a; changed")))
}

func TestCache_CorruptFileFallsBackToEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, cacheFileName), []byte("not a valid cache"), 0o644))

	loaded := LoadCache(dir)
	require.Empty(t, loaded)
}

func TestCache_MissingFileReturnsEmpty(t *testing.T) {
	loaded := LoadCache(t.TempDir())
	require.Empty(t, loaded)
}

func TestCacheDir_EnvVarOverride(t *testing.T) {
	t.Setenv(cacheEnvVar, "/tmp/custom-cache")
	require.Equal(t, "/tmp/custom-cache", CacheDir("/some/workspace"))
}

func TestCacheDir_DefaultUnderWorkspace(t *testing.T) {
	t.Setenv(cacheEnvVar, "")
	require.Equal(t, filepath.Join("/ws", ".agentcore-cache"), CacheDir("/ws"))
}
