package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComponentLogger_PrefixesComponent(t *testing.T) {
	var buf bytes.Buffer
	SetHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	defer SetHandler(slog.NewTextHandler(&bytes.Buffer{}, nil))

	logger := NewComponentLogger("router")
	logger.Info("selected model %s", "gpt-mini")

	out := buf.String()
	require.True(t, strings.Contains(out, "[router]"))
	require.True(t, strings.Contains(out, "selected model gpt-mini"))
}

func TestComponentLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	SetHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	defer SetHandler(slog.NewTextHandler(&bytes.Buffer{}, nil))

	logger := NewComponentLogger("context")
	logger.Debug("should not appear")
	require.Equal(t, 0, buf.Len())

	logger.Warn("should appear")
	require.Greater(t, buf.Len(), 0)
}
