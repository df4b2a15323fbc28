package async

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recordingLogger) Error(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, format)
}

func TestGo_RecoversPanic(t *testing.T) {
	logger := &recordingLogger{}
	done := make(chan struct{})

	Go(logger, "test-task", func() {
		defer close(done)
		panic("boom")
	})

	<-done
	logger.mu.Lock()
	defer logger.mu.Unlock()
	require.Len(t, logger.msgs, 1)
}

func TestGo_NoPanicNoLog(t *testing.T) {
	logger := &recordingLogger{}
	done := make(chan struct{})

	Go(logger, "ok-task", func() {
		close(done)
	})

	<-done
	logger.mu.Lock()
	defer logger.mu.Unlock()
	require.Empty(t, logger.msgs)
}
