package scriptruntime

import (
	"context"
	"testing"
	"time"

	"github.com/agentcore/agentcore/internal/domain/ports"
	"github.com/stretchr/testify/require"
)

func TestHost_DispatchesScriptExecute(t *testing.T) {
	parentConn, hostConn := pipePair()

	invoker := &stubInvoker{tools: map[string]ports.Tool{}}
	rt := New(invoker, Config{})
	host := NewHost(hostConn, rt)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = host.Serve(ctx) }()

	go func() {
		for {
			payload, err := parentConn.ReadMessage()
			if err != nil {
				return
			}
			_, resp, err := ParsePayload(payload)
			if err == nil && resp != nil {
				parentConn.DeliverResponse(resp)
			}
		}
	}()

	callCtx, callCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer callCancel()
	resp, err := parentConn.Call(callCtx, "script.execute", map[string]any{
		"task_id": "task-1",
		"source":  `{"return": "done"}`,
	})
	require.NoError(t, err)
	require.False(t, resp.IsError())

	result, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "done", result["value"])
}

func TestHost_UnknownMethodReturnsMethodNotFound(t *testing.T) {
	parentConn, hostConn := pipePair()

	invoker := &stubInvoker{tools: map[string]ports.Tool{}}
	rt := New(invoker, Config{})
	host := NewHost(hostConn, rt)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = host.Serve(ctx) }()

	go func() {
		for {
			payload, err := parentConn.ReadMessage()
			if err != nil {
				return
			}
			_, resp, err := ParsePayload(payload)
			if err == nil && resp != nil {
				parentConn.DeliverResponse(resp)
			}
		}
	}()

	callCtx, callCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer callCancel()
	resp, err := parentConn.Call(callCtx, "nonsense", nil)
	require.NoError(t, err)
	require.True(t, resp.IsError())
	require.Equal(t, MethodNotFound, resp.Error.Code)
}
