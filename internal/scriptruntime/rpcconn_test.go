package scriptruntime

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// pipePair wires two RPCConns back to back over in-memory pipes, as if one
// were the parent and the other the subprocess.
func pipePair() (*RPCConn, *RPCConn) {
	aIn, bOut := io.Pipe()
	bIn, aOut := io.Pipe()
	a := NewRPCConn(aIn, aOut)
	b := NewRPCConn(bIn, bOut)
	return a, b
}

func TestRPCConn_CallAndRespondRoundTrip(t *testing.T) {
	parent, child := pipePair()

	go func() {
		payload, err := child.ReadMessage()
		require.NoError(t, err)
		req, _, err := ParsePayload(payload)
		require.NoError(t, err)
		require.Equal(t, "ping", req.Method)
		require.NoError(t, child.SendResponse(NewResponse(req.ID, "pong")))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go func() {
		payload, err := parent.ReadMessage()
		if err != nil {
			return
		}
		_, resp, err := ParsePayload(payload)
		if err == nil && resp != nil {
			parent.DeliverResponse(resp)
		}
	}()

	resp, err := parent.Call(ctx, "ping", nil)
	require.NoError(t, err)
	require.False(t, resp.IsError())
	require.Equal(t, "pong", resp.Result)
}

func TestRPCConn_NotifySendsNoID(t *testing.T) {
	parent, child := pipePair()

	done := make(chan *Request, 1)
	go func() {
		payload, err := child.ReadMessage()
		require.NoError(t, err)
		req, _, err := ParsePayload(payload)
		require.NoError(t, err)
		done <- req
	}()

	require.NoError(t, parent.Notify("log", map[string]any{"msg": "hi"}))

	select {
	case req := <-done:
		require.True(t, req.IsNotification())
		require.Equal(t, "log", req.Method)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
	}
}

func TestParseContentLength(t *testing.T) {
	length, ok := parseContentLength("Content-Length: 42")
	require.True(t, ok)
	require.Equal(t, 42, length)

	_, ok = parseContentLength("not a header")
	require.False(t, ok)
}
