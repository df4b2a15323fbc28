package scriptruntime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequest_IsNotification(t *testing.T) {
	req := NewRequest(1, "foo", nil)
	require.False(t, req.IsNotification())

	note := NewNotification("foo", nil)
	require.True(t, note.IsNotification())
}

func TestRPCError_ErrorFormatsWithAndWithoutData(t *testing.T) {
	plain := &RPCError{Code: InvalidParams, Message: "bad params"}
	require.Equal(t, "JSON-RPC error -32602: bad params", plain.Error())

	withData := &RPCError{Code: ParseError, Message: "bad json", Data: "unexpected EOF"}
	require.Equal(t, "JSON-RPC error -32700: bad json (data: unexpected EOF)", withData.Error())
}

func TestUnmarshalRequest_RejectsWrongVersion(t *testing.T) {
	_, err := UnmarshalRequest([]byte(`{"jsonrpc":"1.0","method":"foo"}`))
	require.Error(t, err)
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	require.Equal(t, InvalidRequest, rpcErr.Code)
}

func TestUnmarshalResponse_RoundTripsThroughMarshal(t *testing.T) {
	resp := NewResponse(int64(7), map[string]any{"ok": true})
	data, err := Marshal(resp)
	require.NoError(t, err)

	decoded, err := UnmarshalResponse(data)
	require.NoError(t, err)
	require.False(t, decoded.IsError())
	require.EqualValues(t, 7, decoded.ID)
}

func TestRequestIDGenerator_StartsAtOneAndIncrements(t *testing.T) {
	gen := NewRequestIDGenerator()
	require.Equal(t, int64(1), gen.Next())
	require.Equal(t, int64(2), gen.Next())
	require.Equal(t, int64(3), gen.Next())
}
