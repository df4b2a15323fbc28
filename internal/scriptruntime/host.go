package scriptruntime

import (
	"context"
	"encoding/json"
	"fmt"
)

// Host runs on the agentcore-script-host side of the subprocess boundary: it
// reads framed JSON-RPC requests off an RPCConn and dispatches them to a
// Runtime, replying with the Runtime's result or a structured RPCError.
// Launched via cmd/agentcore's re-exec entrypoint per SPEC_FULL.md's
// embedding-strategy resolution, so the sandboxed subprocess shares no
// memory with the parent — only this wire protocol.
type Host struct {
	conn    *RPCConn
	runtime *Runtime
}

// NewHost constructs a Host serving runtime over conn.
func NewHost(conn *RPCConn, runtime *Runtime) *Host {
	return &Host{conn: conn, runtime: runtime}
}

// Serve reads and dispatches requests until ctx is done or the connection
// reports EOF. It is the subprocess's main loop.
func (h *Host) Serve(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		payload, err := h.conn.ReadMessage()
		if err != nil {
			return err
		}
		req, resp, parseErr := ParsePayload(payload)
		if parseErr != nil {
			_ = h.conn.SendResponse(NewErrorResponse(nil, ParseError, "malformed payload", parseErr.Error()))
			continue
		}
		if resp != nil {
			// A response arriving on the host's inbound stream would only
			// happen if the parent used Call against us; nothing to do but
			// drop it, there is no pending map on this side.
			continue
		}
		h.dispatch(ctx, req)
	}
}

func (h *Host) dispatch(ctx context.Context, req *Request) {
	var result any
	var rpcErr *RPCError

	switch req.Method {
	case "script.execute":
		taskID, _ := req.Params["task_id"].(string)
		source, _ := req.Params["source"].(string)
		execResult, err := h.runtime.Execute(ctx, taskID, source)
		if err != nil {
			rpcErr = &RPCError{Code: InternalError, Message: err.Error()}
		} else {
			result = map[string]any{"value": execResult.Value, "plan": execResult.Plan}
		}
	case "plan.run":
		taskID, _ := req.Params["task_id"].(string)
		// Params arrive JSON-decoded as plain maps; re-encode the "plan"
		// value to decode it into a Plan.
		var plan Plan
		encoded, encErr := json.Marshal(req.Params["plan"])
		if req.Params["plan"] == nil || encErr != nil || json.Unmarshal(encoded, &plan) != nil {
			rpcErr = &RPCError{Code: InvalidParams, Message: "plan.run requires a \"plan\" parameter"}
			break
		}
		if err := h.runtime.RunPlan(ctx, taskID, &plan, noopSink{}); err != nil {
			rpcErr = &RPCError{Code: InternalError, Message: err.Error()}
		} else {
			result = map[string]any{"status": "completed"}
		}
	default:
		rpcErr = &RPCError{Code: MethodNotFound, Message: fmt.Sprintf("unknown method %q", req.Method)}
	}

	if req.IsNotification() {
		return
	}
	var resp *Response
	if rpcErr != nil {
		resp = &Response{JSONRPC: JSONRPCVersion, ID: req.ID, Error: rpcErr}
	} else {
		resp = NewResponse(req.ID, result)
	}
	_ = h.conn.SendResponse(resp)
}
