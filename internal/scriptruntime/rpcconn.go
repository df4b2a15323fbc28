package scriptruntime

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// RPCConn frames a JSON-RPC 2.0 connection over an arbitrary
// reader/writer (normally a subprocess's stdin/stdout). It supports both
// newline-delimited JSON and Content-Length-prefixed framing, auto-detecting
// the latter from an incoming header line.
type RPCConn struct {
	r          *bufio.Reader
	w          *bufio.Writer
	mu         sync.Mutex
	useHeaders atomic.Bool

	pendingMu sync.Mutex
	pending   map[string]chan *Response
	ids       *RequestIDGenerator
}

// NewRPCConn constructs a framed connection over in/out.
func NewRPCConn(in io.Reader, out io.Writer) *RPCConn {
	return &RPCConn{
		r:       bufio.NewReader(in),
		w:       bufio.NewWriter(out),
		pending: make(map[string]chan *Response),
		ids:     NewRequestIDGenerator(),
	}
}

// Call sends a request and blocks for its matching response, or until ctx
// is done.
func (c *RPCConn) Call(ctx context.Context, method string, params map[string]any) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	id := c.ids.Next()
	key := strconv.FormatInt(id, 10)
	respCh := make(chan *Response, 1)

	c.pendingMu.Lock()
	c.pending[key] = respCh
	c.pendingMu.Unlock()

	if err := c.send(NewRequest(id, method, params)); err != nil {
		c.pendingMu.Lock()
		delete(c.pending, key)
		c.pendingMu.Unlock()
		return nil, err
	}

	select {
	case resp := <-respCh:
		return resp, nil
	case <-ctx.Done():
		c.pendingMu.Lock()
		delete(c.pending, key)
		c.pendingMu.Unlock()
		return nil, ctx.Err()
	}
}

// Notify sends a fire-and-forget request with no ID.
func (c *RPCConn) Notify(method string, params map[string]any) error {
	return c.send(NewNotification(method, params))
}

// SendResponse writes a response payload directly (used by the subprocess
// side to answer a Request it received).
func (c *RPCConn) SendResponse(resp *Response) error {
	if resp == nil {
		return nil
	}
	return c.send(resp)
}

// DeliverResponse routes an inbound response to its waiting Call, reporting
// whether a waiter was found.
func (c *RPCConn) DeliverResponse(resp *Response) bool {
	if resp == nil {
		return false
	}
	key := fmt.Sprintf("%v", resp.ID)
	c.pendingMu.Lock()
	ch, ok := c.pending[key]
	if ok {
		delete(c.pending, key)
	}
	c.pendingMu.Unlock()
	if !ok {
		return false
	}
	ch <- resp
	return true
}

// ReadMessage reads one framed payload, auto-detecting Content-Length
// framing on first use.
func (c *RPCConn) ReadMessage() ([]byte, error) {
	payload, usedHeaders, err := readRPCMessage(c.r)
	if err != nil {
		return nil, err
	}
	if usedHeaders {
		c.useHeaders.Store(true)
	}
	return payload, nil
}

func (c *RPCConn) send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.useHeaders.Load() {
		if _, err := fmt.Fprintf(c.w, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
			return err
		}
		if _, err := c.w.Write(data); err != nil {
			return err
		}
		return c.w.Flush()
	}

	if _, err := c.w.Write(append(data, '\n')); err != nil {
		return err
	}
	return c.w.Flush()
}

func readRPCMessage(r *bufio.Reader) ([]byte, bool, error) {
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				trimmed := strings.TrimSpace(line)
				if trimmed == "" {
					return nil, false, io.EOF
				}
				return []byte(trimmed), false, nil
			}
			return nil, false, err
		}

		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if length, ok := parseContentLength(line); ok {
			for {
				header, err := r.ReadString('\n')
				if err != nil {
					return nil, true, err
				}
				header = strings.TrimRight(header, "\r\n")
				if strings.TrimSpace(header) == "" {
					break
				}
			}

			payload := make([]byte, length)
			if _, err := io.ReadFull(r, payload); err != nil {
				return nil, true, err
			}
			return payload, true, nil
		}

		return []byte(line), false, nil
	}
}

func parseContentLength(line string) (int, bool) {
	lower := strings.ToLower(line)
	if !strings.HasPrefix(lower, "content-length:") {
		return 0, false
	}
	value := strings.TrimSpace(line[len("content-length:"):])
	if value == "" {
		return 0, false
	}
	length, err := strconv.Atoi(value)
	if err != nil || length < 0 {
		return 0, false
	}
	return length, true
}

// ParsePayload decodes a single JSON-RPC request or response from payload,
// dispatching on the presence of a "method" field.
func ParsePayload(payload []byte) (*Request, *Response, error) {
	var probe map[string]any
	if err := json.Unmarshal(payload, &probe); err != nil {
		return nil, nil, err
	}
	if _, ok := probe["method"]; ok {
		req, err := UnmarshalRequest(payload)
		if err != nil {
			return nil, nil, err
		}
		return req, nil, nil
	}
	resp, err := UnmarshalResponse(payload)
	if err != nil {
		return nil, nil, err
	}
	return nil, resp, nil
}
