// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
)

const protocolVersion = "2025-03-26"

// Client talks to a streamable-HTTP MCP server using JSON-RPC 2.0.
// It is safe for concurrent use once Initialize has returned.
type Client struct {
	httpClient *http.Client
	serverURL  string
	headers    http.Header
	nextID     atomic.Int64

	mu        sync.RWMutex
	sessionID string
}

// ClientOption configures an HTTP Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithHeader adds a header sent on every request (for example an
// Authorization bearer token for hosted servers).
func WithHeader(key, value string) ClientOption {
	return func(c *Client) { c.headers.Set(key, value) }
}

// NewClient creates a new MCP client targeting the given server URL.
func NewClient(serverURL string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
		serverURL:  serverURL,
		headers:    http.Header{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Initialize performs the MCP initialize handshake and stores the session ID.
func (c *Client) Initialize(ctx context.Context) error {
	params := initializeParams{
		ProtocolVersion: protocolVersion,
		ClientInfo:      clientInfo,
		Capabilities:    map[string]any{},
	}

	raw, headers, err := c.callWithHeaders(ctx, "initialize", params)
	if err != nil {
		return fmt.Errorf("mcp initialize: %w", err)
	}

	if sid := headers.Get("Mcp-Session-Id"); sid != "" {
		c.mu.Lock()
		c.sessionID = sid
		c.mu.Unlock()
	}

	var result struct {
		ProtocolVersion string `json:"protocolVersion"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("mcp initialize: unmarshal result: %w", err)
	}
	if result.ProtocolVersion == "" {
		return errors.New("mcp initialize: server did not report a protocol version")
	}

	// No response is expected for the notification
	_ = c.notify(ctx, "notifications/initialized")

	return nil
}

// ListTools returns the tools exposed by the MCP server.
func (c *Client) ListTools(ctx context.Context) ([]ToolInfo, error) {
	raw, _, err := c.callWithHeaders(ctx, "tools/list", nil)
	if err != nil {
		return nil, fmt.Errorf("mcp tools/list: %w", err)
	}

	var result struct {
		Tools []ToolInfo `json:"tools"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("mcp tools/list: unmarshal result: %w", err)
	}
	return result.Tools, nil
}

// CallTool invokes a tool on the MCP server.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (*ToolCallResult, error) {
	raw, _, err := c.callWithHeaders(ctx, "tools/call", toolCallParams{Name: name, Arguments: args})
	if err != nil {
		return nil, fmt.Errorf("mcp tools/call %s: %w", name, err)
	}

	var result ToolCallResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("mcp tools/call %s: unmarshal result: %w", name, err)
	}
	return &result, nil
}

// Close ends the server-side session, if one was opened.
func (c *Client) Close() error {
	c.mu.Lock()
	sid := c.sessionID
	c.sessionID = ""
	c.mu.Unlock()
	if sid == "" {
		return nil
	}

	req, err := http.NewRequest(http.MethodDelete, c.serverURL, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req, sid)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) session() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

func (c *Client) setHeaders(req *http.Request, sid string) {
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if sid != "" {
		req.Header.Set("Mcp-Session-Id", sid)
	}
}

func (c *Client) post(ctx context.Context, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req, c.session())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	return resp, nil
}

// callWithHeaders sends a JSON-RPC request and returns the result along with response headers.
func (c *Client) callWithHeaders(ctx context.Context, method string, params any) (json.RawMessage, http.Header, error) {
	httpResp, err := c.post(ctx, rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		ID:      c.nextID.Add(1),
		Params:  params,
	})
	if err != nil {
		return nil, nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, nil, fmt.Errorf("http status %d: %s", httpResp.StatusCode, string(respBody))
	}

	// Plain JSON or SSE (text/event-stream)
	var respBody []byte
	if strings.HasPrefix(httpResp.Header.Get("Content-Type"), "text/event-stream") {
		respBody, err = extractSSEData(httpResp.Body)
		if err != nil {
			return nil, nil, fmt.Errorf("parse SSE response: %w", err)
		}
	} else {
		respBody, err = io.ReadAll(httpResp.Body)
		if err != nil {
			return nil, nil, fmt.Errorf("read response: %w", err)
		}
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, nil, rpcResp.Error
	}

	return rpcResp.Result, httpResp.Header, nil
}

// extractSSEData returns the payload of the first "data:" line of an SSE
// stream ("event: message\ndata: {json}\n\n").
func extractSSEData(r io.Reader) ([]byte, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if data, ok := strings.CutPrefix(line, "data:"); ok {
			return []byte(strings.TrimSpace(data)), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("no data line found in SSE stream")
}

// notify sends a JSON-RPC notification: a request without an id.
func (c *Client) notify(ctx context.Context, method string) error {
	resp, err := c.post(ctx, rpcRequest{JSONRPC: "2.0", Method: method})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
