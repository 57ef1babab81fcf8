// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// fakeServer answers the JSON-RPC methods the client uses. When sse is set,
// responses are wrapped in a text/event-stream body.
func fakeServer(t *testing.T, sse bool) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var deletes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			if r.Header.Get("Mcp-Session-Id") != "sess-1" {
				t.Errorf("DELETE without session id")
			}
			deletes.Add(1)
			return
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok" {
			t.Errorf("Authorization = %q", auth)
		}

		var req struct {
			Method string         `json:"method"`
			ID     *int           `json:"id"`
			Params toolCallParams `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.ID == nil {
			w.WriteHeader(http.StatusAccepted)
			return
		}

		var result any
		switch req.Method {
		case "initialize":
			w.Header().Set("Mcp-Session-Id", "sess-1")
			result = map[string]any{"protocolVersion": protocolVersion, "serverInfo": implementation{Name: "fake"}}
		case "tools/list":
			if r.Header.Get("Mcp-Session-Id") != "sess-1" {
				t.Errorf("tools/list without session id")
			}
			result = map[string]any{"tools": []ToolInfo{{Name: "linkedin_jobs_posting", Description: "jobs"}}}
		case "tools/call":
			if req.Params.Name == "broken" {
				writeRPC(w, sse, fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"error":{"code":-32602,"message":"unknown tool"}}`, *req.ID))
				return
			}
			result = ToolCallResult{Content: []ContentBlock{
				{Type: "text", Text: fmt.Sprintf(`[{"title":"%v"}]`, req.Params.Arguments["keyword"])},
			}}
		}
		body, _ := json.Marshal(result)
		writeRPC(w, sse, fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"result":%s}`, *req.ID, body))
	}))
	return srv, &deletes
}

func writeRPC(w http.ResponseWriter, sse bool, payload string) {
	if sse {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "event: message\ndata: %s\n\n", payload)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(payload))
}

func TestClient_RoundTrip(t *testing.T) {
	for _, sse := range []bool{false, true} {
		t.Run(fmt.Sprintf("sse=%v", sse), func(t *testing.T) {
			srv, deletes := fakeServer(t, sse)
			defer srv.Close()

			ctx := context.Background()
			s, err := Dial(ctx, ServerConfig{URL: srv.URL, Token: "tok"})
			if err != nil {
				t.Fatalf("Dial: %v", err)
			}

			tools, err := s.ListTools(ctx)
			if err != nil {
				t.Fatalf("ListTools: %v", err)
			}
			if len(tools) != 1 || tools[0].Name != "linkedin_jobs_posting" {
				t.Errorf("tools = %+v", tools)
			}

			res, err := s.CallTool(ctx, "linkedin_jobs_posting", map[string]any{"keyword": "golang"})
			if err != nil {
				t.Fatalf("CallTool: %v", err)
			}
			if res.Text() != `[{"title":"golang"}]` {
				t.Errorf("Text() = %q", res.Text())
			}

			_, err = s.CallTool(ctx, "broken", nil)
			var rpcErr *rpcError
			if !errors.As(err, &rpcErr) || rpcErr.Code != -32602 || !strings.Contains(err.Error(), "unknown tool") {
				t.Errorf("expected rpc error -32602, got %v", err)
			}

			if err := s.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}
			if deletes.Load() != 1 {
				t.Errorf("expected one DELETE, got %d", deletes.Load())
			}
		})
	}
}

func TestClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Initialize(context.Background())
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected 401 error, got %v", err)
	}
}

func TestDial_NoServer(t *testing.T) {
	if _, err := Dial(context.Background(), ServerConfig{}); !errors.Is(err, ErrNoServer) {
		t.Fatalf("expected ErrNoServer, got %v", err)
	}
}

func TestToolCallResult_Text(t *testing.T) {
	r := &ToolCallResult{Content: []ContentBlock{
		{Type: "text", Text: "a"},
		{Type: "image"},
		{Type: "text", Text: "b"},
	}}
	if got := r.Text(); got != "a\nb" {
		t.Errorf("Text() = %q", got)
	}
	var nilResult *ToolCallResult
	if nilResult.Text() != "" {
		t.Error("nil result should have empty text")
	}
}
