// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateChatCompletion_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("expected /v1/chat/completions, got %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("expected Authorization Bearer test-key, got %s", auth)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if body["model"] != "gpt-4-1106-preview" {
			t.Errorf("model = %v", body["model"])
		}
		msgs, _ := body["messages"].([]any)
		if len(msgs) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(msgs))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4-1106-preview",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "  [{\"title\":\"Go Dev\"}]  "}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(srv.URL+"/v1", "test-key", WithMaxRetries(0))
	got, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
		Model: "gpt-4-1106-preview",
		Messages: []Message{
			SystemMessage("extract jobs"),
			UserMessage("<html></html>"),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "chatcmpl-1" {
		t.Errorf("ID = %q", got.ID)
	}
	if got.Content() != `[{"title":"Go Dev"}]` {
		t.Errorf("Content() = %q", got.Content())
	}
	if got.Usage.TotalTokens != 15 {
		t.Errorf("TotalTokens = %d, want 15", got.Usage.TotalTokens)
	}
}

func TestCreateChatCompletion_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(srv.URL+"/v1", "wrong", WithMaxRetries(0))
	_, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
		Model:    "m",
		Messages: []Message{UserMessage("hi")},
	})
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
}

func TestCreateChatCompletion_UnsupportedRole(t *testing.T) {
	client := NewOpenAIClient("http://127.0.0.1:0/v1", "")
	_, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
		Model:    "m",
		Messages: []Message{{Role: "tool", Content: "x"}},
	})
	if err == nil {
		t.Fatal("expected error for unsupported role")
	}
}

func TestContent_Empty(t *testing.T) {
	var nilResp *ChatCompletionResponse
	if nilResp.Content() != "" {
		t.Error("nil response should have empty content")
	}
	if (&ChatCompletionResponse{}).Content() != "" {
		t.Error("response without choices should have empty content")
	}
}

func TestMockChatCompletionClient(t *testing.T) {
	m := NewMockChatCompletionClient("[]")
	resp, err := m.CreateChatCompletion(context.Background(), &ChatCompletionRequest{Model: "m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content() != "[]" {
		t.Errorf("Content() = %q", resp.Content())
	}

	m.Err = errors.New("boom")
	if _, err := m.CreateChatCompletion(context.Background(), &ChatCompletionRequest{}); err == nil {
		t.Error("expected scripted error")
	}
	if n := len(m.Requests()); n != 2 {
		t.Errorf("Requests() = %d, want 2", n)
	}
}
