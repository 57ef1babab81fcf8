// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"sync"
)

// MockChatCompletionClient is a scripted ChatCompletionClient for tests.
// It returns Reply (or Err) for every call and remembers the requests.
type MockChatCompletionClient struct {
	Reply string
	Err   error

	mu       sync.Mutex
	requests []*ChatCompletionRequest
}

// NewMockChatCompletionClient creates a mock that always answers reply
func NewMockChatCompletionClient(reply string) *MockChatCompletionClient {
	return &MockChatCompletionClient{Reply: reply}
}

// CreateChatCompletion implements ChatCompletionClient.CreateChatCompletion
func (m *MockChatCompletionClient) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}

	return &ChatCompletionResponse{
		ID:    "chatcmpl-mock",
		Model: req.Model,
		Choices: []Choice{
			{
				Message:      Message{Role: "assistant", Content: m.Reply},
				FinishReason: "stop",
			},
		},
	}, nil
}

// Requests returns the requests seen so far
func (m *MockChatCompletionClient) Requests() []*ChatCompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*ChatCompletionRequest, len(m.requests))
	copy(out, m.requests)
	return out
}
