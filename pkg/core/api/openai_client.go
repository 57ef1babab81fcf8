// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIClient implements ChatCompletionClient using the official OpenAI Go SDK
// Supports OpenAI, Ollama, vLLM, and other OpenAI-compatible backends
type OpenAIClient struct {
	client openai.Client
}

// OpenAIOption customises the underlying SDK client
type OpenAIOption func(*[]option.RequestOption)

// WithHTTPClient routes SDK calls through the given client (tests point it
// at an httptest server).
func WithHTTPClient(hc *http.Client) OpenAIOption {
	return func(opts *[]option.RequestOption) {
		*opts = append(*opts, option.WithHTTPClient(hc))
	}
}

// WithMaxRetries overrides the SDK's retry count. The gateway sets it to 0:
// the platform budget is the only time limit around an extraction call.
func WithMaxRetries(n int) OpenAIOption {
	return func(opts *[]option.RequestOption) {
		*opts = append(*opts, option.WithMaxRetries(n))
	}
}

// NewOpenAIClient creates a new OpenAI-compatible client using the official SDK
// The baseURL parameter allows connecting to OpenAI-compatible backends like Ollama and vLLM
func NewOpenAIClient(baseURL, apiKey string, extra ...OpenAIOption) *OpenAIClient {
	opts := []option.RequestOption{}

	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	} else {
		// Use a dummy key for local backends that don't require authentication
		opts = append(opts, option.WithAPIKey("dummy"))
	}

	for _, o := range extra {
		o(&opts)
	}

	return &OpenAIClient{
		client: openai.NewClient(opts...),
	}
}

// convertMessages converts our Message types to OpenAI SDK message params
func convertMessages(messages []Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			result = append(result, openai.SystemMessage(msg.Content))
		case "user":
			result = append(result, openai.UserMessage(msg.Content))
		case "assistant":
			result = append(result, openai.AssistantMessage(msg.Content))
		case "developer":
			result = append(result, openai.DeveloperMessage(msg.Content))
		default:
			return nil, fmt.Errorf("unsupported message role: %s", msg.Role)
		}
	}
	return result, nil
}

// buildParams constructs OpenAI SDK ChatCompletionNewParams from our ChatCompletionRequest
func buildParams(req *ChatCompletionRequest, messages []openai.ChatCompletionMessageParamUnion) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(req.Model),
		Messages: messages,
	}

	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.MaxTokens != nil {
		params.MaxTokens = openai.Int(int64(*req.MaxTokens))
	}

	if req.ResponseFormat != nil {
		switch req.ResponseFormat.Type {
		case "json_object":
			params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
			}
		case "text":
			params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
				OfText: &shared.ResponseFormatTextParam{},
			}
		}
	}

	return params
}

// CreateChatCompletion implements ChatCompletionClient.CreateChatCompletion
func (c *OpenAIClient) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	messages, err := convertMessages(req.Messages)
	if err != nil {
		return nil, fmt.Errorf("failed to convert messages: %w", err)
	}

	completion, err := c.client.Chat.Completions.New(ctx, buildParams(req, messages))
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	choices := make([]Choice, 0, len(completion.Choices))
	for _, choice := range completion.Choices {
		choices = append(choices, Choice{
			Index: int(choice.Index),
			Message: Message{
				Role:    string(choice.Message.Role),
				Content: choice.Message.Content,
			},
			FinishReason: string(choice.FinishReason),
		})
	}

	return &ChatCompletionResponse{
		ID:      completion.ID,
		Model:   completion.Model,
		Choices: choices,
		Usage: Usage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		},
	}, nil
}
