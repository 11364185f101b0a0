package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// GenerateRequest describes a single text-generation call.
type GenerateRequest struct {
	UserPrompt   string
	SystemPrompt string  // optional
	Model        string  // empty means the config default
	Temperature  float64 // 0 means the default (0.7)
	MaxTokens    int     // 0 means no cap
}

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateText sends a chat-completion request and returns the first
	// completion's text.
	GenerateText(ctx context.Context, req GenerateRequest) (string, error)
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration.
// The API key is checked eagerly; a missing credential fails before any
// network call is attempted.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return NewOpenRouterClient(config, apiKey)
	}
}

// OpenRouterClient implements Client against an OpenAI-compatible
// chat-completions endpoint.
type OpenRouterClient struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

// NewOpenRouterClient creates a new OpenRouter client.
func NewOpenRouterClient(config *Config, apiKey string) (*OpenRouterClient, error) {
	if apiKey == "" {
		return nil, &APICallError{Message: "OPENROUTER_API_KEY is not set"}
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenRouterBaseURL
	}
	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	return &OpenRouterClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		// No request timeout: generation calls can run long and callers
		// control cancellation through ctx.
		httpClient: &http.Client{},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateText sends the chat-completion request and returns the first choice.
func (c *OpenRouterClient) GenerateText(ctx context.Context, req GenerateRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}

	var messages []chatMessage
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.UserPrompt})

	body, err := json.Marshal(chatCompletionRequest{
		Model:       model,
		Temperature: temperature,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", &APICallError{Message: "failed to marshal completion request", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &APICallError{Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &APICallError{Message: "completion request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &APICallError{Message: "failed to read completion response", Cause: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return "", &APICallError{
			Message: fmt.Sprintf("completion endpoint returned %s: %s", resp.Status, strings.TrimSpace(string(respBody))),
		}
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return "", &APICallError{Message: "failed to decode completion response", Cause: err}
	}
	if completion.Error != nil {
		return "", &APICallError{Message: "completion endpoint error: " + completion.Error.Message}
	}
	if len(completion.Choices) == 0 {
		return "", &APICallError{Message: "no choices in completion response"}
	}

	return completion.Choices[0].Message.Content, nil
}

// Close releases resources held by the client.
func (c *OpenRouterClient) Close() error {
	return nil
}

// APICallError represents a failed call to an LLM provider.
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("llm: %s: %v", e.Message, e.Cause)
	}
	return "llm: " + e.Message
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}
