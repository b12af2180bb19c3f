// Package ai integrates language models into the pipeline: fallback
// event extraction from raw HTML, recommendation ranking, and event
// summaries. Two completion backends are supported, Google Gemini and
// Groq's OpenAI-compatible chat API.
package ai

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/generative-ai-go/genai"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"

	"github.com/adityaraj161616/SydneyEventSrapper/internal/config"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/types"
)

// CompletionRequest is one prompt sent to a completion backend.
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Completer is a language-model completion backend.
type Completer interface {
	// Complete returns the model's text response.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Provider returns the backend identifier.
	Provider() string
}

// NewCompleter builds the configured backend: Gemini when its key is
// present, Groq otherwise. Returns a ConfigurationError when neither
// credential is set; callers decide whether that fails their operation.
func NewCompleter(cfg *config.AIConfig) (Completer, error) {
	if cfg.GeminiAPIKey != "" {
		return NewGeminiClient(cfg)
	}
	if cfg.GroqAPIKey != "" {
		return NewGroqClient(cfg), nil
	}
	return nil, &types.ConfigurationError{Key: "GEMINI_API_KEY or GROQ_API_KEY"}
}

// --- Groq (OpenAI-compatible chat completions) ---

// GroqClient talks to Groq's OpenAI-compatible endpoint.
type GroqClient struct {
	client *openai.Client
	model  string
}

// NewGroqClient creates a Groq completion client.
func NewGroqClient(cfg *config.AIConfig) *GroqClient {
	clientCfg := openai.DefaultConfig(cfg.GroqAPIKey)
	if cfg.GroqBaseURL != "" {
		clientCfg.BaseURL = cfg.GroqBaseURL
	}
	return &GroqClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.GroqModel,
	}
}

// Provider returns the backend identifier.
func (c *GroqClient) Provider() string { return "groq" }

// Complete sends a chat completion request and returns the first choice.
func (c *GroqClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("groq request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", &types.ModelResponseError{
			Provider: c.Provider(),
			Err:      fmt.Errorf("no choices in response"),
		}
	}
	return resp.Choices[0].Message.Content, nil
}

// --- Gemini ---

// GeminiClient talks to the Google Gemini API. It holds a gRPC
// connection, so owners must Close it at shutdown.
type GeminiClient struct {
	client *genai.Client
	model  string
}

var _ io.Closer = (*GeminiClient)(nil)

// NewGeminiClient creates a Gemini completion client.
func NewGeminiClient(cfg *config.AIConfig) (*GeminiClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: cfg.GeminiModel}, nil
}

// Provider returns the backend identifier.
func (c *GeminiClient) Provider() string { return "gemini" }

// Complete sends a generation request and concatenates the text parts.
func (c *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(req.Temperature)
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	prompt := req.Prompt
	if req.System != "" {
		prompt = req.System + "\n\n" + prompt
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &types.ModelResponseError{
			Provider: c.Provider(),
			Err:      fmt.Errorf("no candidates in response"),
		}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// cleanJSONResponse strips markdown code fences models like to wrap
// around JSON output.
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
