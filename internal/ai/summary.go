package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/adityaraj161616/SydneyEventSrapper/internal/types"
)

const summarySystemPrompt = "You are an AI assistant that creates concise and engaging event summaries."

// Summarizer produces a short description for a single event.
type Summarizer struct {
	completer Completer
	logger    *slog.Logger
}

// NewSummarizer creates a summarizer. completer may be nil; Summarize
// then fails with a ConfigurationError, so a missing credential fails
// the dependent call rather than startup.
func NewSummarizer(completer Completer, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{
		completer: completer,
		logger:    logger.With("component", "summarizer"),
	}
}

// Summarize asks the model for a 2-3 sentence summary of the event.
func (s *Summarizer) Summarize(ctx context.Context, event types.Event) (string, error) {
	if s.completer == nil {
		return "", &types.ConfigurationError{Key: "GROQ_API_KEY"}
	}

	eventJSON, _ := json.Marshal(event)
	prompt := fmt.Sprintf(`Create a concise, engaging summary for this event:

%s

The summary should:
1. Be 2-3 sentences long
2. Highlight the most appealing aspects of the event
3. Include key details like date, location, and any special features

Return only the summary text, no additional formatting.`, eventJSON)

	response, err := s.completer.Complete(ctx, CompletionRequest{
		System:      summarySystemPrompt,
		Prompt:      prompt,
		MaxTokens:   200,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(response), nil
}
