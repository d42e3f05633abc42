package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/context/ctxhttp"

	"taskflow-backend/internal/tasks"
)

const maxResponseBytes = 1 << 20

// OpenAIClient talks to an OpenAI-compatible chat-completions endpoint.
type OpenAIClient struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration

	http *http.Client
	now  func() time.Time
}

func New(apiKey, model, baseURL string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Timeout: timeout,
		http:    &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

func (c *OpenAIClient) SuggestPriority(ctx context.Context, in SuggestInput) (Suggestion, error) {
	var raw rawSuggestion
	if err := c.complete(ctx, prioritySystemPrompt, BuildPriorityPrompt(in, c.now()), &raw); err != nil {
		return Suggestion{}, err
	}
	s, ok := raw.toSuggestion()
	if !ok {
		return Suggestion{}, fmt.Errorf("priority response outside contract: %w", ErrUnavailable)
	}
	return s, nil
}

func (c *OpenAIClient) Summarize(ctx context.Context, ts []tasks.Task) (Summary, error) {
	if len(ts) == 0 {
		return emptySummary(), nil
	}
	var raw rawSummary
	if err := c.complete(ctx, summarySystemPrompt, BuildSummaryPrompt(ts, c.now()), &raw); err != nil {
		return Summary{}, err
	}
	s, ok := raw.toSummary()
	if !ok {
		return Summary{}, fmt.Errorf("summary response outside contract: %w", ErrUnavailable)
	}
	return s, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// complete runs one chat completion and decodes the assistant's JSON
// message into out. Every failure is reported as ErrUnavailable.
func (c *OpenAIClient) complete(ctx context.Context, system, user string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    0.2,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return fmt.Errorf("encode request: %v: %w", err, ErrUnavailable)
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %v: %w", err, ErrUnavailable)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := ctxhttp.Do(ctx, c.http, req)
	if err != nil {
		return fmt.Errorf("provider request: %v: %w", err, ErrUnavailable)
	}
	defer res.Body.Close()

	buf, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read provider response: %v: %w", err, ErrUnavailable)
	}
	if res.StatusCode/100 != 2 {
		return fmt.Errorf("provider status %d: %w", res.StatusCode, ErrUnavailable)
	}

	var chat chatResponse
	if err := json.Unmarshal(buf, &chat); err != nil {
		return fmt.Errorf("decode provider response: %v: %w", err, ErrUnavailable)
	}
	if len(chat.Choices) == 0 {
		return fmt.Errorf("provider returned no choices: %w", ErrUnavailable)
	}

	content := stripFences(chat.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("assistant message is not JSON: %v: %w", err, ErrUnavailable)
	}
	return nil
}

// stripFences removes a ```json ... ``` wrapper some models add anyway.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
