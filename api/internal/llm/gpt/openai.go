package gpt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"script-designer/api/internal/llm"
)

const (
	OpenAIBaseURL = "https://api.openai.com/v1"
	GroqBaseURL   = "https://api.groq.com/openai/v1"
)

// Engine talks to any OpenAI-compatible chat completions endpoint.
type Engine struct {
	APIKey  string
	Model   string
	BaseURL string

	name  string
	httpc *http.Client
}

func New(key, model string) *Engine {
	return &Engine{
		APIKey:  key,
		Model:   model,
		BaseURL: OpenAIBaseURL,
		name:    "gpt",
		httpc:   &http.Client{Timeout: 120 * time.Second},
	}
}

// NewGroq returns an engine for Groq's OpenAI-compatible API.
func NewGroq(key, model string) *Engine {
	e := New(key, model)
	e.BaseURL = GroqBaseURL
	e.name = "groq"
	return e
}

func (e *Engine) Name() string { return e.name }

func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Complete(ctx context.Context, system, user string) (string, error) {
	if e.APIKey == "" {
		return "", fmt.Errorf("%s: API key is empty", e.name)
	}
	body := map[string]any{
		"model": e.Model,
		"messages": []any{
			map[string]any{"role": "system", "content": system},
			map[string]any{"role": "user", "content": user},
		},
		"temperature":     0.7,
		"max_tokens":      4000,
		"response_format": map[string]any{"type": "json_object"},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(e.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.APIKey)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s chat: %w", e.name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%s chat %d: %s", e.name, resp.StatusCode, truncateBytes(bytes.TrimSpace(x), 512))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("%s chat: bad envelope: %w", e.name, err)
	}
	if len(raw.Choices) == 0 {
		return "", fmt.Errorf("%s chat: %w", e.name, llm.ErrEmptyResponse)
	}
	out := strings.TrimSpace(raw.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("%s chat: %w", e.name, llm.ErrEmptyResponse)
	}
	return out, nil
}

func truncateBytes(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
