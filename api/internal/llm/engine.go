package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownEngine = errors.New("unknown llm_name; use 'gpt', 'groq' or 'gemini'")
	ErrEmptyResponse = errors.New("llm: empty response")
)

// Engine sends one system+user exchange to a chat model and returns the raw
// reply text. Replies are not parsed here.
type Engine interface {
	Name() string
	GetModel() string
	Complete(ctx context.Context, system, user string) (string, error)
}

type Engines struct {
	OpenAI Engine
	Groq   Engine
	Gemini Engine

	// Default is used when the caller does not name an engine.
	Default string
}

func (e *Engines) GetEngine(llmName string) (Engine, error) {
	name := strings.ToLower(strings.TrimSpace(llmName))
	if name == "" {
		name = e.Default
	}
	var eng Engine
	switch name {
	case "gpt", "openai":
		eng = e.OpenAI
	case "groq":
		eng = e.Groq
	case "gemini":
		eng = e.Gemini
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, llmName)
	}
	if eng == nil {
		return nil, fmt.Errorf("%w: %q is not configured", ErrUnknownEngine, name)
	}
	return eng, nil
}
