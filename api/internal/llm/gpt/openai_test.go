package gpt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"script-designer/api/internal/llm"
)

func TestComplete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  {\"questions\": []}  "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	e := New("sk-test", "gpt-4o-mini")
	e.BaseURL = srv.URL + "/v1/"

	out, err := e.Complete(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, `{"questions": []}`, out)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.EqualValues(t, 4000, got["max_tokens"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "sys", msgs[0].(map[string]any)["content"])
}

func TestCompleteErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Authorization"), "empty") {
			_, _ = w.Write([]byte(`{"choices":[]}`))
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	e := NewGroq("gsk-test", "llama")
	e.BaseURL = srv.URL
	_, err := e.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "groq chat 429")
	assert.Contains(t, err.Error(), "rate limited")

	e.APIKey = "empty"
	_, err = e.Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)

	e.APIKey = ""
	_, err = e.Complete(context.Background(), "s", "u")
	assert.Error(t, err)
}

func TestNewGroq(t *testing.T) {
	e := NewGroq("k", "m")
	assert.Equal(t, "groq", e.Name())
	assert.Equal(t, GroqBaseURL, e.BaseURL)
	assert.Equal(t, "gpt", New("k", "m").Name())
}
