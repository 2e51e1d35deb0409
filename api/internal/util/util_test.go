package util

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniffDocument(t *testing.T) {
	assert.Equal(t, "application/pdf", SniffDocument([]byte("%PDF-1.7\n...")))
	assert.Equal(t, "text/plain", SniffDocument([]byte("Jane Doe\nSenior engineer")))
	assert.Equal(t, "", SniffDocument([]byte{0x89, 'P', 'N', 'G', 0, 0}))
}

func TestDecodeBase64MaybeDataURL(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("hello"))

	b, mime, err := DecodeBase64MaybeDataURL("data:text/plain;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
	assert.Equal(t, "text/plain", mime)

	b, mime, err = DecodeBase64MaybeDataURL(payload)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
	assert.Empty(t, mime)

	_, _, err = DecodeBase64MaybeDataURL("%%%")
	assert.Error(t, err)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héll", TruncateRunes("héllo", 4))
	assert.Equal(t, "héllo", TruncateRunes("héllo", 10))
	assert.Equal(t, "", TruncateRunes("héllo", 0))
}

func TestSHA256Hex(t *testing.T) {
	assert.Len(t, SHA256Hex("a"), 64)
	assert.NotEqual(t, SHA256Hex("ab", "c"), SHA256Hex("a", "bc"))
	assert.Equal(t, SHA256Hex("x", "y"), SHA256Hex("x", "y"))
}

func TestLoadPrompt(t *testing.T) {
	t.Setenv("PROMPT_DIR", "")
	_, ok := LoadPrompt("questions", "system", "gpt")
	assert.False(t, ok)

	dir := t.TempDir()
	t.Setenv("PROMPT_DIR", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "questions.system.txt"), []byte(" shared \n"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "gemini"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gemini", "questions.system.txt"), []byte("gemini only"), 0o600))

	s, ok := LoadPrompt("questions", "system", "gpt")
	assert.True(t, ok)
	assert.Equal(t, "shared", s)

	s, ok = LoadPrompt("questions", "system", "Gemini")
	assert.True(t, ok)
	assert.Equal(t, "gemini only", s)
}
