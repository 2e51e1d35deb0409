package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadPrompt reads a prompt override from
//
//	<PROMPT_DIR>/<provider>/<name>.<kind>.txt
//
// falling back to <PROMPT_DIR>/<name>.<kind>.txt. ok=false means no override
// exists and the built-in prompt should be used.
func LoadPrompt(name, kind, provider string) (string, bool) {
	baseRoot := os.Getenv("PROMPT_DIR")
	if baseRoot == "" {
		return "", false
	}
	file := fmt.Sprintf("%s.%s.txt", name, kind)
	paths := []string{filepath.Join(baseRoot, file)}
	if provider != "" {
		paths = append([]string{filepath.Join(baseRoot, strings.ToLower(provider), file)}, paths...)
	}
	for _, p := range paths {
		if b, err := os.ReadFile(p); err == nil {
			if s := strings.TrimSpace(string(b)); s != "" {
				return s, true
			}
		}
	}
	return "", false
}
