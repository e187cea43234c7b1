package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/hyperifyio/asimo/internal/chat"
)

// resolveSystemPrompt picks the prompt file, then the inline prompt, then the
// built-in persona.
func resolveSystemPrompt(cfg Config) (string, error) {
	if p := strings.TrimSpace(cfg.SystemPromptFile); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return "", fmt.Errorf("%w: system prompt file: %v", ErrInvalidConfig, err)
		}
		if s := strings.TrimSpace(string(b)); s != "" {
			return s, nil
		}
	}
	if s := strings.TrimSpace(cfg.SystemPrompt); s != "" {
		return s, nil
	}
	return chat.DefaultSystemPrompt, nil
}
