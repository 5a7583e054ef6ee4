package engine

import (
	"context"
	"errors"
	"strings"
)

// LLMEnabled reports whether an LLM client is configured.
func LLMEnabled() bool {
	return cfg.LLMClient != nil
}

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// CallLLM sends a prompt using the configured temperature and max_tokens.
func CallLLM(ctx context.Context, prompt string) (string, error) {
	if cfg.LLMClient == nil {
		return "", errors.New("no LLM client configured")
	}
	IncrLLMCalls()
	resp, err := cfg.LLMClient.Complete(ctx, "", prompt)
	if err != nil {
		IncrLLMErrors()
		return "", err
	}
	return stripFences(resp), nil
}

func IncrLLMCalls()  { metrics.LLMCalls.Add(1) }
func IncrLLMErrors() { metrics.LLMErrors.Add(1) }
