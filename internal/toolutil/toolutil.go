// Package toolutil provides shared helper functions for go_yt MCP tools.
package toolutil

import "github.com/anatolykoptev/go_yt/internal/engine"

// NormLang normalises a language field: empty string → "en".
func NormLang(lang string) string {
	return engine.NormLang(lang)
}

// ClampLimit applies a default and an upper bound to a caller-supplied limit.
func ClampLimit(limit, def, ceil int) int {
	if limit <= 0 {
		return def
	}
	if limit > ceil {
		return ceil
	}
	return limit
}
