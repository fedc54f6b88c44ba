package util

import (
	"fmt"
	"strings"
)

// SanitizeEnvValue cleans an environment variable value by removing surrounding
// quotes and trimming whitespace.
func SanitizeEnvValue(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = s[1 : len(s)-1]
		}
	}
	return s
}

// ParseKeyValue splits a KEY=VALUE argument. The value is sanitized with
// SanitizeEnvValue; the key must be non-empty.
func ParseKeyValue(s string) (string, string, error) {
	k, v, ok := strings.Cut(s, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return "", "", fmt.Errorf("util: expected KEY=VALUE, got %q", s)
	}
	return k, SanitizeEnvValue(v), nil
}
