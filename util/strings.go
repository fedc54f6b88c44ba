package util

import (
	"strings"
	"unicode"
)

// Underscore converts an identifier such as "buildImage", "build-image" or
// "deploy:web" to snake case ("build_image", "deploy_web").
func Underscore(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + 4)
	lastUnderscore := true
	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if !lastUnderscore && i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimRight(b.String(), "_")
}

// ScreamingSnake converts an identifier to upper snake case, the form used
// for environment variable names ("apiToken" becomes "API_TOKEN").
func ScreamingSnake(s string) string {
	return strings.ToUpper(Underscore(s))
}
