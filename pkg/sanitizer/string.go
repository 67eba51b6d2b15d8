package sanitizer

import (
	"strings"
	"unicode"
)

// MaxFreeTextLen caps report reasons and chat excerpts before they reach
// the classifier prompt.
const MaxFreeTextLen = 2000

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		case unicode.IsControl(r):
			// drop
		default:
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// SanitizeFreeText normalizes user-supplied free text (report reasons,
// chat messages) and truncates it to MaxFreeTextLen runes.
func SanitizeFreeText(s string) string {
	s = TrimAndNormalize(s)
	runes := []rune(s)
	if len(runes) > MaxFreeTextLen {
		return string(runes[:MaxFreeTextLen])
	}
	return s
}
