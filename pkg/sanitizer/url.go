package sanitizer

import (
	"net/url"
	"strings"
)

// SanitizeFileURL accepts only absolute http(s) URLs; anything else
// collapses to the empty string so validation can reject it.
func SanitizeFileURL(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}

	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	if u.Host == "" {
		return ""
	}

	return u.String()
}
