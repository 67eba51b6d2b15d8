package sanitizer

import (
	"strings"
	"testing"
)

func TestSanitizeZoneID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"already canonical", "tel-aviv", "tel-aviv"},
		{"spaces and case", "  Tel Aviv ", "tel-aviv"},
		{"underscores", "ramat_gan", "ramat-gan"},
		{"mixed separators", "beer -- sheva", "beer-sheva"},
		{"empty", "", ""},
		{"symbols only", "@!#", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeZoneID(tt.input); got != tt.expected {
				t.Errorf("SanitizeZoneID(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeFreeText(t *testing.T) {
	if got := SanitizeFreeText("  scam \t listing\n\nno   keys  "); got != "scam listing no keys" {
		t.Errorf("unexpected normalization: %q", got)
	}

	long := strings.Repeat("a", MaxFreeTextLen+50)
	if got := SanitizeFreeText(long); len([]rune(got)) != MaxFreeTextLen {
		t.Errorf("expected truncation to %d runes, got %d", MaxFreeTextLen, len([]rune(got)))
	}

	if got := SanitizeFreeText("bad\x00actor"); got != "badactor" {
		t.Errorf("expected control characters dropped, got %q", got)
	}
}

func TestSanitizeFileURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"https", "https://cdn.example.com/contracts/1.pdf", "https://cdn.example.com/contracts/1.pdf"},
		{"http", "http://files.local/doc.pdf", "http://files.local/doc.pdf"},
		{"ftp rejected", "ftp://host/doc.pdf", ""},
		{"relative rejected", "/doc.pdf", ""},
		{"garbage", "::::", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFileURL(tt.input); got != tt.expected {
				t.Errorf("SanitizeFileURL(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeSlice(t *testing.T) {
	got := SanitizeSlice([]string{" Phone ", "phone", "", "EMAIL"}, trimAndLower)
	if len(got) != 2 || got[0] != "phone" || got[1] != "email" {
		t.Errorf("unexpected result: %v", got)
	}
}
