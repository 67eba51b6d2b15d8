package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reKeepLettersDigits = regexp.MustCompile(`[^0-9\p{L}]+`)
	reTrimDashes        = regexp.MustCompile(`-+`)
)

func trimAndLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func collapseDashes(s string) string {
	s = reTrimDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SanitizeZoneID canonicalizes a pricing-zone key: "Tel Aviv " and
// "tel_aviv" both become "tel-aviv".
func SanitizeZoneID(input string) string {
	p := Pipeline{
		trimAndLower,
		func(s string) string { return reKeepLettersDigits.ReplaceAllString(s, "-") },
		collapseDashes,
	}
	return p.Apply(input)
}

// SanitizeAssetType canonicalizes an asset-type label ("Garden Apartment"
// -> "garden-apartment"). Unknown types stay unknown; the pricing engine
// falls back to its default multiplier.
func SanitizeAssetType(input string) string {
	return SanitizeZoneID(input)
}

func SanitizeSlice(values []string, strategy Strategy) []string {
	seen := make(map[string]struct{})
	out := []string{}

	for _, v := range values {
		s := strategy(v)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}
