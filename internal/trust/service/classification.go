package service

import "google.golang.org/genai"

// Severity levels the report classifier may return.
const (
	SeverityMinor    = "MINOR"
	SeverityModerate = "MODERATE"
	SeveritySevere   = "SEVERE"
)

// Severity levels the message classifier may return.
const (
	MessageSeverityLow    = "LOW"
	MessageSeverityMedium = "MEDIUM"
	MessageSeverityHigh   = "HIGH"
)

// ReportClassification is the structured verdict for a listing report.
type ReportClassification struct {
	Severity                string  `json:"severity"`
	StrikeValue             float64 `json:"strikeValue"`
	Reason                  string  `json:"reason"`
	RequiresImmediateAction bool    `json:"requiresImmediateAction"`
}

// MessageAnalysis is the structured verdict for a chat message.
type MessageAnalysis struct {
	IsSuspicious     bool     `json:"isSuspicious"`
	Reason           string   `json:"reason"`
	Severity         string   `json:"severity"`
	DetectedPatterns []string `json:"detectedPatterns"`
}

const reportInstruction = `You are a trust-and-safety reviewer for a short-term sublet marketplace.
Classify the severity of the following report filed against a listing.
MINOR issues (strikeValue 0.5): cleanliness complaints, minor inaccuracies.
MODERATE issues (strikeValue 1): misleading photos, undisclosed fees, repeated unresponsiveness.
SEVERE issues (strikeValue 2): safety hazards, fraud, discrimination, nonexistent listings.`

var reportSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"severity": {
			Type: genai.TypeString,
			Enum: []string{SeverityMinor, SeverityModerate, SeveritySevere},
		},
		"strikeValue": {
			Type: genai.TypeNumber,
		},
		"reason": {
			Type: genai.TypeString,
		},
		"requiresImmediateAction": {
			Type: genai.TypeBoolean,
		},
	},
	Required: []string{"severity", "strikeValue", "reason", "requiresImmediateAction"},
}

const messageInstruction = `You are a trust-and-safety reviewer for a short-term sublet marketplace.
Inspect the following chat message for policy violations: phone numbers,
email addresses, external links, and attempts to move payment off the
platform. Severity is LOW for borderline phrasing, MEDIUM for clear
contact-info sharing, HIGH for explicit off-platform payment solicitation.`

var messageSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"isSuspicious": {
			Type: genai.TypeBoolean,
		},
		"reason": {
			Type: genai.TypeString,
		},
		"severity": {
			Type: genai.TypeString,
			Enum: []string{MessageSeverityLow, MessageSeverityMedium, MessageSeverityHigh},
		},
		"detectedPatterns": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"isSuspicious", "reason", "severity", "detectedPatterns"},
}

func validStrikeValue(v float64) bool {
	return v == 0.5 || v == 1 || v == 2
}

func validReportSeverity(s string) bool {
	return s == SeverityMinor || s == SeverityModerate || s == SeveritySevere
}

func validMessageSeverity(s string) bool {
	return s == MessageSeverityLow || s == MessageSeverityMedium || s == MessageSeverityHigh
}
