package service

import (
	"context"
	"math"
	"path"
	"strings"

	"google.golang.org/genai"

	"dira/pkg/classifier"
	"dira/pkg/config"
	apperrors "dira/pkg/errors"
	"dira/pkg/sanitizer"
)

// Verification verdicts.
const (
	VerdictApproved        = "APPROVED"
	VerdictManualReview    = "MANUAL_REVIEW"
	VerdictInvalidDocument = "INVALID_DOCUMENT"
)

// deviationThresholdPercent is strict: a deviation of exactly 5% is a
// mismatch.
const deviationThresholdPercent = 5.0

type contractExtraction struct {
	IsValidContract bool     `json:"isValidContract"`
	MonthlyRent     *float64 `json:"monthlyRent"`
	Address         *string  `json:"address"`
	Confidence      float64  `json:"confidence"`
	Reason          string   `json:"reason"`
}

const contractInstruction = `You are a document reviewer for a sublet marketplace.
Decide whether the attached document is a residential lease contract. If it
is, extract the monthly rent amount and the property address. Set monthlyRent
to null when no rent amount can be read with confidence. Confidence is your
overall certainty in the extraction, between 0 and 1.`

var contractSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"isValidContract": {
			Type: genai.TypeBoolean,
		},
		"monthlyRent": {
			Type:     genai.TypeNumber,
			Nullable: genai.Ptr(true),
		},
		"address": {
			Type:     genai.TypeString,
			Nullable: genai.Ptr(true),
		},
		"confidence": {
			Type: genai.TypeNumber,
		},
		"reason": {
			Type: genai.TypeString,
		},
	},
	Required: []string{"isValidContract", "confidence", "reason"},
}

type VerificationResult struct {
	Verdict          string   `json:"verdict"`
	ExtractedRent    *float64 `json:"extracted_rent,omitempty"`
	Address          *string  `json:"address,omitempty"`
	DeviationPercent *float64 `json:"deviation_percent,omitempty"`
	Confidence       float64  `json:"confidence"`
	Reason           string   `json:"reason"`
}

type VerificationService interface {
	Verify(ctx context.Context, fileURL string, declaredRent float64) (*VerificationResult, error)
}

type verificationService struct {
	classifier classifier.Classifier
	cfg        *config.Config
}

func NewVerificationService(cls classifier.Classifier, cfg *config.Config) VerificationService {
	return &verificationService{
		classifier: cls,
		cfg:        cfg,
	}
}

func (s *verificationService) Verify(ctx context.Context, fileURL string, declaredRent float64) (*VerificationResult, error) {
	fileURL = sanitizer.SanitizeFileURL(fileURL)
	if fileURL == "" {
		return nil, apperrors.InvalidInput("A valid contract file URL is required")
	}
	if declaredRent <= 0 {
		return nil, apperrors.InvalidInput("Declared rent must be positive")
	}

	var extraction contractExtraction
	err := s.classifier.Infer(ctx, classifier.Request{
		Instruction:  contractInstruction,
		FileURI:      fileURL,
		FileMIMEType: mimeTypeFor(fileURL),
		Schema:       contractSchema,
	}, &extraction)
	if err != nil {
		s.cfg.Log.Error("Contract extraction failed", "file_url", fileURL, "error", err)
		return nil, err
	}

	result := &VerificationResult{
		Address:    extraction.Address,
		Confidence: extraction.Confidence,
		Reason:     extraction.Reason,
	}

	if !extraction.IsValidContract {
		result.Verdict = VerdictInvalidDocument
		return result, nil
	}

	if extraction.MonthlyRent == nil {
		result.Verdict = VerdictManualReview
		result.Reason = "Rent amount could not be extracted from the contract"
		return result, nil
	}

	result.ExtractedRent = extraction.MonthlyRent
	deviation := math.Abs(*extraction.MonthlyRent-declaredRent) / declaredRent * 100
	result.DeviationPercent = &deviation

	if deviation < deviationThresholdPercent {
		result.Verdict = VerdictApproved
	} else {
		result.Verdict = VerdictManualReview
	}

	s.cfg.Log.Info("Contract verified",
		"verdict", result.Verdict,
		"declared_rent", declaredRent,
		"extracted_rent", *extraction.MonthlyRent,
		"deviation_percent", deviation,
	)
	return result, nil
}

func mimeTypeFor(fileURL string) string {
	switch strings.ToLower(path.Ext(strings.SplitN(fileURL, "?", 2)[0])) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "application/pdf"
	}
}
