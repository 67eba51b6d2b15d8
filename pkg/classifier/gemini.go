package classifier

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	apperrors "dira/pkg/errors"
	"dira/pkg/logger"
)

// GeminiClassifier calls the Gemini API with response schemas so the model
// returns parseable JSON. Temperature is pinned to zero; moderation and
// verification verdicts should not drift between identical inputs.
type GeminiClassifier struct {
	client *genai.Client
	model  string
	log    *logger.Logger
}

func NewGeminiClassifier(ctx context.Context, apiKey, model string, log *logger.Logger) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClassifier{
		client: client,
		model:  model,
		log:    log,
	}, nil
}

func (c *GeminiClassifier) Infer(ctx context.Context, req Request, out any) error {
	parts := []*genai.Part{
		genai.NewPartFromText(req.Input),
	}
	if req.FileURI != "" {
		parts = append(parts, genai.NewPartFromURI(req.FileURI, req.FileMIMEType))
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema,
	}
	if req.Instruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.Instruction, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return apperrors.Classifier("inference request failed", err)
	}

	text := resp.Text()
	if text == "" {
		return apperrors.Classifier("inference returned empty response", nil)
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		c.log.Error("Failed to parse classifier response", "model", c.model, "response", text, "error", err)
		return apperrors.Classifier("inference returned malformed response", err)
	}

	return nil
}
