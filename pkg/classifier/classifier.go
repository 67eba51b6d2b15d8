// Package classifier provides structured inference over listing documents
// and chat messages via the Gemini API.
package classifier

import (
	"context"

	"google.golang.org/genai"
)

// Request describes a single structured-output inference call. Schema
// constrains the model to JSON matching the caller's output type. FileURI
// optionally attaches a document (contract scan, photo) to the prompt.
type Request struct {
	Instruction  string
	Input        string
	FileURI      string
	FileMIMEType string
	Schema       *genai.Schema
}

// Classifier runs a structured inference and unmarshals the result into out.
type Classifier interface {
	Infer(ctx context.Context, req Request, out any) error
}
