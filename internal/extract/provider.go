// Package extract turns invoice PDFs into field-candidate entities. The
// primary provider is a trained Document AI invoice processor; Gemini and
// OpenAI act as fallbacks that emulate the same entity vocabulary through a
// prompt, so the rest of the pipeline never knows which provider ran.
package extract

import (
	"context"

	"github.com/nfseflow/nfse-xml-service/internal/models"
)

// Provider extracts entities from a source document
type Provider interface {
	// Name identifies the provider in logs and responses
	Name() string

	// Extract processes the raw document and returns the recognized
	// entities alongside the full text
	Extract(ctx context.Context, data []byte, mimeType string) (*models.ExtractionResult, error)
}
