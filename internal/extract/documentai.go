package extract

import (
	"context"
	"encoding/base64"
	"fmt"

	documentai "google.golang.org/api/documentai/v1"
	"google.golang.org/api/option"

	"github.com/nfseflow/nfse-xml-service/internal/models"
)

// DocumentAIProvider calls a trained Document AI invoice processor.
// Credentials come from the ambient Google application default credentials.
type DocumentAIProvider struct {
	projectID   string
	location    string
	processorID string
}

// NewDocumentAIProvider creates a Document AI provider
func NewDocumentAIProvider(projectID, location, processorID string) *DocumentAIProvider {
	return &DocumentAIProvider{
		projectID:   projectID,
		location:    location,
		processorID: processorID,
	}
}

func (p *DocumentAIProvider) Name() string { return "documentai" }

// Extract sends the document to the processor and maps its entities
func (p *DocumentAIProvider) Extract(ctx context.Context, data []byte, mimeType string) (*models.ExtractionResult, error) {
	var opts []option.ClientOption
	if p.location != "" && p.location != "us" {
		// Regional processors live on regional endpoints
		opts = append(opts, option.WithEndpoint(fmt.Sprintf("https://%s-documentai.googleapis.com/", p.location)))
	}

	svc, err := documentai.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}

	name := fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		p.projectID, p.location, p.processorID)

	req := &documentai.GoogleCloudDocumentaiV1ProcessRequest{
		RawDocument: &documentai.GoogleCloudDocumentaiV1RawDocument{
			Content:  base64.StdEncoding.EncodeToString(data),
			MimeType: mimeType,
		},
		SkipHumanReview: true,
	}

	resp, err := svc.Projects.Locations.Processors.Process(name, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("Document AI processing failed: %w", err)
	}
	if resp.Document == nil {
		return nil, fmt.Errorf("Document AI returned no document")
	}

	result := &models.ExtractionResult{Text: resp.Document.Text}
	for _, e := range resp.Document.Entities {
		entity := models.Entity{
			Type:        e.Type,
			MentionText: e.MentionText,
		}
		if e.NormalizedValue != nil && e.NormalizedValue.Text != "" {
			entity.NormalizedValue = &models.NormalizedValue{Text: e.NormalizedValue.Text}
		}
		result.Entities = append(result.Entities, entity)
	}

	return result, nil
}
