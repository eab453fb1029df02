package gcp

import (
	"context"
	"fmt"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
)

// DocumentAIClient runs synchronous OCR against a single Document AI processor.
type DocumentAIClient struct {
	client        *documentai.DocumentProcessorClient
	processorName string
}

// NewDocumentAIClient connects to the regional Document AI endpoint for location.
func NewDocumentAIClient(ctx context.Context, projectID, location, processorID string) (*DocumentAIClient, error) {
	if projectID == "" || location == "" || processorID == "" {
		return nil, fmt.Errorf("NewDocumentAIClient: projectID, location and processorID cannot be empty")
	}

	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", location)
	client, err := documentai.NewDocumentProcessorClient(ctx, option.WithEndpoint(endpoint))
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}

	return &DocumentAIClient{
		client:        client,
		processorName: ProcessorName(projectID, location, processorID),
	}, nil
}

// ProcessorName builds the fully-qualified processor resource name.
func ProcessorName(projectID, location, processorID string) string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", projectID, location, processorID)
}

// ExtractText processes the document stored at gcsURI and returns its text.
// A document without text yields an empty string.
func (c *DocumentAIClient) ExtractText(ctx context.Context, gcsURI, mimeType string) (string, error) {
	req := &documentaipb.ProcessRequest{
		Name: c.processorName,
		Source: &documentaipb.ProcessRequest_GcsDocument{
			GcsDocument: &documentaipb.GcsDocument{
				GcsUri:   gcsURI,
				MimeType: mimeType,
			},
		},
	}

	resp, err := c.client.ProcessDocument(ctx, req)
	if err != nil {
		return "", fmt.Errorf("document AI ProcessDocument for %s: %w", gcsURI, err)
	}
	return resp.GetDocument().GetText(), nil
}

func (c *DocumentAIClient) Close() error {
	return c.client.Close()
}
