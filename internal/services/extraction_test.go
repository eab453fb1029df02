package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentMIMEType(t *testing.T) {
	tests := map[string]string{
		"lease.pdf":     "application/pdf",
		"LEASE.PDF":     "application/pdf",
		"scan.JPG":      "image/jpeg",
		"contract.docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"notes.txt":     "text/plain",
		"no-extension":  "application/pdf",
		"archive.zip":   "application/pdf",
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, DocumentMIMEType(name))
		})
	}
}

func TestExtractionService_ExtractText(t *testing.T) {
	ocr := &fakeOCR{text: "This Agreement..."}
	svc := NewExtractionService(ocr, "uploads", "")

	text, err := svc.ExtractText(context.Background(), "leases/lease.png")
	require.NoError(t, err)
	assert.Equal(t, "This Agreement...", text)
	assert.Equal(t, "gs://uploads/leases/lease.png", ocr.uri)
	assert.Equal(t, "image/png", ocr.mimeType)
}

func TestExtractionService_MIMEOverride(t *testing.T) {
	ocr := &fakeOCR{}
	svc := NewExtractionService(ocr, "uploads", "application/pdf")

	text, err := svc.ExtractText(context.Background(), "scan.png")
	require.NoError(t, err)
	assert.Equal(t, "", text)
	assert.Equal(t, "application/pdf", ocr.mimeType)
}

func TestExtractionService_Failure(t *testing.T) {
	ocr := &fakeOCR{err: errors.New("processor not found")}
	svc := NewExtractionService(ocr, "uploads", "")

	_, err := svc.ExtractText(context.Background(), "lease.pdf")
	require.ErrorIs(t, err, ErrExtraction)
	assert.Contains(t, err.Error(), "processor not found")
	assert.Equal(t, 1, ocr.calls)
}
