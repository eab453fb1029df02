package services

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"
)

// OCRProvider turns a stored document into plain text.
type OCRProvider interface {
	ExtractText(ctx context.Context, gcsURI, mimeType string) (string, error)
}

// documentMIMETypes lists the upload formats the OCR processor accepts.
var documentMIMETypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".webp": "image/webp",
}

const defaultDocumentMIMEType = "application/pdf"

// DocumentMIMEType guesses the MIME type from the file extension, defaulting to PDF.
func DocumentMIMEType(filename string) string {
	if mt, ok := documentMIMETypes[strings.ToLower(path.Ext(filename))]; ok {
		return mt
	}
	return defaultDocumentMIMEType
}

// ExtractionService resolves upload references to the upload bucket and runs OCR.
type ExtractionService struct {
	ocr          OCRProvider
	uploadBucket string
	mimeOverride string
}

// NewExtractionService creates the service. A non-empty mimeOverride is sent
// for every document instead of the extension-based guess.
func NewExtractionService(ocr OCRProvider, uploadBucket, mimeOverride string) *ExtractionService {
	return &ExtractionService{ocr: ocr, uploadBucket: uploadBucket, mimeOverride: mimeOverride}
}

// DocumentURI returns the gs:// location of an uploaded file.
func (s *ExtractionService) DocumentURI(reference string) string {
	return fmt.Sprintf("gs://%s/%s", s.uploadBucket, reference)
}

// ExtractText returns the full text of the uploaded document. It is never
// truncated here and never retried.
func (s *ExtractionService) ExtractText(ctx context.Context, reference string) (string, error) {
	uri := s.DocumentURI(reference)
	mimeType := s.mimeOverride
	if mimeType == "" {
		mimeType = DocumentMIMEType(reference)
	}

	logCtx := slog.With("gcsUri", uri, "mimeType", mimeType)
	start := time.Now()

	text, err := s.ocr.ExtractText(ctx, uri, mimeType)
	if err != nil {
		logCtx.Error("Call to OCR provider failed", "error", err)
		return "", wrap(ErrExtraction, err)
	}

	logCtx.Info("Extraction complete.", "chars", len(text), "duration", time.Since(start).String())
	return text, nil
}
