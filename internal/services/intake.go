package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// GCSEvent is the payload of a Cloud Storage object finalize event.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// ObjectReader downloads a stored object.
type ObjectReader interface {
	ReadObject(ctx context.Context, bucket, object string) ([]byte, error)
}

// DocumentProcessor runs the pipeline for one document.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, in ProcessInput) (*Outcome, error)
}

// Archiver keeps the outcome of a completed run.
type Archiver interface {
	Save(ctx context.Context, filename string, out *Outcome) error
}

// Intake processes documents as soon as they land in the upload bucket.
type Intake struct {
	mode         Mode
	uploadBucket string
	reader       ObjectReader
	processor    DocumentProcessor
	archive      Archiver
	tracker      JobTracker
}

// NewIntake wires the intake function. reader, archive and tracker may be nil in mock mode.
func NewIntake(mode Mode, uploadBucket string, reader ObjectReader, processor DocumentProcessor, archive Archiver, tracker JobTracker) *Intake {
	if tracker == nil {
		tracker = NopTracker{}
	}
	return &Intake{
		mode:         mode,
		uploadBucket: uploadBucket,
		reader:       reader,
		processor:    processor,
		archive:      archive,
		tracker:      tracker,
	}
}

// Process handles one finalize event. Objects outside the upload bucket are ignored.
func (f *Intake) Process(ctx context.Context, e GCSEvent) error {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)

	if e.Bucket != f.uploadBucket {
		logCtx.Info("Object is not in the upload bucket, skipping.", "uploadBucket", f.uploadBucket)
		return nil
	}
	if e.Name == "" || strings.HasSuffix(e.Name, "/") {
		logCtx.Info("Event does not name an object, skipping.")
		return nil
	}

	if f.mode.IsMock() {
		out, err := f.processor.ProcessDocument(ctx, ProcessInput{Filename: e.Name, Source: "intake"})
		if err != nil {
			return err
		}
		logCtx.Info("Mock intake complete.", "states", len(out.States))
		return nil
	}

	logCtx.Info("Processing new upload.")

	pageCount := 0
	if strings.EqualFold(path.Ext(e.Name), ".pdf") {
		n, err := f.inspectPDF(ctx, e)
		if err != nil {
			return f.rejectUpload(ctx, logCtx, e.Name, err)
		}
		pageCount = n
		logCtx = logCtx.With("pageCount", pageCount)
		logCtx.Info("PDF inspected.")
	}

	out, err := f.processor.ProcessDocument(ctx, ProcessInput{Filename: e.Name, Source: "intake", PageCount: pageCount})
	if err != nil {
		// The orchestrator has already logged and recorded the failure.
		return err
	}

	if f.archive != nil {
		if err := f.archive.Save(ctx, e.Name, out); err != nil {
			logCtx.Error("Failed to archive results", "error", err)
			return err
		}
	}

	logCtx.Info("Intake complete.", "jobId", out.JobID)
	return nil
}

// inspectPDF downloads the upload and returns its page count. Uploads pdfcpu
// cannot read are rejected before any OCR call is made.
func (f *Intake) inspectPDF(ctx context.Context, e GCSEvent) (int, error) {
	if f.reader == nil {
		return 0, fmt.Errorf("no object reader configured")
	}
	data, err := f.reader.ReadObject(ctx, e.Bucket, e.Name)
	if err != nil {
		return 0, fmt.Errorf("failed to download upload: %w", err)
	}
	return CountPDFPages(data)
}

// CountPDFPages returns the number of pages in a PDF held in memory.
func CountPDFPages(data []byte) (int, error) {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(bytes.NewReader(data), cfg)
	if err != nil {
		return 0, fmt.Errorf("%w: not a readable PDF: %w", ErrInvalidInput, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: PDF has no pages", ErrInvalidInput)
	}
	return n, nil
}

// rejectUpload records a job that failed before the pipeline started.
func (f *Intake) rejectUpload(ctx context.Context, logCtx *slog.Logger, filename string, cause error) error {
	logCtx.Error("Upload rejected", "error", cause)
	jobID, err := f.tracker.Start(ctx, ProcessInput{Filename: filename, Source: "intake"})
	if err != nil {
		logCtx.Error("Failed to create job record", "error", err)
		return cause
	}
	if err := f.tracker.Transition(context.WithoutCancel(ctx), jobID, StateFailed, JobUpdate{ErrorDetails: cause.Error()}); err != nil {
		logCtx.Error("CRITICAL: Failed to record FAILED status after a processing error.", "updateError", err)
	}
	return cause
}
