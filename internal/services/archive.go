package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"

	"golang.org/x/sync/errgroup"
)

// ObjectWriter stores an object unless it already exists.
type ObjectWriter interface {
	WriteObject(ctx context.Context, bucket, object, contentType string, content []byte) error
}

// Archive object names, relative to the upload reference.
const (
	ResultObjectName = "result.json"
	TextObjectName   = "text.txt"
)

// ResultArchive keeps a copy of each completed run in the results bucket.
type ResultArchive struct {
	writer ObjectWriter
	bucket string
}

func NewResultArchive(writer ObjectWriter, bucket string) *ResultArchive {
	return &ResultArchive{writer: writer, bucket: bucket}
}

// Save writes <filename>/result.json and <filename>/text.txt concurrently.
// Objects that already exist are left untouched.
func (a *ResultArchive) Save(ctx context.Context, filename string, out *Outcome) error {
	if out == nil {
		return fmt.Errorf("failed to archive %s: no outcome", filename)
	}
	resultJSON, err := json.MarshalIndent(out.Result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result for %s: %w", filename, err)
	}

	objects := map[string]struct {
		contentType string
		content     []byte
	}{
		path.Join(filename, ResultObjectName): {"application/json", resultJSON},
		path.Join(filename, TextObjectName):   {"text/plain; charset=utf-8", []byte(out.Text)},
	}

	eg, gctx := errgroup.WithContext(ctx)
	for name, obj := range objects {
		eg.Go(func() error {
			if err := a.writer.WriteObject(gctx, a.bucket, name, obj.contentType, obj.content); err != nil {
				return fmt.Errorf("object %s: %w", name, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("failed to archive results: %w", err)
	}
	slog.Info("Results archived.", "bucket", a.bucket, "prefix", filename)
	return nil
}
