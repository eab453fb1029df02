package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// SaveToGCSAtomically writes content to a GCS object only if it doesn't already exist.
// An existing object is not a failure: archived results are write-once.
func SaveToGCSAtomically(ctx context.Context, bucket *storage.BucketHandle, objectName, contentType string, content []byte) error {
	writer := bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, bytes.NewReader(content)); err != nil {
		_ = writer.Close()
		if isPreconditionFailed(err) {
			slog.Info("Object already exists, skipping.", "object", objectName)
			return nil
		}
		return fmt.Errorf("failed to write to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		// The precondition is evaluated when the upload is finalised.
		if isPreconditionFailed(err) {
			slog.Info("Object already exists, skipping.", "object", objectName)
			return nil
		}
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}

// UploadSigner issues V4 signed PUT URLs for objects in a single bucket.
type UploadSigner struct {
	client *storage.Client
	bucket string
}

// NewUploadSigner creates a signer for the given upload bucket. Credentials are
// discovered from the environment, as with every other client in this package.
func NewUploadSigner(ctx context.Context, bucket string) (*UploadSigner, error) {
	if bucket == "" {
		return nil, fmt.Errorf("NewUploadSigner: bucket cannot be empty")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &UploadSigner{client: client, bucket: bucket}, nil
}

// SignedPutURL returns a URL that permits exactly one verb (PUT) on exactly one
// object, with the given Content-Type enforced, until ttl elapses.
func (s *UploadSigner) SignedPutURL(ctx context.Context, objectName, contentType string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	url, err := s.client.Bucket(s.bucket).SignedURL(objectName, &storage.SignedURLOptions{
		Scheme:      storage.SigningSchemeV4,
		Method:      http.MethodPut,
		ContentType: contentType,
		Expires:     time.Now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign URL for gs://%s/%s: %w", s.bucket, objectName, err)
	}
	return url, nil
}

func (s *UploadSigner) Close() error {
	return s.client.Close()
}

// ObjectStore reads uploaded objects and archives results. It wraps a single
// storage client shared by both buckets.
type ObjectStore struct {
	client *storage.Client
}

func NewObjectStore(ctx context.Context) (*ObjectStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &ObjectStore{client: client}, nil
}

// ReadObject downloads an object fully into memory.
func (s *ObjectStore) ReadObject(ctx context.Context, bucket, object string) ([]byte, error) {
	reader, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", bucket, object, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read GCS object gs://%s/%s: %w", bucket, object, err)
	}
	return data, nil
}

// WriteObject stores content under bucket/object unless the object already exists.
func (s *ObjectStore) WriteObject(ctx context.Context, bucket, object, contentType string, content []byte) error {
	return SaveToGCSAtomically(ctx, s.client.Bucket(bucket), object, contentType, content)
}

func (s *ObjectStore) Close() error {
	return s.client.Close()
}
