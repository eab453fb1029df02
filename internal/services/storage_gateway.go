package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Lllllllleong/civilex/internal/models"
)

// URLSigner issues time-limited write URLs for single objects.
type URLSigner interface {
	SignedPutURL(ctx context.Context, objectName, contentType string, ttl time.Duration) (string, error)
}

// StorageGatewayConfig holds the upload settings.
type StorageGatewayConfig struct {
	ContentType string
	TTL         time.Duration
}

// StorageGateway hands out upload destinations: sentinel URLs in mock mode,
// signed Cloud Storage URLs otherwise.
type StorageGateway struct {
	mode   Mode
	signer URLSigner
	config StorageGatewayConfig
}

// NewStorageGateway creates a gateway. signer may be nil in mock mode.
func NewStorageGateway(mode Mode, signer URLSigner, config StorageGatewayConfig) *StorageGateway {
	return &StorageGateway{mode: mode, signer: signer, config: config}
}

// RequestUploadDestination returns where the client should PUT filename.
func (g *StorageGateway) RequestUploadDestination(ctx context.Context, filename string) (models.UploadTarget, error) {
	if g.mode.IsMock() {
		return models.UploadTarget{
			URL:     MockUploadPrefix + filename,
			Method:  http.MethodPut,
			Headers: map[string]string{},
		}, nil
	}

	if err := ValidateFilename(filename); err != nil {
		return models.UploadTarget{}, err
	}

	if g.signer == nil {
		return models.UploadTarget{}, fmt.Errorf("%w: no signer configured", ErrStorageAuth)
	}

	url, err := g.signer.SignedPutURL(ctx, filename, g.config.ContentType, g.config.TTL)
	if err != nil {
		slog.Error("Failed to sign upload URL", "filename", filename, "error", err)
		return models.UploadTarget{}, wrap(ErrStorageAuth, err)
	}

	return models.UploadTarget{
		URL:     url,
		Method:  http.MethodPut,
		Headers: map[string]string{"Content-Type": g.config.ContentType},
	}, nil
}

// ValidateFilename rejects names that are empty or that could address an
// object outside the caller's own key.
func ValidateFilename(filename string) error {
	if strings.TrimSpace(filename) == "" {
		return fmt.Errorf("%w: filename is required", ErrInvalidInput)
	}
	if strings.HasPrefix(filename, "/") {
		return fmt.Errorf("%w: filename must not start with '/'", ErrInvalidInput)
	}
	for _, seg := range strings.Split(filename, "/") {
		if seg == ".." {
			return fmt.Errorf("%w: filename must not contain '..' segments", ErrInvalidInput)
		}
	}
	return nil
}
