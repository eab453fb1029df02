package services

import (
	"errors"
	"fmt"
)

// Error taxonomy for the processing pipeline. Each is joined with the upstream
// error, so callers can match the kind with errors.Is and still read the
// provider's message.
var (
	// ErrInvalidInput indicates a request the pipeline refuses before calling any provider.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorageAuth indicates a write authorization could not be obtained.
	ErrStorageAuth = errors.New("storage authorization failed")

	// ErrExtraction indicates the OCR provider failed.
	ErrExtraction = errors.New("text extraction failed")

	// ErrGeneration indicates the generative model failed.
	ErrGeneration = errors.New("generation failed")

	// ErrParse indicates model output did not match the ProcessResult shape.
	// It never leaves this package: Summarize recovers from it with a fallback.
	ErrParse = errors.New("unparseable model output")
)

// wrap tags err with kind, keeping both in the chain.
func wrap(kind, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", kind, err)
}
