package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Lllllllleong/civilex/internal/models"
)

// Generation settings. Low temperature keeps repeated runs over the same
// contract consistent.
const (
	SummaryMaxOutputTokens int32   = 2048
	AnswerMaxOutputTokens  int32   = 1024
	GenerationTemperature  float32 = 0.2
)

// GenerationProvider sends one prompt to a generative model and returns its text.
type GenerationProvider interface {
	Generate(ctx context.Context, req models.GenerationRequest) (string, error)
}

// PromptRenderer builds a prompt from document text and a question.
type PromptRenderer interface {
	Render(docText, question string) (string, error)
}

// NarrativeService produces structured summaries and free-text answers.
type NarrativeService struct {
	mode     Mode
	provider GenerationProvider
	prompts  PromptRenderer
}

// NewNarrativeService creates the service. provider and prompts may be nil in mock mode.
func NewNarrativeService(mode Mode, provider GenerationProvider, prompts PromptRenderer) *NarrativeService {
	return &NarrativeService{mode: mode, provider: provider, prompts: prompts}
}

// Summarize asks the model for the obligations and risks in docText. Output
// that does not parse as a ProcessResult is not an error: the raw text is
// returned as the TL;DR with empty sequences.
func (s *NarrativeService) Summarize(ctx context.Context, docText string) (models.ProcessResult, error) {
	if s.mode.IsMock() {
		return MockProcessResult(), nil
	}

	raw, err := s.generate(ctx, docText, DefaultQuestion, SummaryMaxOutputTokens, true)
	if err != nil {
		return models.ProcessResult{}, err
	}

	result, err := ParseProcessResult(raw)
	if err != nil {
		slog.Warn("Model output did not match the summary schema, using raw text.", "error", err, "responseChars", len(raw))
		return models.FallbackResult(raw), nil
	}
	return result, nil
}

// Answer asks a free-text question about docText. The live path returns the
// model's text as-is and never fills Evidence.
func (s *NarrativeService) Answer(ctx context.Context, docText, question string) (models.AnswerResult, error) {
	if s.mode.IsMock() {
		return MockAnswer(), nil
	}
	if strings.TrimSpace(question) == "" {
		return models.AnswerResult{}, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}

	raw, err := s.generate(ctx, docText, question, AnswerMaxOutputTokens, false)
	if err != nil {
		return models.AnswerResult{}, err
	}
	return models.AnswerResult{Answer: raw}, nil
}

func (s *NarrativeService) generate(ctx context.Context, docText, question string, maxTokens int32, asJSON bool) (string, error) {
	if s.provider == nil || s.prompts == nil {
		return "", fmt.Errorf("%w: no generation provider configured", ErrGeneration)
	}

	prompt, err := s.prompts.Render(docText, question)
	if err != nil {
		return "", wrap(ErrGeneration, err)
	}

	raw, err := s.provider.Generate(ctx, models.GenerationRequest{
		Prompt:          prompt,
		MaxOutputTokens: maxTokens,
		Temperature:     GenerationTemperature,
		ResponseJSON:    asJSON,
	})
	if err != nil {
		slog.Error("Call to generation provider failed", "error", err)
		return "", wrap(ErrGeneration, err)
	}
	return raw, nil
}
