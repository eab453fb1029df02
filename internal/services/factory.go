package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Lllllllleong/civilex/internal/config"
	"github.com/Lllllllleong/civilex/internal/gcp"
	"github.com/Lllllllleong/civilex/internal/llm"
)

// Stack is every component an entry point needs, built once at startup.
type Stack struct {
	Mode         Mode
	Gateway      *StorageGateway
	Orchestrator *Orchestrator
	Intake       *Intake

	closers []io.Closer
}

// Close releases every client the stack opened.
func (s *Stack) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Build selects the providers for cfg. In mock mode no cloud client is created,
// so the service starts without credentials.
func Build(ctx context.Context, cfg config.Config) (*Stack, error) {
	mode := NewMode(cfg.UseMock)
	slog.Info("Building service stack.", "mode", mode.String(), "project", cfg.ProjectID, "location", cfg.Location)

	if mode.IsMock() {
		orch := NewOrchestrator(mode, nil, NewNarrativeService(mode, nil, nil), nil)
		return &Stack{
			Mode:         mode,
			Gateway:      NewStorageGateway(mode, nil, gatewayConfig(cfg)),
			Orchestrator: orch,
			Intake:       NewIntake(mode, cfg.UploadBucket, nil, orch, nil, nil),
		}, nil
	}

	s := &Stack{Mode: mode}
	fail := func(err error) (*Stack, error) {
		if cerr := s.Close(); cerr != nil {
			slog.Error("Failed to close partially built stack", "error", cerr)
		}
		return nil, err
	}

	signer, err := gcp.NewUploadSigner(ctx, cfg.UploadBucket)
	if err != nil {
		return fail(fmt.Errorf("failed to create upload signer: %w", err))
	}
	s.closers = append(s.closers, signer)

	ocr, err := gcp.NewDocumentAIClient(ctx, cfg.ProjectID, cfg.DocAILocation, cfg.DocProcessorID)
	if err != nil {
		return fail(fmt.Errorf("failed to create Document AI client: %w", err))
	}
	s.closers = append(s.closers, ocr)

	provider, err := s.generationProvider(ctx, cfg)
	if err != nil {
		return fail(err)
	}

	store, err := gcp.NewObjectStore(ctx)
	if err != nil {
		return fail(fmt.Errorf("failed to create object store: %w", err))
	}
	s.closers = append(s.closers, store)

	var tracker JobTracker = NopTracker{}
	if cfg.JobsCollection != "" {
		fsClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID, cfg.FirestoreDatabase)
		if err != nil {
			return fail(fmt.Errorf("failed to create firestore client: %w", err))
		}
		ft := NewFirestoreTracker(fsClient, cfg.JobsCollection)
		s.closers = append(s.closers, ft)
		tracker = ft
	}

	extraction := NewExtractionService(ocr, cfg.UploadBucket, cfg.DocMIMEType)
	narrative := NewNarrativeService(mode, provider, NewPromptTemplate(cfg.PromptPath))

	s.Gateway = NewStorageGateway(mode, signer, gatewayConfig(cfg))
	s.Orchestrator = NewOrchestrator(mode, extraction, narrative, tracker)
	s.Intake = NewIntake(mode, cfg.UploadBucket, store, s.Orchestrator, NewResultArchive(store, cfg.ResultsBucket), tracker)

	slog.Info("Service stack ready.", "generationProvider", cfg.GenerationProvider, "jobTracking", cfg.JobsCollection != "")
	return s, nil
}

func (s *Stack) generationProvider(ctx context.Context, cfg config.Config) (GenerationProvider, error) {
	switch cfg.GenerationProvider {
	case config.ProviderOpenAI:
		client, err := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		return client, nil
	default:
		client, err := gcp.NewVertexClient(ctx, cfg.ProjectID, cfg.Location, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
		}
		s.closers = append(s.closers, client)
		return client, nil
	}
}

func gatewayConfig(cfg config.Config) StorageGatewayConfig {
	return StorageGatewayConfig{ContentType: cfg.UploadContentType, TTL: cfg.SignedURLTTL}
}
