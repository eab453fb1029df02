package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Lllllllleong/civilex/internal/models"
)

// State is a step of a single process run.
type State string

const (
	StateReceived          State = "RECEIVED"
	StateExtractionPending State = "EXTRACTION_PENDING"
	StateExtractionDone    State = "EXTRACTION_DONE"
	StateGenerationPending State = "GENERATION_PENDING"
	StateCompleted         State = "COMPLETED"
	StateFailed            State = "FAILED"
)

// Extractor returns the text of an uploaded document.
type Extractor interface {
	ExtractText(ctx context.Context, reference string) (string, error)
}

// Narrator summarises document text and answers questions about it.
type Narrator interface {
	Summarize(ctx context.Context, docText string) (models.ProcessResult, error)
	Answer(ctx context.Context, docText, question string) (models.AnswerResult, error)
}

// ProcessInput identifies the document to process and where the request came from.
type ProcessInput struct {
	Filename  string
	Source    string // "api" or "intake"
	PageCount int
}

// Outcome is everything one process run produced. Text is empty in mock mode.
type Outcome struct {
	JobID  string
	Text   string
	Result models.ProcessResult
	States []State
}

// Orchestrator runs extraction then generation for one document per call.
// Nothing is cached between calls and nothing is retried.
type Orchestrator struct {
	mode      Mode
	extractor Extractor
	narrator  Narrator
	tracker   JobTracker
}

// NewOrchestrator wires the pipeline. A nil tracker disables job tracking.
func NewOrchestrator(mode Mode, extractor Extractor, narrator Narrator, tracker JobTracker) *Orchestrator {
	if tracker == nil {
		tracker = NopTracker{}
	}
	return &Orchestrator{mode: mode, extractor: extractor, narrator: narrator, tracker: tracker}
}

// Mode returns the mode the orchestrator was built with.
func (o *Orchestrator) Mode() Mode {
	return o.mode
}

// Process returns the structured summary for an uploaded file.
func (o *Orchestrator) Process(ctx context.Context, filename string) (models.ProcessResult, error) {
	out, err := o.ProcessDocument(ctx, ProcessInput{Filename: filename, Source: "api"})
	if err != nil {
		return models.ProcessResult{}, err
	}
	return out.Result, nil
}

// ProcessDocument runs the full state machine and returns the extracted text
// alongside the result. On failure no partial result is returned. In mock mode
// the filename is not inspected at all.
func (o *Orchestrator) ProcessDocument(ctx context.Context, in ProcessInput) (*Outcome, error) {
	r := &run{tracker: o.tracker, logCtx: slog.With("filename", in.Filename, "mode", o.mode.String())}
	r.start(ctx, in)

	if o.mode.IsMock() {
		r.advance(ctx, StateCompleted, JobUpdate{})
		return &Outcome{JobID: r.jobID, Result: MockProcessResult(), States: r.states}, nil
	}

	if err := ValidateFilename(in.Filename); err != nil {
		return nil, r.fail(ctx, err)
	}

	r.advance(ctx, StateExtractionPending, JobUpdate{})
	text, err := o.extractor.ExtractText(ctx, in.Filename)
	if err != nil {
		return nil, r.fail(ctx, ensureKind(ErrExtraction, err))
	}
	r.advance(ctx, StateExtractionDone, JobUpdate{TextLength: len(text)})

	r.advance(ctx, StateGenerationPending, JobUpdate{})
	result, err := o.narrator.Summarize(ctx, text)
	if err != nil {
		return nil, r.fail(ctx, ensureKind(ErrGeneration, err))
	}
	result.Normalize()
	r.advance(ctx, StateCompleted, JobUpdate{})

	return &Outcome{JobID: r.jobID, Text: text, Result: result, States: r.states}, nil
}

// Answer replies to a question about previously extracted text.
func (o *Orchestrator) Answer(ctx context.Context, docText, question string) (models.AnswerResult, error) {
	if o.mode.IsMock() {
		return MockAnswer(), nil
	}
	res, err := o.narrator.Answer(ctx, docText, question)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return models.AnswerResult{}, err
		}
		return models.AnswerResult{}, ensureKind(ErrGeneration, err)
	}
	return res, nil
}

// ensureKind tags err with kind unless it already carries it.
func ensureKind(kind, err error) error {
	if errors.Is(err, kind) {
		return err
	}
	return wrap(kind, err)
}

// run records the transitions of one ProcessDocument call.
type run struct {
	tracker JobTracker
	logCtx  *slog.Logger
	jobID   string
	states  []State
}

func (r *run) start(ctx context.Context, in ProcessInput) {
	r.states = append(r.states, StateReceived)
	jobID, err := r.tracker.Start(ctx, in)
	if err != nil {
		r.logCtx.Error("Failed to create job record", "error", err)
	}
	r.jobID = jobID
	if jobID != "" {
		r.logCtx = r.logCtx.With("jobId", jobID)
	}
	r.logCtx.Info("Document received.")
}

func (r *run) advance(ctx context.Context, state State, update JobUpdate) {
	r.states = append(r.states, state)
	r.logCtx.Info("State transition.", "state", state)
	if err := r.tracker.Transition(ctx, r.jobID, state, update); err != nil {
		r.logCtx.Error("Failed to record state transition", "state", state, "error", err)
	}
}

func (r *run) fail(ctx context.Context, err error) error {
	r.states = append(r.states, StateFailed)
	r.logCtx.Error("Processing failed", "error", err)
	// The caller's context may already be done; the failure should still be recorded.
	if terr := r.tracker.Transition(context.WithoutCancel(ctx), r.jobID, StateFailed, JobUpdate{ErrorDetails: err.Error()}); terr != nil {
		r.logCtx.Error("CRITICAL: Failed to record FAILED status after a processing error.", "updateError", terr)
	}
	return err
}
