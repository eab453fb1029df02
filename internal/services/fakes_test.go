package services

import (
	"context"
	"sync"
	"time"

	"github.com/Lllllllleong/civilex/internal/models"
)

type fakeSigner struct {
	url         string
	err         error
	objectName  string
	contentType string
	ttl         time.Duration
}

func (f *fakeSigner) SignedPutURL(_ context.Context, objectName, contentType string, ttl time.Duration) (string, error) {
	f.objectName, f.contentType, f.ttl = objectName, contentType, ttl
	return f.url, f.err
}

type fakeOCR struct {
	text     string
	err      error
	calls    int
	uri      string
	mimeType string
}

func (f *fakeOCR) ExtractText(_ context.Context, gcsURI, mimeType string) (string, error) {
	f.calls++
	f.uri, f.mimeType = gcsURI, mimeType
	return f.text, f.err
}

type fakeGenerator struct {
	response string
	err      error
	requests []models.GenerationRequest
}

func (f *fakeGenerator) Generate(_ context.Context, req models.GenerationRequest) (string, error) {
	f.requests = append(f.requests, req)
	return f.response, f.err
}

// staticPrompt renders with the same rules as the file-backed template.
type staticPrompt string

func (p staticPrompt) Render(docText, question string) (string, error) {
	return renderTemplate(string(p), map[string]string{
		"doc_text": TruncateText(docText, MaxDocumentChars),
		"question": question,
	})
}

type fakeNarrator struct {
	result   models.ProcessResult
	answer   models.AnswerResult
	err      error
	summary  int
	answered int
}

func (f *fakeNarrator) Summarize(context.Context, string) (models.ProcessResult, error) {
	f.summary++
	return f.result, f.err
}

func (f *fakeNarrator) Answer(context.Context, string, string) (models.AnswerResult, error) {
	f.answered++
	return f.answer, f.err
}

type fakeExtractor struct {
	text  string
	err   error
	calls int
}

func (f *fakeExtractor) ExtractText(context.Context, string) (string, error) {
	f.calls++
	return f.text, f.err
}

type transition struct {
	jobID  string
	state  State
	update JobUpdate
}

type recordingTracker struct {
	mu          sync.Mutex
	started     []ProcessInput
	transitions []transition
	startErr    error
}

func (r *recordingTracker) Start(_ context.Context, in ProcessInput) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, in)
	if r.startErr != nil {
		return "", r.startErr
	}
	return "job-1", nil
}

func (r *recordingTracker) Transition(_ context.Context, jobID string, state State, update JobUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, transition{jobID: jobID, state: state, update: update})
	return nil
}

type memoryStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	types    map[string]string
	writeErr error
	readErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStore) WriteObject(_ context.Context, bucket, object, contentType string, content []byte) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := bucket + "/" + object
	if _, exists := m.objects[key]; exists {
		return nil
	}
	m.objects[key] = content
	m.types[key] = contentType
	return nil
}

func (m *memoryStore) ReadObject(_ context.Context, bucket, object string) ([]byte, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[bucket+"/"+object], nil
}
