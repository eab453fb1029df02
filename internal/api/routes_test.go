package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/civilex/internal/config"
	"github.com/Lllllllleong/civilex/internal/models"
	"github.com/Lllllllleong/civilex/internal/services"
)

func setupMockRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mode := services.NewMode(true)
	gateway := services.NewStorageGateway(mode, nil, services.StorageGatewayConfig{})
	orch := services.NewOrchestrator(mode, nil, services.NewNarrativeService(mode, nil, nil), nil)
	return NewRouter(config.Config{MaxBodyBytes: 1024 * 1024}, mode, gateway, orch)
}

type fakeGateway struct {
	target models.UploadTarget
	err    error
}

func (f *fakeGateway) RequestUploadDestination(context.Context, string) (models.UploadTarget, error) {
	return f.target, f.err
}

type fakePipeline struct {
	result   models.ProcessResult
	answer   models.AnswerResult
	err      error
	filename string
}

func (f *fakePipeline) Process(_ context.Context, filename string) (models.ProcessResult, error) {
	f.filename = filename
	return f.result, f.err
}

func (f *fakePipeline) Answer(context.Context, string, string) (models.AnswerResult, error) {
	return f.answer, f.err
}

func setupLiveRouter(t *testing.T, gw UploadGateway, p Pipeline, maxBody int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewRouter(config.Config{MaxBodyBytes: maxBody}, services.NewMode(false), gw, p)
}

func do(t *testing.T, engine *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthHandler(t *testing.T) {
	engine := setupMockRouter(t)

	rec := do(t, engine, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"use_mock":true}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestHealthHandler_Live(t *testing.T) {
	engine := setupLiveRouter(t, &fakeGateway{}, &fakePipeline{}, 0)

	rec := do(t, engine, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"use_mock":false}`, rec.Body.String())
}

func TestSchemaHandler(t *testing.T) {
	engine := setupMockRouter(t)

	rec := do(t, engine, http.MethodGet, "/schema", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	for _, key := range []string{"tldr", "sections", "risks", "checklist", "qa"} {
		assert.Contains(t, body, key)
	}
	risks := body["risks"].([]any)
	require.Len(t, risks, 1)
	assert.Equal(t, "YYYY-MM-DD", risks[0].(map[string]any)["deadline"])
}

func TestRequestIDPropagated(t *testing.T) {
	engine := setupMockRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(requestIDHeader))
}

// A mock-mode client session: upload-url, process and qa for lease.pdf.
func TestMockSessionEndToEnd(t *testing.T) {
	engine := setupMockRouter(t)

	rec := do(t, engine, http.MethodPost, "/upload-url?filename=lease.pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	target := decode[models.UploadTarget](t, rec)
	assert.True(t, strings.HasPrefix(target.URL, services.MockUploadPrefix))
	assert.Equal(t, http.MethodPut, target.Method)
	assert.Empty(t, target.Headers)

	rec = do(t, engine, http.MethodPost, "/process", models.ProcessRequest{Filename: "lease.pdf"})
	require.Equal(t, http.StatusOK, rec.Code)
	result := decode[models.ProcessResult](t, rec)
	assert.True(t, strings.HasPrefix(result.TLDR, "You agree to pay monthly"))
	require.Len(t, result.Risks, 1)
	assert.Equal(t, "high", result.Risks[0].Severity)
	assert.Equal(t, "2025-12-31", result.Risks[0].Deadline)
	assert.Equal(t, []string{"Ask about late fees", "Confirm auto-renewal settings"}, result.Checklist)

	rec = do(t, engine, http.MethodPost, "/qa", models.QARequest{DocumentText: "", Question: "anything"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"answer":"Per the Termination clause, 30 days' notice is required.","evidence":"Termination section."}`, rec.Body.String())
}

func TestProcess_MockIsByteIdentical(t *testing.T) {
	engine := setupMockRouter(t)

	first := do(t, engine, http.MethodPost, "/process", models.ProcessRequest{Filename: "a.pdf"})
	second := do(t, engine, http.MethodPost, "/process", models.ProcessRequest{Filename: "b.pdf"})
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestProcess_MalformedBody(t *testing.T) {
	engine := setupMockRouter(t)

	rec := do(t, engine, http.MethodPost, "/process", "{not json")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decode[models.ErrorResponse](t, rec).Detail)
}

func TestProcess_BodyTooLarge(t *testing.T) {
	engine := setupLiveRouter(t, &fakeGateway{}, &fakePipeline{}, 16)

	rec := do(t, engine, http.MethodPost, "/process", models.ProcessRequest{Filename: strings.Repeat("x", 64)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestPipelineErrors(t *testing.T) {
	upstream := errors.New("quota exceeded")

	tests := []struct {
		name       string
		method     string
		target     string
		body       any
		gatewayErr error
		err        error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "signing failure",
			method:     http.MethodPost,
			target:     "/upload-url?filename=lease.pdf",
			gatewayErr: fmt.Errorf("%w: %w", services.ErrStorageAuth, upstream),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "Signed URL error: storage authorization failed: quota exceeded",
		},
		{
			name:       "invalid filename",
			method:     http.MethodPost,
			target:     "/upload-url?filename=../etc",
			gatewayErr: fmt.Errorf("%w: filename must not contain '..' segments", services.ErrInvalidInput),
			wantStatus: http.StatusBadRequest,
			wantDetail: "invalid input: filename must not contain '..' segments",
		},
		{
			name:       "extraction failure",
			method:     http.MethodPost,
			target:     "/process",
			body:       models.ProcessRequest{Filename: "lease.pdf"},
			err:        fmt.Errorf("%w: %w", services.ErrExtraction, upstream),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "Processing error: text extraction failed: quota exceeded",
		},
		{
			name:       "blank question",
			method:     http.MethodPost,
			target:     "/qa",
			body:       models.QARequest{DocumentText: "text"},
			err:        fmt.Errorf("%w: question is required", services.ErrInvalidInput),
			wantStatus: http.StatusBadRequest,
			wantDetail: "invalid input: question is required",
		},
		{
			name:       "generation failure",
			method:     http.MethodPost,
			target:     "/qa",
			body:       models.QARequest{DocumentText: "text", Question: "q"},
			err:        fmt.Errorf("%w: %w", services.ErrGeneration, upstream),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "Processing error: generation failed: quota exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := setupLiveRouter(t, &fakeGateway{err: tt.gatewayErr}, &fakePipeline{err: tt.err}, 0)

			rec := do(t, engine, tt.method, tt.target, tt.body)
			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantDetail, decode[models.ErrorResponse](t, rec).Detail)
		})
	}
}

func TestProcess_LivePassesFilename(t *testing.T) {
	pipeline := &fakePipeline{result: models.FallbackResult("raw")}
	engine := setupLiveRouter(t, &fakeGateway{}, pipeline, 0)

	rec := do(t, engine, http.MethodPost, "/process", models.ProcessRequest{Filename: "leases/2024.pdf"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "leases/2024.pdf", pipeline.filename)
	assert.JSONEq(t, `{"tldr":"raw","sections":[],"risks":[],"checklist":[],"qa":[]}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	engine := setupMockRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/process", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
