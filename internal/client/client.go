// Package client is the caller side of the HTTP API: it requests upload
// destinations, uploads bytes, and runs process and qa calls with per-call timeouts.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Lllllllleong/civilex/internal/config"
	"github.com/Lllllllleong/civilex/internal/models"
	"github.com/Lllllllleong/civilex/internal/services"
)

// Timeouts bounds each kind of call.
type Timeouts struct {
	UploadURL time.Duration
	Upload    time.Duration
	Process   time.Duration
	QA        time.Duration
}

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api returned %d: %s", e.StatusCode, e.Detail)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	timeouts   Timeouts
}

// New creates a client for baseURL. A nil httpClient uses http.DefaultClient.
func New(baseURL string, httpClient *http.Client, timeouts Timeouts) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient, timeouts: timeouts}
}

// FromConfig creates a client using the API base and caller timeouts in cfg.
func FromConfig(cfg config.Config) *Client {
	return New(cfg.APIBase, nil, Timeouts{
		UploadURL: cfg.UploadURLTimeout,
		Upload:    cfg.UploadTimeout,
		Process:   cfg.ProcessTimeout,
		QA:        cfg.QATimeout,
	})
}

func (c *Client) Health(ctx context.Context) (models.HealthResponse, error) {
	var out models.HealthResponse
	err := c.call(ctx, c.timeouts.UploadURL, http.MethodGet, "/health", nil, &out)
	return out, err
}

// UploadURL asks the service where to upload filename.
func (c *Client) UploadURL(ctx context.Context, filename string) (models.UploadTarget, error) {
	var out models.UploadTarget
	path := "/upload-url?filename=" + url.QueryEscape(filename)
	err := c.call(ctx, c.timeouts.UploadURL, http.MethodPost, path, nil, &out)
	return out, err
}

// Upload writes content to target. A mock destination is treated as already
// uploaded and no request is made; the returned bool reports whether bytes
// were actually sent.
func (c *Client) Upload(ctx context.Context, target models.UploadTarget, content []byte) (bool, error) {
	if strings.HasPrefix(target.URL, services.MockUploadPrefix) {
		slog.Debug("Mock upload destination, skipping transfer.", "url", target.URL)
		return false, nil
	}

	ctx, cancel := withTimeout(ctx, c.timeouts.Upload)
	defer cancel()

	method := target.Method
	if method == "" {
		method = http.MethodPut
	}
	req, err := http.NewRequestWithContext(ctx, method, target.URL, bytes.NewReader(content))
	if err != nil {
		return false, fmt.Errorf("failed to build upload request: %w", err)
	}
	for k, v := range target.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return false, &APIError{StatusCode: resp.StatusCode, Detail: strings.TrimSpace(string(body))}
	}
	return true, nil
}

// Process asks the service to extract and summarise an uploaded file.
func (c *Client) Process(ctx context.Context, filename string) (models.ProcessResult, error) {
	var out models.ProcessResult
	err := c.call(ctx, c.timeouts.Process, http.MethodPost, "/process", models.ProcessRequest{Filename: filename}, &out)
	return out, err
}

// Ask sends a question about previously extracted text.
func (c *Client) Ask(ctx context.Context, documentText, question string) (models.AnswerResult, error) {
	var out models.AnswerResult
	req := models.QARequest{DocumentText: documentText, Question: question}
	err := c.call(ctx, c.timeouts.QA, http.MethodPost, "/qa", req, &out)
	return out, err
}

func (c *Client) call(ctx context.Context, timeout time.Duration, method, path string, in, out any) error {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e models.ErrorResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		if err := json.Unmarshal(raw, &e); err != nil || e.Detail == "" {
			e.Detail = strings.TrimSpace(string(raw))
		}
		return &APIError{StatusCode: resp.StatusCode, Detail: e.Detail}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
