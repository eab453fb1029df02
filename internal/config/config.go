// Package config loads the service configuration from the environment once at startup.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Lllllllleong/civilex/internal/gcp"
)

// Generation providers.
const (
	ProviderVertex = "vertex"
	ProviderOpenAI = "openai"
)

// Config holds every setting the API, intake function and CLI read.
type Config struct {
	ProjectID      string
	Location       string
	DocAILocation  string
	UploadBucket   string
	ResultsBucket  string
	DocProcessorID string
	DocMIMEType    string
	UseMock        bool

	Port         string
	PromptPath   string
	MaxBodyBytes int64

	GenerationProvider string
	GeminiModel        string
	OpenAIAPIKey       string
	OpenAIModel        string

	UploadContentType string
	SignedURLTTL      time.Duration

	FirestoreDatabase string
	JobsCollection    string

	APIBase          string
	UploadURLTimeout time.Duration
	UploadTimeout    time.Duration
	ProcessTimeout   time.Duration
	QATimeout        time.Duration
}

// Load reads the configuration. An unset USE_MOCK means mock mode, so a missing
// variable never reaches paid services; once set, only "true" (any case) keeps it on.
func Load() (Config, error) {
	cfg := Config{
		ProjectID:      gcp.GetEnv("PROJECT_ID", "demo"),
		Location:       gcp.GetEnv("LOCATION", "asia-south1"),
		UploadBucket:   gcp.GetEnv("UPLOAD_BUCKET", "local-uploads"),
		ResultsBucket:  gcp.GetEnv("RESULTS_BUCKET", "local-results"),
		DocProcessorID: gcp.GetEnv("DOC_PROCESSOR_ID", "processor-id"),
		DocMIMEType:    gcp.GetEnv("DOC_MIME_TYPE", ""),
		UseMock:        parseMock(gcp.GetEnv("USE_MOCK", "true")),

		Port:       gcp.GetEnv("PORT", "8080"),
		PromptPath: gcp.GetEnv("PROMPT_PATH", "prompts/core_prompt.txt"),

		GenerationProvider: strings.ToLower(gcp.GetEnv("GENERATION_PROVIDER", ProviderVertex)),
		GeminiModel:        gcp.GetEnv("GEMINI_MODEL", gcp.DefaultGeminiModel),
		OpenAIAPIKey:       gcp.GetEnv("OPENAI_API_KEY", ""),
		OpenAIModel:        gcp.GetEnv("OPENAI_MODEL", "gpt-4o-mini"),

		UploadContentType: gcp.GetEnv("UPLOAD_CONTENT_TYPE", "application/octet-stream"),

		FirestoreDatabase: gcp.GetEnv("FIRESTORE_DATABASE", ""),
		JobsCollection:    gcp.GetEnv("JOBS_COLLECTION", ""),

		APIBase: strings.TrimRight(gcp.GetEnv("API_BASE", "http://localhost:8080"), "/"),
	}
	cfg.DocAILocation = gcp.GetEnv("DOC_AI_LOCATION", cfg.Location)

	switch cfg.GenerationProvider {
	case ProviderVertex, ProviderOpenAI:
	default:
		return Config{}, fmt.Errorf("unsupported GENERATION_PROVIDER %q", cfg.GenerationProvider)
	}

	maxBodyMB, err := parseIntEnv("MAX_BODY_MB", 10)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxBodyBytes = maxBodyMB * 1024 * 1024

	durations := []struct {
		key      string
		fallback int64
		dst      *time.Duration
	}{
		{"SIGNED_URL_TTL_SECONDS", 600, &cfg.SignedURLTTL},
		{"UPLOAD_URL_TIMEOUT_SECONDS", 10, &cfg.UploadURLTimeout},
		{"UPLOAD_TIMEOUT_SECONDS", 30, &cfg.UploadTimeout},
		{"PROCESS_TIMEOUT_SECONDS", 120, &cfg.ProcessTimeout},
		{"QA_TIMEOUT_SECONDS", 60, &cfg.QATimeout},
	}
	for _, d := range durations {
		seconds, err := parseIntEnv(d.key, d.fallback)
		if err != nil {
			return Config{}, err
		}
		*d.dst = time.Duration(seconds) * time.Second
	}

	return cfg, nil
}

func parseMock(value string) bool {
	return strings.ToLower(strings.TrimSpace(value)) == "true"
}

func parseIntEnv(key string, fallback int64) (int64, error) {
	value := strings.TrimSpace(gcp.GetEnv(key, ""))
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("parse %s: must be positive, got %d", key, n)
	}
	return n, nil
}
