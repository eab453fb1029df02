package models

// These structs define the JSON bodies exchanged over the HTTP API.

// ProcessRequest is the input for POST /process.
type ProcessRequest struct {
	Filename string `json:"filename"`
}

// QARequest is the input for POST /qa.
type QARequest struct {
	DocumentText string `json:"document_text"`
	Question     string `json:"question"`
}

// HealthResponse is the output of GET /health.
type HealthResponse struct {
	OK      bool `json:"ok"`
	UseMock bool `json:"use_mock"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// GenerationRequest is a single prompt sent to a generative model.
type GenerationRequest struct {
	Prompt          string
	MaxOutputTokens int32
	Temperature     float32
	// ResponseJSON asks the provider to constrain output to JSON where supported.
	ResponseJSON bool
}
