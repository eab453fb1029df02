package models

// Known risk severities. Severity is an open string: model output carrying any
// other value is passed through unchanged.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Section pairs a clause as written with a plain-language restatement.
type Section struct {
	Title    string `json:"title"`
	Original string `json:"original"`
	Plain    string `json:"plain"`
}

// RiskItem describes one obligation or risk found in a contract.
type RiskItem struct {
	ClauseText        string `json:"clause_text"`
	WhyItMatters      string `json:"why_it_matters"`
	Severity          string `json:"severity"`
	Deadline          string `json:"deadline"` // YYYY-MM-DD or empty
	RecommendedAction string `json:"recommended_action"`
}

// IsKnownSeverity reports whether s is one of low, medium or high.
func (r RiskItem) IsKnownSeverity() bool {
	switch r.Severity {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// QAItem is a question answered from the document during summarisation.
type QAItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Evidence string `json:"evidence"`
}

// ProcessResult is the structured summary produced for every processed document,
// whether it came from the model or from mock data.
type ProcessResult struct {
	TLDR      string     `json:"tldr"`
	Sections  []Section  `json:"sections"`
	Risks     []RiskItem `json:"risks"`
	Checklist []string   `json:"checklist"`
	QA        []QAItem   `json:"qa"`
}

// Normalize replaces nil sequences with empty ones so they encode as [] rather than null.
func (r *ProcessResult) Normalize() {
	if r.Sections == nil {
		r.Sections = []Section{}
	}
	if r.Risks == nil {
		r.Risks = []RiskItem{}
	}
	if r.Checklist == nil {
		r.Checklist = []string{}
	}
	if r.QA == nil {
		r.QA = []QAItem{}
	}
}

// FallbackResult is the degraded record used when model output cannot be parsed:
// the raw text becomes the TL;DR and every sequence is empty.
func FallbackResult(raw string) ProcessResult {
	r := ProcessResult{TLDR: raw}
	r.Normalize()
	return r
}

// AnswerResult is the reply to a free-text question about a document.
type AnswerResult struct {
	Answer   string `json:"answer"`
	Evidence string `json:"evidence,omitempty"`
}

// UploadTarget tells a client where and how to write an uploaded file.
type UploadTarget struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers"`
}

// ExampleProcessResult documents the shape of ProcessResult for API consumers.
func ExampleProcessResult() ProcessResult {
	return ProcessResult{
		TLDR: "...",
		Sections: []Section{
			{Title: "Payment Terms", Original: "...", Plain: "..."},
		},
		Risks: []RiskItem{{
			ClauseText:        "...",
			WhyItMatters:      "...",
			Severity:          SeverityHigh,
			Deadline:          "YYYY-MM-DD",
			RecommendedAction: "Give 30-day notice",
		}},
		Checklist: []string{"Confirm fees", "Clarify notice period"},
		QA: []QAItem{
			{Question: "What is the notice period?", Answer: "30 days per Clause 7.2", Evidence: "..."},
		},
	}
}
