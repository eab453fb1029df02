package services

import "github.com/Lllllllleong/civilex/internal/models"

// MockUploadPrefix starts every upload URL issued in mock mode. Clients treat
// such a URL as already satisfied and skip the byte transfer.
const MockUploadPrefix = "/mock-upload/"

// MockProcessResult is the fixed summary returned for every document in mock mode.
func MockProcessResult() models.ProcessResult {
	return models.ProcessResult{
		TLDR: "You agree to pay monthly, with a 30-day notice required to terminate. Late payments incur a fee.",
		Sections: []models.Section{{
			Title:    "Termination",
			Original: "Either party may terminate with 30 days notice.",
			Plain:    "You or the other side can end this deal if you tell them 30 days ahead.",
		}},
		Risks: []models.RiskItem{{
			ClauseText:        "Agreement auto-renews unless cancelled 30 days before end of term.",
			WhyItMatters:      "You might be charged for another term without realizing.",
			Severity:          models.SeverityHigh,
			Deadline:          "2025-12-31",
			RecommendedAction: "Set a reminder to cancel if you don't want to continue.",
		}},
		Checklist: []string{"Ask about late fees", "Confirm auto-renewal settings"},
		QA: []models.QAItem{{
			Question: "What is the notice period?",
			Answer:   "30 days per Termination clause",
			Evidence: "See 'Termination' section.",
		}},
	}
}

// MockAnswer is the fixed reply to every question in mock mode.
func MockAnswer() models.AnswerResult {
	return models.AnswerResult{
		Answer:   "Per the Termination clause, 30 days' notice is required.",
		Evidence: "Termination section.",
	}
}
