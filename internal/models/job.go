package models

import "time"

// Job is the Firestore record tracking one run of the processing pipeline.
type Job struct {
	Filename     string    `firestore:"filename,omitempty"`
	Status       string    `firestore:"status,omitempty"`
	ErrorDetails string    `firestore:"errorDetails,omitempty"`
	TextLength   int       `firestore:"textLength,omitempty"`
	PageCount    int       `firestore:"pageCount,omitempty"`
	Source       string    `firestore:"source,omitempty"` // "api" or "intake"
	CreatedAt    time.Time `firestore:"createdAt,omitempty"`
	UpdatedAt    time.Time `firestore:"updatedAt,omitempty"`
}
