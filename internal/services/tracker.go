package services

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/Lllllllleong/civilex/internal/models"
)

// JobUpdate carries the fields that change alongside a state transition.
// Zero values are not written.
type JobUpdate struct {
	ErrorDetails string
	TextLength   int
}

// JobTracker records the progress of process runs.
type JobTracker interface {
	// Start creates a record for a new run and returns its ID.
	Start(ctx context.Context, in ProcessInput) (string, error)
	// Transition records that jobID entered state.
	Transition(ctx context.Context, jobID string, state State, update JobUpdate) error
}

// NopTracker discards every record.
type NopTracker struct{}

func (NopTracker) Start(context.Context, ProcessInput) (string, error) { return "", nil }

func (NopTracker) Transition(context.Context, string, State, JobUpdate) error { return nil }

// FirestoreTracker stores one document per run in a Firestore collection.
type FirestoreTracker struct {
	client     *firestore.Client
	collection string
	now        func() time.Time
}

func NewFirestoreTracker(client *firestore.Client, collection string) *FirestoreTracker {
	return &FirestoreTracker{client: client, collection: collection, now: time.Now}
}

func (t *FirestoreTracker) Start(ctx context.Context, in ProcessInput) (string, error) {
	now := t.now()
	job := models.Job{
		Filename:  in.Filename,
		Status:    string(StateReceived),
		PageCount: in.PageCount,
		Source:    in.Source,
		CreatedAt: now,
		UpdatedAt: now,
	}
	docRef, _, err := t.client.Collection(t.collection).Add(ctx, job)
	if err != nil {
		return "", fmt.Errorf("failed to create job document: %w", err)
	}
	return docRef.ID, nil
}

func (t *FirestoreTracker) Transition(ctx context.Context, jobID string, state State, update JobUpdate) error {
	if jobID == "" {
		return nil
	}
	updates := []firestore.Update{
		{Path: "status", Value: string(state)},
		{Path: "updatedAt", Value: t.now()},
	}
	if update.ErrorDetails != "" {
		updates = append(updates, firestore.Update{Path: "errorDetails", Value: update.ErrorDetails})
	}
	if update.TextLength > 0 {
		updates = append(updates, firestore.Update{Path: "textLength", Value: update.TextLength})
	}
	if _, err := t.client.Collection(t.collection).Doc(jobID).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update job %s to %s: %w", jobID, state, err)
	}
	return nil
}

func (t *FirestoreTracker) Close() error {
	return t.client.Close()
}
