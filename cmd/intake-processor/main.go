package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/Lllllllleong/civilex/internal/config"
	"github.com/Lllllllleong/civilex/internal/services"
)

var (
	intake  *services.Intake
	once    sync.Once
	initErr error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.CloudEvent("ProcessUpload", processUpload)
}

// main is required by the Go Functions Framework.
func main() {}

func processUpload(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		var cfg config.Config
		cfg, initErr = config.Load()
		if initErr != nil {
			return
		}
		var stack *services.Stack
		stack, initErr = services.Build(context.Background(), cfg)
		if initErr != nil {
			return
		}
		intake = stack.Intake
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent services.GCSEvent
	if err := e.DataAs(&gcsEvent); err != nil {
		slog.Error("Failed to decode event data", "error", err, "eventId", e.ID(), "data", string(e.Data()))
		return fmt.Errorf("event.DataAs: %w", err)
	}

	// Returning the error marks the invocation as failed.
	return intake.Process(ctx, gcsEvent)
}
