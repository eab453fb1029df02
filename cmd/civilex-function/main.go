package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/gin-gonic/gin"

	"github.com/Lllllllleong/civilex/internal/api"
	"github.com/Lllllllleong/civilex/internal/config"
	"github.com/Lllllllleong/civilex/internal/services"
)

var (
	router  http.Handler
	once    sync.Once
	initErr error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	functions.HTTP("HandleCivilex", handleCivilex)
}

// main is required by the Go Functions Framework.
func main() {}

func handleCivilex(w http.ResponseWriter, r *http.Request) {
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
		router = api.NewRouter(cfg, stack.Mode, stack.Gateway, stack.Orchestrator)
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	router.ServeHTTP(w, r)
}
