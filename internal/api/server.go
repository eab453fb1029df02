package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Lllllllleong/civilex/internal/config"
	"github.com/Lllllllleong/civilex/internal/services"
)

const shutdownTimeout = 10 * time.Second

// NewRouter builds the gin engine serving every route.
func NewRouter(cfg config.Config, mode services.Mode, gateway UploadGateway, pipeline Pipeline) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger())
	engine.Use(MaxBodySize(cfg.MaxBodyBytes))
	engine.Use(CORS())

	registerRoutes(engine, NewAPI(mode, gateway, pipeline))
	return engine
}

type Server struct {
	httpServer *http.Server
}

// NewServer wraps the router from a built service stack in an http.Server.
func NewServer(cfg config.Config, stack *services.Stack) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := NewRouter(cfg, stack.Mode, stack.Gateway, stack.Orchestrator)
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.Port),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening.", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down HTTP server.")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
