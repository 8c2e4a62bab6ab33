// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rsinha/backfolio/internal/api/handler"
	"github.com/rsinha/backfolio/internal/api/job"
	"github.com/rsinha/backfolio/internal/api/middleware"
	"github.com/rsinha/backfolio/internal/archive"
	"github.com/rsinha/backfolio/internal/metrics"
)

// Server is the backfolio HTTP server.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	jobs       *job.Store
	done       chan struct{}
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	APIKey      string
	MaxJobs     int
	JobTTL      time.Duration
	MetricsPath string
}

// NewServer creates a new HTTP server with all routes wired.
func NewServer(
	cfg Config,
	runner handler.Runner,
	artifact archive.Store,
	registry *metrics.Registry,
	logger *zap.Logger,
) *Server {
	jobs := job.NewStore(cfg.MaxJobs, cfg.JobTTL)

	backtests := handler.NewBacktestHandler(runner, jobs, artifact, registry, logger)
	downloads := handler.NewDownloadHandler(artifact, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", handleHealth)
	if cfg.MetricsPath != "" {
		mux.Handle("GET "+cfg.MetricsPath, registry.Handler())
	}

	mux.HandleFunc("POST /backtest", backtests.Run)
	mux.HandleFunc("GET /download/csv", downloads.CSV)
	mux.HandleFunc("GET /download/excel", downloads.Excel)

	// Job-based API, behind the API key when one is configured.
	auth := middleware.APIKeyAuth(cfg.APIKey)
	mux.Handle("POST /api/backtest", auth(http.HandlerFunc(backtests.Create)))
	mux.Handle("GET /api/backtest/{id}", auth(http.HandlerFunc(backtests.GetStatus)))

	var root http.Handler = mux
	root = middleware.CORS()(root)
	root = metrics.HTTPMiddleware(registry)(root)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      root,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 6 * time.Minute, // synchronous backtests can be slow
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		jobs:   jobs,
		done:   make(chan struct{}),
	}
}

// Start starts the HTTP server and the job janitor. It blocks until the
// server stops.
func (s *Server) Start() error {
	go s.cleanupLoop()

	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	close(s.done)
	return s.httpServer.Shutdown(ctx)
}

// cleanupLoop periodically evicts expired jobs.
func (s *Server) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if removed := s.jobs.Cleanup(); removed > 0 {
				s.logger.Debug("evicted expired jobs", zap.Int("count", removed))
			}
		}
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
