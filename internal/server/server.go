// Package server assembles the PageLens HTTP service: cache, pipeline,
// chapter job manager, and the endpoint registry.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/mizutori/pagelens/internal/api"
	"github.com/mizutori/pagelens/internal/cache"
	"github.com/mizutori/pagelens/internal/config"
	"github.com/mizutori/pagelens/internal/detect"
	"github.com/mizutori/pagelens/internal/imaging"
	"github.com/mizutori/pagelens/internal/jobs"
	"github.com/mizutori/pagelens/internal/metrics"
	"github.com/mizutori/pagelens/internal/pipeline"
	"github.com/mizutori/pagelens/internal/server/endpoints"
	"github.com/mizutori/pagelens/internal/svcctx"
)

// Server is the main PageLens HTTP server.
type Server struct {
	httpServer *http.Server
	store      *cache.Store
	jobManager *jobs.Manager
	processor  *pipeline.Processor
	counters   *metrics.Counters
	configMgr  *config.Manager
	logger     *slog.Logger

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port string
	// CacheDir is the directory holding ocr-cache.json
	CacheDir string
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Detector overrides the configured HTTP detector (used in tests)
	Detector detect.Detector
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration. The cache is
// loaded from disk immediately; a missing or corrupt cache file starts
// empty.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	appCfg := config.DefaultConfig()
	if cfg.ConfigManager != nil {
		appCfg = *cfg.ConfigManager.Get()
	}

	detector := cfg.Detector
	if detector == nil {
		var err error
		detector, err = detect.NewHTTPDetector(detect.HTTPConfig{
			Endpoint: appCfg.Detector.Endpoint,
			Timeout:  time.Duration(appCfg.Detector.TimeoutSeconds) * time.Second,
			Proxy:    appCfg.Detector.Proxy,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create detector: %w", err)
		}
	}

	fetcher := imaging.NewFetcher(time.Duration(appCfg.Pipeline.FetchTimeoutSeconds) * time.Second)

	// Merge calibration reads through the config manager so hot reload
	// applies between pages.
	var mergeFn pipeline.MergeConfigFunc
	if cfg.ConfigManager != nil {
		mergeFn = cfg.ConfigManager.MergeConfig
	}

	processor := pipeline.New(fetcher, detector, mergeFn, pipeline.Config{
		Language:    appCfg.Detector.Language,
		MaxAttempts: appCfg.Pipeline.MaxAttempts,
		RetryDelay:  time.Duration(appCfg.Pipeline.RetryDelaySeconds) * time.Second,
		Logger:      cfg.Logger,
	})

	store := cache.New(cfg.CacheDir, cfg.Logger)
	counters := &metrics.Counters{}

	jobManager := jobs.NewManager(jobs.ManagerConfig{
		Cache:           store,
		Processor:       processor,
		Counters:        counters,
		Logger:          cfg.Logger,
		PageConcurrency: appCfg.Jobs.PageConcurrency,
		SaveEvery:       appCfg.Jobs.SaveEvery,
	})

	s := &Server{
		store:      store,
		jobManager: jobManager,
		processor:  processor,
		counters:   counters,
		configMgr:  cfg.ConfigManager,
		logger:     cfg.Logger,
	}

	s.services = &svcctx.Services{
		Cache:     store,
		Jobs:      jobManager,
		Pipeline:  processor,
		Counters:  counters,
		ConfigMgr: cfg.ConfigManager,
		Logger:    cfg.Logger,
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withServices(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // uncached /ocr calls block on the pipeline
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start starts the server. It blocks until the context is cancelled or an
// error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if s.configMgr != nil {
		s.configMgr.WatchConfig()
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.setNotRunning()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown and a final cache save.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	if err := s.store.Save(); err != nil {
		s.logger.Error("cache save on shutdown failed", "error", err)
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the server's root HTTP handler (used by tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Cache returns the cache store.
func (s *Server) Cache() *cache.Store {
	return s.store
}

// JobManager returns the chapter job manager.
func (s *Server) JobManager() *jobs.Manager {
	return s.jobManager
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.services != nil {
			ctx = svcctx.WithServices(ctx, s.services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.store == nil || s.jobManager == nil || s.processor == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
