// Package server wires the UCC HTTP/WS API: the endpoint registry, the
// job orchestrator and its backing stores, the progress bus, and the
// config manager, all reachable from request handlers via svcctx.
//
// Grounded on the teacher's Server (lifecycle, withLogging/withServices
// middleware, statusWriter, requireInit) with the DefraDB container
// lifecycle and provider registry replaced by store/orchestrator/
// progressbus construction, since UCC has no embedded database
// container to manage.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jordigilh/uccompare/internal/api"
	"github.com/jordigilh/uccompare/internal/config"
	"github.com/jordigilh/uccompare/internal/embed"
	"github.com/jordigilh/uccompare/internal/metrics"
	"github.com/jordigilh/uccompare/internal/orchestrator"
	"github.com/jordigilh/uccompare/internal/progressbus"
	"github.com/jordigilh/uccompare/internal/server/endpoints"
	"github.com/jordigilh/uccompare/internal/store"
	"github.com/jordigilh/uccompare/internal/svcctx"
)

// Server is the uccompare HTTP/WS server. It owns the job store, the
// orchestrator, the progress bus, and the HTTP listener.
type Server struct {
	httpServer *http.Server

	jobs     store.JobStore
	segments store.SegmentStore
	closer   io_closer // non-nil only for the Postgres backend

	orchestrator *orchestrator.Orchestrator
	bus          *progressbus.Bus
	metrics      *metrics.Recorder
	configMgr    *config.Manager
	logger       *slog.Logger

	jobTTL        time.Duration
	sweepInterval time.Duration

	services *svcctx.Services

	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// io_closer is the subset of io.Closer the Postgres store satisfies;
// named distinctly from io.Closer so Close() on a nil interface value is
// never accidentally invoked through an embedded stdlib type.
type io_closer interface {
	Close() error
}

// Config holds server configuration.
type Config struct {
	// ConfigManager provides configuration with hot-reload support.
	ConfigManager *config.Manager
	// Logger is the structured logger to use.
	Logger *slog.Logger
	// SwaggerSpecPath overrides the default swagger.json location.
	SwaggerSpecPath string
	// SweepInterval overrides the retention sweeper's tick period.
	// Zero uses defaultSweepInterval.
	SweepInterval time.Duration
}

// defaultSweepInterval is how often the retention sweeper checks for
// terminal jobs past their TTL (§4.9). Independent of JobTTL itself, which
// can be hours; a short, fixed poll period keeps purge latency bounded
// without needing a per-job timer.
const defaultSweepInterval = 5 * time.Minute

// New creates a new Server, wiring its job store, orchestrator, progress
// bus, and HTTP routes from cfg.ConfigManager's current snapshot.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ConfigManager == nil {
		mgr, err := config.NewManager("")
		if err != nil {
			return nil, fmt.Errorf("failed to create default config manager: %w", err)
		}
		cfg.ConfigManager = mgr
	}

	appCfg := cfg.ConfigManager.Get()

	jobs, segments, closer, err := newStore(context.Background(), appCfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	bus := progressbus.New()
	rec := metrics.NewRecorder()
	orch := orchestrator.New(orchestratorConfigFrom(appCfg), jobs, segments, bus, rec, cfg.Logger)

	sweepInterval := cfg.SweepInterval
	if sweepInterval <= 0 {
		sweepInterval = defaultSweepInterval
	}

	s := &Server{
		jobs:          jobs,
		segments:      segments,
		closer:        closer,
		orchestrator:  orch,
		bus:           bus,
		metrics:       rec,
		configMgr:     cfg.ConfigManager,
		logger:        cfg.Logger,
		jobTTL:        appCfg.Orchestrator.JobTTL,
		sweepInterval: sweepInterval,
	}

	s.services = &svcctx.Services{
		Orchestrator: orch,
		Jobs:         jobs,
		Segments:     segments,
		Bus:          bus,
		ConfigMgr:    cfg.ConfigManager,
		Metrics:      rec,
		Logger:       cfg.Logger,
	}

	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Config{SwaggerSpecPath: cfg.SwaggerSpecPath}) {
		s.endpointRegistry.Register(ep)
	}

	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)
	mux.Handle("GET /metrics", promhttp.HandlerFor(rec.Registry(), promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:         appCfg.Server.Addr,
		Handler:      s.withLogging(s.withServices(mux)),
		ReadTimeout:  appCfg.Server.ReadTimeout,
		WriteTimeout: appCfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// newStore constructs the JobStore/SegmentStore pair for the configured
// backend. The memory backend never returns a closer.
func newStore(ctx context.Context, cfg config.StorageConfig) (store.JobStore, store.SegmentStore, io_closer, error) {
	switch cfg.Backend {
	case "", "memory":
		jobs, segments := store.NewMemoryStore()
		return jobs, segments, nil, nil
	case "postgres":
		pg, err := store.NewPostgresStore(ctx, store.Config{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPass,
			Database: cfg.DBName,
			SSLMode:  cfg.SSLMode,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return pg.Jobs(), pg.Segments(), pg, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// orchestratorConfigFrom maps config.OrchestratorConfig/EmbedderConfig
// onto orchestrator.Config (§5 tunables).
func orchestratorConfigFrom(appCfg *config.Config) orchestrator.Config {
	oc := appCfg.Orchestrator
	ec := appCfg.Embedder
	return orchestrator.Config{
		MaxRetries:             oc.MaxRetries,
		SegmentSoftTimeout:     oc.SegmentSoftTimeout,
		JobHardTimeout:         oc.JobHardTimeout,
		WorkerConcurrency:      oc.WorkerConcurrency,
		SimilarityThreshold:    oc.SimilarityThreshold,
		MaxCandidatesPerClause: oc.MaxCandidatesPerClause,
		Backend:                embedderBackendFrom(ec.Backend),
		RemoteEmbedder: embed.RemoteConfig{
			APIKey:     appCfg.GetAPIKey(),
			BaseURL:    ec.Remote.BaseURL,
			Model:      ec.Remote.Model,
			MaxRetries: ec.Remote.MaxRetries,
		},
	}
}

// embedderBackendFrom maps the config wire string onto embed.Backend,
// defaulting to BackendAuto for an empty or unrecognized value.
func embedderBackendFrom(s string) embed.Backend {
	switch s {
	case "local":
		return embed.BackendLocal
	case "remote":
		return embed.BackendRemote
	default:
		return embed.BackendAuto
	}
}

// Start runs the HTTP server until ctx is cancelled or a listener error
// occurs, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	go s.runRetentionSweeper(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			_ = s.shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// runRetentionSweeper periodically purges terminal jobs (and their
// results/segment artifacts) past the configured TTL (§4.9), until ctx is
// cancelled. Mirrors the teacher's fire-and-forget `go s.scheduler.Start(ctx)`
// background-goroutine shape.
func (s *Server) runRetentionSweeper(ctx context.Context) {
	if s.jobTTL <= 0 {
		return
	}

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.jobs.Purge(ctx, time.Now().Add(-s.jobTTL))
			if err != nil {
				s.logger.Error("retention sweep failed", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Info("retention sweep purged jobs", "count", n)
			}
		}
	}
}

func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}
	if s.closer != nil {
		if err := s.closer.Close(); err != nil {
			s.logger.Error("storage close error", "error", err)
		}
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

// Orchestrator returns the job orchestrator.
func (s *Server) Orchestrator() *orchestrator.Orchestrator {
	return s.orchestrator
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

// withLogging wraps a handler to log requests.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.logger.Info("request started", "method", r.Method, "path", r.URL.Path)

		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		s.logger.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration", time.Since(start).String(),
		)
	})
}

// statusWriter wraps http.ResponseWriter to capture status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable if the orchestrator or its store aren't
// ready.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.orchestrator == nil || s.jobs == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
