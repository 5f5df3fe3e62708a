package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"loan-predictor/service"
)

type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Dependencies are the collaborators the routes need. RateLimiter and Metrics
// are optional.
type Dependencies struct {
	Predictions *service.PredictionService
	Assets      Assets
	Checks      map[string]Check
	RateLimiter *RateLimiter
	Metrics     http.Handler
	Logger      *zap.Logger
}

type Server struct {
	server *http.Server
	logger *zap.Logger
}

// NewRouter registers every route on a fresh mux.
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pages := NewPageHandler(deps.Predictions, deps.Assets, logger)
	api := NewPredictionHandler(deps.Predictions, logger)
	health := NewHealthHandler(deps.Checks)

	limited := func(h http.HandlerFunc) http.Handler {
		if deps.RateLimiter == nil {
			return h
		}
		return RateLimitMiddleware(deps.RateLimiter, h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", pages.Home)
	mux.Handle("/predict", limited(pages.Predict))
	mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServer(http.Dir(deps.Assets.Dir))))

	mux.Handle("/api/predict", limited(api.Predict))
	mux.HandleFunc("/api/encode", api.Encode)
	mux.HandleFunc("/api/predictions", api.History)

	mux.HandleFunc("/healthz", health.Health)
	mux.HandleFunc("/readyz", health.Ready)
	if deps.Metrics != nil {
		mux.Handle("/metrics", deps.Metrics)
	}

	chain := Chain(
		RecoveryMiddleware(logger),
		LoggerMiddleware(logger),
	)
	return chain(mux)
}

func NewServer(cfg ServerConfig, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		server: &http.Server{
			Addr:         cfg.Addr,
			Handler:      NewRouter(deps),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Start blocks until the server stops. It returns nil after Shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
