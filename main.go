package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"loan-predictor/config"
	httpLayer "loan-predictor/http"
	"loan-predictor/logging"
	"loan-predictor/metrics"
	"loan-predictor/ml"
	"loan-predictor/repository"
	"loan-predictor/service"
)

func main() {
	if err := run(); err != nil {
		log.Printf("loan-predictor: %v", err)
		os.Exit(1)
	}
}

// run wires the service and blocks until shutdown.
func run() error {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Env:        cfg.Env,
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checks := map[string]httpLayer.Check{}

	registry := ml.NewRegistry(nil)
	if cfg.Model.Type == ml.TypeRemote {
		registry.Set(ml.NewRemoteClassifier(ml.RemoteConfig{
			URL:          cfg.Model.URL,
			Timeout:      cfg.Model.Timeout,
			MaxRetries:   cfg.Model.MaxRetries,
			BreakerFails: cfg.Model.BreakerFails,
			BreakerOpen:  cfg.Model.BreakerOpen,
		}))
	} else {
		model, err := ml.LoadModel(cfg.Model.Type, cfg.Model.Path)
		if err != nil {
			logger.Warn("model not loaded, predictions disabled until it is",
				zap.String("type", cfg.Model.Type),
				zap.String("path", cfg.Model.Path),
				zap.Error(err),
			)
		} else {
			registry.Set(model)
			logger.Info("model loaded", zap.String("type", cfg.Model.Type), zap.String("path", cfg.Model.Path))
		}

		if cfg.Model.Watch {
			watcher, err := ml.NewWatcher(registry, cfg.Model.Type, cfg.Model.Path, logger)
			if err != nil {
				logger.Warn("model watcher disabled", zap.Error(err))
			} else {
				go watcher.Run(ctx)
			}
		}
	}
	checks["model"] = func(context.Context) error {
		if !registry.Loaded() {
			return ml.ErrModelNotLoaded
		}
		return nil
	}

	var cache repository.CacheRepository
	switch cfg.Cache.Backend {
	case "redis":
		redisCache := repository.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.TTL)
		defer redisCache.Close()
		cache = redisCache
		checks["cache"] = redisCache.Ping
	case "lru":
		lruCache, err := repository.NewLRUCache(cfg.Cache.Size)
		if err != nil {
			logger.Warn("lru cache disabled", zap.Error(err))
		} else {
			cache = lruCache
		}
	}

	var predictionRepo repository.PredictionRepository
	store, err := repository.NewPredictionStore(cfg.Database.Path)
	if err != nil {
		logger.Warn("prediction history kept in memory",
			zap.String("path", cfg.Database.Path),
			zap.Error(err),
		)
		predictionRepo = repository.NewPredictionRepositoryMemory()
	} else {
		defer store.Close()
		predictionRepo = store
		checks["database"] = store.Ping
	}

	var validator *service.ApplicantValidator
	if cfg.Validation.Strict {
		validator = service.NewApplicantValidator()
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	predictionService := service.NewPredictionService(service.PredictionOptions{
		Classifier: registry,
		Repository: predictionRepo,
		Cache:      cache,
		Validator:  validator,
		Advisor: service.NewAdvisor(service.AdvisorConfig{
			APIKey:  cfg.Advisor.APIKey,
			APIURL:  cfg.Advisor.APIURL,
			Model:   cfg.Advisor.Model,
			Timeout: cfg.Advisor.Timeout,
		}, logger),
		Metrics:      metrics.New(promRegistry),
		Logger:       logger,
		InterestRate: cfg.Loan.InterestRate,
	})

	rateLimiter := httpLayer.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateWindow)
	defer rateLimiter.Stop()

	server := httpLayer.NewServer(httpLayer.ServerConfig{
		Addr:         cfg.Addr(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}, httpLayer.Dependencies{
		Predictions: predictionService,
		Assets: httpLayer.Assets{
			Dir:         cfg.Assets.Dir,
			Dataset:     cfg.Assets.Dataset,
			Image:       cfg.Assets.Image,
			SuccessGif:  cfg.Assets.SuccessGif,
			FailureGif:  cfg.Assets.FailureGif,
			PreviewRows: cfg.Assets.PreviewRows,
			ChartRows:   cfg.Assets.ChartRows,
		},
		Checks:      checks,
		RateLimiter: rateLimiter,
		Metrics:     promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}),
		Logger:      logger,
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Error("server stopped", zap.Error(err))
		return err
	case <-quit:
		logger.Info("shutting down server")
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("shutdown", zap.Error(err))
	}

	logger.Info("server exited")
	return nil
}
