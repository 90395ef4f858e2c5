package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidhub/internal/core/ports"
	"vidhub/internal/core/services"
	httphandlers "vidhub/internal/handlers/http"
	"vidhub/internal/infrastructure/media"
	"vidhub/internal/infrastructure/middleware"
	"vidhub/internal/infrastructure/monitoring"
	"vidhub/internal/infrastructure/repositories"
	"vidhub/pkg/circuitbreaker"
	"vidhub/pkg/config"
	"vidhub/pkg/logger"
	"vidhub/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var configPaths = []string{
	"configs/config.yaml",
	"./config.yaml",
}

// resolveConfigPath picks VIDHUB_CONFIG or the first existing default path.
// An empty result makes config.Load fall back to defaults.
func resolveConfigPath() string {
	if p := os.Getenv("VIDHUB_CONFIG"); p != "" {
		return p
	}
	for _, p := range configPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func main() {
	startTime := time.Now()

	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := zapLogger.Sugar()
	contextLogger := logger.NewContextLogger(zapLogger)

	tracingCfg := tracing.DefaultConfig()
	tracingCfg.Enabled = cfg.Tracing.Enabled
	tracingCfg.JaegerURL = cfg.Tracing.JaegerURL
	tracingCfg.Environment = cfg.Tracing.Environment
	tracingCfg.SampleRate = cfg.Tracing.SampleRate
	tp, err := tracing.Init(tracingCfg)
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// Storage
	repoFactory, err := repositories.NewRepositoryFactory(cfg, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err, "driver", cfg.Storage.Driver)
	}
	defer repoFactory.Close()

	userRepo := repoFactory.CreateUserRepository()
	videoRepo := repoFactory.CreateVideoRepository()
	commentRepo := repoFactory.CreateCommentRepository()

	// Monitoring
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := monitoring.NewPrometheusCollector(registry)

	// Media
	mediaStore, err := media.NewMediaStore(rootCtx, cfg, log)
	if err != nil {
		log.Fatalw("failed to create media store", "error", err, "driver", cfg.Media.Driver)
	}
	collector.SetMediaBreakerState(mediaStore.Backend(), int(mediaStore.BreakerState()))
	mediaStore.OnBreakerChange(func(backend string, to circuitbreaker.State) {
		collector.SetMediaBreakerState(backend, int(to))
		log.Warnw("media circuit breaker changed state", "backend", backend, "state", to.String())
	})

	healthChecker := monitoring.NewHealthChecker()
	healthChecker.AddDependencyCheck("storage", repoFactory, 30*time.Second, 2*time.Second)
	healthChecker.AddDependencyCheck("media", mediaStore, 30*time.Second, 2*time.Second)
	healthChecker.StartBackgroundChecks(rootCtx, func(name string, err error) {
		log.Warnw("dependency check failed", "dependency", name, "error", err)
	})

	// Services
	var metrics ports.MetricsRecorder = collector
	authService := services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.BcryptCost)
	userService := services.NewUserService(userRepo, mediaStore, authService, metrics, log)
	videoService := services.NewVideoService(videoRepo, commentRepo, mediaStore, cfg.Videos.DeletePolicy, metrics, log)
	engagementService := services.NewEngagementService(videoRepo, metrics, log)
	commentService := services.NewCommentService(commentRepo, videoRepo, userRepo, metrics, log)

	// HTTP
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.MaxMultipartMemory = 8 << 20

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.LoggingMiddleware(contextLogger))
	router.Use(middleware.MetricsMiddleware(collector))
	router.Use(middleware.ErrorHandlerMiddleware(log))
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))

	requireAuth := middleware.AuthMiddleware(authService, userService)
	registrars := []ports.RouteRegistrar{
		httphandlers.NewUserHandler(userService, cfg.Server.MaxUploadBytes),
		httphandlers.NewVideoHandler(videoService, engagementService, cfg.Server.MaxUploadBytes),
		httphandlers.NewCommentHandler(commentService),
	}
	for _, r := range registrars {
		r.SetupRoutes(router, requireAuth)
	}

	if local, ok := media.LocalDir(cfg); ok {
		router.Static("/media", local)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"uptime":    time.Since(startTime).String(),
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		status := healthChecker.GetReadinessStatus(c.Request.Context())
		code := http.StatusOK
		if status.Status != monitoring.StatusHealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})

	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
		log.Info("Prometheus metrics enabled")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infow("Starting vidhub server",
			"address", cfg.Server.Address,
			"storage", repoFactory.Driver(),
			"media", mediaStore.Backend(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Errorw("Server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("Received shutdown signal", "signal", sig)
	}

	log.Info("Shutting down vidhub server...")
	stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error during server shutdown", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("Error force closing server", "error", closeErr)
		}
	} else {
		log.Info("Server shutdown gracefully")
	}

	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error flushing traces", "error", err)
	}

	log.Info("vidhub server stopped")
}
