package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/ambientanki/ambientd/internal/anki"
	"github.com/ambientanki/ambientd/internal/capture"
	"github.com/ambientanki/ambientd/internal/config"
	"github.com/ambientanki/ambientd/internal/extract"
	"github.com/ambientanki/ambientd/internal/handlers"
	"github.com/ambientanki/ambientd/internal/logger"
	"github.com/ambientanki/ambientd/internal/middleware"
	"github.com/ambientanki/ambientd/internal/monitor"
	"github.com/ambientanki/ambientd/internal/queue"
	"github.com/ambientanki/ambientd/internal/services/ai"
	"github.com/ambientanki/ambientd/internal/store"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.DebugMode || *debugFlag

	zapLogger, err := logger.New(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_daemon",
		zap.Bool("debug_mode", debugMode),
		zap.String("listen_addr", cfg.ListenAddr()),
		zap.String("data_dir", cfg.DataDir),
		zap.String("anki_url", cfg.AnkiConnectURL),
	)

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		zapLogger.Fatal("failed_to_open_store", zap.Error(err))
	}
	defer func() {
		if err := st.Close(); err != nil {
			zapLogger.Warn("failed_to_close_store", zap.Error(err))
		}
	}()
	zapLogger.Info("store_opened")

	// Core services.
	extractor := extract.New(zapLogger)
	aiClient := ai.NewClient(st, zapLogger, debugMode)
	ankiClient := anki.NewClient(cfg.AnkiConnectURL, zapLogger)
	captureService := capture.NewService(extractor, aiClient, ankiClient, st, zapLogger)

	// Auto-capture machinery: dwell monitor feeding the rate-limited
	// capture queue.
	tabMonitor := monitor.New()
	captureQueue := queue.New(queue.Options{})
	autoCapturer := capture.NewAutoCapturer(captureService, st, tabMonitor, captureQueue, zapLogger)
	defer func() {
		tabMonitor.StopAll()
		captureQueue.Close()
	}()

	// Handlers.
	captureHandler := handlers.NewCaptureHandler(captureService, zapLogger)
	extractHandler := handlers.NewExtractHandler(extractor, zapLogger)
	settingsHandler := handlers.NewSettingsHandler(st, aiClient.ProviderModels(), zapLogger)
	ankiHandler := handlers.NewAnkiHandler(ankiClient, zapLogger)
	historyHandler := handlers.NewHistoryHandler(st, zapLogger)
	tabsHandler := handlers.NewTabsHandler(autoCapturer, zapLogger)
	healthChecker := handlers.NewHealthChecker(st, ankiClient)

	rateLimitMW, err := middleware.RateLimit(cfg.RateLimit)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	r := mux.NewRouter()
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")

	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(rateLimitMW)

	captureHandler.RegisterRoutes(apiRouter.PathPrefix("/capture").Subrouter())
	extractHandler.RegisterRoutes(apiRouter.PathPrefix("/extract").Subrouter())
	settingsHandler.RegisterRoutes(apiRouter.PathPrefix("/settings").Subrouter())
	ankiHandler.RegisterRoutes(apiRouter.PathPrefix("/anki").Subrouter())
	historyHandler.RegisterRoutes(apiRouter.PathPrefix("/history").Subrouter())
	tabsHandler.RegisterRoutes(apiRouter.PathPrefix("/tabs").Subrouter())

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})

	srv := &http.Server{
		Addr:           cfg.ListenAddr(),
		Handler:        corsHandler.Handler(r),
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   150 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("daemon_listening", zap.String("addr", cfg.ListenAddr()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("daemon_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("daemon_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("daemon_shutdown_failed", zap.Error(err))
	}

	zapLogger.Info("daemon_stopped")
}
