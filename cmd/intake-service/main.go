package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/munidigital/tramite-backend/internal/intake/classifier"
	"github.com/munidigital/tramite-backend/internal/intake/events"
	"github.com/munidigital/tramite-backend/internal/intake/handler"
	"github.com/munidigital/tramite-backend/internal/intake/normalizer"
	"github.com/munidigital/tramite-backend/internal/intake/profile"
	"github.com/munidigital/tramite-backend/internal/intake/registrar"
	"github.com/munidigital/tramite-backend/internal/intake/repository"
	"github.com/munidigital/tramite-backend/internal/intake/service"
	"github.com/munidigital/tramite-backend/internal/intake/transport"
	"github.com/munidigital/tramite-backend/pkg/config"
	"github.com/munidigital/tramite-backend/pkg/httputil"
	"github.com/munidigital/tramite-backend/pkg/logger"
	"github.com/munidigital/tramite-backend/pkg/messaging"
	"github.com/munidigital/tramite-backend/pkg/rowstore"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithValidation("intake-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("intake-service", cfg.Server.Environment)
	log.Info().Msg("starting Intake Service")

	// Open the row store backend
	store, err := openRowStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.RowStore.Backend).Msg("failed to open row store")
	}

	// Connect to RabbitMQ; the service runs without it, events disabled
	var publisher *messaging.Publisher
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Warn().Err(err).Msg("RabbitMQ unavailable, case events disabled")
	} else {
		defer rmq.Close()
		publisher, err = messaging.NewPublisher(rmq, messaging.ExchangeIntakeEvents, "intake-service", log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to create event publisher, case events disabled")
			publisher = nil
		}
	}
	casePublisher := events.NewCasePublisher(publisher, log)

	// Requester profiles: directory service when configured, otherwise the
	// profiles table of the row store
	var directory profile.Directory
	if cfg.Directory.BaseURL != "" {
		directory = profile.NewHTTPDirectory(cfg.Directory.BaseURL, log)
	} else {
		directory = profile.NewRowStoreDirectory(store, cfg.RowStore.ProfilesTable)
	}
	profiles := profile.NewProvider(directory, cfg.Directory.CacheSize, cfg.Directory.CacheTTL, log)

	// Classification chain: enhanced (when configured) -> rules -> minimal
	strategies := []classifier.Strategy{}
	if cfg.Reasoning.Enabled() {
		client := classifier.NewReasoningClient(cfg.Reasoning, log)
		strategies = append(strategies, classifier.NewEnhanced(client, cfg.Intake.DefaultArea, log))
		log.Info().Str("model", cfg.Reasoning.Model).Msg("enhanced classification enabled")
	}
	strategies = append(strategies,
		classifier.NewRuleBased(cfg.Intake.DefaultArea),
		classifier.NewMinimal(cfg.Intake.DefaultArea),
	)
	chain := classifier.NewChain(log, strategies...)

	// Intake pipeline
	norm := normalizer.New(normalizer.Config{
		MaxFileSize:       cfg.Intake.MaxFileSizeBytes,
		AllowedExtensions: cfg.Intake.AllowedExtensions,
		AllowedMimeTypes:  cfg.Intake.AllowedMimeTypes,
	})
	caseRepo := repository.NewCaseRepository(store, cfg.RowStore.CasesTable, log)
	caseRegistrar := registrar.New(caseRepo, log)
	messenger := transport.NewLogMessenger(log)
	pipeline := service.NewPipeline(profiles, norm, chain, caseRegistrar, casePublisher, messenger, cfg.Intake.NoticeDelay, log)
	caseDirectory := service.NewDirectoryService(caseRepo, casePublisher, log)

	// Handlers
	submissionHandler := handler.NewSubmissionHandler(pipeline, cfg.Intake.MaxFileSizeBytes, log)
	caseHandler := handler.NewCaseHandler(caseDirectory, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		health := map[string]interface{}{
			"status":  "healthy",
			"service": "intake-service",
			"store":   cfg.RowStore.Backend,
		}
		if rmq != nil {
			health["rabbitmq"] = rmq.Health()
		}
		httputil.JSON(w, http.StatusOK, health)
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	handler.Routes(r, submissionHandler, caseHandler)

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	log.Info().Msg("server stopped")
}

// openRowStore builds the configured row-store backend.
func openRowStore(cfg *config.Config) (rowstore.Store, error) {
	switch cfg.RowStore.Backend {
	case "memory":
		return rowstore.NewMemoryStore(), nil
	case "excel":
		return rowstore.NewExcelStore(cfg.RowStore.ExcelPath, cfg.RowStore.CasesTable, cfg.RowStore.ProfilesTable)
	case "postgres":
		return rowstore.NewPostgresStore(cfg.RowStore.PostgresURL)
	default:
		return nil, fmt.Errorf("unknown row store backend: %s", cfg.RowStore.Backend)
	}
}
