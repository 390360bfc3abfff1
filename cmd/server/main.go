package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/willcldrr/exoticweeklywebiste/internal/api"
	"github.com/willcldrr/exoticweeklywebiste/internal/config"
	"github.com/willcldrr/exoticweeklywebiste/internal/events"
	"github.com/willcldrr/exoticweeklywebiste/internal/service"
	"github.com/willcldrr/exoticweeklywebiste/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(config.LogConfig{Level: "info"})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(cfg.Log)
	log.Info().Msg("Starting Exotics Weekly stories server...")

	if cfg.Log.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	setup, err := openStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open story store")
	}
	closers := setup.closers

	opts := service.StoryOptions{
		Remote:       setup.remote,
		DefaultLimit: cfg.API.DefaultLimit,
		Log:          log,
	}

	// Optional change events
	if cfg.Events.URL != "" {
		publisher, err := events.NewRabbitMQ(events.Config{
			URL:        cfg.Events.URL,
			Exchange:   cfg.Events.Exchange,
			RoutingKey: cfg.Events.RoutingKey,
			QueueName:  cfg.Events.Queue,
		}, log)
		if err != nil {
			log.Error().Err(err).Msg("Story events disabled, broker unavailable")
		} else {
			opts.Publisher = publisher
			closers = append(closers, publisher)
		}
	}

	// Initialize services and load the first snapshot
	services := service.NewServices(setup.store, opts)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.API.RequestTimeout)
	if err := services.Stories.Refresh(loadCtx); err != nil {
		log.Warn().Err(err).Msg("Initial load failed, serving bundled stories")
	}
	cancelLoad()

	status := services.Stories.Status()
	log.Info().
		Str("source", status.Source).
		Int("stories", status.Count).
		Msg("Stories loaded")

	// Initialize router
	router := api.NewRouter(services, cfg, setup.pinger, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	closeAll(closers, log)

	log.Info().Msg("Server exited gracefully")
}

// closeAll releases resources in reverse order of acquisition
func closeAll(closers []io.Closer, log zerolog.Logger) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			log.Warn().Err(err).Msg("Close failed")
		}
	}
}
