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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sebastiankruger/exercise-simulator/internal/api"
	"github.com/sebastiankruger/exercise-simulator/internal/catalog"
	"github.com/sebastiankruger/exercise-simulator/internal/config"
	"github.com/sebastiankruger/exercise-simulator/internal/engine"
	"github.com/sebastiankruger/exercise-simulator/internal/health"
	"github.com/sebastiankruger/exercise-simulator/internal/runner"
	"github.com/sebastiankruger/exercise-simulator/internal/webhook"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
		}
	}()

	log.Info().Msg("Starting Exercise Simulator")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("name", cfg.SimulatorName).
		Int("opcua_port", cfg.OPCUAPort).
		Bool("opcua_enabled", cfg.OPCUAEnabled).
		Int("http_port", cfg.HTTPPort).
		Dur("tick_interval", cfg.TickInterval).
		Float64("playback_speed", cfg.PlaybackSpeed).
		Str("exercise", cfg.Exercise).
		Msg("Configuration loaded")

	cat, err := loadCatalog(cfg.CatalogFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load exercise catalog")
	}
	log.Info().Int("exercises", cat.Len()).Str("file", cfg.CatalogFile).Msg("Exercise catalog loaded")

	tunables, err := config.LoadTunables(cfg.TunablesFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load tunables")
	}

	if _, ok := catalog.ParseExerciseType(cfg.Exercise); !ok {
		log.Warn().Str("exercise", cfg.Exercise).Msg("Unknown exercise type, falling back to squat")
	}

	// Setup context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session, err := runner.NewSessionRunner(*cfg, cat, tunables, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create session runner")
	}

	hook := webhook.NewClient(cfg)
	if hook != nil {
		session.OnRep(func(ev engine.RepEvent) {
			go hook.SendRep(ctx, ev)
		})
		log.Info().Str("endpoint", cfg.WebhookEndpoint).Msg("Forwarding rep events to webhook")
	}

	healthHandler := health.NewHandler(cfg.OPCUAEnabled)
	healthHandler.AddCheck("session", func() error {
		if session.Stopped() {
			return errors.New("stopped")
		}
		return nil
	})

	if cfg.OPCUAEnabled {
		if err := session.SetupOPCUA(cfg.OPCUAPort, cfg.SimulatorName); err != nil {
			log.Fatal().Err(err).Msg("Failed to setup OPC UA server")
		}
		if err := session.StartOPCUA(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start OPC UA server")
		}
		healthHandler.SetOPCUAReady(true)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      api.NewHandler(cfg.SimulatorName, session, healthHandler, log.Logger),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("Starting HTTP server (health + API)")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("Session loop error")
	}

	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	session.Stop()
	summary := session.Summary()
	log.Info().
		Int("reps", summary.TotalReps).
		Float64("energy_kcal", summary.TotalEnergy).
		Float64("avg_form_quality", summary.AverageFormQuality).
		Msg("Session summary")
	if hook != nil {
		hook.SendSummary(shutdownCtx, summary)
	}

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	if err := session.StopOPCUA(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("OPC UA server shutdown error")
	}

	log.Info().Msg("Simulator stopped")
}

// loadCatalog reads the catalog file, or the embedded catalog when path is empty
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}
