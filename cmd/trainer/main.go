package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Dadudekc/LSTM-model-trainer/internal/cfg"
	"github.com/Dadudekc/LSTM-model-trainer/internal/history"
	"github.com/Dadudekc/LSTM-model-trainer/internal/metrics"
	"github.com/Dadudekc/LSTM-model-trainer/internal/trainer"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file (overrides CONFIG_FILE)")
		logLevel   = flag.String("log-level", "", "Log level: debug, info, warn, error")
		modelType  = flag.String("model", "", "Model type: linear_regression, random_forest, lstm")
		scalerType = flag.String("scaler", "", "Scaler type (standard, power, minmax, robust, quantile_normal, quantile_uniform, normalizer, maxabs)")
		timeSteps  = flag.Int("time-steps", 0, "Sequence window length (overrides config)")
	)
	flag.Parse()

	// A local .env is optional; ignore a missing file.
	_ = godotenv.Load()

	if *configPath != "" {
		os.Setenv("CONFIG_FILE", *configPath)
	}

	settings, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if *modelType != "" {
		settings.ModelType = *modelType
	}
	if *scalerType != "" {
		settings.ScalerType = *scalerType
	}
	if *timeSteps > 0 {
		settings.TimeSteps = *timeSteps
	}
	if *logLevel != "" {
		settings.LogLevel = *logLevel
	}

	level, err := zerolog.ParseLevel(settings.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info().Msg("shutdown signal received")
		cancel()
	}()

	m := metrics.New()
	startMetricsServer(ctx, settings, logger)

	var store *history.Store
	if settings.HistoryPath != "" {
		store, err = history.New(settings.HistoryPath)
		if err != nil {
			logger.Warn().Err(err).Msg("history store unavailable, continuing without run history")
		} else {
			defer store.Close()
		}
	}

	summary, err := trainer.Run(ctx, settings, trainer.Deps{
		Logger:  logger,
		Metrics: m,
		History: store,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("training run failed")
	}

	logger.Info().
		Int("datasets", summary.Datasets).
		Int("trained", summary.Trained).
		Int("skipped", summary.Skipped).
		Msg("done")
}

// startMetricsServer exposes /metrics and /health when a port is configured.
// The default port of 0 keeps the trainer free of any network surface.
func startMetricsServer(ctx context.Context, settings cfg.Settings, logger zerolog.Logger) {
	if settings.MetricsPort == 0 {
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", settings.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown metrics server")
		}
	}()

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server failed")
		}
	}()
}
