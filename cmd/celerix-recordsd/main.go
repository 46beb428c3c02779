package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/celerix-dev/celerix-records/internal/api"
	"github.com/celerix-dev/celerix-records/internal/config"
	"github.com/celerix-dev/celerix-records/internal/engine"
	"github.com/celerix-dev/celerix-records/internal/otel"
	"github.com/celerix-dev/celerix-records/internal/server"
	"github.com/celerix-dev/celerix-records/internal/vault"
)

const serviceName = "celerix-recordsd"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	setupLogger(cfg)

	cleanup, err := otel.Init(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("init otel")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cleanup(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown otel")
		}
	}()

	// 1. Open the configured backend
	opts, err := cfg.StoreOptions()
	if err != nil {
		log.Fatal().Err(err).Msg("store options")
	}
	store, err := engine.Open(ctx, opts)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Backend).Msg("open store")
	}
	defer func() {
		// Close waits for pending disk writes of the embedded store
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("close store")
		}
		log.Info().Msg("store closed")
	}()

	// 2. Build the API
	gin.SetMode(gin.ReleaseMode)
	h := &api.Handler{
		Store:        store,
		Timeout:      cfg.RequestTimeout,
		StrictCreate: cfg.StrictCreate,
	}
	router := server.NewRouter(store, api.NewEngine(h), server.Options{
		ServiceName:    serviceName,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.RateLimit,
	})

	// 3. Setup TLS
	if cfg.TLS {
		cert, err := vault.GenerateSelfSignedCert(cfg.TLSHosts...)
		if err != nil {
			log.Fatal().Err(err).Msg("generate TLS certificate")
		}
		router.SetCertificate(cert)
		log.Info().Msg("TLS enabled with a self-signed certificate")
	}

	// 4. Serve until a signal arrives
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("backend", cfg.Backend).Msg("starting celerix-recordsd")
		errc <- router.Listen(cfg.Addr)
	}()

	select {
	case err := <-errc:
		if err != nil {
			log.Error().Err(err).Msg("http server")
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := router.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown server")
	}
}

func setupLogger(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
