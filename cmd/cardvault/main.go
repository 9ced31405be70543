package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/justinas/alice"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tatestudies/cardvault/config"
	"github.com/tatestudies/cardvault/internal/cardvault"
	"github.com/tatestudies/cardvault/internal/stores/models"
)

const (
	GracefulShutdownTimeout = 10 * time.Second
)

func main() {
	// A missing .env is fine; config can come from real env vars or flags.
	godotenv.Load()

	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		panic(err)
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if strings.ToLower(cfg.LogLevel) == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Info().Str("listen-addr", cfg.ListenAddr).Str("log-level", cfg.LogLevel).
		Int("max-cards-add", cfg.MaxCardsAdd).Msg("started-with-config")

	if cfg.DBConnUri == "" {
		log.Fatal().Msg("db-conn-uri is required")
	}
	if cfg.SecretKey == "" {
		log.Fatal().Msg("secret-key is required")
	}

	m, err := migrate.New(cfg.DBMigrationsPath, cfg.DBConnUri)
	if err != nil {
		log.Fatal().Err(err).Msg("creating-migration")
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal().Err(err).Msg("running-migration")
	}
	m.Close()

	ctx := context.Background()
	dbPool, err := pgxpool.New(ctx, cfg.DBConnUri)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting-to-db")
	}
	defer dbPool.Close()
	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("pinging-db")
	}

	queries := models.New(dbPool)
	server := cardvault.NewServer(cfg, dbPool, queries)

	mux := http.NewServeMux()
	server.Routes(mux)

	chain := alice.New(
		RequestIDMiddleware,
		AccessLogMiddleware,
		NewAuthMiddleware([]byte(cfg.SecretKey)),
	).Then(mux)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: chain,
	}
	idleConnsClosed := make(chan struct{})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		// We received an interrupt signal, shut down.
		log.Info().Msg("got quit signal...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)

		if err := srv.Shutdown(shutdownCtx); err != nil {
			// Error from closing listeners, or context timeout:
			log.Error().Msgf("HTTP server Shutdown: %v", err)
		}
		cancel()
		close(idleConnsClosed)
	}()

	log.Info().Str("addr", cfg.ListenAddr).Msg("serving")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("")
	}
	<-idleConnsClosed
	log.Info().Msg("server gracefully shutting down")
}
