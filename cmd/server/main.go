package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postocaixa/internal/config"
	"postocaixa/internal/infra"
	"postocaixa/internal/repository"
	"postocaixa/internal/router"
	"postocaixa/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Deferred-sale retries run in the background; the composition root owns
	// the pool so it shares the breaker with the health endpoint.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notasCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	notasWorker := worker.NewNotasWorker(
		repository.NewNotaPrazoRepository(db),
		repository.NewFechamentoRepository(db),
		notasCB, rdb, cfg.NotasMaxTentativas,
	)
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, notasWorker)
	worker.StartRetryCron(ctx, worker.RetryCronConfig{Fila: rdb, CB: notasCB})

	r := router.New(cfg, db, rdb, notasCB)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		// no WriteTimeout: /v1/mudancas holds the response open
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("postocaixa backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	_ = rdb.Close()
	log.Info().Msg("server exited")
}
