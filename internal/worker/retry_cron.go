package worker

// Moves scheduled retries whose time has come back onto the work queue.
// Skips ticks while the breaker is open so a downed store is not probed by
// every queued job at once.

import (
	"context"
	"strconv"
	"time"

	"postocaixa/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 10 * time.Second
	retryBatchSize    = 50
)

type RetryCronConfig struct {
	Fila Fila
	CB   *infra.CircuitBreaker
}

// StartRetryCron launches the promotion loop. It stops when ctx is cancelled.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case agora := <-ticker.C:
				if cfg.CB.State() == infra.CBOpen {
					log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
					continue
				}
				promoverAgendados(ctx, cfg.Fila, agora)
			}
		}
	}()
}

// promoverAgendados returns the number of jobs moved to the work queue.
// ZREM decides ownership so two instances never promote the same job.
func promoverAgendados(ctx context.Context, fila Fila, agora time.Time) int {
	devidos, err := fila.ZRangeByScore(ctx, QueueAgendados, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(agora.Unix(), 10),
		Count: retryBatchSize,
	}).Result()
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query scheduled jobs")
		return 0
	}

	movidos := 0
	for _, raw := range devidos {
		removidos, err := fila.ZRem(ctx, QueueAgendados, raw).Result()
		if err != nil || removidos == 0 {
			continue
		}
		if err := fila.LPush(ctx, QueueNotasPrazo, raw).Err(); err != nil {
			log.Error().Err(err).Msg("retry_cron: failed to requeue job")
			continue
		}
		movidos++
	}
	if movidos > 0 {
		log.Info().Int("count", movidos).Msg("retry_cron: requeued scheduled jobs")
	}
	return movidos
}
