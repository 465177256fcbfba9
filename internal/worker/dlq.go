package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

// DLQPrefix names the dead-letter list of a queue: dlq:{queue}.
const DLQPrefix = "dlq:"

// MortoEntry is a job that will not be retried again. Job is kept whole so
// an operator can push it back onto its queue once the cause is fixed.
type MortoEntry struct {
	Fila     string    `json:"fila"`
	Job      Job       `json:"job"`
	Motivo   string    `json:"motivo"`
	FalhouEm time.Time `json:"falhou_em"`
}

// EnviarParaDLQ parks job on queue's dead-letter list. Failures are logged;
// there is nowhere further to send the job.
func EnviarParaDLQ(ctx context.Context, fila Fila, queue string, job Job, motivo string) {
	data, err := json.Marshal(MortoEntry{Fila: queue, Job: job, Motivo: motivo, FalhouEm: time.Now().UTC()})
	if err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("dlq: failed to marshal entry")
		return
	}
	chave := DLQPrefix + queue
	if err := fila.LPush(ctx, chave, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", chave).Str("job_id", job.ID).Msg("dlq: push failed")
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("job_id", job.ID).
		Str("job_type", job.Type).
		Int("tentativas", job.Tentativas).
		Str("motivo", motivo).
		Msg("dlq: job moved to dead letter queue")
}

// DLQLength is reported by the health endpoint.
func DLQLength(ctx context.Context, fila Fila, queue string) (int64, error) {
	return fila.LLen(ctx, DLQPrefix+queue).Result()
}
