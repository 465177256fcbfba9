package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"postocaixa/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	QueueNotasPrazo = "jobs:notas_prazo"
	// QueueAgendados is a sorted set of jobs waiting for their next attempt,
	// scored by the unix time they become due.
	QueueAgendados = "jobs:notas_prazo:agendados"

	JobNotasPrazo = "notas_prazo"
)

// Fila is the subset of the Redis API the queue uses. *redis.Client satisfies it.
type Fila interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	LLen(ctx context.Context, key string) *redis.IntCmd
	ZAdd(ctx context.Context, key string, members ...redis.Z) *redis.IntCmd
	ZRangeByScore(ctx context.Context, key string, opt *redis.ZRangeBy) *redis.StringSliceCmd
	ZRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
}

// Job is the generic envelope for all async tasks.
type Job struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Tentativas int             `json:"tentativas"`
}

// NotaPrazoPayload is one deferred-sale row as carried on the queue.
type NotaPrazoPayload struct {
	ClienteID    int64           `json:"cliente_id"`
	FrentistaID  int64           `json:"frentista_id"`
	FechamentoID *int64          `json:"fechamento_id,omitempty"`
	Data         string          `json:"data"`
	Valor        decimal.Decimal `json:"valor"`
	PostoID      int64           `json:"posto_id"`
	CriadoEm     time.Time       `json:"criado_em"`
}

func payloadDe(n model.NotaPrazo) NotaPrazoPayload {
	return NotaPrazoPayload{
		ClienteID:    n.ClienteID,
		FrentistaID:  n.FrentistaID,
		FechamentoID: n.FechamentoID,
		Data:         n.Data.Format("2006-01-02"),
		Valor:        n.Valor,
		PostoID:      n.PostoID,
		CriadoEm:     n.CriadoEm,
	}
}

func (p NotaPrazoPayload) modelo() (model.NotaPrazo, error) {
	data, err := time.Parse("2006-01-02", p.Data)
	if err != nil {
		return model.NotaPrazo{}, err
	}
	return model.NotaPrazo{
		ClienteID:    p.ClienteID,
		FrentistaID:  p.FrentistaID,
		FechamentoID: p.FechamentoID,
		Data:         data,
		Valor:        p.Valor,
		PostoID:      p.PostoID,
		CriadoEm:     p.CriadoEm,
	}, nil
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	fila Fila
}

func NewDispatcher(fila Fila) *Dispatcher {
	return &Dispatcher{fila: fila}
}

// EnfileirarNotas queues deferred-sale rows whose insert failed during a
// closing submission.
func (d *Dispatcher) EnfileirarNotas(ctx context.Context, notas []model.NotaPrazo) error {
	if len(notas) == 0 {
		return nil
	}
	payload := make([]NotaPrazoPayload, 0, len(notas))
	for _, n := range notas {
		payload = append(payload, payloadDe(n))
	}
	return d.enqueue(ctx, QueueNotasPrazo, JobNotasPrazo, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{ID: uuid.NewString(), Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.fila.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the queue.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
func StartWorkerPool(ctx context.Context, fila Fila, numWorkers int, notas *NotasWorker) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, fila, notas, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, fila Fila, notas *NotasWorker, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Waits up to 5s then loops to check ctx
			result, err := fila.BRPop(ctx, 5*time.Second, QueueNotasPrazo).Result()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				if ctx.Err() == nil {
					log.Warn().Err(err).Int("worker", id).Msg("BRPOP failed")
					time.Sleep(time.Second)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, fila, notas, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, fila Fila, notas *NotasWorker, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		EnviarParaDLQ(ctx, fila, queue, Job{Payload: rawJSON(raw)}, "envelope inválido: "+err.Error())
		return
	}
	switch job.Type {
	case JobNotasPrazo:
		notas.Process(ctx, job)
	default:
		log.Warn().Str("type", job.Type).Str("queue", queue).Msg("unknown job type")
		EnviarParaDLQ(ctx, fila, queue, job, "tipo de job desconhecido")
	}
}

// rawJSON keeps an unparseable envelope inspectable: valid JSON is stored as
// is, anything else as a JSON string.
func rawJSON(raw string) json.RawMessage {
	if json.Valid([]byte(raw)) {
		return json.RawMessage(raw)
	}
	b, _ := json.Marshal(raw)
	return b
}
