package worker

// Retries bulk inserts of deferred-sale rows that failed during a closing
// submission. The submission already reported success, so these rows only
// exist here until the store accepts them or they land in the DLQ.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"postocaixa/internal/infra"
	"postocaixa/internal/model"
	"postocaixa/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	backoffBase   = 5 * time.Second
	backoffMaximo = 5 * time.Minute
)

// Linhas reports whether an attendant's closing line still exists.
// repository.FechamentoRepository satisfies it.
type Linhas interface {
	FindLinhaID(ctx context.Context, fechamentoID, frentistaID int64) (int64, bool, error)
}

type NotasWorker struct {
	notas         repository.NotaPrazoRepository
	linhas        Linhas
	cb            *infra.CircuitBreaker
	fila          Fila
	maxTentativas int
	agora         func() time.Time
}

func NewNotasWorker(
	notas repository.NotaPrazoRepository,
	linhas Linhas,
	cb *infra.CircuitBreaker,
	fila Fila,
	maxTentativas int,
) *NotasWorker {
	if maxTentativas <= 0 {
		maxTentativas = 3
	}
	return &NotasWorker{
		notas:         notas,
		linhas:        linhas,
		cb:            cb,
		fila:          fila,
		maxTentativas: maxTentativas,
		agora:         time.Now,
	}
}

// Process handles one notas_prazo job:
//  1. Decode the rows
//  2. Drop rows whose closing line was undone in the meantime
//  3. Insert the rest in one batch through the circuit breaker
//  4. On failure, schedule another attempt with exponential backoff or,
//     after maxTentativas, move the job to the DLQ
//
// An open breaker does not count as an attempt.
func (w *NotasWorker) Process(ctx context.Context, job Job) {
	var payload []NotaPrazoPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("notas_worker: invalid payload")
		EnviarParaDLQ(ctx, w.fila, QueueNotasPrazo, job, "payload inválido: "+err.Error())
		return
	}
	notas := make([]model.NotaPrazo, 0, len(payload))
	for _, p := range payload {
		n, err := p.modelo()
		if err != nil {
			EnviarParaDLQ(ctx, w.fila, QueueNotasPrazo, job, "data inválida: "+p.Data)
			return
		}
		notas = append(notas, n)
	}

	var gravadas int
	err := w.cb.Execute(func() error {
		vivas, err := w.semLinhaDesfeita(ctx, notas)
		if err != nil {
			return err
		}
		if len(vivas) < len(notas) {
			log.Warn().
				Str("job_id", job.ID).
				Int("descartadas", len(notas)-len(vivas)).
				Msg("notas_worker: closing line undone, dropping its deferred sales")
		}
		if len(vivas) == 0 {
			return nil
		}
		gravadas = len(vivas)
		return w.notas.CreateBatch(ctx, vivas)
	})
	if err == nil {
		log.Info().
			Str("job_id", job.ID).
			Int("notas", gravadas).
			Int("tentativas", job.Tentativas+1).
			Msg("notas_worker: deferred sales stored")
		return
	}

	if errors.Is(err, infra.ErrCircuitOpen) {
		w.agendar(ctx, job, w.cb.OpenTimeout())
		return
	}

	job.Tentativas++
	if job.Tentativas >= w.maxTentativas {
		log.Error().
			Err(err).
			Str("job_id", job.ID).
			Int("tentativas", job.Tentativas).
			Msg("notas_worker: max retries exceeded")
		EnviarParaDLQ(ctx, w.fila, QueueNotasPrazo, job,
			fmt.Sprintf("max retries (%d) exceeded: %s", w.maxTentativas, err.Error()))
		return
	}

	espera := backoff(job.Tentativas)
	log.Warn().
		Err(err).
		Str("job_id", job.ID).
		Int("tentativas", job.Tentativas).
		Dur("espera", espera).
		Msg("notas_worker: insert failed, scheduled next attempt")
	w.agendar(ctx, job, espera)
}

// semLinhaDesfeita keeps the rows whose (fechamento, frentista) line is still
// stored. Rows without an envelope are kept.
func (w *NotasWorker) semLinhaDesfeita(ctx context.Context, notas []model.NotaPrazo) ([]model.NotaPrazo, error) {
	type chave struct{ fechamento, frentista int64 }
	existe := map[chave]bool{}
	vivas := make([]model.NotaPrazo, 0, len(notas))
	for _, n := range notas {
		if n.FechamentoID == nil {
			vivas = append(vivas, n)
			continue
		}
		k := chave{*n.FechamentoID, n.FrentistaID}
		ok, visto := existe[k]
		if !visto {
			_, achou, err := w.linhas.FindLinhaID(ctx, k.fechamento, k.frentista)
			if err != nil {
				return nil, err
			}
			existe[k] = achou
			ok = achou
		}
		if ok {
			vivas = append(vivas, n)
		}
	}
	return vivas, nil
}

func (w *NotasWorker) agendar(ctx context.Context, job Job, espera time.Duration) {
	data, err := json.Marshal(job)
	if err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("notas_worker: failed to marshal job")
		return
	}
	quando := w.agora().Add(espera)
	z := redis.Z{Score: float64(quando.Unix()), Member: string(data)}
	if err := w.fila.ZAdd(ctx, QueueAgendados, z).Err(); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("notas_worker: failed to schedule retry")
	}
}

// backoff doubles from backoffBase per attempt, capped at backoffMaximo.
func backoff(tentativas int) time.Duration {
	if tentativas < 1 {
		tentativas = 1
	}
	d := backoffBase
	for i := 1; i < tentativas; i++ {
		d *= 2
		if d >= backoffMaximo {
			return backoffMaximo
		}
	}
	return d
}
