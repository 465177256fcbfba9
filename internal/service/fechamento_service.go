package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"postocaixa/internal/dto"
	"postocaixa/internal/model"
	"postocaixa/internal/money"
	"postocaixa/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	formatoData = "2006-01-02"

	historicoPadrao = 10
	historicoMaximo = 100

	MsgFechamentoOK = "Fechamento realizado com sucesso!"
	MsgDesfeitoOK   = "Fechamento desfeito com sucesso."
)

// Change-event types published to the station channel.
const (
	EventoFechamentoFrentista = "fechamento_frentista"
	EventoTurno               = "turno"
)

// Notificador publishes cache-invalidation events for a station.
type Notificador interface {
	Publicar(ctx context.Context, postoID int64, tipo string) error
}

// FilaNotas takes deferred-sale rows whose insert failed and retries them
// out of band.
type FilaNotas interface {
	EnfileirarNotas(ctx context.Context, notas []model.NotaPrazo) error
}

type FechamentoService interface {
	Submeter(ctx context.Context, id *Identidade, postoID int64, req dto.FechamentoRequest) (*dto.ResultadoFechamento, error)
	Desfazer(ctx context.Context, postoID int64, req dto.DesfazerFechamentoRequest) (*dto.ResultadoFechamento, error)
	Calcular(req dto.CalcularRequest) dto.ConciliacaoResponse
	Fecharam(ctx context.Context, postoID int64, data string, turnoID int64) ([]int64, error)
	Historico(ctx context.Context, frentistaID, postoID int64, limite int) ([]dto.HistoricoItem, error)
	Relatorio(ctx context.Context, id int64) (*model.Fechamento, []model.NotaPrazo, error)
}

type FechamentoConfig struct {
	// AtribuicaoFallback enables attributing anonymous closings to the
	// first admin profile, then to the first profile of any role.
	AtribuicaoFallback bool
}

type fechamentoService struct {
	usuarios    repository.UsuarioRepository
	frentistas  repository.FrentistaRepository
	turnos      repository.TurnoRepository
	clientes    repository.ClienteRepository
	fechamentos repository.FechamentoRepository
	notas       repository.NotaPrazoRepository
	fila        FilaNotas
	notificador Notificador
	cfg         FechamentoConfig
	agora       func() time.Time
}

func NewFechamentoService(
	usuarios repository.UsuarioRepository,
	frentistas repository.FrentistaRepository,
	turnos repository.TurnoRepository,
	clientes repository.ClienteRepository,
	fechamentos repository.FechamentoRepository,
	notas repository.NotaPrazoRepository,
	fila FilaNotas,
	notificador Notificador,
	cfg FechamentoConfig,
	agora func() time.Time,
) FechamentoService {
	return &fechamentoService{
		usuarios: usuarios, frentistas: frentistas, turnos: turnos, clientes: clientes,
		fechamentos: fechamentos, notas: notas, fila: fila,
		notificador: notificador, cfg: cfg, agora: agora,
	}
}

func falha(err error) error {
	return fmt.Errorf("%w: %v", ErrFalhaEnvio, err)
}

// ── Submeter ──────────────────────────────────────────────────────────────────
// Envelope get-or-create, duplicate guard, line insert, full aggregate
// recomputation, then deferred sales. Deferred-sale failures never fail the
// closing: the envelope and line are already committed at that point.

func (s *fechamentoService) Submeter(ctx context.Context, id *Identidade, postoID int64, req dto.FechamentoRequest) (*dto.ResultadoFechamento, error) {
	data, err := time.Parse(formatoData, req.Data)
	if err != nil {
		return nil, ErrDataInvalida
	}
	linha := linhaDe(req, postoID)
	if err := s.validar(ctx, &linha, req.Notas); err != nil {
		return nil, err
	}
	total := linha.TotalDeclarado()
	logger := log.With().Int64("posto_id", postoID).Int64("turno_id", req.TurnoID).Str("data", req.Data).Logger()

	// 1. attribution
	usuarioID, err := s.atribuir(ctx, id)
	if err != nil {
		return nil, err
	}

	// 2. attendant and shift, both scoped to the station
	f, err := s.resolverFrentista(ctx, id, postoID, req.FrentistaID)
	if err != nil {
		return nil, err
	}
	linha.FrentistaID = f.ID
	logger = logger.With().Int64("frentista_id", f.ID).Logger()

	turno, err := s.turnos.FindByID(ctx, req.TurnoID)
	if err != nil {
		return nil, falha(err)
	}
	if turno == nil || turno.PostoID != postoID {
		return nil, ErrTurnoNaoEncontrado
	}

	// 3-4. envelope
	env, err := s.fechamentos.GetOrCreate(ctx, &model.Fechamento{
		Data:          data,
		TurnoID:       req.TurnoID,
		PostoID:       postoID,
		UsuarioID:     usuarioID,
		Status:        model.StatusFechado,
		TotalRecebido: total,
		TotalVendas:   linha.Encerrante,
		Diferenca:     total.Sub(linha.Encerrante),
		Observacoes:   req.Observacoes,
	})
	if err != nil {
		return nil, falha(err)
	}
	linha.FechamentoID = env.ID

	// 5. one line per attendant per envelope
	_, existe, err := s.fechamentos.FindLinhaID(ctx, env.ID, f.ID)
	if err != nil {
		return nil, falha(err)
	}
	if existe {
		return nil, ErrFechamentoDuplicado
	}

	// 6. line
	if err := s.fechamentos.CreateLinha(ctx, &linha); err != nil {
		if errors.Is(err, repository.ErrDuplicado) {
			return nil, ErrFechamentoDuplicado
		}
		return nil, falha(err)
	}

	// 7. aggregates
	override := decimal.Zero
	if req.TotalVendas != nil {
		override = *req.TotalVendas
	}
	if err := s.fechamentos.RecomputeAndPersist(ctx, env.ID, override, req.Observacoes); err != nil {
		return nil, falha(err)
	}

	// 8. deferred sales
	if len(req.Notas) > 0 {
		s.gravarNotas(ctx, notasDe(req.Notas, f.ID, env.ID, postoID, data, s.agora()))
	}

	s.publicar(ctx, postoID)
	logger.Info().Int64("fechamento_id", env.ID).Str("total", total.StringFixed(2)).Msg("fechamento registrado")

	envID := env.ID
	return &dto.ResultadoFechamento{Success: true, Message: MsgFechamentoOK, FechamentoID: &envID}, nil
}

func linhaDe(req dto.FechamentoRequest, postoID int64) model.FechamentoFrentista {
	l := model.FechamentoFrentista{
		ValorDebito:   money.RoundTwo(req.ValorDebito),
		ValorCredito:  money.RoundTwo(req.ValorCredito),
		ValorNota:     money.RoundTwo(req.ValorNota),
		ValorPix:      money.RoundTwo(req.ValorPix),
		ValorDinheiro: money.RoundTwo(req.ValorDinheiro),
		ValorMoedas:   money.RoundTwo(req.ValorMoedas),
		ValorBaratao:  money.RoundTwo(req.ValorBaratao),
		Encerrante:    money.RoundTwo(req.Encerrante),
		Observacoes:   req.Observacoes,
		PostoID:       postoID,
	}
	if l.ValorNota.IsZero() {
		for _, n := range req.Notas {
			l.ValorNota = l.ValorNota.Add(money.RoundTwo(n.Valor))
		}
	}
	total := l.TotalDeclarado()
	l.ValorConferido = total
	dif := l.Encerrante.Sub(total)
	if req.Diferenca != nil {
		dif = money.RoundTwo(*req.Diferenca)
	}
	l.DiferencaCalculada = &dif
	return l
}

// validar rejects the closing before any write.
func (s *fechamentoService) validar(ctx context.Context, l *model.FechamentoFrentista, notas []dto.NotaPrazoItem) error {
	if !l.Encerrante.IsPositive() {
		return ErrEncerranteZerado
	}
	if !l.TotalDeclarado().IsPositive() {
		return ErrTotalZerado
	}
	if len(notas) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(notas))
	for _, n := range notas {
		if !money.RoundTwo(n.Valor).IsPositive() {
			return ErrValorNotaInvalido
		}
		ids = append(ids, n.ClienteID)
	}
	clientes, err := s.clientes.FindByIDs(ctx, ids)
	if err != nil {
		return falha(err)
	}
	porID := make(map[int64]model.Cliente, len(clientes))
	for _, c := range clientes {
		porID[c.ID] = c
	}
	for _, id := range ids {
		c, ok := porID[id]
		if !ok || !c.Ativo {
			return ErrClienteInexistente
		}
		if c.Bloqueado {
			return ErrClienteBloqueado
		}
	}
	return nil
}

// atribuir resolves the profile id recorded as the envelope's creator. With
// the fallback enabled a missing profile degrades to nil attribution instead
// of blocking the closing.
func (s *fechamentoService) atribuir(ctx context.Context, id *Identidade) (*int64, error) {
	if id != nil {
		u, err := s.usuarios.FindByEmail(ctx, id.Email)
		if err != nil {
			return nil, falha(err)
		}
		if u != nil {
			return &u.ID, nil
		}
	}
	if !s.cfg.AtribuicaoFallback {
		return nil, ErrNaoAutenticado
	}

	u, err := s.usuarios.FirstAdmin(ctx)
	if err != nil {
		return nil, falha(err)
	}
	if u == nil {
		if u, err = s.usuarios.First(ctx); err != nil {
			return nil, falha(err)
		}
	}
	if u == nil {
		log.Error().Msg("CRÍTICO: nenhum perfil de usuário para atribuir o fechamento")
		return nil, nil
	}
	log.Warn().Int64("usuario_id", u.ID).Msg("fechamento atribuído a perfil de contingência")
	return &u.ID, nil
}

// resolverFrentista accepts only active attendants of the station. An explicit
// id outranks the caller's own record.
func (s *fechamentoService) resolverFrentista(ctx context.Context, id *Identidade, postoID int64, frentistaID *int64) (*model.Frentista, error) {
	if frentistaID != nil {
		f, err := s.frentistas.FindByID(ctx, *frentistaID)
		if err != nil {
			return nil, falha(err)
		}
		if f == nil || !f.Ativo || f.PostoID != postoID {
			return nil, ErrFrentistaNaoEncontrado
		}
		return f, nil
	}
	if id != nil {
		f, err := s.frentistas.FindByUserID(ctx, id.AuthID)
		if err != nil {
			return nil, falha(err)
		}
		if f != nil && f.Ativo && f.PostoID == postoID {
			return f, nil
		}
	}
	return nil, ErrFrentistaNaoIdentificado
}

func notasDe(itens []dto.NotaPrazoItem, frentistaID, fechamentoID, postoID int64, data, agora time.Time) []model.NotaPrazo {
	notas := make([]model.NotaPrazo, len(itens))
	for i, n := range itens {
		envID := fechamentoID
		notas[i] = model.NotaPrazo{
			ClienteID:    n.ClienteID,
			FrentistaID:  frentistaID,
			FechamentoID: &envID,
			Data:         model.Dia(data),
			Valor:        money.RoundTwo(n.Valor),
			PostoID:      postoID,
			CriadoEm:     agora,
		}
	}
	return notas
}

func (s *fechamentoService) gravarNotas(ctx context.Context, notas []model.NotaPrazo) {
	err := s.notas.CreateBatch(ctx, notas)
	if err == nil {
		return
	}
	log.Error().Err(err).Int("notas", len(notas)).Msg("falha ao gravar notas a prazo; fechamento mantido")
	if s.fila == nil {
		return
	}
	if err := s.fila.EnfileirarNotas(ctx, notas); err != nil {
		log.Error().Err(err).Msg("falha ao enfileirar notas a prazo")
	}
}

func (s *fechamentoService) publicar(ctx context.Context, postoID int64) {
	if s.notificador == nil {
		return
	}
	if err := s.notificador.Publicar(ctx, postoID, EventoFechamentoFrentista); err != nil {
		log.Warn().Err(err).Int64("posto_id", postoID).Msg("falha ao publicar mudança")
	}
}

// ── Desfazer ──────────────────────────────────────────────────────────────────

func (s *fechamentoService) Desfazer(ctx context.Context, postoID int64, req dto.DesfazerFechamentoRequest) (*dto.ResultadoFechamento, error) {
	data, err := time.Parse(formatoData, req.Data)
	if err != nil {
		return nil, ErrDataInvalida
	}
	env, err := s.fechamentos.FindByPeriodo(ctx, data, req.TurnoID, postoID)
	if err != nil {
		return nil, falha(err)
	}
	if env == nil {
		return nil, ErrNadaParaDesfazer
	}
	linhaID, existe, err := s.fechamentos.FindLinhaID(ctx, env.ID, req.FrentistaID)
	if err != nil {
		return nil, falha(err)
	}
	if !existe {
		return nil, ErrNadaParaDesfazer
	}
	if err := s.fechamentos.DeleteLinha(ctx, linhaID); err != nil {
		return nil, falha(err)
	}
	if err := s.fechamentos.RecomputeAndPersist(ctx, env.ID, decimal.Zero, nil); err != nil {
		return nil, falha(err)
	}

	s.publicar(ctx, postoID)
	log.Info().Int64("fechamento_id", env.ID).Int64("frentista_id", req.FrentistaID).Msg("fechamento desfeito")

	envID := env.ID
	return &dto.ResultadoFechamento{Success: true, Message: MsgDesfeitoOK, FechamentoID: &envID}, nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *fechamentoService) Calcular(req dto.CalcularRequest) dto.ConciliacaoResponse {
	return ConciliacaoResponse(Calcular(FormularioDe(req)))
}

func (s *fechamentoService) Fecharam(ctx context.Context, postoID int64, data string, turnoID int64) ([]int64, error) {
	dia, err := time.Parse(formatoData, data)
	if err != nil {
		return nil, ErrDataInvalida
	}
	ids, err := s.fechamentos.FrentistasQueFecharam(ctx, dia, turnoID, postoID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

func (s *fechamentoService) Historico(ctx context.Context, frentistaID, postoID int64, limite int) ([]dto.HistoricoItem, error) {
	if limite <= 0 {
		limite = historicoPadrao
	}
	if limite > historicoMaximo {
		limite = historicoMaximo
	}
	linhas, err := s.fechamentos.Historico(ctx, frentistaID, postoID, limite)
	if err != nil {
		return nil, err
	}
	out := make([]dto.HistoricoItem, len(linhas))
	for i, l := range linhas {
		total := l.TotalDeclarado()
		dif := l.Encerrante.Sub(total)
		if l.DiferencaCalculada != nil && !l.DiferencaCalculada.IsZero() {
			dif = *l.DiferencaCalculada
		}
		item := dto.HistoricoItem{
			ID:             l.ID,
			Turno:          "N/A",
			TotalInformado: total,
			Encerrante:     l.Encerrante,
			Diferenca:      dif,
			Status:         "divergente",
			Observacoes:    l.Observacoes,
		}
		if dif.Abs().LessThanOrEqual(tolerancia) {
			item.Status = "ok"
		}
		if l.Fechamento != nil {
			item.Data = l.Fechamento.Data.Format(formatoData)
			if l.Fechamento.Turno != nil {
				item.Turno = l.Fechamento.Turno.Nome
			}
		}
		out[i] = item
	}
	return out, nil
}

func (s *fechamentoService) Relatorio(ctx context.Context, id int64) (*model.Fechamento, []model.NotaPrazo, error) {
	f, err := s.fechamentos.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if f == nil {
		return nil, nil, ErrFechamentoInexistente
	}
	notas, err := s.notas.ListByFechamento(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return f, notas, nil
}
