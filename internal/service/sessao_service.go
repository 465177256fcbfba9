package service

import (
	"context"
	"errors"
	"time"

	"postocaixa/internal/dto"
	"postocaixa/internal/model"
	"postocaixa/internal/repository"

	"github.com/rs/zerolog/log"
)

// SessaoService runs the session-entry checks for an attendant.
//
// Bootstrap has a documented write side effect: an identity without an
// attendant record gets one created from its signup metadata.
type SessaoService interface {
	Bootstrap(ctx context.Context, id *Identidade, postoID int64) dto.BootstrapResponse
	AbrirCaixa(ctx context.Context, id *Identidade, req dto.AbrirCaixaRequest) (*dto.AberturaCaixaResponse, error)
}

type SessaoConfig struct {
	Timeout        time.Duration
	DefaultPostoID int64
}

type sessaoService struct {
	usuarios   repository.UsuarioRepository
	frentistas repository.FrentistaRepository
	caixas     repository.CaixaRepository
	turnoRepo  repository.TurnoRepository
	turnos     TurnoService
	cfg        SessaoConfig
	agora      func() time.Time
}

func NewSessaoService(
	usuarios repository.UsuarioRepository,
	frentistas repository.FrentistaRepository,
	caixas repository.CaixaRepository,
	turnoRepo repository.TurnoRepository,
	turnos TurnoService,
	cfg SessaoConfig,
	agora func() time.Time,
) SessaoService {
	return &sessaoService{
		usuarios: usuarios, frentistas: frentistas, caixas: caixas,
		turnoRepo: turnoRepo, turnos: turnos, cfg: cfg, agora: agora,
	}
}

// ── Bootstrap ─────────────────────────────────────────────────────────────────

// Bootstrap never fails. The check sequence races a timer; whichever ends
// first decides the answer and a late sequence only writes to its own
// buffered channel.
func (s *sessaoService) Bootstrap(ctx context.Context, id *Identidade, postoID int64) dto.BootstrapResponse {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	done := make(chan dto.BootstrapResponse, 1)
	go func() { done <- s.verificar(ctx, id, postoID) }()

	timer := time.NewTimer(s.cfg.Timeout)
	defer timer.Stop()

	select {
	case resp := <-done:
		return resp
	case <-timer.C:
		log.Warn().Dur("timeout", s.cfg.Timeout).Msg("bootstrap: tempo esgotado")
		return dto.BootstrapResponse{Status: dto.SessaoVerificado, Mensagem: "Verificação demorou demais."}
	case <-ctx.Done():
		log.Warn().Err(ctx.Err()).Msg("bootstrap: contexto encerrado")
		return dto.BootstrapResponse{Status: dto.SessaoVerificado}
	}
}

func (s *sessaoService) verificar(ctx context.Context, id *Identidade, postoID int64) dto.BootstrapResponse {
	// 1. identity
	if id == nil {
		return dto.BootstrapResponse{Status: dto.SessaoSemSessao}
	}
	logger := log.With().Str("email", id.Email).Int64("posto_id", postoID).Logger()

	// 2. administrators need no attendant record
	perfil, err := s.usuarios.FindByEmail(ctx, id.Email)
	if err != nil {
		logger.Error().Err(err).Msg("bootstrap: falha ao buscar perfil")
		return dto.BootstrapResponse{Status: dto.SessaoVerificado}
	}
	if perfil != nil && perfil.IsAdmin() {
		return dto.BootstrapResponse{Status: dto.SessaoAdmin}
	}

	// 3. attendant record. An identity owns a single record, so the record's
	// own station wins over the request's station context.
	f, err := s.frentistas.FindByUserID(ctx, id.AuthID)
	if err != nil {
		logger.Error().Err(err).Msg("bootstrap: falha ao buscar frentista")
		return dto.BootstrapResponse{Status: dto.SessaoVerificado}
	}
	if f != nil && !f.Ativo {
		return dto.BootstrapResponse{Status: dto.SessaoBloqueado, Mensagem: "Conta desativada."}
	}

	// 4. self-heal
	if f == nil {
		f, err = s.autoCadastrar(ctx, id, postoID)
		if err != nil {
			logger.Error().Err(err).Msg("bootstrap: falha ao criar frentista")
			return dto.BootstrapResponse{Status: dto.SessaoBloqueado, Mensagem: "Conta desativada."}
		}
		if !f.Ativo {
			return dto.BootstrapResponse{Status: dto.SessaoBloqueado, Mensagem: "Conta desativada."}
		}
	}
	fr := frentistaResponse(f)
	resp := dto.BootstrapResponse{Status: dto.SessaoVerificado, Frentista: &fr}

	// 5. register already open?
	aberto, err := s.caixas.AbertoHoje(ctx, f.ID, s.agora())
	if err != nil {
		logger.Error().Err(err).Msg("bootstrap: falha ao verificar caixa")
		return resp
	}
	if aberto {
		resp.Status = dto.SessaoPronto
		return resp
	}

	// 6. open it for the current shift
	turno, err := s.turnos.Atual(ctx, f.PostoID)
	if err != nil {
		logger.Error().Err(err).Msg("bootstrap: falha ao resolver turno")
		return resp
	}
	if turno == nil {
		resp.Status = dto.SessaoAberturaManual
		return resp
	}
	tr := TurnoResponse(turno)
	resp.Turno = &tr
	if err := s.abrir(ctx, f, turno); err != nil {
		logger.Warn().Err(err).Int64("turno_id", turno.ID).Msg("bootstrap: abertura automática falhou")
		resp.Status = dto.SessaoAberturaManual
		return resp
	}
	resp.Status = dto.SessaoPronto
	return resp
}

// autoCadastrar creates the identity's attendant record. A concurrent
// bootstrap that created it first wins and its record is returned. The station
// comes from the signup metadata, then the request context, then the default.
func (s *sessaoService) autoCadastrar(ctx context.Context, id *Identidade, contexto int64) (*model.Frentista, error) {
	postoID := s.cfg.DefaultPostoID
	switch {
	case id.PostoID != nil:
		postoID = *id.PostoID
	case contexto > 0:
		postoID = contexto
	}
	hoje := model.Dia(s.agora())
	authID := id.AuthID
	f := &model.Frentista{
		Nome:         id.nomeExibicao(),
		Cpf:          id.Cpf,
		Telefone:     id.Telefone,
		DataAdmissao: &hoje,
		Ativo:        true,
		UserID:       &authID,
		PostoID:      postoID,
	}
	err := s.frentistas.Create(ctx, f)
	if errors.Is(err, repository.ErrDuplicado) {
		existente, ferr := s.frentistas.FindByUserID(ctx, id.AuthID)
		if ferr != nil {
			return nil, ferr
		}
		if existente != nil {
			return existente, nil
		}
	}
	if err != nil {
		return nil, err
	}
	log.Info().Int64("frentista_id", f.ID).Int64("posto_id", postoID).Msg("bootstrap: frentista criado a partir do cadastro")
	return f, nil
}

func (s *sessaoService) abrir(ctx context.Context, f *model.Frentista, turno *model.Turno) error {
	agora := s.agora()
	return s.caixas.Abrir(ctx, &model.AberturaCaixa{
		FrentistaID: f.ID,
		TurnoID:     turno.ID,
		PostoID:     f.PostoID,
		Data:        agora,
		AbertaEm:    agora,
	})
}

// ── AbrirCaixa ────────────────────────────────────────────────────────────────

func (s *sessaoService) AbrirCaixa(ctx context.Context, id *Identidade, req dto.AbrirCaixaRequest) (*dto.AberturaCaixaResponse, error) {
	if id == nil {
		return nil, ErrNaoAutenticado
	}
	f, err := s.frentistas.FindByUserID(ctx, id.AuthID)
	if err != nil {
		return nil, err
	}
	if f == nil || !f.Ativo {
		return nil, ErrFrentistaNaoIdentificado
	}
	turno, err := s.turnoRepo.FindByID(ctx, req.TurnoID)
	if err != nil {
		return nil, err
	}
	if turno == nil || turno.PostoID != f.PostoID {
		return nil, ErrTurnoNaoEncontrado
	}

	agora := s.agora()
	a := &model.AberturaCaixa{
		FrentistaID: f.ID,
		TurnoID:     turno.ID,
		PostoID:     f.PostoID,
		Data:        agora,
		AbertaEm:    agora,
	}
	if err := s.caixas.Abrir(ctx, a); err != nil {
		if errors.Is(err, repository.ErrDuplicado) {
			return nil, ErrCaixaJaAberto
		}
		return nil, err
	}
	return &dto.AberturaCaixaResponse{
		ID:          a.ID,
		FrentistaID: a.FrentistaID,
		TurnoID:     a.TurnoID,
		Data:        a.Data.Format(formatoData),
		AbertaEm:    a.AbertaEm.Format(time.RFC3339),
	}, nil
}
