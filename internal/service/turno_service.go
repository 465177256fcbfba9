package service

import (
	"context"
	"strings"
	"time"

	"postocaixa/internal/dto"
	"postocaixa/internal/model"
	"postocaixa/internal/repository"

	"github.com/rs/zerolog/log"
)

const turnoPadrao = "diário"

type TurnoService interface {
	Listar(ctx context.Context, postoID int64) ([]dto.TurnoResponse, error)
	// Atual returns the window that contains "now" at the station, or nil
	// when the station has no windows at all.
	Atual(ctx context.Context, postoID int64) (*model.Turno, error)
	Criar(ctx context.Context, postoID int64, req dto.SalvarTurnoRequest) (*dto.TurnoResponse, error)
	Atualizar(ctx context.Context, postoID, id int64, req dto.SalvarTurnoRequest) (*dto.TurnoResponse, error)
}

type turnoService struct {
	repo        repository.TurnoRepository
	notificador Notificador
	agora       func() time.Time
}

// NewTurnoService builds the service. agora must return the station's local
// time; it is a parameter so tests can pin the clock.
func NewTurnoService(repo repository.TurnoRepository, notificador Notificador, agora func() time.Time) TurnoService {
	return &turnoService{repo: repo, notificador: notificador, agora: agora}
}

func (s *turnoService) Listar(ctx context.Context, postoID int64) ([]dto.TurnoResponse, error) {
	turnos, err := s.repo.ListByPosto(ctx, postoID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.TurnoResponse, len(turnos))
	for i := range turnos {
		resp[i] = TurnoResponse(&turnos[i])
	}
	return resp, nil
}

func (s *turnoService) Atual(ctx context.Context, postoID int64) (*model.Turno, error) {
	turnos, err := s.repo.ListByPosto(ctx, postoID)
	if err != nil {
		return nil, err
	}
	t := ResolverTurno(turnos, s.agora())
	if t == nil {
		log.Warn().Int64("posto_id", postoID).Msg("turno: nenhum turno cadastrado para o posto")
	}
	return t, nil
}

func (s *turnoService) Criar(ctx context.Context, postoID int64, req dto.SalvarTurnoRequest) (*dto.TurnoResponse, error) {
	t := &model.Turno{PostoID: postoID}
	aplicarTurno(t, req)
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.publicar(ctx, postoID)
	resp := TurnoResponse(t)
	return &resp, nil
}

func (s *turnoService) Atualizar(ctx context.Context, postoID, id int64, req dto.SalvarTurnoRequest) (*dto.TurnoResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil || t.PostoID != postoID {
		return nil, ErrTurnoNaoEncontrado
	}
	aplicarTurno(t, req)
	if err := s.repo.Save(ctx, t); err != nil {
		return nil, err
	}
	s.publicar(ctx, postoID)
	resp := TurnoResponse(t)
	return &resp, nil
}

func aplicarTurno(t *model.Turno, req dto.SalvarTurnoRequest) {
	t.Nome = strings.TrimSpace(req.Nome)
	t.HorarioInicio = req.HorarioInicio
	t.HorarioFim = req.HorarioFim
	if req.Ativo != nil {
		t.Ativo = req.Ativo
	}
}

func (s *turnoService) publicar(ctx context.Context, postoID int64) {
	if s.notificador == nil {
		return
	}
	if err := s.notificador.Publicar(ctx, postoID, EventoTurno); err != nil {
		log.Warn().Err(err).Int64("posto_id", postoID).Msg("turno: falha ao publicar mudança")
	}
}

// ResolverTurno picks the window containing the wall-clock time of agora.
// Windows flagged inactive are ignored unless every window is. With no match
// it falls back to the window named "Diário", then to the first candidate.
func ResolverTurno(turnos []model.Turno, agora time.Time) *model.Turno {
	candidatos := make([]model.Turno, 0, len(turnos))
	for _, t := range turnos {
		if t.Ativado() {
			candidatos = append(candidatos, t)
		}
	}
	if len(candidatos) == 0 {
		candidatos = turnos
	}
	if len(candidatos) == 0 {
		return nil
	}

	hhmm := agora.Format("15:04")
	for i := range candidatos {
		if contem(candidatos[i], hhmm) {
			return &candidatos[i]
		}
	}
	for i := range candidatos {
		if strings.EqualFold(strings.TrimSpace(candidatos[i].Nome), turnoPadrao) {
			return &candidatos[i]
		}
	}
	return &candidatos[0]
}

// contem compares zero-padded "HH:MM" strings lexically.
func contem(t model.Turno, hhmm string) bool {
	inicio, fim := horario(t.HorarioInicio), horario(t.HorarioFim)
	if inicio <= fim {
		return hhmm >= inicio && hhmm < fim
	}
	return hhmm >= inicio || hhmm < fim
}

// horario keeps the "HH:MM" prefix of values stored as "HH:MM:SS".
func horario(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 5 {
		return s[:5]
	}
	return s
}

// TurnoResponse renders a window with times trimmed to "HH:MM".
func TurnoResponse(t *model.Turno) dto.TurnoResponse {
	return dto.TurnoResponse{
		ID:            t.ID,
		Nome:          t.Nome,
		HorarioInicio: horario(t.HorarioInicio),
		HorarioFim:    horario(t.HorarioFim),
		Ativo:         t.Ativado(),
	}
}
