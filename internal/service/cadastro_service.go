package service

import (
	"context"
	"strings"

	"postocaixa/internal/dto"
	"postocaixa/internal/model"
	"postocaixa/internal/repository"
)

// CadastroService serves the station's reference lists: attendants and
// deferred-sale clients.
type CadastroService interface {
	ListarFrentistas(ctx context.Context, postoID int64) ([]dto.FrentistaResponse, error)
	AtualizarFrentista(ctx context.Context, id int64, req dto.AtualizarFrentistaRequest) (*dto.FrentistaResponse, error)
	ListarClientes(ctx context.Context, postoID int64, busca string) ([]dto.ClienteResponse, error)
}

type cadastroService struct {
	frentistas repository.FrentistaRepository
	clientes   repository.ClienteRepository
}

func NewCadastroService(frentistas repository.FrentistaRepository, clientes repository.ClienteRepository) CadastroService {
	return &cadastroService{frentistas: frentistas, clientes: clientes}
}

func (s *cadastroService) ListarFrentistas(ctx context.Context, postoID int64) ([]dto.FrentistaResponse, error) {
	fs, err := s.frentistas.ListByPosto(ctx, postoID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.FrentistaResponse, len(fs))
	for i := range fs {
		resp[i] = frentistaResponse(&fs[i])
	}
	return resp, nil
}

// AtualizarFrentista patches only the fields present in req. Setting
// ativo=false is the soft delete; attendants are never removed.
func (s *cadastroService) AtualizarFrentista(ctx context.Context, id int64, req dto.AtualizarFrentistaRequest) (*dto.FrentistaResponse, error) {
	campos := map[string]any{}
	if req.Nome != nil {
		campos["nome"] = strings.TrimSpace(*req.Nome)
	}
	if req.Cpf != nil {
		campos["cpf"] = *req.Cpf
	}
	if req.Telefone != nil {
		campos["telefone"] = *req.Telefone
	}
	if req.TurnoID != nil {
		campos["turno_id"] = *req.TurnoID
	}
	if req.Ativo != nil {
		campos["ativo"] = *req.Ativo
	}

	var (
		f   *model.Frentista
		err error
	)
	if len(campos) == 0 {
		f, err = s.frentistas.FindByID(ctx, id)
	} else {
		f, err = s.frentistas.Update(ctx, id, campos)
	}
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrFrentistaNaoEncontrado
	}
	resp := frentistaResponse(f)
	return &resp, nil
}

func (s *cadastroService) ListarClientes(ctx context.Context, postoID int64, busca string) ([]dto.ClienteResponse, error) {
	var (
		cs  []model.Cliente
		err error
	)
	if termo := strings.TrimSpace(busca); termo != "" {
		cs, err = s.clientes.Search(ctx, postoID, termo)
	} else {
		cs, err = s.clientes.ListByPosto(ctx, postoID)
	}
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ClienteResponse, len(cs))
	for i, c := range cs {
		resp[i] = dto.ClienteResponse{ID: c.ID, Nome: c.Nome, Documento: c.Documento, Bloqueado: c.Bloqueado}
	}
	return resp, nil
}

func frentistaResponse(f *model.Frentista) dto.FrentistaResponse {
	r := dto.FrentistaResponse{
		ID:       f.ID,
		Nome:     f.Nome,
		Cpf:      f.Cpf,
		Telefone: f.Telefone,
		Ativo:    f.Ativo,
		PostoID:  f.PostoID,
		TurnoID:  f.TurnoID,
	}
	if f.UserID != nil {
		uid := f.UserID.String()
		r.UserID = &uid
	}
	return r
}
