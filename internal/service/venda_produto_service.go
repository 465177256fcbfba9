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

type VendaProdutoService interface {
	ListarProdutos(ctx context.Context, postoID int64) ([]dto.ProdutoResponse, error)
	Registrar(ctx context.Context, id *Identidade, postoID int64, req dto.VendaProdutoRequest) (*dto.VendaProdutoResponse, error)
	VendasDeHoje(ctx context.Context, id *Identidade) ([]dto.VendaProdutoResponse, error)
}

type vendaProdutoService struct {
	produtos   repository.ProdutoRepository
	frentistas repository.FrentistaRepository
	agora      func() time.Time
}

func NewVendaProdutoService(produtos repository.ProdutoRepository, frentistas repository.FrentistaRepository, agora func() time.Time) VendaProdutoService {
	return &vendaProdutoService{produtos: produtos, frentistas: frentistas, agora: agora}
}

func (s *vendaProdutoService) ListarProdutos(ctx context.Context, postoID int64) ([]dto.ProdutoResponse, error) {
	ps, err := s.produtos.ListByPosto(ctx, postoID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProdutoResponse, len(ps))
	for i, p := range ps {
		resp[i] = dto.ProdutoResponse{
			ID:            p.ID,
			Nome:          p.Nome,
			Categoria:     p.Categoria,
			PrecoVenda:    p.PrecoVenda,
			EstoqueAtual:  p.EstoqueAtual,
			UnidadeMedida: p.UnidadeMedida,
		}
	}
	return resp, nil
}

// ── Registrar ─────────────────────────────────────────────────────────────────
// Total is quantity × current price; stock is checked here for a friendly
// message and again under lock by the repository.

func (s *vendaProdutoService) Registrar(ctx context.Context, id *Identidade, postoID int64, req dto.VendaProdutoRequest) (*dto.VendaProdutoResponse, error) {
	f, err := s.frentistaDe(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.produtos.FindByID(ctx, req.ProdutoID)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.Ativo || p.PostoID != postoID {
		return nil, ErrProdutoNaoEncontrado
	}
	if p.EstoqueAtual.LessThan(req.Quantidade) {
		return nil, ErrEstoqueInsuficiente
	}

	v := &model.VendaProduto{
		FrentistaID:   f.ID,
		ProdutoID:     p.ID,
		Quantidade:    req.Quantidade,
		ValorUnitario: p.PrecoVenda,
		ValorTotal:    req.Quantidade.Mul(p.PrecoVenda).Round(2),
		Data:          s.agora(),
		PostoID:       postoID,
	}
	if err := s.produtos.RegistrarVenda(ctx, v); err != nil {
		if errors.Is(err, repository.ErrEstoqueInsuficiente) {
			return nil, ErrEstoqueInsuficiente
		}
		return nil, err
	}
	log.Info().Int64("produto_id", p.ID).Int64("frentista_id", f.ID).Str("total", v.ValorTotal.StringFixed(2)).Msg("venda de produto registrada")

	resp := vendaResponse(v, p.Nome)
	return &resp, nil
}

func (s *vendaProdutoService) VendasDeHoje(ctx context.Context, id *Identidade) ([]dto.VendaProdutoResponse, error) {
	f, err := s.frentistaDe(ctx, id)
	if err != nil {
		return nil, err
	}
	vs, err := s.produtos.VendasDoDia(ctx, f.ID, s.agora())
	if err != nil {
		return nil, err
	}
	resp := make([]dto.VendaProdutoResponse, len(vs))
	for i := range vs {
		nome := ""
		if vs[i].Produto != nil {
			nome = vs[i].Produto.Nome
		}
		resp[i] = vendaResponse(&vs[i], nome)
	}
	return resp, nil
}

func (s *vendaProdutoService) frentistaDe(ctx context.Context, id *Identidade) (*model.Frentista, error) {
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
	return f, nil
}

func vendaResponse(v *model.VendaProduto, produto string) dto.VendaProdutoResponse {
	return dto.VendaProdutoResponse{
		ID:            v.ID,
		ProdutoID:     v.ProdutoID,
		Produto:       produto,
		Quantidade:    v.Quantidade,
		ValorUnitario: v.ValorUnitario,
		ValorTotal:    v.ValorTotal,
		Data:          model.Dia(v.Data).Format(formatoData),
	}
}
