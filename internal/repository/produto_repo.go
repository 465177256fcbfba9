package repository

import (
	"context"
	"errors"
	"time"

	"postocaixa/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrEstoqueInsuficiente is returned by RegistrarVenda when stock ran out
// between the caller's check and the write.
var ErrEstoqueInsuficiente = errors.New("estoque insuficiente")

type ProdutoRepository interface {
	ListByPosto(ctx context.Context, postoID int64) ([]model.Produto, error)
	FindByID(ctx context.Context, id int64) (*model.Produto, error)
	// RegistrarVenda stores the sale, decrements stock and records the
	// stock movement atomically.
	RegistrarVenda(ctx context.Context, v *model.VendaProduto) error
	VendasDoDia(ctx context.Context, frentistaID int64, dia time.Time) ([]model.VendaProduto, error)
}

type produtoRepo struct{ db *gorm.DB }

func NewProdutoRepository(db *gorm.DB) ProdutoRepository { return &produtoRepo{db: db} }

func (r *produtoRepo) ListByPosto(ctx context.Context, postoID int64) ([]model.Produto, error) {
	var ps []model.Produto
	err := r.db.WithContext(ctx).
		Where("posto_id = ? AND ativo = true", postoID).
		Order("nome ASC").
		Find(&ps).Error
	return ps, err
}

func (r *produtoRepo) FindByID(ctx context.Context, id int64) (*model.Produto, error) {
	var p model.Produto
	ok, err := talvez(r.db.WithContext(ctx).First(&p, id).Error)
	if !ok {
		return nil, err
	}
	return &p, nil
}

func (r *produtoRepo) RegistrarVenda(ctx context.Context, v *model.VendaProduto) error {
	v.Data = model.Dia(v.Data)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.Produto
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, v.ProdutoID).Error; err != nil {
			return err
		}
		if p.EstoqueAtual.LessThan(v.Quantidade) {
			return ErrEstoqueInsuficiente
		}
		novo := p.EstoqueAtual.Sub(v.Quantidade)
		if err := tx.Model(&model.Produto{}).Where("id = ?", p.ID).
			Update("estoque_atual", novo).Error; err != nil {
			return err
		}
		if err := tx.Create(v).Error; err != nil {
			return err
		}
		return tx.Create(&model.MovimentoEstoque{
			ProdutoID:       p.ID,
			Tipo:            model.MovimentoVenda,
			Quantidade:      v.Quantidade.Neg(),
			EstoqueAnterior: p.EstoqueAtual,
			EstoqueNovo:     novo,
			VendaID:         &v.ID,
			PostoID:         v.PostoID,
		}).Error
	})
}

func (r *produtoRepo) VendasDoDia(ctx context.Context, frentistaID int64, dia time.Time) ([]model.VendaProduto, error) {
	var vs []model.VendaProduto
	err := r.db.WithContext(ctx).
		Preload("Produto").
		Where("frentista_id = ? AND data = ?", frentistaID, model.Dia(dia)).
		Order("created_at DESC").
		Find(&vs).Error
	return vs, err
}
