package repository

import (
	"context"

	"postocaixa/internal/model"

	"gorm.io/gorm"
)

const limiteBuscaClientes = 20

type ClienteRepository interface {
	ListByPosto(ctx context.Context, postoID int64) ([]model.Cliente, error)
	Search(ctx context.Context, postoID int64, termo string) ([]model.Cliente, error)
	FindByIDs(ctx context.Context, ids []int64) ([]model.Cliente, error)
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) ListByPosto(ctx context.Context, postoID int64) ([]model.Cliente, error) {
	var cs []model.Cliente
	err := r.db.WithContext(ctx).
		Where("posto_id = ? AND ativo = true", postoID).
		Order("nome ASC").
		Find(&cs).Error
	return cs, err
}

func (r *clienteRepo) Search(ctx context.Context, postoID int64, termo string) ([]model.Cliente, error) {
	var cs []model.Cliente
	err := r.db.WithContext(ctx).
		Where("posto_id = ? AND ativo = true AND nome ILIKE ?", postoID, "%"+termo+"%").
		Order("nome ASC").
		Limit(limiteBuscaClientes).
		Find(&cs).Error
	return cs, err
}

// FindByIDs returns the clients that exist among ids, in no particular order.
func (r *clienteRepo) FindByIDs(ctx context.Context, ids []int64) ([]model.Cliente, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var cs []model.Cliente
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&cs).Error
	return cs, err
}
