package repository

import (
	"context"

	"postocaixa/internal/model"

	"gorm.io/gorm"
)

type NotaPrazoRepository interface {
	// CreateBatch inserts every note or none of them.
	CreateBatch(ctx context.Context, notas []model.NotaPrazo) error
	ListByFechamento(ctx context.Context, fechamentoID int64) ([]model.NotaPrazo, error)
}

type notaPrazoRepo struct{ db *gorm.DB }

func NewNotaPrazoRepository(db *gorm.DB) NotaPrazoRepository { return &notaPrazoRepo{db: db} }

func (r *notaPrazoRepo) CreateBatch(ctx context.Context, notas []model.NotaPrazo) error {
	if len(notas) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&notas).Error
}

func (r *notaPrazoRepo) ListByFechamento(ctx context.Context, fechamentoID int64) ([]model.NotaPrazo, error) {
	var ns []model.NotaPrazo
	err := r.db.WithContext(ctx).
		Preload("Cliente").
		Where("fechamento_id = ?", fechamentoID).
		Order("id ASC").
		Find(&ns).Error
	return ns, err
}
