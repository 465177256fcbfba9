package repository

import (
	"context"
	"time"

	"postocaixa/internal/model"

	"gorm.io/gorm"
)

// CaixaRepository tracks register openings per attendant per day.
type CaixaRepository interface {
	AbertoHoje(ctx context.Context, frentistaID int64, hoje time.Time) (bool, error)
	Abrir(ctx context.Context, a *model.AberturaCaixa) error
}

type caixaRepo struct{ db *gorm.DB }

func NewCaixaRepository(db *gorm.DB) CaixaRepository { return &caixaRepo{db: db} }

func (r *caixaRepo) AbertoHoje(ctx context.Context, frentistaID int64, hoje time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.AberturaCaixa{}).
		Where("frentista_id = ? AND data = ?", frentistaID, model.Dia(hoje)).
		Count(&n).Error
	return n > 0, err
}

// Abrir returns ErrDuplicado when the register was already opened that day.
func (r *caixaRepo) Abrir(ctx context.Context, a *model.AberturaCaixa) error {
	a.Data = model.Dia(a.Data)
	return traduzir(r.db.WithContext(ctx).Create(a).Error)
}
