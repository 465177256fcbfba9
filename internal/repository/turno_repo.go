package repository

import (
	"context"

	"postocaixa/internal/model"

	"gorm.io/gorm"
)

type TurnoRepository interface {
	// ListByPosto returns every window of the station, active or not, in
	// start-time order.
	ListByPosto(ctx context.Context, postoID int64) ([]model.Turno, error)
	FindByID(ctx context.Context, id int64) (*model.Turno, error)
	Create(ctx context.Context, t *model.Turno) error
	Save(ctx context.Context, t *model.Turno) error
}

type turnoRepo struct{ db *gorm.DB }

func NewTurnoRepository(db *gorm.DB) TurnoRepository { return &turnoRepo{db: db} }

func (r *turnoRepo) ListByPosto(ctx context.Context, postoID int64) ([]model.Turno, error) {
	var ts []model.Turno
	err := r.db.WithContext(ctx).
		Where("posto_id = ?", postoID).
		Order("horario_inicio ASC, id ASC").
		Find(&ts).Error
	return ts, err
}

func (r *turnoRepo) FindByID(ctx context.Context, id int64) (*model.Turno, error) {
	var t model.Turno
	ok, err := talvez(r.db.WithContext(ctx).First(&t, id).Error)
	if !ok {
		return nil, err
	}
	return &t, nil
}

func (r *turnoRepo) Create(ctx context.Context, t *model.Turno) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *turnoRepo) Save(ctx context.Context, t *model.Turno) error {
	return r.db.WithContext(ctx).Save(t).Error
}
