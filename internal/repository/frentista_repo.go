package repository

import (
	"context"

	"postocaixa/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FrentistaRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Frentista, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Frentista, error)
	ListByPosto(ctx context.Context, postoID int64) ([]model.Frentista, error)
	Create(ctx context.Context, f *model.Frentista) error
	Update(ctx context.Context, id int64, campos map[string]any) (*model.Frentista, error)
}

type frentistaRepo struct{ db *gorm.DB }

func NewFrentistaRepository(db *gorm.DB) FrentistaRepository { return &frentistaRepo{db: db} }

// FindByID returns nil, nil when the attendant does not exist.
func (r *frentistaRepo) FindByID(ctx context.Context, id int64) (*model.Frentista, error) {
	var f model.Frentista
	ok, err := talvez(r.db.WithContext(ctx).First(&f, id).Error)
	if !ok {
		return nil, err
	}
	return &f, nil
}

// FindByUserID looks up the attendant linked to an auth identity, active or
// not; the caller decides what a deactivated record means.
func (r *frentistaRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Frentista, error) {
	var f model.Frentista
	ok, err := talvez(r.db.WithContext(ctx).Where("user_id = ?", userID).First(&f).Error)
	if !ok {
		return nil, err
	}
	return &f, nil
}

func (r *frentistaRepo) ListByPosto(ctx context.Context, postoID int64) ([]model.Frentista, error) {
	var fs []model.Frentista
	err := r.db.WithContext(ctx).
		Where("posto_id = ? AND ativo = true", postoID).
		Order("nome ASC").
		Find(&fs).Error
	return fs, err
}

func (r *frentistaRepo) Create(ctx context.Context, f *model.Frentista) error {
	return traduzir(r.db.WithContext(ctx).Create(f).Error)
}

// Update applies a partial patch and returns the stored row, or nil when the
// id does not exist.
func (r *frentistaRepo) Update(ctx context.Context, id int64, campos map[string]any) (*model.Frentista, error) {
	res := r.db.WithContext(ctx).Model(&model.Frentista{}).Where("id = ?", id).Updates(campos)
	if res.Error != nil {
		return nil, traduzir(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}
