package repository

import (
	"context"

	"postocaixa/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UsuarioRepository interface {
	Create(ctx context.Context, u *model.Usuario) error
	FindByEmail(ctx context.Context, email string) (*model.Usuario, error)
	FindByAuthID(ctx context.Context, authID uuid.UUID) (*model.Usuario, error)
	// FirstAdmin and First back the shared-device attribution fallback.
	FirstAdmin(ctx context.Context) (*model.Usuario, error)
	First(ctx context.Context) (*model.Usuario, error)
}

type usuarioRepo struct{ db *gorm.DB }

func NewUsuarioRepository(db *gorm.DB) UsuarioRepository { return &usuarioRepo{db: db} }

func (r *usuarioRepo) Create(ctx context.Context, u *model.Usuario) error {
	return traduzir(r.db.WithContext(ctx).Create(u).Error)
}

func (r *usuarioRepo) FindByEmail(ctx context.Context, email string) (*model.Usuario, error) {
	var u model.Usuario
	ok, err := talvez(r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		First(&u).Error)
	if !ok {
		return nil, err
	}
	return &u, nil
}

func (r *usuarioRepo) FindByAuthID(ctx context.Context, authID uuid.UUID) (*model.Usuario, error) {
	var u model.Usuario
	ok, err := talvez(r.db.WithContext(ctx).Where("auth_id = ?", authID).First(&u).Error)
	if !ok {
		return nil, err
	}
	return &u, nil
}

func (r *usuarioRepo) FirstAdmin(ctx context.Context) (*model.Usuario, error) {
	var u model.Usuario
	ok, err := talvez(r.db.WithContext(ctx).
		Where("role = ?", model.RoleAdmin).
		Order("id ASC").
		First(&u).Error)
	if !ok {
		return nil, err
	}
	return &u, nil
}

func (r *usuarioRepo) First(ctx context.Context) (*model.Usuario, error) {
	var u model.Usuario
	ok, err := talvez(r.db.WithContext(ctx).Order("id ASC").First(&u).Error)
	if !ok {
		return nil, err
	}
	return &u, nil
}
