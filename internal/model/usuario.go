package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles stored in Usuario.Role.
const (
	RoleAdmin        = "ADMIN"
	RoleProprietario = "PROPRIETARIO"
	RoleFrentista    = "FRENTISTA"
)

// Usuario is the user profile behind a signed-in identity. AuthID is the
// identity carried in access tokens; ID is the numeric profile id used to
// attribute closing envelopes.
type Usuario struct {
	ID        int64     `gorm:"primaryKey"`
	AuthID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()"`
	Nome      string    `gorm:"not null"`
	Email     string    `gorm:"uniqueIndex;not null"`
	SenhaHash string    `gorm:"not null"`
	Role      string    `gorm:"type:varchar(20);not null;default:'FRENTISTA'"`
	// Signup metadata, used when the attendant record has to be rebuilt.
	Cpf       *string
	Telefone  *string
	PostoID   *int64
	Ativo     bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Usuario) TableName() string { return "usuarios" }

// IsAdmin reports whether the profile bypasses attendant-record requirements.
func (u *Usuario) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleProprietario
}
