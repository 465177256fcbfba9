package model

import (
	"time"

	"github.com/google/uuid"
)

// Frentista is the attendant performing a till closing. Attendants are
// soft-deleted (Ativo=false), never removed.
type Frentista struct {
	ID           int64  `gorm:"primaryKey"`
	Nome         string `gorm:"not null"`
	Cpf          *string
	Telefone     *string
	DataAdmissao *time.Time `gorm:"type:date"`
	Ativo        bool       `gorm:"not null;default:true"`
	// UserID links the record to a signed-in identity; unique so a
	// deactivated attendant cannot be silently recreated.
	UserID    *uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	TurnoID   *int64
	PostoID   int64 `gorm:"not null;index"`
	CreatedAt time.Time
}

func (Frentista) TableName() string { return "frentistas" }
