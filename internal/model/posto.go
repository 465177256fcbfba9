package model

import "time"

// Posto is a physical gas station. It scopes attendants, shift windows,
// products and clients.
type Posto struct {
	ID        int64  `gorm:"primaryKey"`
	Nome      string `gorm:"not null"`
	Cnpj      *string
	Endereco  *string
	Cidade    *string
	Estado    *string
	Telefone  *string
	Email     *string
	Ativo     bool `gorm:"not null;default:true"`
	CreatedAt time.Time
}

func (Posto) TableName() string { return "postos" }
