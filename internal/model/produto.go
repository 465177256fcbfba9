package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Produto is a convenience-store item sold at the station (oil, additives).
type Produto struct {
	ID            int64           `gorm:"primaryKey"`
	Nome          string          `gorm:"index;not null"`
	Descricao     *string
	Categoria     string          `gorm:"not null;default:'geral'"`
	PrecoVenda    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	EstoqueAtual  decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0"`
	EstoqueMinimo decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0"`
	UnidadeMedida string          `gorm:"not null;default:'unidade'"`
	Ativo         bool            `gorm:"not null;default:true"`
	PostoID       int64           `gorm:"not null;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Produto) TableName() string { return "produtos" }
