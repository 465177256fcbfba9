package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock movement kinds.
const (
	MovimentoVenda  = "venda"
	MovimentoAjuste = "ajuste"
)

// MovimentoEstoque records every change to a product's stock. Sales write
// one automatically in the same transaction that decrements the stock.
type MovimentoEstoque struct {
	ID              int64           `gorm:"primaryKey"`
	ProdutoID       int64           `gorm:"not null;index"`
	Tipo            string          `gorm:"type:varchar(20);not null"`
	Quantidade      decimal.Decimal `gorm:"type:decimal(10,3);not null"` // positive = entrada, negative = saída
	EstoqueAnterior decimal.Decimal `gorm:"type:decimal(10,3);not null"`
	EstoqueNovo     decimal.Decimal `gorm:"type:decimal(10,3);not null"`
	VendaID         *int64          `gorm:"index"`
	PostoID         int64           `gorm:"not null;index"`
	CreatedAt       time.Time

	Produto *Produto `gorm:"foreignKey:ProdutoID"`
}

func (MovimentoEstoque) TableName() string { return "movimentos_estoque" }
