package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// VendaProduto is a discrete product sale registered by an attendant.
// ValorTotal is always Quantidade × ValorUnitario at the time of the sale.
type VendaProduto struct {
	ID                    int64           `gorm:"primaryKey"`
	FrentistaID           int64           `gorm:"not null;index"`
	ProdutoID             int64           `gorm:"not null;index"`
	Quantidade            decimal.Decimal `gorm:"type:decimal(10,3);not null"`
	ValorUnitario         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ValorTotal            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Data                  time.Time       `gorm:"type:date;not null;index"`
	PostoID               int64           `gorm:"not null;index"`
	FechamentoFrentistaID *int64
	CreatedAt             time.Time

	Produto *Produto `gorm:"foreignKey:ProdutoID"`
}

func (VendaProduto) TableName() string { return "vendas_produtos" }
