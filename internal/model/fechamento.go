package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusFechado is the only status the closing flow writes.
const StatusFechado = "FECHADO"

// Fechamento is the shared closing envelope for one (data, turno, posto).
// Its aggregate fields are fully recomputed from every line on each write.
type Fechamento struct {
	ID            int64           `gorm:"primaryKey"`
	Data          time.Time       `gorm:"type:date;not null;uniqueIndex:idx_fechamento_periodo"`
	TurnoID       int64           `gorm:"not null;uniqueIndex:idx_fechamento_periodo"`
	PostoID       int64           `gorm:"not null;uniqueIndex:idx_fechamento_periodo"`
	UsuarioID     *int64          `gorm:"index"`
	Status        string          `gorm:"type:varchar(20);not null;default:'FECHADO'"`
	TotalRecebido decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalVendas   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Diferenca     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Observacoes   *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Turno  *Turno                `gorm:"foreignKey:TurnoID"`
	Linhas []FechamentoFrentista `gorm:"foreignKey:FechamentoID"`
}

func (Fechamento) TableName() string { return "fechamentos" }

// FechamentoFrentista is one attendant's contribution to an envelope.
// (fechamento_id, frentista_id) is unique.
type FechamentoFrentista struct {
	ID           int64 `gorm:"primaryKey"`
	FechamentoID int64 `gorm:"not null;uniqueIndex:idx_linha_frentista"`
	FrentistaID  int64 `gorm:"not null;uniqueIndex:idx_linha_frentista;index"`

	// ValorCartao is kept for older rows; new lines split debit and credit.
	ValorCartao   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ValorDebito   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ValorCredito  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ValorNota     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ValorPix      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ValorDinheiro decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ValorMoedas   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ValorBaratao  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	ValorConferido     decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	Encerrante         decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	DiferencaCalculada *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Observacoes        *string
	PostoID            int64 `gorm:"not null;index"`
	CreatedAt          time.Time

	Fechamento *Fechamento `gorm:"foreignKey:FechamentoID"`
	Frentista  *Frentista  `gorm:"foreignKey:FrentistaID"`
}

func (FechamentoFrentista) TableName() string { return "fechamento_frentistas" }

// TotalDeclarado sums every payment method on the line. Legacy rows that only
// carry ValorCartao count it in place of debit+credit.
func (l FechamentoFrentista) TotalDeclarado() decimal.Decimal {
	cartao := l.ValorDebito.Add(l.ValorCredito)
	if cartao.IsZero() {
		cartao = l.ValorCartao
	}
	return cartao.
		Add(l.ValorNota).
		Add(l.ValorPix).
		Add(l.ValorDinheiro).
		Add(l.ValorMoedas).
		Add(l.ValorBaratao)
}

// NotaPrazo is a deferred sale charged to a client's account.
type NotaPrazo struct {
	ID           int64           `gorm:"primaryKey"`
	ClienteID    int64           `gorm:"not null;index"`
	FrentistaID  int64           `gorm:"not null;index"`
	FechamentoID *int64          `gorm:"index"`
	Data         time.Time       `gorm:"type:date;not null"`
	Valor        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PostoID      int64           `gorm:"not null;index"`
	CriadoEm     time.Time       `gorm:"not null"`

	Cliente *Cliente `gorm:"foreignKey:ClienteID"`
}

func (NotaPrazo) TableName() string { return "notas_frentista" }

// Dia truncates t to its calendar date in t's own location and returns it as
// midnight UTC, the form every date column is compared in.
func Dia(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
