package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type NotaPrazoItem struct {
	ClienteID int64           `json:"cliente_id" validate:"required,min=1"`
	Valor     decimal.Decimal `json:"valor"      validate:"gt=0"`
}

// FechamentoRequest is one attendant's closing for a (data, turno, posto).
// Amounts are already-parsed decimals; FrentistaID is optional and, when
// absent, the attendant is resolved from the caller's identity.
type FechamentoRequest struct {
	Data          string          `json:"data"           validate:"required,datetime=2006-01-02"`
	TurnoID       int64           `json:"turno_id"       validate:"required,min=1"`
	FrentistaID   *int64          `json:"frentista_id"   validate:"omitempty,min=1"`
	Encerrante    decimal.Decimal `json:"encerrante"     validate:"min=0"`
	ValorDebito   decimal.Decimal `json:"valor_debito"   validate:"min=0"`
	ValorCredito  decimal.Decimal `json:"valor_credito"  validate:"min=0"`
	ValorNota     decimal.Decimal `json:"valor_nota"     validate:"min=0"`
	ValorPix      decimal.Decimal `json:"valor_pix"      validate:"min=0"`
	ValorDinheiro decimal.Decimal `json:"valor_dinheiro" validate:"min=0"`
	ValorMoedas   decimal.Decimal `json:"valor_moedas"   validate:"min=0"`
	ValorBaratao  decimal.Decimal `json:"valor_baratao"  validate:"min=0"`
	// Diferenca is the signed difference shown to the attendant; nil means
	// the server computes encerrante - total.
	Diferenca   *decimal.Decimal `json:"diferenca"`
	Observacoes *string          `json:"observacoes"    validate:"omitempty,max=500"`
	// TotalVendas overrides the envelope's expected total when non-zero.
	TotalVendas *decimal.Decimal `json:"total_vendas"`
	Notas       []NotaPrazoItem  `json:"notas"          validate:"omitempty,dive"`
}

type DesfazerFechamentoRequest struct {
	FrentistaID int64  `json:"frentista_id" validate:"required,min=1"`
	Data        string `json:"data"         validate:"required,datetime=2006-01-02"`
	TurnoID     int64  `json:"turno_id"     validate:"required,min=1"`
}

// CalcularRequest carries the raw form text exactly as typed.
type CalcularRequest struct {
	Encerrante string   `json:"encerrante"`
	Debito     string   `json:"debito"`
	Credito    string   `json:"credito"`
	Pix        string   `json:"pix"`
	Dinheiro   string   `json:"dinheiro"`
	Moedas     string   `json:"moedas"`
	Baratao    string   `json:"baratao"`
	NotaAvulsa string   `json:"nota_avulsa"`
	Notas      []string `json:"notas"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ResultadoFechamento struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	FechamentoID *int64 `json:"fechamento_id,omitempty"`
}

type ConciliacaoResponse struct {
	Encerrante     decimal.Decimal `json:"encerrante"`
	TotalCartao    decimal.Decimal `json:"total_cartao"`
	TotalNotas     decimal.Decimal `json:"total_notas"`
	TotalInformado decimal.Decimal `json:"total_informado"`
	Diferenca      decimal.Decimal `json:"diferenca"`
	Situacao       string          `json:"situacao"` // falta | sobra | bateu | indeterminado
	Formatado      struct {
		TotalInformado string `json:"total_informado"`
		Diferenca      string `json:"diferenca"`
	} `json:"formatado"`
}

type FecharamResponse struct {
	FrentistaIDs []int64 `json:"frentista_ids"`
}

type HistoricoItem struct {
	ID             int64           `json:"id"`
	Data           string          `json:"data"`
	Turno          string          `json:"turno"`
	TotalInformado decimal.Decimal `json:"total_informado"`
	Encerrante     decimal.Decimal `json:"encerrante"`
	Diferenca      decimal.Decimal `json:"diferenca"`
	Status         string          `json:"status"` // ok | divergente
	Observacoes    *string         `json:"observacoes"`
}
