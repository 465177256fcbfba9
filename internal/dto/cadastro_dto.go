package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AtualizarFrentistaRequest is a partial patch; nil fields are left alone.
type AtualizarFrentistaRequest struct {
	Nome     *string `json:"nome"     validate:"omitempty,min=2,max=100"`
	Cpf      *string `json:"cpf"      validate:"omitempty,min=11,max=14"`
	Telefone *string `json:"telefone" validate:"omitempty,max=20"`
	TurnoID  *int64  `json:"turno_id" validate:"omitempty,min=1"`
	Ativo    *bool   `json:"ativo"`
}

type SalvarTurnoRequest struct {
	Nome          string `json:"nome"           validate:"required,min=2,max=50"`
	HorarioInicio string `json:"horario_inicio" validate:"required,datetime=15:04"`
	HorarioFim    string `json:"horario_fim"    validate:"required,datetime=15:04"`
	Ativo         *bool  `json:"ativo"`
}

type VendaProdutoRequest struct {
	ProdutoID  int64           `json:"produto_id" validate:"required,min=1"`
	Quantidade decimal.Decimal `json:"quantidade" validate:"gt=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type FrentistaResponse struct {
	ID       int64   `json:"id"`
	Nome     string  `json:"nome"`
	Cpf      *string `json:"cpf"`
	Telefone *string `json:"telefone"`
	Ativo    bool    `json:"ativo"`
	PostoID  int64   `json:"posto_id"`
	TurnoID  *int64  `json:"turno_id"`
	UserID   *string `json:"user_id"`
}

type TurnoResponse struct {
	ID            int64  `json:"id"`
	Nome          string `json:"nome"`
	HorarioInicio string `json:"horario_inicio"`
	HorarioFim    string `json:"horario_fim"`
	Ativo         bool   `json:"ativo"`
}

type ClienteResponse struct {
	ID        int64   `json:"id"`
	Nome      string  `json:"nome"`
	Documento *string `json:"documento"`
	Bloqueado bool    `json:"bloqueado"`
}

type ProdutoResponse struct {
	ID            int64           `json:"id"`
	Nome          string          `json:"nome"`
	Categoria     string          `json:"categoria"`
	PrecoVenda    decimal.Decimal `json:"preco_venda"`
	EstoqueAtual  decimal.Decimal `json:"estoque_atual"`
	UnidadeMedida string          `json:"unidade_medida"`
}

type VendaProdutoResponse struct {
	ID            int64           `json:"id"`
	ProdutoID     int64           `json:"produto_id"`
	Produto       string          `json:"produto"`
	Quantidade    decimal.Decimal `json:"quantidade"`
	ValorUnitario decimal.Decimal `json:"valor_unitario"`
	ValorTotal    decimal.Decimal `json:"valor_total"`
	Data          string          `json:"data"`
}
