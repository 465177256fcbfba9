package service

import (
	"postocaixa/internal/dto"
	"postocaixa/internal/money"

	"github.com/shopspring/decimal"
)

// Campos of the closing form.
const (
	CampoEncerrante = "encerrante"
	CampoDebito     = "debito"
	CampoCredito    = "credito"
	CampoPix        = "pix"
	CampoDinheiro   = "dinheiro"
	CampoMoedas     = "moedas"
	CampoBaratao    = "baratao"
	CampoNotaAvulsa = "nota_avulsa"
)

// Situacao classifies a closing difference.
type Situacao string

const (
	SituacaoFalta         Situacao = "falta"
	SituacaoSobra         Situacao = "sobra"
	SituacaoBateu         Situacao = "bateu"
	SituacaoIndeterminada Situacao = "indeterminado"
)

// tolerancia absorbs arithmetic noise only; it is not a business allowance.
var tolerancia = decimal.New(1, -3)

// NotaForm is one deferred-sale row on the form.
type NotaForm struct {
	ClienteID int64
	Valor     string
}

// Formulario is the closing form as typed. It is a value: every change
// returns a new Formulario and leaves the receiver untouched.
type Formulario struct {
	campos map[string]string
	notas  []NotaForm
}

// With returns a copy of f with campo set to valor.
func (f Formulario) With(campo, valor string) Formulario {
	campos := make(map[string]string, len(f.campos)+1)
	for k, v := range f.campos {
		campos[k] = v
	}
	campos[campo] = valor
	return Formulario{campos: campos, notas: f.notas}
}

// ComNota returns a copy of f with a deferred-sale row appended.
func (f Formulario) ComNota(clienteID int64, valor string) Formulario {
	notas := make([]NotaForm, len(f.notas), len(f.notas)+1)
	copy(notas, f.notas)
	return Formulario{campos: f.campos, notas: append(notas, NotaForm{ClienteID: clienteID, Valor: valor})}
}

// SemNota returns a copy of f without the i-th deferred-sale row.
func (f Formulario) SemNota(i int) Formulario {
	if i < 0 || i >= len(f.notas) {
		return f
	}
	notas := make([]NotaForm, 0, len(f.notas)-1)
	notas = append(notas, f.notas[:i]...)
	notas = append(notas, f.notas[i+1:]...)
	return Formulario{campos: f.campos, notas: notas}
}

func (f Formulario) Campo(campo string) string { return f.campos[campo] }

func (f Formulario) Notas() []NotaForm {
	out := make([]NotaForm, len(f.notas))
	copy(out, f.notas)
	return out
}

func (f Formulario) valor(campo string) decimal.Decimal {
	return money.RoundTwo(money.Parse(f.campos[campo]))
}

// Conciliacao is everything derived from a Formulario.
type Conciliacao struct {
	Encerrante     decimal.Decimal
	TotalCartao    decimal.Decimal
	TotalNotas     decimal.Decimal
	TotalInformado decimal.Decimal
	Diferenca      decimal.Decimal
	Situacao       Situacao
}

// Calcular derives the reconciliation from the form. It has no side effects
// and is meant to run on every keystroke.
func Calcular(f Formulario) Conciliacao {
	encerrante := f.valor(CampoEncerrante)
	cartao := f.valor(CampoDebito).Add(f.valor(CampoCredito))

	notas := f.valor(CampoNotaAvulsa)
	for _, n := range f.notas {
		notas = notas.Add(money.RoundTwo(money.Parse(n.Valor)))
	}

	total := cartao.
		Add(notas).
		Add(f.valor(CampoPix)).
		Add(f.valor(CampoDinheiro)).
		Add(f.valor(CampoMoedas)).
		Add(f.valor(CampoBaratao))
	total = money.RoundTwo(total)
	diferenca := money.RoundTwo(encerrante.Sub(total))

	return Conciliacao{
		Encerrante:     encerrante,
		TotalCartao:    money.RoundTwo(cartao),
		TotalNotas:     money.RoundTwo(notas),
		TotalInformado: total,
		Diferenca:      diferenca,
		Situacao:       Classificar(encerrante, diferenca),
	}
}

// Classificar partitions a difference into exactly one Situacao. A closing
// with no meter reading is never reported as balanced.
func Classificar(encerrante, diferenca decimal.Decimal) Situacao {
	switch {
	case diferenca.GreaterThan(tolerancia):
		return SituacaoFalta
	case diferenca.LessThan(tolerancia.Neg()):
		return SituacaoSobra
	case encerrante.IsPositive():
		return SituacaoBateu
	default:
		return SituacaoIndeterminada
	}
}

// FormularioDe builds a Formulario from the raw request text.
func FormularioDe(req dto.CalcularRequest) Formulario {
	f := Formulario{}.
		With(CampoEncerrante, req.Encerrante).
		With(CampoDebito, req.Debito).
		With(CampoCredito, req.Credito).
		With(CampoPix, req.Pix).
		With(CampoDinheiro, req.Dinheiro).
		With(CampoMoedas, req.Moedas).
		With(CampoBaratao, req.Baratao).
		With(CampoNotaAvulsa, req.NotaAvulsa)
	for _, v := range req.Notas {
		f = f.ComNota(0, v)
	}
	return f
}

func ConciliacaoResponse(c Conciliacao) dto.ConciliacaoResponse {
	resp := dto.ConciliacaoResponse{
		Encerrante:     c.Encerrante,
		TotalCartao:    c.TotalCartao,
		TotalNotas:     c.TotalNotas,
		TotalInformado: c.TotalInformado,
		Diferenca:      c.Diferenca,
		Situacao:       string(c.Situacao),
	}
	resp.Formatado.TotalInformado = money.FormatBRL(c.TotalInformado)
	resp.Formatado.Diferenca = money.FormatBRL(c.Diferenca)
	return resp
}
