// Package money converts free-text amounts typed by attendants into exact
// decimal values and back into the "R$ 1.234,56" display format.
//
// Parsing never fails: empty or unparseable input is zero.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

const prefixo = "R$"

// Parse converts user input into a decimal. It accepts thousands separators,
// either '.' or ',' as the decimal mark and an optional "R$" prefix.
//
//	"R$ 1.234,56" → 1234.56
//	"1234.5"      → 1234.5
//	"1.000"       → 1000
//	""            → 0
func Parse(text string) decimal.Decimal {
	s := strings.TrimSpace(text)
	s = strings.TrimSpace(strings.TrimPrefix(s, prefixo))
	if s == "" {
		return decimal.Zero
	}

	var inteiro, fracao string
	switch {
	case strings.Contains(s, ","):
		// Comma wins: the last comma is the decimal mark, dots are grouping.
		i := strings.LastIndex(s, ",")
		inteiro, fracao = s[:i], s[i+1:]
	case strings.Contains(s, "."):
		i := strings.LastIndex(s, ".")
		if pontoDecimal(s, i) {
			inteiro, fracao = s[:i], s[i+1:]
		} else {
			inteiro = s
		}
	default:
		inteiro = s
	}

	inteiro = digitos(inteiro)
	fracao = digitos(fracao)
	if inteiro == "" && fracao == "" {
		return decimal.Zero
	}
	if inteiro == "" {
		inteiro = "0"
	}
	num := inteiro
	if fracao != "" {
		num += "." + fracao
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// pontoDecimal decides whether the dot at index i (the last one) is a decimal
// mark. A single dot followed by exactly three digits after a non-zero
// integer part is read as grouping ("1.000"), as is any dot when several are
// present ("1.234.567").
func pontoDecimal(s string, i int) bool {
	if strings.Count(s, ".") > 1 {
		return false
	}
	depois := digitos(s[i+1:])
	antes := strings.TrimLeft(digitos(s[:i]), "0")
	if len(depois) == 3 && antes != "" && len(antes) <= 3 {
		return false
	}
	return true
}

// RoundTwo rounds to two fractional digits, half away from zero.
func RoundTwo(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundFloat converts a float through its shortest decimal representation
// before rounding, so binary residue such as 19.999999999999998 becomes 20.00
// instead of surviving as a non-terminating value.
func RoundFloat(f float64) decimal.Decimal {
	return RoundTwo(decimal.NewFromFloat(f))
}

// FormatarEntrada reformats partially typed input for display while the user
// is still typing: the integer part is grouped every three digits, leading
// zeros are collapsed and, once a decimal separator has been typed, the
// decimal digits are passed through verbatim.
//
// A lone dot is read with the same rule Parse uses, so the text shown always
// parses back to the value typed.
//
//	"1234"      → "R$ 1.234"
//	"R$ 1.234"  → "R$ 1.234"
//	"12,5"      → "R$ 12,5"
//	"12.50"     → "R$ 12,50"
//	"12."       → "R$ 12,"
func FormatarEntrada(text string) string {
	s := strings.TrimSpace(text)
	s = strings.TrimSpace(strings.TrimPrefix(s, prefixo))
	if s == "" {
		return ""
	}
	if !strings.Contains(s, ",") {
		if i := strings.LastIndex(s, "."); i >= 0 && pontoDecimal(s, i) {
			s = s[:i] + "," + s[i+1:]
		}
	}

	intPart, decPart, temDecimal := strings.Cut(s, ",")
	inteiro := strings.TrimLeft(digitos(intPart), "0")
	if inteiro == "" && (temDecimal || strings.ContainsAny(digitos(intPart), "0")) {
		inteiro = "0"
	}
	if inteiro == "" {
		return ""
	}
	inteiro = agrupar(inteiro)

	if temDecimal {
		return prefixo + " " + inteiro + "," + digitos(decPart)
	}
	return prefixo + " " + inteiro
}

// FormatBRL renders a value the way the register screens display it:
// "R$ 1.234,56", "-R$ 10,00".
func FormatBRL(d decimal.Decimal) string {
	sinal := ""
	if d.IsNegative() {
		sinal = "-"
		d = d.Neg()
	}
	fixo := RoundTwo(d).StringFixed(2)
	inteiro, fracao, _ := strings.Cut(fixo, ".")
	return sinal + prefixo + " " + agrupar(inteiro) + "," + fracao
}

func agrupar(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func digitos(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
