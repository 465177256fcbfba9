package infra

// Printable closing report for one envelope using go-pdf/fpdf:
//   - Station, date and shift header
//   - Envelope aggregates (received, sales, difference)
//   - One row per attendant line with the payment-method breakdown
//   - Deferred sales grouped under the envelope
//
// The file is written to storagePath/fechamento_{id}.pdf and regenerated on
// every request since undo and new lines change the aggregates.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"postocaixa/internal/model"
	"postocaixa/internal/money"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GerarRelatorioFechamento renders the report and returns the file path.
func GerarRelatorioFechamento(f *model.Fechamento, notas []model.NotaPrazo, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("fechamento_%d.pdf", f.ID))

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, tr("Fechamento de Caixa"), "", 1, "C", false, 0, "")

	turno := "N/A"
	if f.Turno != nil {
		turno = f.Turno.Nome
	}
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("Posto %d  |  %s  |  Turno: %s  |  Status: %s",
		f.PostoID, f.Data.Format("02/01/2006"), turno, f.Status)), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	// ── Envelope totals ──────────────────────────────────────────────────────
	resumo := [][2]string{
		{"Total recebido", money.FormatBRL(f.TotalRecebido)},
		{"Total vendas (encerrante)", money.FormatBRL(f.TotalVendas)},
		{"Diferença", money.FormatBRL(f.Diferenca)},
	}
	for _, r := range resumo {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(60, 5, tr(r[0]+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(40, 5, tr(r[1]), "", 1, "R", false, 0, "")
	}
	if f.Observacoes != nil && *f.Observacoes != "" {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(contentW, 4, tr("Obs.: "+*f.Observacoes), "", "L", false)
	}
	pdf.Ln(3)

	// ── Lines ────────────────────────────────────────────────────────────────
	cols := []struct {
		titulo  string
		largura float64
	}{
		{"Frentista", 45}, {"Cartão", 25}, {"Nota", 22}, {"Pix", 22}, {"Dinheiro", 25},
		{"Moedas", 20}, {"Baratão", 20}, {"Total", 27}, {"Encerrante", 27}, {"Diferença", 27},
	}
	pdf.SetFont("Helvetica", "B", 8)
	for i, c := range cols {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(c.largura, 6, tr(c.titulo), "B", 0, align, false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, l := range f.Linhas {
		nome := fmt.Sprintf("#%d", l.FrentistaID)
		if l.Frentista != nil {
			nome = l.Frentista.Nome
		}
		if len([]rune(nome)) > 28 {
			nome = string([]rune(nome)[:27]) + "…"
		}
		cartao := l.ValorDebito.Add(l.ValorCredito)
		if cartao.IsZero() {
			cartao = l.ValorCartao
		}
		total := money.RoundTwo(l.TotalDeclarado())
		valores := []decimal.Decimal{
			cartao, l.ValorNota, l.ValorPix, l.ValorDinheiro,
			l.ValorMoedas, l.ValorBaratao, total, l.Encerrante, diferencaLinha(l, total),
		}
		pdf.CellFormat(cols[0].largura, 5, tr(nome), "", 0, "L", false, 0, "")
		for i, v := range valores {
			pdf.CellFormat(cols[i+1].largura, 5, tr(money.FormatBRL(v)), "", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}

	// ── Deferred sales ───────────────────────────────────────────────────────
	if len(notas) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 6, tr("Notas a prazo"), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		soma := decimal.Zero
		for _, n := range notas {
			cliente := fmt.Sprintf("Cliente #%d", n.ClienteID)
			if n.Cliente != nil {
				cliente = n.Cliente.Nome
			}
			pdf.CellFormat(90, 5, tr(cliente), "", 0, "L", false, 0, "")
			pdf.CellFormat(30, 5, tr(fmt.Sprintf("Frentista #%d", n.FrentistaID)), "", 0, "L", false, 0, "")
			pdf.CellFormat(30, 5, tr(money.FormatBRL(n.Valor)), "", 1, "R", false, 0, "")
			soma = soma.Add(n.Valor)
		}
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(120, 5, "Total", "T", 0, "L", false, 0, "")
		pdf.CellFormat(30, 5, tr(money.FormatBRL(soma)), "T", 1, "R", false, 0, "")
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("Gerado em "+time.Now().Format("02/01/2006 15:04")), "", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

// diferencaLinha prefers the stored difference over meter − declared.
func diferencaLinha(l model.FechamentoFrentista, total decimal.Decimal) decimal.Decimal {
	if l.DiferencaCalculada != nil {
		return *l.DiferencaCalculada
	}
	return l.Encerrante.Sub(total)
}
