package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// PlaceholderReceipt synthesizes a one-page proof document for a
// statement-imported row that came without an original receipt. It returns a
// PDF data URI suitable for storing in the transaction's receipt field, and
// matches statement.PlaceholderFunc.
func PlaceholderReceipt(date, location string, amount float64) (string, error) {
	pdf := fpdf.New("P", "mm", "A6", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr("Comprovante de Despesa"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Data: %s", date)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Local: %s", location)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Valor: R$ %s", brAmount(amount))), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "I", 8)
	pdf.MultiCell(0, 5, tr("Documento gerado automaticamente a partir do extrato importado."), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return "", fmt.Errorf("report: render placeholder pdf: %w", err)
	}
	return "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func brAmount(v float64) string {
	return strings.ReplaceAll(fmt.Sprintf("%.2f", v), ".", ",")
}
