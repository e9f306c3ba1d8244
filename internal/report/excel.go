package report

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/caixinha/caixinha-server/internal/domain"
)

// ErrNoData means there is nothing to export.
var ErrNoData = errors.New("report: no transactions to export")

const sheetName = "Relatório Geral"

// warnInvoiceBelow flags fuel rows whose invoice came in under the computed
// reimbursement, so the reviewer can reconcile before submitting.
const warnInvoiceBelow = "Nota abaixo do reembolso"

var excelHeader = []any{
	"Tipo", "Data", "Operação", "Categoria", "Cidade",
	"Valor (R$)", "Valor Nota (R$)", "Alerta", "Observação",
}

// Excel renders every transaction onto a single general-report sheet and
// returns the workbook bytes.
func Excel(transactions []domain.Transaction) ([]byte, error) {
	if len(transactions) == 0 {
		return nil, ErrNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("report: rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &excelHeader); err != nil {
		return nil, fmt.Errorf("report: write header: %w", err)
	}

	for i, t := range transactions {
		cell := fmt.Sprintf("A%d", i+2)
		row := excelRow(t)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("report: write row %d: %w", i, err)
		}
	}

	widths := []float64{14, 12, 28, 26, 30, 14, 14, 24, 40}
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheetName, col, col, w); err != nil {
			return nil, fmt.Errorf("report: set column width: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("report: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func excelRow(t domain.Transaction) []any {
	switch t.Type {
	case domain.TypeFuel:
		fu := t.Fuel
		warn := ""
		if fu.InvoiceBelowReimbursement() {
			warn = warnInvoiceBelow
		}
		return []any{
			"Combustível",
			fu.Date,
			fu.Operation,
			fmt.Sprintf("Combustível - %s (%s)", fu.FuelType, fu.RoadType),
			fmt.Sprintf("%s -> %s", fu.Origin, fu.Destination),
			fu.TotalValue,
			fu.ReceiptAmount,
			warn,
			fmt.Sprintf("Distância: %vkm - Carro: %s", fu.DistanceKm, fu.CarType),
		}
	default:
		e := t.Expense
		return []any{
			"Despesa",
			e.Date,
			e.Operation,
			e.Category,
			e.City,
			e.Amount,
			e.ReceiptAmount,
			"",
			e.Notes,
		}
	}
}
