package statement

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/caixinha/caixinha-server/internal/domain"
)

// ModelClient generates text from an instruction prompt plus an attached
// document. Both extraction providers satisfy it.
type ModelClient interface {
	Generate(ctx context.Context, prompt string, payload []byte, mimeType string) (string, error)
}

// PDFParser routes a whole PDF statement through the extraction model and
// maps the returned entries onto draft expenses.
type PDFParser struct {
	Model       ModelClient
	Placeholder PlaceholderFunc
}

const pdfPrompt = `Analise este extrato (pedágio/estacionamento/banco).
Responda APENAS um array JSON válido. Não use Markdown, não use cercas de código.
Cada item do array deve ter exatamente estes campos:
{
  "date": (String "YYYY-MM-DD"),
  "city": (String. Local ou estabelecimento),
  "amount": (Número float, valor cobrado),
  "category": (String. "Pedágio", "Estacionamento" ou "Taxas")
}
A resposta deve começar com "[" e terminar com "]".`

type pdfEntry struct {
	Date     string          `json:"date"`
	City     string          `json:"city"`
	Amount   json.RawMessage `json:"amount"`
	Category string          `json:"category"`
}

// Parse sends the PDF to the model and normalizes the response. A response
// that cannot be coerced into a transaction array yields
// ErrNoTransactionsFound so the user sees an explicit "nothing found"
// instead of a silent partial import.
func (p *PDFParser) Parse(ctx context.Context, pdfBytes []byte, source string) (*DraftBatch, error) {
	raw, err := p.Model.Generate(ctx, pdfPrompt, pdfBytes, "application/pdf")
	if err != nil {
		return nil, fmt.Errorf("statement: model call: %w", err)
	}

	clean := CleanModelJSON(raw)

	var entries []pdfEntry
	if err := json.Unmarshal([]byte(clean), &entries); err != nil {
		return nil, ErrNoTransactionsFound
	}

	batch := &DraftBatch{
		ID:     uuid.NewString(),
		Source: source,
	}

	for _, e := range entries {
		amount, ok := coerceAmount(e.Amount)
		if !ok || e.Date == "" {
			batch.SkippedRows++
			continue
		}

		category := strings.TrimSpace(e.Category)
		if category == "" {
			category = string(domain.CategoryTaxas)
		}

		batch.Drafts = append(batch.Drafts, domain.Expense{
			ID:           uuid.NewString(),
			Date:         e.Date,
			City:         e.City,
			Amount:       amount,
			Category:     category,
			Operation:    domain.OperationPending,
			Notes:        "Importado via PDF (IA)",
			ReceiptImage: p.placeholderFor(e.Date, e.City, amount),
		})
	}

	if len(batch.Drafts) == 0 {
		return nil, ErrNoTransactionsFound
	}
	return batch, nil
}

func (p *PDFParser) placeholderFor(date, location string, amount float64) string {
	if p.Placeholder == nil {
		return ""
	}
	doc, err := p.Placeholder(date, location, amount)
	if err != nil {
		return ""
	}
	return doc
}

// coerceAmount accepts the number the model was asked for, but also the
// quoted locale-formatted strings it returns anyway ("15,50").
func coerceAmount(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := ParseBRLAmount(s); err == nil {
			return v, true
		}
	}
	return 0, false
}
