package statement

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caixinha/caixinha-server/internal/domain"
)

type fakeModel struct {
	response string
	err      error
	gotMIME  string
}

func (f *fakeModel) Generate(ctx context.Context, prompt string, payload []byte, mimeType string) (string, error) {
	f.gotMIME = mimeType
	return f.response, f.err
}

func TestPDFParser_Parse(t *testing.T) {
	model := &fakeModel{response: "```json\n" + `[
		{"date": "2024-01-10", "city": "Campinas", "amount": 12.5, "category": "Pedágio"},
		{"date": "2024-01-11", "city": "São Paulo", "amount": "8,90", "category": ""}
	]` + "\n```"}

	p := &PDFParser{Model: model}
	batch, err := p.Parse(context.Background(), []byte("%PDF-1.4"), "fatura.pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", model.gotMIME)
	require.Len(t, batch.Drafts, 2)

	assert.Equal(t, "2024-01-10", batch.Drafts[0].Date)
	assert.Equal(t, 12.5, batch.Drafts[0].Amount)
	assert.Equal(t, string(domain.CategoryPedagio), batch.Drafts[0].Category)
	assert.Equal(t, domain.OperationPending, batch.Drafts[0].Operation)

	// Quoted locale amount and blank category are coerced, not dropped.
	assert.Equal(t, 8.9, batch.Drafts[1].Amount)
	assert.Equal(t, string(domain.CategoryTaxas), batch.Drafts[1].Category)
}

func TestPDFParser_ProseAroundArray(t *testing.T) {
	model := &fakeModel{response: `Here are the transactions you asked for:
[{"date": "2024-02-01", "city": "Sorocaba", "amount": 4.3, "category": "Pedágio"}]
Let me know if you need anything else.`}

	p := &PDFParser{Model: model}
	batch, err := p.Parse(context.Background(), nil, "fatura.pdf")
	require.NoError(t, err)
	require.Len(t, batch.Drafts, 1)
	assert.Equal(t, 4.3, batch.Drafts[0].Amount)
}

func TestPDFParser_UnparseableResponse(t *testing.T) {
	p := &PDFParser{Model: &fakeModel{response: "I could not read this document, sorry."}}

	batch, err := p.Parse(context.Background(), nil, "fatura.pdf")
	assert.ErrorIs(t, err, ErrNoTransactionsFound)
	assert.Nil(t, batch)
}

func TestPDFParser_EmptyArray(t *testing.T) {
	p := &PDFParser{Model: &fakeModel{response: "[]"}}

	_, err := p.Parse(context.Background(), nil, "fatura.pdf")
	assert.ErrorIs(t, err, ErrNoTransactionsFound)
}

func TestPDFParser_ModelError(t *testing.T) {
	p := &PDFParser{Model: &fakeModel{err: errors.New("quota exceeded")}}

	_, err := p.Parse(context.Background(), nil, "fatura.pdf")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoTransactionsFound)
}

func TestPDFParser_RowsMissingDateSkipped(t *testing.T) {
	model := &fakeModel{response: `[
		{"date": "", "city": "x", "amount": 1.0, "category": "Taxas"},
		{"date": "2024-02-01", "city": "y", "amount": 2.0, "category": "Taxas"}
	]`}

	p := &PDFParser{Model: model}
	batch, err := p.Parse(context.Background(), nil, "fatura.pdf")
	require.NoError(t, err)
	assert.Len(t, batch.Drafts, 1)
	assert.Equal(t, 1, batch.SkippedRows)
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"fenced json", "```json\n[1,2]\n```", "[1,2]"},
		{"fenced plain", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around object", `The result is {"a":1} as requested.`, `{"a":1}`},
		{"array wins over braces", `x [{"a":1}] y`, `[{"a":1}]`},
		{"already clean", `[{"a":1}]`, `[{"a":1}]`},
		{"nothing to find", "no json here", "no json here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanModelJSON(tt.in))
		})
	}
}
