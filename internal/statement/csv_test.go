package statement

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/caixinha/caixinha-server/internal/domain"
)

// latin1 re-encodes a UTF-8 literal the way the operator exports arrive.
func latin1(t *testing.T, s string) []byte {
	t.Helper()
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

const csvHeader = "Data de Utilizacao;Nome do Estabelecimento;Endereco do Estabelecimento;Valor Cobrado;Tipo de Transacao"

func TestCSVParser_Parse(t *testing.T) {
	file := csvHeader + "\n" +
		"25/12/2023;Shopping ABC;Rua X;15,50;Pedágio\n" +
		"26/12/2023;Estacionamento Central;Av. Y;8,00;ESTACIONAMENTO\n"

	p := &CSVParser{}
	batch, err := p.Parse(latin1(t, file), "extrato.csv")
	require.NoError(t, err)
	require.Len(t, batch.Drafts, 2)
	assert.Equal(t, 0, batch.SkippedRows)
	assert.Equal(t, "extrato.csv", batch.Source)
	assert.NotEmpty(t, batch.ID)

	first := batch.Drafts[0]
	assert.Equal(t, "2023-12-25", first.Date)
	assert.Equal(t, 15.5, first.Amount)
	assert.Equal(t, string(domain.CategoryPedagio), first.Category)
	assert.Equal(t, domain.OperationPending, first.Operation)
	assert.Equal(t, "Shopping ABC - Rua X", first.City)
	assert.NotEmpty(t, first.ID)

	second := batch.Drafts[1]
	assert.Equal(t, string(domain.CategoryEstacionamento), second.Category)
	assert.Equal(t, 8.0, second.Amount)
}

func TestCSVParser_ShortDateRowSkippedNotFatal(t *testing.T) {
	file := csvHeader + "\n" +
		"25/12;Praça Norte;Rod. Z;3,20;Pedágio\n" + // date splits into 2 parts
		"26/12/2023;Praça Sul;Rod. Z;3,20;Pedágio\n"

	p := &CSVParser{}
	batch, err := p.Parse(latin1(t, file), "extrato.csv")
	require.NoError(t, err)
	assert.Len(t, batch.Drafts, 1)
	assert.Equal(t, 1, batch.SkippedRows)
	assert.Equal(t, "2023-12-26", batch.Drafts[0].Date)
}

func TestCSVParser_MissingRequiredHeaders(t *testing.T) {
	file := "Coluna A;Coluna B;Coluna C\n25/12/2023;Pedagio;15,50\n"

	p := &CSVParser{}
	batch, err := p.Parse(latin1(t, file), "extrato.csv")
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.Nil(t, batch)
}

func TestCSVParser_HeaderOnlyFile(t *testing.T) {
	p := &CSVParser{}
	_, err := p.Parse(latin1(t, csvHeader+"\n\n\n"), "extrato.csv")
	assert.ErrorIs(t, err, ErrNoTransactionsFound)
}

func TestCSVParser_ColumnsLocatedBySubstringNotPosition(t *testing.T) {
	// Amount before date, extra leading column.
	file := "Placa;Valor Cobrado (R$);Data de Utilizacao da Passagem\n" +
		"ABC1234;22,70;01/02/2024\n"

	p := &CSVParser{}
	batch, err := p.Parse(latin1(t, file), "extrato.csv")
	require.NoError(t, err)
	require.Len(t, batch.Drafts, 1)
	assert.Equal(t, "2024-02-01", batch.Drafts[0].Date)
	assert.Equal(t, 22.7, batch.Drafts[0].Amount)
}

func TestCSVParser_PlaceholderAttached(t *testing.T) {
	p := &CSVParser{
		Placeholder: func(date, location string, amount float64) (string, error) {
			return "JVBERi0xLjQ=", nil
		},
	}
	batch, err := p.Parse(latin1(t, csvHeader+"\n25/12/2023;Shopping ABC;Rua X;15,50;Pedágio\n"), "extrato.csv")
	require.NoError(t, err)
	assert.Equal(t, "JVBERi0xLjQ=", batch.Drafts[0].ReceiptImage)
}

func TestClassifyStatementRow(t *testing.T) {
	tests := []struct {
		name      string
		txType    string
		placeName string
		want      domain.ExpenseCategory
	}{
		{"explicit toll, accented", "Pedágio", "", domain.CategoryPedagio},
		{"explicit toll, plain", "PEDAGIO PASSAGEM", "", domain.CategoryPedagio},
		{"explicit parking", "estacionamento avulso", "", domain.CategoryEstacionamento},
		{"name says shopping", "", "SHOPPING IGUATEMI", domain.CategoryEstacionamento},
		{"name says parking", "", "Estacionamento Azul", domain.CategoryEstacionamento},
		{"toll operator brand", "", "CCR AutoBAn", domain.CategoryPedagio},
		{"toll operator brand vias", "", "ViaSul VIAS", domain.CategoryPedagio},
		{"nothing matches", "TARIFA", "Posto Central", domain.CategoryTaxas},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStatementRow(tt.txType, tt.placeName))
		})
	}
}

func TestParseBRLAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"13,60", 13.6, false},
		{"1.234,56", 1234.56, false},
		{"15.50", 15.5, false},
		{" 8,00 ", 8, false},
		{"R$", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseBRLAmount(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParse_WindowsLineEndings(t *testing.T) {
	file := strings.ReplaceAll(csvHeader+"\n25/12/2023;Shopping ABC;Rua X;15,50;Pedágio\n", "\n", "\r\n")

	p := &CSVParser{}
	batch, err := p.Parse(latin1(t, file), "extrato.csv")
	require.NoError(t, err)
	require.Len(t, batch.Drafts, 1)
	assert.Equal(t, 15.5, batch.Drafts[0].Amount)
}
