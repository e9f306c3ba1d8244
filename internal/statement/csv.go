package statement

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/caixinha/caixinha-server/internal/domain"
)

// Header substrings the operator exports use. Matching is by substring, not
// position: operators reorder and rename columns between report versions.
const (
	headerDate      = "Data de Utilizacao"
	headerPlaceName = "Nome do Estabelecimento"
	headerPlaceAddr = "Endereco do Estabelecimento"
	headerAmount    = "Valor Cobrado"
	headerTxType    = "Tipo de Transacao"
)

// CSVParser parses semicolon-delimited toll/parking exports. The files are
// ISO-8859-1 encoded, as typical for Brazilian banking exports.
type CSVParser struct {
	// Placeholder, when set, attaches a synthesized proof document to each
	// imported row.
	Placeholder PlaceholderFunc
}

// Parse normalizes raw statement bytes into a DraftBatch. The batch is
// rejected as a whole (ErrInvalidFormat) only when the required header
// columns cannot be located; individual malformed rows are skipped and
// counted. A parse that yields zero drafts returns ErrNoTransactionsFound.
func (p *CSVParser) Parse(raw []byte, source string) (*DraftBatch, error) {
	text, err := decodeLatin1(raw)
	if err != nil {
		return nil, fmt.Errorf("statement: decoding csv: %w", err)
	}

	lines := strings.Split(text, "\n")
	if len(lines) == 0 {
		return nil, ErrInvalidFormat
	}

	headers := splitRow(lines[0])
	idxDate := findHeader(headers, headerDate)
	idxAmount := findHeader(headers, headerAmount)
	idxPlaceName := findHeader(headers, headerPlaceName)
	idxPlaceAddr := findHeader(headers, headerPlaceAddr)
	idxTxType := findHeader(headers, headerTxType)

	if idxDate == -1 || idxAmount == -1 {
		return nil, ErrInvalidFormat
	}

	batch := &DraftBatch{
		ID:     uuid.NewString(),
		Source: source,
	}

	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		cols := splitRow(line)
		draft, ok := p.parseRow(cols, idxDate, idxAmount, idxPlaceName, idxPlaceAddr, idxTxType)
		if !ok {
			batch.SkippedRows++
			continue
		}
		batch.Drafts = append(batch.Drafts, draft)
	}

	if len(batch.Drafts) == 0 {
		return nil, ErrNoTransactionsFound
	}
	return batch, nil
}

func (p *CSVParser) parseRow(cols []string, idxDate, idxAmount, idxPlaceName, idxPlaceAddr, idxTxType int) (domain.Expense, bool) {
	rawDate := col(cols, idxDate)
	rawAmount := col(cols, idxAmount)
	if rawDate == "" || rawAmount == "" {
		return domain.Expense{}, false
	}

	date, ok := brDateToISO(rawDate)
	if !ok {
		return domain.Expense{}, false
	}

	amount, err := ParseBRLAmount(rawAmount)
	if err != nil {
		return domain.Expense{}, false
	}

	placeName := col(cols, idxPlaceName)
	placeAddr := col(cols, idxPlaceAddr)
	txType := col(cols, idxTxType)

	city := strings.TrimSpace(placeName + " - " + placeAddr)
	city = strings.Trim(city, " -")
	city = strings.NewReplacer(`"`, "", "'", "").Replace(city)

	return domain.Expense{
		ID:           uuid.NewString(),
		Date:         date,
		Amount:       amount,
		Category:     string(ClassifyStatementRow(txType, placeName)),
		City:         city,
		Operation:    domain.OperationPending,
		Notes:        fmt.Sprintf("Importado via CSV (%s)", txType),
		ReceiptImage: p.placeholderFor(date, city, amount),
	}, true
}

func (p *CSVParser) placeholderFor(date, location string, amount float64) string {
	if p.Placeholder == nil {
		return ""
	}
	doc, err := p.Placeholder(date, location, amount)
	if err != nil {
		// Attachment is best-effort; the row itself stands.
		return ""
	}
	return doc
}

// ClassifyStatementRow picks a category for one statement line. The explicit
// transaction-type column wins; the establishment name is the fallback; rows
// matching neither land in the generic fees category.
func ClassifyStatementRow(txType, placeName string) domain.ExpenseCategory {
	typeUpper := strings.ToUpper(txType)
	switch {
	case strings.Contains(typeUpper, "PEDAGIO"), strings.Contains(typeUpper, "PEDÁGIO"):
		return domain.CategoryPedagio
	case strings.Contains(typeUpper, "ESTACIONAMENTO"):
		return domain.CategoryEstacionamento
	}

	nameUpper := strings.ToUpper(placeName)
	switch {
	case strings.Contains(nameUpper, "ESTACIONAMENTO"), strings.Contains(nameUpper, "SHOPPING"):
		return domain.CategoryEstacionamento
	case strings.Contains(nameUpper, "CCR"), strings.Contains(nameUpper, "VIAS"):
		return domain.CategoryPedagio
	}

	return domain.CategoryTaxas
}

// ParseBRLAmount converts a Brazilian locale decimal ("1.234,56" or "13,60")
// to a float. Plain dot-decimal input is accepted too.
func ParseBRLAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("statement: empty amount")
	}

	if strings.Contains(s, ",") {
		// Dots are thousand separators when a comma is present.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("statement: parsing amount %q: %w", s, err)
	}
	f, _ := d.Float64()
	return f, nil
}

// brDateToISO reformats DD/MM/YYYY to YYYY-MM-DD. ok is false when the
// value does not split into exactly three parts; such rows are skipped, not
// fatal to the batch.
func brDateToISO(s string) (string, bool) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return "", false
	}
	return fmt.Sprintf("%s-%s-%s", parts[2], parts[1], parts[0]), true
}

func decodeLatin1(raw []byte) (string, error) {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func splitRow(line string) []string {
	cols := strings.Split(strings.TrimRight(line, "\r"), ";")
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}
	return cols
}

func findHeader(headers []string, substr string) int {
	for i, h := range headers {
		if strings.Contains(h, substr) {
			return i
		}
	}
	return -1
}

func col(cols []string, idx int) string {
	if idx < 0 || idx >= len(cols) {
		return ""
	}
	return cols[idx]
}
