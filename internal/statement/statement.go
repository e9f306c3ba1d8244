// Package statement ingests toll/parking operator exports (semicolon CSV or
// PDF routed through the extraction model) and normalizes their rows into
// draft expenses pending user classification.
//
// Imports are two-phase: a parse produces a DraftBatch for preview, and
// nothing is persisted until the batch is explicitly confirmed.
package statement

import (
	"errors"

	"github.com/caixinha/caixinha-server/internal/domain"
)

// ErrInvalidFormat means the file could not be recognized as a statement
// export (required header columns missing). The whole import is rejected;
// zero drafts are produced.
var ErrInvalidFormat = errors.New("statement: invalid format: usage-date and charged-amount columns are required")

// ErrNoTransactionsFound means the document parsed cleanly but yielded no
// usable rows, or the model response contained no transaction list. The
// caller must tell the user instead of silently importing nothing.
var ErrNoTransactionsFound = errors.New("statement: no transactions found in document")

// DraftBatch is the outcome of parsing one statement file. Drafts carry the
// OperationPending sentinel and are held for preview; SkippedRows counts
// malformed lines that were dropped without aborting the batch.
type DraftBatch struct {
	ID          string           `json:"id"`
	Source      string           `json:"source"` // original filename or "csv"/"pdf"
	Drafts      []domain.Expense `json:"drafts"`
	SkippedRows int              `json:"skippedRows"`
}

// PlaceholderFunc synthesizes a minimal proof document (base64 PDF) for an
// imported row that has no original receipt. Returning an error skips the
// attachment but never fails the row.
type PlaceholderFunc func(date, location string, amount float64) (string, error)
