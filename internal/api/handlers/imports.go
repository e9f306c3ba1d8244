package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/caixinha/caixinha-server/internal/api/middleware"
	"github.com/caixinha/caixinha-server/internal/domain"
	"github.com/caixinha/caixinha-server/internal/jobs"
	"github.com/caixinha/caixinha-server/internal/statement"
)

// StatementArchive persists uploaded statement files so async jobs can
// fetch them back.
type StatementArchive interface {
	Put(ctx context.Context, userID, name, contentType string, data []byte) (string, error)
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// ImportsHandler handles the two-phase statement import flow:
// upload -> parse (async job) -> preview -> confirm.
type ImportsHandler struct {
	store     TransactionStore
	staging   *Staging
	publisher jobs.Publisher
	jobStore  jobs.JobStore
	archive   StatementArchive
	csv       *statement.CSVParser
	pdf       *statement.PDFParser
	log       zerolog.Logger
}

// NewImportsHandler creates a new imports handler. archive may be nil; the
// statement file then rides inside the job-free synchronous path only.
func NewImportsHandler(
	store TransactionStore,
	staging *Staging,
	publisher jobs.Publisher,
	jobStore jobs.JobStore,
	arch StatementArchive,
	csv *statement.CSVParser,
	pdf *statement.PDFParser,
	log zerolog.Logger,
) *ImportsHandler {
	return &ImportsHandler{
		store:     store,
		staging:   staging,
		publisher: publisher,
		jobStore:  jobStore,
		archive:   arch,
		csv:       csv,
		pdf:       pdf,
		log:       log,
	}
}

type importRequest struct {
	Filename string `json:"filename"`
	Format   string `json:"format"`  // "csv" or "pdf"; inferred from filename when empty
	Content  string `json:"content"` // base64 file bytes
	Async    bool   `json:"async"`
}

// CreateImport handles POST /api/imports. The synchronous path parses
// inline and returns the draft batch; the async path archives the file,
// enqueues a job and returns 202 with the job ID.
func (h *ImportsHandler) CreateImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	raw, err := base64.StdEncoding.DecodeString(req.Content)
	if err != nil || len(raw) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "content must be non-empty base64")
		return
	}

	format := req.Format
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(req.Filename)), ".")
	}
	if format != "csv" && format != "pdf" {
		middleware.WriteError(w, http.StatusBadRequest, "format must be csv or pdf")
		return
	}

	source := req.Filename
	if source == "" {
		source = format
	}
	userID := middleware.UserID(ctx)

	if req.Async {
		if h.publisher == nil || h.archive == nil {
			middleware.WriteError(w, http.StatusServiceUnavailable, "Async imports are not configured")
			return
		}

		name := fmt.Sprintf("statements/%s-%s", time.Now().Format("20060102150405"), filepath.Base(source))
		uri, err := h.archive.Put(ctx, userID, name, contentTypeFor(format), raw)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to archive statement file")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to store statement file")
			return
		}

		job := &jobs.ImportStatementJob{
			UserID:       userID,
			Source:       source,
			Format:       format,
			StatementURI: uri,
		}
		if err := h.publisher.PublishImportStatement(ctx, job); err != nil {
			h.log.Error().Err(err).Msg("Failed to enqueue import job")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue import job")
			return
		}

		h.log.Info().Str("job_id", job.JobID).Str("source", source).Msg("Import job enqueued")
		middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
			"job_id": job.JobID,
			"status": string(job.Status),
		})
		return
	}

	batch, err := h.parse(ctx, format, raw, source)
	if err != nil {
		writeParseError(w, err)
		return
	}

	h.staging.Put(userID, batch)
	middleware.WriteJSON(w, http.StatusOK, batch)
}

// GetBatch handles GET /api/imports/{batchID}, the preview step.
func (h *ImportsHandler) GetBatch(w http.ResponseWriter, r *http.Request, batchID string) {
	batch, ok := h.staging.Get(middleware.UserID(r.Context()), batchID)
	if !ok {
		middleware.WriteError(w, http.StatusNotFound, "Draft batch not found or expired")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, batch)
}

type confirmRequest struct {
	// Operations optionally reclassifies drafts before insert, keyed by
	// draft ID. Unlisted drafts keep the pending sentinel.
	Operations map[string]string `json:"operations"`
}

// ConfirmBatch handles POST /api/imports/{batchID}/confirm. The whole batch
// is inserted in a single bulk write.
func (h *ImportsHandler) ConfirmBatch(w http.ResponseWriter, r *http.Request, batchID string) {
	ctx := r.Context()
	userID := middleware.UserID(ctx)

	batch, ok := h.staging.Get(userID, batchID)
	if !ok {
		middleware.WriteError(w, http.StatusNotFound, "Draft batch not found or expired")
		return
	}

	var req confirmRequest
	if r.Body != nil {
		// Body is optional.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	transactions := make([]domain.Transaction, 0, len(batch.Drafts))
	for i := range batch.Drafts {
		draft := batch.Drafts[i]
		if op, ok := req.Operations[draft.ID]; ok && op != "" {
			draft.Operation = op
		}
		transactions = append(transactions, domain.NewReceiptTransaction(&draft))
	}

	if err := h.store.CreateBulk(ctx, userID, transactions); err != nil {
		writeStoreError(w, h.log, err, "import transactions")
		return
	}

	h.staging.Remove(userID, batchID)
	h.log.Info().Str("batch_id", batchID).Int("count", len(transactions)).Msg("Draft batch confirmed")

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"status":   "imported",
		"batch_id": batchID,
		"count":    len(transactions),
	})
}

// DiscardBatch handles DELETE /api/imports/{batchID}.
func (h *ImportsHandler) DiscardBatch(w http.ResponseWriter, r *http.Request, batchID string) {
	h.staging.Remove(middleware.UserID(r.Context()), batchID)
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "discarded", "batch_id": batchID})
}

// ProcessJob is the queue handler for async imports: fetch the archived
// file, parse it, and stage the batch under the job's owner.
func (h *ImportsHandler) ProcessJob(ctx context.Context, job *jobs.ImportStatementJob) error {
	raw, err := h.archive.Fetch(ctx, job.StatementURI)
	if err != nil {
		return fmt.Errorf("fetch statement: %w", err)
	}

	batch, err := h.parse(ctx, job.Format, raw, job.Source)
	if err != nil {
		return err
	}

	h.staging.Put(job.UserID, batch)
	job.BatchID = batch.ID
	return nil
}

func (h *ImportsHandler) parse(ctx context.Context, format string, raw []byte, source string) (*statement.DraftBatch, error) {
	switch format {
	case "csv":
		return h.csv.Parse(raw, source)
	case "pdf":
		return h.pdf.Parse(ctx, raw, source)
	default:
		return nil, fmt.Errorf("statement: unsupported format %q", format)
	}
}

func writeParseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, statement.ErrInvalidFormat):
		middleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, statement.ErrNoTransactionsFound):
		middleware.WriteError(w, http.StatusUnprocessableEntity, "No transactions found in document")
	default:
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to parse statement")
	}
}

func contentTypeFor(format string) string {
	if format == "pdf" {
		return "application/pdf"
	}
	return "text/csv"
}
