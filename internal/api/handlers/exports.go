package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/caixinha/caixinha-server/internal/api/middleware"
	"github.com/caixinha/caixinha-server/internal/report"
)

// ExportsHandler handles report download endpoints.
type ExportsHandler struct {
	store   TransactionStore
	archive StatementArchive
	log     zerolog.Logger
}

// NewExportsHandler creates a new exports handler. archive may be nil;
// ?archive=true then returns 503.
func NewExportsHandler(store TransactionStore, arch StatementArchive, log zerolog.Logger) *ExportsHandler {
	return &ExportsHandler{store: store, archive: arch, log: log}
}

// ExportExcel handles GET /api/exports/xlsx.
func (h *ExportsHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserID(ctx)

	transactions, err := h.store.ListByUser(ctx, userID)
	if err != nil {
		writeStoreError(w, h.log, err, "list transactions")
		return
	}

	data, err := report.Excel(transactions)
	if errors.Is(err, report.ErrNoData) {
		middleware.WriteError(w, http.StatusNotFound, "No transactions to export")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build workbook")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to build workbook")
		return
	}

	filename := fmt.Sprintf("Relatorio_Geral_Caixinha_%s.xlsx", time.Now().Format("2006-01-02"))
	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	if h.serveOrArchive(w, r, userID, filename, contentType, data) {
		h.log.Info().Int("bytes", len(data)).Msg("Workbook exported")
	}
}

// ExportReceipts handles GET /api/exports/receipts. The response is a ZIP
// of every attached proof document.
func (h *ExportsHandler) ExportReceipts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserID(ctx)

	transactions, err := h.store.ListByUser(ctx, userID)
	if err != nil {
		writeStoreError(w, h.log, err, "list transactions")
		return
	}

	data, count, err := report.Bundle(transactions)
	if errors.Is(err, report.ErrNoAttachments) {
		middleware.WriteError(w, http.StatusNotFound, "No receipt documents to export")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build receipt bundle")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to build receipt bundle")
		return
	}

	filename := fmt.Sprintf("comprovantes_caixinha_%s.zip", time.Now().Format("2006-01-02"))

	if h.serveOrArchive(w, r, userID, filename, "application/zip", data) {
		h.log.Info().Int("files", count).Int("bytes", len(data)).Msg("Receipt bundle exported")
	}
}

// serveOrArchive either streams the artifact or, with ?archive=true, stores
// it in the bucket and returns its URI. Reports true when the response was
// written successfully.
func (h *ExportsHandler) serveOrArchive(w http.ResponseWriter, r *http.Request, userID, filename, contentType string, data []byte) bool {
	if r.URL.Query().Get("archive") == "true" {
		if h.archive == nil {
			middleware.WriteError(w, http.StatusServiceUnavailable, "Export archiving is not configured")
			return false
		}
		uri, err := h.archive.Put(r.Context(), userID, "exports/"+filename, contentType, data)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to archive export")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to archive export")
			return false
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"uri": uri, "filename": filename})
		return true
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	return true
}
