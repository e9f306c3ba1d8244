package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/caixinha/caixinha-server/internal/api/middleware"
	"github.com/caixinha/caixinha-server/internal/opssync"
)

// OperationsHandler handles cost-center endpoints.
type OperationsHandler struct {
	ops *opssync.Service
	log zerolog.Logger
}

// NewOperationsHandler creates a new operations handler.
func NewOperationsHandler(ops *opssync.Service, log zerolog.Logger) *OperationsHandler {
	return &OperationsHandler{ops: ops, log: log}
}

// ListOperations handles GET /api/operations.
func (h *OperationsHandler) ListOperations(w http.ResponseWriter, r *http.Request) {
	ops, err := h.ops.Operations()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read operations cache")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read operations")
		return
	}
	if ops == nil {
		ops = []string{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"operations": ops,
		"count":      len(ops),
	})
}

// AddOperations handles POST /api/operations, manual additions merged into
// the cached set.
func (h *OperationsHandler) AddOperations(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Operations []string `json:"operations"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Operations) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "operations array is required")
		return
	}

	merged, err := h.ops.Add(req.Operations...)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to update operations cache")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update operations")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"operations": merged,
		"count":      len(merged),
	})
}

// SyncOperations handles POST /api/operations/sync, a refresh from the
// planning spreadsheet's month tab.
func (h *OperationsHandler) SyncOperations(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tab string `json:"tab"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Tab == "" {
		middleware.WriteError(w, http.StatusBadRequest, "tab is required")
		return
	}

	ops, err := h.ops.Sync(r.Context(), req.Tab)
	if err != nil {
		if errors.Is(err, opssync.ErrNoOperations) {
			middleware.WriteError(w, http.StatusNotFound, "No operations found in tab "+req.Tab)
			return
		}
		h.log.Error().Err(err).Str("tab", req.Tab).Msg("Failed to sync operations")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to sync operations from spreadsheet")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"operations": ops,
		"count":      len(ops),
	})
}
