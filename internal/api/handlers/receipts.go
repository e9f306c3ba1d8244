package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/caixinha/caixinha-server/internal/api/middleware"
	"github.com/caixinha/caixinha-server/internal/extract"
	"github.com/caixinha/caixinha-server/internal/imageprep"
)

// Extractor turns a receipt document into structured expense fields.
type Extractor interface {
	Extract(ctx context.Context, payload []byte, mimeType string) (*extract.Result, error)
}

// ReceiptsHandler handles receipt scanning endpoints.
type ReceiptsHandler struct {
	extractor Extractor
	maxDim    int
	log       zerolog.Logger
}

// NewReceiptsHandler creates a new receipts handler.
func NewReceiptsHandler(extractor Extractor, maxDim int, log zerolog.Logger) *ReceiptsHandler {
	if maxDim <= 0 {
		maxDim = imageprep.DefaultMaxDimension
	}
	return &ReceiptsHandler{extractor: extractor, maxDim: maxDim, log: log}
}

type extractRequest struct {
	Content  string `json:"content"` // base64 document bytes
	MimeType string `json:"mimeType"`
}

type extractResponse struct {
	*extract.Result

	// PreparedImage is the normalized JPEG actually sent to the model,
	// returned so the client stores the small version, not the original.
	PreparedImage string `json:"preparedImage,omitempty"`
}

// ExtractReceipt handles POST /api/receipts/extract. Extraction is
// advisory: a degraded result still comes back 200 so the user can correct
// fields by hand.
func (h *ReceiptsHandler) ExtractReceipt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	raw, err := base64.StdEncoding.DecodeString(req.Content)
	if err != nil || len(raw) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "content must be non-empty base64")
		return
	}
	if req.MimeType == "" {
		middleware.WriteError(w, http.StatusBadRequest, "mimeType is required")
		return
	}

	payload := raw
	mimeType := req.MimeType
	prepared := ""

	// Images are normalized before they go anywhere near the model or
	// storage: bounded dimensions, JPEG, white background.
	if strings.HasPrefix(mimeType, "image/") {
		small, err := imageprep.Prepare(raw, h.maxDim)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Unsupported or corrupt image")
			return
		}
		payload = small
		mimeType = "image/jpeg"
		prepared = base64.StdEncoding.EncodeToString(small)
	}

	result, err := h.extractor.Extract(ctx, payload, mimeType)
	if err != nil {
		if errors.Is(err, extract.ErrAuth) {
			middleware.WriteError(w, http.StatusBadGateway, "AI provider rejected the API key; check the extraction credentials")
			return
		}
		h.log.Error().Err(err).Msg("Receipt extraction failed")
		middleware.WriteError(w, http.StatusBadGateway, "AI extraction failed; enter the expense manually")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, extractResponse{Result: result, PreparedImage: prepared})
}
