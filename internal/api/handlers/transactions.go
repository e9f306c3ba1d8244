package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/caixinha/caixinha-server/internal/api/middleware"
	"github.com/caixinha/caixinha-server/internal/domain"
)

// TransactionsHandler handles transaction CRUD endpoints.
type TransactionsHandler struct {
	store TransactionStore
	log   zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(store TransactionStore, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{store: store, log: log}
}

// ListTransactions handles GET /api/transactions
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	transactions, err := h.store.ListByUser(ctx, middleware.UserID(ctx))
	if err != nil {
		writeStoreError(w, h.log, err, "list transactions")
		return
	}

	// Return an array even when empty, for client compatibility.
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	middleware.WriteJSON(w, http.StatusOK, transactions)
}

// CreateTransaction handles POST /api/transactions
func (h *TransactionsHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var t domain.Transaction
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if !t.IsValid() {
		middleware.WriteError(w, http.StatusBadRequest, "Transaction variant does not match its type")
		return
	}

	normalize(&t)

	created, err := h.store.Create(ctx, middleware.UserID(ctx), t)
	if err != nil {
		writeStoreError(w, h.log, err, "create transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, created)
}

// GetTransaction handles GET /api/transactions/{id}
func (h *TransactionsHandler) GetTransaction(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()

	t, err := h.store.GetByID(ctx, middleware.UserID(ctx), id)
	if err != nil {
		writeStoreError(w, h.log, err, "get transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, t)
}

// UpdateTransaction handles PUT /api/transactions/{id}
func (h *TransactionsHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()

	var t domain.Transaction
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if !t.IsValid() {
		middleware.WriteError(w, http.StatusBadRequest, "Transaction variant does not match its type")
		return
	}
	if t.ID() != id {
		middleware.WriteError(w, http.StatusBadRequest, "Transaction ID does not match URL")
		return
	}

	normalize(&t)

	if err := h.store.Update(ctx, middleware.UserID(ctx), t); err != nil {
		writeStoreError(w, h.log, err, "update transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, t)
}

// PatchTransaction handles PATCH /api/transactions/{id}. Only the columns
// present in the body are written; everything else stays untouched.
func (h *TransactionsHandler) PatchTransaction(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	cols, err := patchColumns(fields)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(cols) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "No updatable fields in request")
		return
	}

	userID := middleware.UserID(ctx)
	if err := h.store.UpdateColumns(ctx, userID, id, cols); err != nil {
		writeStoreError(w, h.log, err, "update transaction")
		return
	}

	t, err := h.store.GetByID(ctx, userID, id)
	if err != nil {
		writeStoreError(w, h.log, err, "get transaction")
		return
	}

	// A fuel edit may have touched a reimbursement input.
	if t.Type == domain.TypeFuel {
		before := t.Fuel.TotalValue
		t.Fuel.Recompute()
		if t.Fuel.TotalValue != before {
			if err := h.store.UpdateColumns(ctx, userID, id, map[string]any{"total_value": t.Fuel.TotalValue}); err != nil {
				writeStoreError(w, h.log, err, "update transaction")
				return
			}
		}
	}

	middleware.WriteJSON(w, http.StatusOK, t)
}

// DeleteTransaction handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()

	if err := h.store.Delete(ctx, middleware.UserID(ctx), id); err != nil {
		writeStoreError(w, h.log, err, "delete transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// normalize fills server-owned fields: missing IDs and, for fuel entries,
// the computed reimbursement. TotalValue is never trusted from the client.
func normalize(t *domain.Transaction) {
	switch t.Type {
	case domain.TypeReceipt:
		if t.Expense.ID == "" {
			t.Expense.ID = uuid.New().String()
		}
	case domain.TypeFuel:
		if t.Fuel.ID == "" {
			t.Fuel.ID = uuid.New().String()
		}
		t.Fuel.Recompute()
	}
}

// patchColumns maps wire field names onto table columns, rejecting fields
// the client may not write directly.
func patchColumns(fields map[string]any) (map[string]any, error) {
	allowed := map[string]string{
		"date":          "date",
		"city":          "city",
		"amount":        "amount",
		"category":      "category",
		"operation":     "operation",
		"notes":         "notes",
		"receiptImage":  "receipt_image",
		"receiptAmount": "receipt_amount",
		"origin":        "origin",
		"destination":   "destination",
		"carType":       "car_type",
		"roadType":      "road_type",
		"distanceKm":    "distance_km",
		"fuelType":      "fuel_type",
		"pricePerLiter": "price_per_liter",
		"consumption":   "consumption",
	}

	cols := make(map[string]any, len(fields))
	for name, value := range fields {
		col, ok := allowed[name]
		if !ok {
			return nil, fmt.Errorf("field cannot be updated: %s", name)
		}
		cols[col] = value
	}
	return cols, nil
}
