package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caixinha/caixinha-server/internal/api/middleware"
	"github.com/caixinha/caixinha-server/internal/domain"
	"github.com/caixinha/caixinha-server/internal/store/postgres"
)

type fakeStore struct {
	byUser map[string]map[string]domain.Transaction
	err    error

	bulkInserts [][]domain.Transaction
	patched     map[string]map[string]any
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byUser:  map[string]map[string]domain.Transaction{},
		patched: map[string]map[string]any{},
	}
}

func (f *fakeStore) bucket(userID string) map[string]domain.Transaction {
	if f.byUser[userID] == nil {
		f.byUser[userID] = map[string]domain.Transaction{}
	}
	return f.byUser[userID]
}

func (f *fakeStore) Create(_ context.Context, userID string, t domain.Transaction) (domain.Transaction, error) {
	if f.err != nil {
		return domain.Transaction{}, f.err
	}
	f.bucket(userID)[t.ID()] = t
	return t, nil
}

func (f *fakeStore) CreateBulk(_ context.Context, userID string, ts []domain.Transaction) error {
	if f.err != nil {
		return f.err
	}
	f.bulkInserts = append(f.bulkInserts, ts)
	for _, t := range ts {
		f.bucket(userID)[t.ID()] = t
	}
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, userID, id string) (domain.Transaction, error) {
	if f.err != nil {
		return domain.Transaction{}, f.err
	}
	t, ok := f.bucket(userID)[id]
	if !ok {
		return domain.Transaction{}, postgres.ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID string) ([]domain.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Transaction
	for _, t := range f.bucket(userID) {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, userID string, t domain.Transaction) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.bucket(userID)[t.ID()]; !ok {
		return postgres.ErrNotFound
	}
	f.bucket(userID)[t.ID()] = t
	return nil
}

func (f *fakeStore) UpdateColumns(_ context.Context, userID, id string, cols map[string]any) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.bucket(userID)[id]; !ok {
		return postgres.ErrNotFound
	}
	if f.patched[id] == nil {
		f.patched[id] = map[string]any{}
	}
	for k, v := range cols {
		f.patched[id][k] = v
	}
	return nil
}

func (f *fakeStore) Delete(_ context.Context, userID, id string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.bucket(userID)[id]; !ok {
		return postgres.ErrNotFound
	}
	delete(f.bucket(userID), id)
	return nil
}

// do runs one request through Auth so middleware.UserID resolves.
func do(handler http.HandlerFunc, method, target, userID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	middleware.Auth(handler).ServeHTTP(rec, req)
	return rec
}

func TestCreateTransaction_FuelRecomputedServerSide(t *testing.T) {
	store := newFakeStore()
	h := NewTransactionsHandler(store, zerolog.Nop())

	rec := do(h.CreateTransaction, http.MethodPost, "/api/transactions", "user-1", map[string]any{
		"type":          "fuel",
		"date":          "2024-02-01",
		"origin":        "Campinas",
		"destination":   "Santos",
		"carType":       "Proprio",
		"roadType":      "Estrada",
		"distanceKm":    120,
		"fuelType":      "Gasolina",
		"pricePerLiter": 5.89,
		"consumption":   10,
		"totalValue":    999.99, // client value must be ignored
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created domain.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, domain.TypeFuel, created.Type)
	assert.Equal(t, 70.68, created.Fuel.TotalValue)
	assert.NotEmpty(t, created.Fuel.ID)
}

func TestCreateTransaction_RejectsMismatchedUnion(t *testing.T) {
	h := NewTransactionsHandler(newFakeStore(), zerolog.Nop())

	rec := do(h.CreateTransaction, http.MethodPost, "/api/transactions", "user-1", map[string]any{
		"type": "tithe",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTransactions_EmptyIsArray(t *testing.T) {
	h := NewTransactionsHandler(newFakeStore(), zerolog.Nop())

	rec := do(h.ListTransactions, http.MethodGet, "/api/transactions", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestListTransactions_RequiresAuth(t *testing.T) {
	h := NewTransactionsHandler(newFakeStore(), zerolog.Nop())

	rec := do(h.ListTransactions, http.MethodGet, "/api/transactions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetTransaction_OwnerScoped(t *testing.T) {
	store := newFakeStore()
	exp := &domain.Expense{ID: "e-1", Date: "2024-02-01", Amount: 12}
	store.bucket("user-1")["e-1"] = domain.NewReceiptTransaction(exp)
	h := NewTransactionsHandler(store, zerolog.Nop())

	rec := do(func(w http.ResponseWriter, r *http.Request) {
		h.GetTransaction(w, r, "e-1")
	}, http.MethodGet, "/api/transactions/e-1", "user-2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(func(w http.ResponseWriter, r *http.Request) {
		h.GetTransaction(w, r, "e-1")
	}, http.MethodGet, "/api/transactions/e-1", "user-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPatchTransaction_PartialColumnsOnly(t *testing.T) {
	store := newFakeStore()
	store.bucket("user-1")["f-1"] = domain.NewFuelTransaction(&domain.FuelEntry{
		ID: "f-1", Date: "2024-02-01", DistanceKm: 120, PricePerLiter: 5.89,
		Consumption: 10, TotalValue: 70.68,
	})
	h := NewTransactionsHandler(store, zerolog.Nop())

	rec := do(func(w http.ResponseWriter, r *http.Request) {
		h.PatchTransaction(w, r, "f-1")
	}, http.MethodPatch, "/api/transactions/f-1", "user-1", map[string]any{
		"operation": "OP-3",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, map[string]any{"operation": "OP-3"}, store.patched["f-1"])
}

func TestPatchTransaction_RejectsUnknownField(t *testing.T) {
	store := newFakeStore()
	store.bucket("user-1")["e-1"] = domain.NewReceiptTransaction(&domain.Expense{ID: "e-1", Date: "2024-02-01"})
	h := NewTransactionsHandler(store, zerolog.Nop())

	rec := do(func(w http.ResponseWriter, r *http.Request) {
		h.PatchTransaction(w, r, "e-1")
	}, http.MethodPatch, "/api/transactions/e-1", "user-1", map[string]any{
		"totalValue": 5, // computed, not client-writable
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStoreErrors_SchemaMissingCarriesSetupSQL(t *testing.T) {
	store := newFakeStore()
	store.err = fmt.Errorf("query: %w", postgres.ErrSchemaMissing)
	h := NewTransactionsHandler(store, zerolog.Nop())

	rec := do(h.ListTransactions, http.MethodGet, "/api/transactions", "user-1", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, postgres.SetupSQL, body["setup_sql"])
}

func TestDeleteTransaction(t *testing.T) {
	store := newFakeStore()
	store.bucket("user-1")["e-1"] = domain.NewReceiptTransaction(&domain.Expense{ID: "e-1", Date: "2024-02-01"})
	h := NewTransactionsHandler(store, zerolog.Nop())

	rec := do(func(w http.ResponseWriter, r *http.Request) {
		h.DeleteTransaction(w, r, "e-1")
	}, http.MethodDelete, "/api/transactions/e-1", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.bucket("user-1"))
}
