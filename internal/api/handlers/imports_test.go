package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caixinha/caixinha-server/internal/domain"
	"github.com/caixinha/caixinha-server/internal/jobs"
	"github.com/caixinha/caixinha-server/internal/statement"
)

const statementCSV = "Data de Utilizacao;Nome do Estabelecimento;Endereco do Estabelecimento;Valor Cobrado;Tipo de Transacao\n" +
	"25/12/2023;Rodovia dos Bandeirantes;KM 62;15,50;PEDAGIO\n" +
	"26/12/2023;Parking Center;Rua B, 10;8,00;ESTACIONAMENTO\n"

type fakeArchive struct {
	objects map[string][]byte
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{objects: map[string][]byte{}}
}

func (f *fakeArchive) Put(_ context.Context, userID, name, _ string, data []byte) (string, error) {
	uri := "gs://test-bucket/" + userID + "/" + name
	f.objects[uri] = data
	return uri, nil
}

func (f *fakeArchive) Fetch(_ context.Context, uri string) ([]byte, error) {
	return f.objects[uri], nil
}

func newImportsHandler(store TransactionStore) (*ImportsHandler, *Staging) {
	staging := NewStaging()
	h := NewImportsHandler(
		store, staging, nil, nil, newFakeArchive(),
		&statement.CSVParser{}, nil, zerolog.Nop(),
	)
	return h, staging
}

func TestImportFlow_ParsePreviewConfirm(t *testing.T) {
	store := newFakeStore()
	h, _ := newImportsHandler(store)

	rec := do(h.CreateImport, http.MethodPost, "/api/imports", "user-1", map[string]any{
		"filename": "extrato.csv",
		"content":  base64.StdEncoding.EncodeToString([]byte(statementCSV)),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var batch statement.DraftBatch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &batch))
	require.Len(t, batch.Drafts, 2)
	assert.Equal(t, domain.OperationPending, batch.Drafts[0].Operation)
	assert.Equal(t, "2023-12-25", batch.Drafts[0].Date)

	// Nothing persisted before confirm.
	assert.Empty(t, store.bulkInserts)

	rec = do(func(w http.ResponseWriter, r *http.Request) {
		h.GetBatch(w, r, batch.ID)
	}, http.MethodGet, "/api/imports/"+batch.ID, "user-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(func(w http.ResponseWriter, r *http.Request) {
		h.ConfirmBatch(w, r, batch.ID)
	}, http.MethodPost, "/api/imports/"+batch.ID+"/confirm", "user-1", map[string]any{
		"operations": map[string]string{batch.Drafts[0].ID: "OP-9"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Confirm is one bulk insert.
	require.Len(t, store.bulkInserts, 1)
	inserted := store.bulkInserts[0]
	require.Len(t, inserted, 2)
	assert.Equal(t, "OP-9", inserted[0].Operation())
	assert.Equal(t, domain.OperationPending, inserted[1].Operation())

	// A second confirm must not double-import.
	rec = do(func(w http.ResponseWriter, r *http.Request) {
		h.ConfirmBatch(w, r, batch.ID)
	}, http.MethodPost, "/api/imports/"+batch.ID+"/confirm", "user-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, store.bulkInserts, 1)
}

func TestImport_BatchIsOwnerScoped(t *testing.T) {
	h, staging := newImportsHandler(newFakeStore())
	staging.Put("user-1", &statement.DraftBatch{ID: "b-1", Source: "extrato.csv"})

	rec := do(func(w http.ResponseWriter, r *http.Request) {
		h.GetBatch(w, r, "b-1")
	}, http.MethodGet, "/api/imports/b-1", "user-2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImport_InvalidFormatRejected(t *testing.T) {
	h, _ := newImportsHandler(newFakeStore())

	rec := do(h.CreateImport, http.MethodPost, "/api/imports", "user-1", map[string]any{
		"filename": "extrato.csv",
		"content":  base64.StdEncoding.EncodeToString([]byte("Coluna A;Coluna B\n1;2\n")),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestImport_UnknownExtensionRejected(t *testing.T) {
	h, _ := newImportsHandler(newFakeStore())

	rec := do(h.CreateImport, http.MethodPost, "/api/imports", "user-1", map[string]any{
		"filename": "extrato.docx",
		"content":  base64.StdEncoding.EncodeToString([]byte("x")),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessJob_StagesBatchForOwner(t *testing.T) {
	staging := NewStaging()
	arch := newFakeArchive()
	h := NewImportsHandler(
		newFakeStore(), staging, nil, nil, arch,
		&statement.CSVParser{}, nil, zerolog.Nop(),
	)

	uri, err := arch.Put(context.Background(), "user-1", "statements/extrato.csv", "text/csv", []byte(statementCSV))
	require.NoError(t, err)

	job := &jobs.ImportStatementJob{
		JobID:        "j-1",
		UserID:       "user-1",
		Source:       "extrato.csv",
		Format:       "csv",
		StatementURI: uri,
	}
	require.NoError(t, h.ProcessJob(context.Background(), job))
	require.NotEmpty(t, job.BatchID)

	batch, ok := staging.Get("user-1", job.BatchID)
	require.True(t, ok)
	assert.Len(t, batch.Drafts, 2)
}
