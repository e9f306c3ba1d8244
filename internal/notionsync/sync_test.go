package notionsync

import (
	"context"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caixinha/caixinha-server/internal/domain"
)

type fakeSource struct {
	transactions []domain.Transaction
}

func (f *fakeSource) ListByUser(context.Context, string) ([]domain.Transaction, error) {
	return f.transactions, nil
}

type fakeNotion struct {
	pages []notionapi.Page

	created []notionapi.Properties
	updated map[string]notionapi.Properties
	deleted []string
}

func (f *fakeNotion) CreatePage(_ context.Context, _ string, props notionapi.Properties) (*notionapi.Page, error) {
	f.created = append(f.created, props)
	return &notionapi.Page{ID: "new-page"}, nil
}

func (f *fakeNotion) UpdatePage(_ context.Context, pageID string, props notionapi.Properties) (*notionapi.Page, error) {
	if f.updated == nil {
		f.updated = map[string]notionapi.Properties{}
	}
	f.updated[pageID] = props
	return &notionapi.Page{ID: notionapi.ObjectID(pageID)}, nil
}

func (f *fakeNotion) QueryDatabase(context.Context, string, *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return &notionapi.DatabaseQueryResponse{Results: f.pages, HasMore: false}, nil
}

func (f *fakeNotion) DeletePage(_ context.Context, pageID string) error {
	f.deleted = append(f.deleted, pageID)
	return nil
}

func pageFor(pageID, txID string) notionapi.Page {
	return notionapi.Page{
		ID: notionapi.ObjectID(pageID),
		Properties: notionapi.Properties{
			"Lançamento": &notionapi.TitleProperty{
				Title: []notionapi.RichText{{PlainText: txID}},
			},
		},
	}
}

func TestSyncTransactions_CreateUpdateDelete(t *testing.T) {
	source := &fakeSource{transactions: []domain.Transaction{
		domain.NewReceiptTransaction(&domain.Expense{
			ID: "tx-kept", Date: "2024-02-01", Amount: 10, Category: "Taxas",
		}),
		domain.NewFuelTransaction(&domain.FuelEntry{
			ID: "tx-new", Date: "2024-02-02", FuelType: domain.FuelGasolina, TotalValue: 55.5,
		}),
	}}
	notion := &fakeNotion{pages: []notionapi.Page{
		pageFor("page-kept", "tx-kept"),
		pageFor("page-stale", "tx-gone"),
	}}

	res, err := SyncTransactions(context.Background(), source, notion, "db-1", "user-1", false)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Deleted)

	assert.Equal(t, []string{"page-stale"}, notion.deleted)
	assert.Contains(t, notion.updated, "page-kept")
	require.Len(t, notion.created, 1)

	title := notion.created[0]["Lançamento"].(notionapi.TitleProperty)
	assert.Equal(t, "tx-new", title.Title[0].Text.Content)
}

func TestSyncTransactions_DryRunWritesNothing(t *testing.T) {
	source := &fakeSource{transactions: []domain.Transaction{
		domain.NewReceiptTransaction(&domain.Expense{ID: "tx-1", Date: "2024-02-01", Amount: 10}),
	}}
	notion := &fakeNotion{pages: []notionapi.Page{pageFor("page-stale", "tx-gone")}}

	res, err := SyncTransactions(context.Background(), source, notion, "db-1", "user-1", true)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Deleted)
	assert.Empty(t, notion.created)
	assert.Empty(t, notion.updated)
	assert.Empty(t, notion.deleted)
}

func TestTransactionToProperties_Expense(t *testing.T) {
	props := TransactionToProperties(domain.NewReceiptTransaction(&domain.Expense{
		ID:            "tx-1",
		Date:          "2024-03-10",
		City:          "Campinas",
		Amount:        18.9,
		Category:      string(domain.CategoryEstacionamento),
		Operation:     "OP-7",
		Notes:         "shopping",
		ReceiptAmount: 18.9,
	}))

	title := props["Lançamento"].(notionapi.TitleProperty)
	assert.Equal(t, "tx-1", title.Title[0].Text.Content)

	assert.Equal(t, 18.9, props["Valor (R$)"].(notionapi.NumberProperty).Number)
	assert.Equal(t, "Despesa", props["Tipo"].(notionapi.SelectProperty).Select.Name)
	assert.Equal(t, string(domain.CategoryEstacionamento), props["Categoria"].(notionapi.SelectProperty).Select.Name)
	assert.Equal(t, "OP-7", props["Operação"].(notionapi.SelectProperty).Select.Name)
	assert.Contains(t, props, "Data")
	assert.Contains(t, props, "Valor Nota (R$)")
}

func TestTransactionToProperties_FuelOmitsUnset(t *testing.T) {
	props := TransactionToProperties(domain.NewFuelTransaction(&domain.FuelEntry{
		ID:          "tx-2",
		Origin:      "Campinas",
		Destination: "Santos",
		FuelType:    domain.FuelDiesel,
		TotalValue:  70.68,
	}))

	assert.Equal(t, "Combustível", props["Tipo"].(notionapi.SelectProperty).Select.Name)
	assert.Equal(t, "Combustível - Diesel", props["Categoria"].(notionapi.SelectProperty).Select.Name)
	assert.Equal(t, 70.68, props["Valor (R$)"].(notionapi.NumberProperty).Number)

	local := props["Local"].(notionapi.RichTextProperty)
	assert.Equal(t, "Campinas -> Santos", local.RichText[0].Text.Content)

	// Unset date, operation and invoice value must not produce properties.
	assert.NotContains(t, props, "Data")
	assert.NotContains(t, props, "Operação")
	assert.NotContains(t, props, "Valor Nota (R$)")
}
