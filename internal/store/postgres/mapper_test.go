package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caixinha/caixinha-server/internal/domain"
)

func rowFromColumns(t *testing.T, id string, cols map[string]any) transactionRow {
	t.Helper()

	r := transactionRow{ID: id, CreatedAt: time.Now(), UserID: "user-1"}
	for name, v := range cols {
		switch name {
		case "type":
			r.Type = v.(string)
		case "date":
			d := v.(time.Time)
			r.Date = &d
		case "city":
			s := v.(string)
			r.City = &s
		case "amount":
			f := v.(float64)
			r.Amount = &f
		case "category":
			s := v.(string)
			r.Category = &s
		case "operation":
			s := v.(string)
			r.Operation = &s
		case "notes":
			s := v.(string)
			r.Notes = &s
		case "receipt_image":
			s := v.(string)
			r.ReceiptImage = &s
		case "receipt_amount":
			f := v.(float64)
			r.ReceiptAmount = &f
		case "origin":
			s := v.(string)
			r.Origin = &s
		case "destination":
			s := v.(string)
			r.Destination = &s
		case "car_type":
			s := v.(string)
			r.CarType = &s
		case "road_type":
			s := v.(string)
			r.RoadType = &s
		case "distance_km":
			f := v.(float64)
			r.DistanceKm = &f
		case "fuel_type":
			s := v.(string)
			r.FuelType = &s
		case "price_per_liter":
			f := v.(float64)
			r.PricePerLiter = &f
		case "consumption":
			f := v.(float64)
			r.Consumption = &f
		case "total_value":
			f := v.(float64)
			r.TotalValue = &f
		default:
			t.Fatalf("unexpected column %q", name)
		}
	}
	return r
}

func TestMapper_ExpenseRoundTrip(t *testing.T) {
	exp := &domain.Expense{
		ID:            "e-1",
		Date:          "2023-12-25",
		City:          "Shopping ABC - Rua X",
		Amount:        15.5,
		Category:      string(domain.CategoryPedagio),
		Operation:     domain.OperationPending,
		Notes:         "Importado via CSV (Pedágio)",
		ReceiptImage:  "JVBERi0xLjQ=",
		ReceiptAmount: 15.5,
	}

	cols, err := toColumns(domain.NewReceiptTransaction(exp))
	require.NoError(t, err)

	got, err := fromRow(rowFromColumns(t, "e-1", cols))
	require.NoError(t, err)
	require.Equal(t, domain.TypeReceipt, got.Type)
	assert.Equal(t, *exp, *got.Expense)
}

func TestMapper_FuelRoundTrip(t *testing.T) {
	fuel := &domain.FuelEntry{
		ID:            "f-1",
		Date:          "2024-03-02",
		Origin:        "Campinas",
		Destination:   "São Paulo",
		CarType:       domain.CarAlugado,
		RoadType:      domain.RoadEstrada,
		DistanceKm:    98.5,
		Operation:     "OP-COBRE",
		FuelType:      domain.FuelDiesel,
		PricePerLiter: 6.15,
		Consumption:   9.5,
		TotalValue:    63.77,
		ReceiptAmount: 60.0,
	}

	cols, err := toColumns(domain.NewFuelTransaction(fuel))
	require.NoError(t, err)

	got, err := fromRow(rowFromColumns(t, "f-1", cols))
	require.NoError(t, err)
	require.Equal(t, domain.TypeFuel, got.Type)
	assert.Equal(t, *fuel, *got.Fuel)
}

func TestMapper_NegativeAmountPreserved(t *testing.T) {
	exp := &domain.Expense{ID: "e-2", Date: "2024-01-01", Amount: -12.3, Category: "Outros"}

	cols, err := toColumns(domain.NewReceiptTransaction(exp))
	require.NoError(t, err)

	got, err := fromRow(rowFromColumns(t, "e-2", cols))
	require.NoError(t, err)
	assert.Equal(t, -12.3, got.Expense.Amount)
}

func TestMapper_OptionalFieldsOmitted(t *testing.T) {
	exp := &domain.Expense{ID: "e-3", Date: "2024-01-01", Amount: 5}

	cols, err := toColumns(domain.NewReceiptTransaction(exp))
	require.NoError(t, err)

	// Unset optionals must be absent from the column map entirely, not
	// present as nil: omission is what keeps partial writes from
	// clobbering remote values.
	assert.NotContains(t, cols, "receipt_image")
	assert.NotContains(t, cols, "receipt_amount")
	assert.NotContains(t, cols, "origin")
	assert.NotContains(t, cols, "total_value")
}

func TestMapper_InvalidUnionRejected(t *testing.T) {
	_, err := toColumns(domain.Transaction{Type: domain.TypeFuel})
	assert.Error(t, err)

	_, err = toColumns(domain.Transaction{Type: "mystery", Expense: &domain.Expense{}})
	assert.Error(t, err)
}

func TestMapper_BadDateRejected(t *testing.T) {
	_, err := toColumns(domain.NewReceiptTransaction(&domain.Expense{ID: "x", Date: "25/12/2023"}))
	assert.Error(t, err)
}

func TestFromRow_UnknownType(t *testing.T) {
	_, err := fromRow(transactionRow{ID: "r-1", Type: "subscription"})
	assert.Error(t, err)
}

func TestBuildUpdate_OnlySetColumnsAppear(t *testing.T) {
	query, args := buildUpdate("id-1", "user-1", map[string]any{
		"operation": "OP-9",
		"notes":     "reclassified",
	})

	assert.Equal(t,
		"UPDATE transactions SET notes = $1, operation = $2 WHERE id = $3 AND user_id = $4",
		query,
	)
	assert.Equal(t, []any{"reclassified", "OP-9", "id-1", "user-1"}, args)

	// Columns that were never set are not mentioned at all.
	assert.NotContains(t, query, "amount")
	assert.NotContains(t, query, "receipt_image")
}

func TestBuildUpdate_AlwaysScopedByOwner(t *testing.T) {
	query, _ := buildUpdate("id-1", "user-1", map[string]any{"city": "Santos"})
	assert.True(t, strings.HasSuffix(query, "AND user_id = $3"))
}
