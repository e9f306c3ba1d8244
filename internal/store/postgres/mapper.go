package postgres

import (
	"fmt"
	"sort"
	"time"

	"github.com/caixinha/caixinha-server/internal/domain"
)

// transactionRow mirrors the flat snake_case table where both variants
// live side by side. Fuel-only and receipt-only columns are nullable.
type transactionRow struct {
	ID        string
	CreatedAt time.Time
	UserID    string
	Date      *time.Time
	City      *string
	Amount    *float64
	Category  *string
	Operation *string
	Notes     *string
	Type      string

	ReceiptImage  *string
	ReceiptAmount *float64

	Origin        *string
	Destination   *string
	CarType       *string
	RoadType      *string
	DistanceKm    *float64
	FuelType      *string
	PricePerLiter *float64
	Consumption   *float64
	TotalValue    *float64
}

const dateLayout = "2006-01-02"

// toColumns maps a transaction onto column name → value pairs for
// insert/update. Optional fields that are unset are OMITTED, not sent as
// NULL: a partial write must never clobber a column another edit filled in.
func toColumns(t domain.Transaction) (map[string]any, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("store: transaction is not a valid %q/%q union", domain.TypeReceipt, domain.TypeFuel)
	}

	cols := map[string]any{
		"type":      string(t.Type),
		"operation": t.Operation(),
	}

	date, err := time.Parse(dateLayout, t.Date())
	if err != nil {
		return nil, fmt.Errorf("store: invalid date %q: %w", t.Date(), err)
	}
	cols["date"] = date

	switch t.Type {
	case domain.TypeReceipt:
		e := t.Expense
		cols["city"] = e.City
		cols["amount"] = e.Amount
		cols["category"] = e.Category
		cols["notes"] = e.Notes
		if e.ReceiptImage != "" {
			cols["receipt_image"] = e.ReceiptImage
		}
		if e.ReceiptAmount != 0 {
			cols["receipt_amount"] = e.ReceiptAmount
		}

	case domain.TypeFuel:
		f := t.Fuel
		cols["origin"] = f.Origin
		cols["destination"] = f.Destination
		cols["car_type"] = string(f.CarType)
		cols["road_type"] = string(f.RoadType)
		cols["distance_km"] = f.DistanceKm
		cols["fuel_type"] = string(f.FuelType)
		cols["price_per_liter"] = f.PricePerLiter
		cols["consumption"] = f.Consumption
		cols["total_value"] = f.TotalValue
		if f.ReceiptImage != "" {
			cols["receipt_image"] = f.ReceiptImage
		}
		if f.ReceiptAmount != 0 {
			cols["receipt_amount"] = f.ReceiptAmount
		}
	}

	return cols, nil
}

// fromRow rebuilds the tagged union from a table row.
func fromRow(r transactionRow) (domain.Transaction, error) {
	date := ""
	if r.Date != nil {
		date = r.Date.Format(dateLayout)
	}

	switch domain.TransactionType(r.Type) {
	case domain.TypeReceipt:
		return domain.NewReceiptTransaction(&domain.Expense{
			ID:            r.ID,
			Date:          date,
			City:          strOrEmpty(r.City),
			Amount:        floatOrZero(r.Amount),
			Category:      strOrEmpty(r.Category),
			Operation:     strOrEmpty(r.Operation),
			Notes:         strOrEmpty(r.Notes),
			ReceiptImage:  strOrEmpty(r.ReceiptImage),
			ReceiptAmount: floatOrZero(r.ReceiptAmount),
		}), nil

	case domain.TypeFuel:
		return domain.NewFuelTransaction(&domain.FuelEntry{
			ID:            r.ID,
			Date:          date,
			Origin:        strOrEmpty(r.Origin),
			Destination:   strOrEmpty(r.Destination),
			CarType:       domain.CarType(strOrEmpty(r.CarType)),
			RoadType:      domain.RoadType(strOrEmpty(r.RoadType)),
			DistanceKm:    floatOrZero(r.DistanceKm),
			Operation:     strOrEmpty(r.Operation),
			FuelType:      domain.FuelType(strOrEmpty(r.FuelType)),
			PricePerLiter: floatOrZero(r.PricePerLiter),
			Consumption:   floatOrZero(r.Consumption),
			TotalValue:    floatOrZero(r.TotalValue),
			ReceiptImage:  strOrEmpty(r.ReceiptImage),
			ReceiptAmount: floatOrZero(r.ReceiptAmount),
		}), nil
	}

	return domain.Transaction{}, fmt.Errorf("store: row %s has unknown type %q", r.ID, r.Type)
}

// sortedColumns returns the column names in deterministic order so
// generated SQL is stable.
func sortedColumns(cols map[string]any) []string {
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
