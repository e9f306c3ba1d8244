package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// FuelReimbursement computes the reimbursement for a trip:
//
//	(distanceKm / consumption) * pricePerLiter
//
// rounded half-up to 2 decimals. ok is false when consumption is not
// strictly positive, when distance or price is negative, or when any input
// is not a finite number; in that case the caller must keep the prior
// value (or zero) instead of storing NaN/Inf.
func FuelReimbursement(distanceKm, pricePerLiter, consumption float64) (value float64, ok bool) {
	if !isFinite(distanceKm) || !isFinite(pricePerLiter) || !isFinite(consumption) {
		return 0, false
	}
	if consumption <= 0 || distanceKm < 0 || pricePerLiter < 0 {
		return 0, false
	}

	total := decimal.NewFromFloat(distanceKm).
		Div(decimal.NewFromFloat(consumption)).
		Mul(decimal.NewFromFloat(pricePerLiter)).
		Round(2)

	value, _ = total.Float64()
	return value, true
}

// Recompute refreshes TotalValue from the current distance, price and
// consumption. It must be called after every edit of any of the three
// inputs. When the inputs are unusable the prior TotalValue is kept.
func (f *FuelEntry) Recompute() {
	if v, ok := FuelReimbursement(f.DistanceKm, f.PricePerLiter, f.Consumption); ok {
		f.TotalValue = v
	}
}

// InvoiceBelowReimbursement reports whether the fuel invoice charged less
// than the computed reimbursement. Reports surface this as a warning for
// the reviewer; it is not an error.
func (f *FuelEntry) InvoiceBelowReimbursement() bool {
	return f.ReceiptAmount > 0 && f.ReceiptAmount < f.TotalValue
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
