package domain

// TransactionType discriminates the two transaction shapes stored in the
// shared transactions table.
type TransactionType string

const (
	TypeReceipt TransactionType = "receipt"
	TypeFuel    TransactionType = "fuel"
)

// CarType distinguishes company-owned from rented vehicles on fuel entries.
type CarType string

const (
	CarProprio CarType = "Proprio"
	CarAlugado CarType = "Alugado"
)

// RoadType is the road profile a fuel entry was driven on.
type RoadType string

const (
	RoadCidade  RoadType = "Cidade"
	RoadEstrada RoadType = "Estrada"
)

// FuelType is the fuel purchased for a fuel entry.
type FuelType string

const (
	FuelGasolina FuelType = "Gasolina"
	FuelAlcool   FuelType = "Alcool"
	FuelDiesel   FuelType = "Diesel"
)

// OperationPending is the sentinel cost-center assigned to bulk-imported
// records. Statement exports know nothing about the company's internal
// operations, so imported rows are never auto-assigned to a real one; the
// user must reclassify them before reporting.
const OperationPending = "PENDENTE - DEFINIR"

// Expense is a receipt-backed expense captured manually, via AI extraction,
// or via statement import.
type Expense struct {
	ID        string  `json:"id"`
	Date      string  `json:"date"` // YYYY-MM-DD
	City      string  `json:"city"`
	Amount    float64 `json:"amount"`
	Category  string  `json:"category"` // ExpenseCategory value or free string
	Operation string  `json:"operation"`
	Notes     string  `json:"notes"`

	// ReceiptImage is the attached proof document as a base64 payload,
	// optionally with a data-URI prefix. Empty when no proof exists.
	ReceiptImage string `json:"receiptImage,omitempty"`

	// ReceiptAmount is the raw amount the extraction read off the receipt,
	// kept separate from Amount so a reviewer can spot manual corrections.
	ReceiptAmount float64 `json:"receiptAmount,omitempty"`
}

// FuelEntry is a fuel-reimbursement record. TotalValue is the computed
// reimbursement; ReceiptAmount is what the fuel invoice actually charged.
// The two legitimately differ and both are surfaced in reports.
type FuelEntry struct {
	ID          string   `json:"id"`
	Date        string   `json:"date"` // YYYY-MM-DD
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	CarType     CarType  `json:"carType"`
	RoadType    RoadType `json:"roadType"`
	DistanceKm  float64  `json:"distanceKm"`
	Operation   string   `json:"operation"`
	FuelType    FuelType `json:"fuelType"`

	PricePerLiter float64 `json:"pricePerLiter"`
	Consumption   float64 `json:"consumption"` // km per liter
	TotalValue    float64 `json:"totalValue"`  // computed, never user-set

	ReceiptAmount float64 `json:"receiptAmount,omitempty"`
	ReceiptImage  string  `json:"receiptImage,omitempty"`
}

// Transaction is the tagged union of the two variants. Exactly one of
// Expense/Fuel is set, according to Type.
type Transaction struct {
	Type    TransactionType
	Expense *Expense
	Fuel    *FuelEntry
}

// NewReceiptTransaction wraps an Expense.
func NewReceiptTransaction(e *Expense) Transaction {
	return Transaction{Type: TypeReceipt, Expense: e}
}

// NewFuelTransaction wraps a FuelEntry.
func NewFuelTransaction(f *FuelEntry) Transaction {
	return Transaction{Type: TypeFuel, Fuel: f}
}

// ID returns the identifier of whichever variant is set.
func (t Transaction) ID() string {
	switch t.Type {
	case TypeReceipt:
		if t.Expense != nil {
			return t.Expense.ID
		}
	case TypeFuel:
		if t.Fuel != nil {
			return t.Fuel.ID
		}
	}
	return ""
}

// Date returns the YYYY-MM-DD date of whichever variant is set.
func (t Transaction) Date() string {
	switch t.Type {
	case TypeReceipt:
		if t.Expense != nil {
			return t.Expense.Date
		}
	case TypeFuel:
		if t.Fuel != nil {
			return t.Fuel.Date
		}
	}
	return ""
}

// Operation returns the cost-center label of whichever variant is set.
func (t Transaction) Operation() string {
	switch t.Type {
	case TypeReceipt:
		if t.Expense != nil {
			return t.Expense.Operation
		}
	case TypeFuel:
		if t.Fuel != nil {
			return t.Fuel.Operation
		}
	}
	return ""
}

// DisplayAmount returns the amount a statement listing shows: the expense
// amount for receipts, the computed reimbursement for fuel entries.
func (t Transaction) DisplayAmount() float64 {
	switch t.Type {
	case TypeReceipt:
		if t.Expense != nil {
			return t.Expense.Amount
		}
	case TypeFuel:
		if t.Fuel != nil {
			return t.Fuel.TotalValue
		}
	}
	return 0
}

// ReceiptImage returns the attached proof document of whichever variant is set.
func (t Transaction) ReceiptImage() string {
	switch t.Type {
	case TypeReceipt:
		if t.Expense != nil {
			return t.Expense.ReceiptImage
		}
	case TypeFuel:
		if t.Fuel != nil {
			return t.Fuel.ReceiptImage
		}
	}
	return ""
}

// IsValid reports whether the union is well-formed: a known tag with the
// matching variant populated and the other empty.
func (t Transaction) IsValid() bool {
	switch t.Type {
	case TypeReceipt:
		return t.Expense != nil && t.Fuel == nil
	case TypeFuel:
		return t.Fuel != nil && t.Expense == nil
	}
	return false
}
