package domain

import (
	"encoding/json"
	"fmt"
)

// The wire form of a transaction is flat: the variant's fields plus a
// "type" discriminator, matching what clients store and send.

type receiptWire struct {
	Type TransactionType `json:"type"`
	*Expense
}

type fuelWire struct {
	Type TransactionType `json:"type"`
	*FuelEntry
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	switch t.Type {
	case TypeReceipt:
		if t.Expense == nil {
			return nil, fmt.Errorf("domain: receipt transaction without expense")
		}
		return json.Marshal(receiptWire{Type: t.Type, Expense: t.Expense})
	case TypeFuel:
		if t.Fuel == nil {
			return nil, fmt.Errorf("domain: fuel transaction without fuel entry")
		}
		return json.Marshal(fuelWire{Type: t.Type, FuelEntry: t.Fuel})
	}
	return nil, fmt.Errorf("domain: cannot marshal transaction of type %q", t.Type)
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	var head struct {
		Type TransactionType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	switch head.Type {
	case TypeReceipt:
		var e Expense
		if err := json.Unmarshal(data, &e); err != nil {
			return err
		}
		*t = NewReceiptTransaction(&e)
	case TypeFuel:
		var f FuelEntry
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*t = NewFuelTransaction(&f)
	default:
		return fmt.Errorf("domain: unknown transaction type %q", head.Type)
	}
	return nil
}
