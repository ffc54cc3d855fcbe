package entity

import "time"

// PurchaseAttempt is an executed trade. Once built it is always recorded.
type PurchaseAttempt struct {
	ItemName  string
	Quantity  int
	UnitPrice int64
	Mode      Mode
}

func (p PurchaseAttempt) Cost() int64 {
	return int64(p.Quantity) * p.UnitPrice
}

// LedgerEntry is one append-only ledger row.
type LedgerEntry struct {
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
	ItemName     string    `json:"item_name" db:"item_name"`
	Quantity     int       `json:"quantity" db:"quantity"`
	PricePerUnit int64     `json:"price_per_unit" db:"price_per_unit"`
	PurchaseType Mode      `json:"purchase_type" db:"purchase_type"`
}

func NewLedgerEntry(p PurchaseAttempt, at time.Time) LedgerEntry {
	return LedgerEntry{
		Timestamp:    at,
		ItemName:     p.ItemName,
		Quantity:     p.Quantity,
		PricePerUnit: p.UnitPrice,
		PurchaseType: p.Mode,
	}
}

// Holding aggregates ledger entries of one item.
type Holding struct {
	ItemName      string
	TotalQuantity int64
	TotalCost     int64
}

// WAPP is the weighted-average purchase price, 0 without history.
func (h Holding) WAPP() float64 {
	if h.TotalQuantity == 0 {
		return 0
	}
	return float64(h.TotalCost) / float64(h.TotalQuantity)
}

// Aggregate folds entries into holdings keyed by item name.
func Aggregate(entries []LedgerEntry) map[string]Holding {
	holdings := make(map[string]Holding)
	for _, e := range entries {
		h := holdings[e.ItemName]
		h.ItemName = e.ItemName
		h.TotalQuantity += int64(e.Quantity)
		h.TotalCost += int64(e.Quantity) * e.PricePerUnit
		holdings[e.ItemName] = h
	}
	return holdings
}
