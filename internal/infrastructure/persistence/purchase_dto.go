package persistence

import (
	"time"

	"trade_pilot/internal/domain/entity"
)

type purchaseSchema struct {
	Timestamp    time.Time `db:"timestamp"`
	ItemName     string    `db:"item_name"`
	Quantity     int       `db:"quantity"`
	PricePerUnit int64     `db:"price_per_unit"`
	PurchaseType string    `db:"purchase_type"`
}

func fromLedgerEntry(e entity.LedgerEntry) purchaseSchema {
	return purchaseSchema{
		Timestamp:    e.Timestamp.UTC(),
		ItemName:     e.ItemName,
		Quantity:     e.Quantity,
		PricePerUnit: e.PricePerUnit,
		PurchaseType: e.PurchaseType.String(),
	}
}

func (s purchaseSchema) toDomain() entity.LedgerEntry {
	return entity.LedgerEntry{
		Timestamp:    s.Timestamp,
		ItemName:     s.ItemName,
		Quantity:     s.Quantity,
		PricePerUnit: s.PricePerUnit,
		PurchaseType: entity.Mode(s.PurchaseType),
	}
}

type holdingSchema struct {
	ItemName      string `db:"item_name"`
	TotalQuantity int64  `db:"total_quantity"`
	TotalCost     int64  `db:"total_cost"`
}

func (s holdingSchema) toDomain() entity.Holding {
	return entity.Holding{
		ItemName:      s.ItemName,
		TotalQuantity: s.TotalQuantity,
		TotalCost:     s.TotalCost,
	}
}
