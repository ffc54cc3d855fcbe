package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trade_pilot/internal/domain/entity"
)

func TestAggregateReproducesWAPP(t *testing.T) {
	rq := require.New(t)

	at := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	attempts := []entity.PurchaseAttempt{
		{ItemName: "Iron Ore", Quantity: 5, UnitPrice: 90, Mode: entity.ModeManual},
		{ItemName: "Iron Ore", Quantity: 3, UnitPrice: 100, Mode: entity.ModeOrder},
		{ItemName: "Hide", Quantity: 1, UnitPrice: 40, Mode: entity.ModeManual},
	}

	entries := make([]entity.LedgerEntry, 0, len(attempts))
	for _, a := range attempts {
		entries = append(entries, entity.NewLedgerEntry(a, at))
	}

	holdings := entity.Aggregate(entries)
	rq.Len(holdings, 2)

	ore := holdings["Iron Ore"]
	rq.Equal(int64(8), ore.TotalQuantity)
	rq.Equal(int64(750), ore.TotalCost)
	rq.InDelta(93.75, ore.WAPP(), 1e-9)

	var replayed int64
	for _, e := range entries {
		if e.ItemName == "Iron Ore" {
			replayed += int64(e.Quantity) * e.PricePerUnit
		}
	}
	rq.Equal(float64(replayed)/float64(ore.TotalQuantity), ore.WAPP())

	rq.Zero(entity.Holding{}.WAPP())
}

func TestParseMode(t *testing.T) {
	rq := require.New(t)

	mode, err := entity.ParseMode(" Order ")
	rq.NoError(err)
	rq.Equal(entity.ModeOrder, mode)
	rq.True(mode.Spends())

	mode, err = entity.ParseMode("sell")
	rq.NoError(err)
	rq.False(mode.Spends())

	_, err = entity.ParseMode("scan")
	rq.ErrorContains(err, `unknown mode "scan"`)
}
