package ledgerstore_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trade_pilot/internal/config"
	"trade_pilot/internal/domain/entity"
	"trade_pilot/internal/infrastructure/ledgerstore"
)

func TestOpen(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	dir := t.TempDir()

	testCases := []struct {
		name   string
		ledger config.Ledger
	}{
		{name: "csv", ledger: config.Ledger{Driver: config.LedgerCSV, Path: filepath.Join(dir, "purchases.csv")}},
		{name: "sqlite", ledger: config.Ledger{Driver: config.LedgerSQLite, SQLitePath: filepath.Join(dir, "ledger.db")}},
	}

	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	for _, tc := range testCases {
		store, closeStore, err := ledgerstore.Open(ctx, config.Config{Ledger: tc.ledger})
		rq.NoError(err, tc.name)

		for _, p := range []entity.PurchaseAttempt{
			{ItemName: "Iron Ore", Quantity: 5, UnitPrice: 90, Mode: entity.ModeManual},
			{ItemName: "Iron Ore", Quantity: 3, UnitPrice: 100, Mode: entity.ModeOrder},
		} {
			rq.NoError(store.Append(ctx, entity.NewLedgerEntry(p, at)), tc.name)
		}

		h, err := store.Holding(ctx, "Iron Ore")
		rq.NoError(err, tc.name)
		rq.Equal(int64(8), h.TotalQuantity, tc.name)
		rq.Equal(int64(750), h.TotalCost, tc.name)
		rq.InDelta(93.75, h.WAPP(), 1e-9, tc.name)

		holdings, err := store.Holdings(ctx)
		rq.NoError(err, tc.name)
		rq.Len(holdings, 1, tc.name)

		closeStore(ctx)
	}
}
