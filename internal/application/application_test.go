package application

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"trade_pilot/internal/config"
	"trade_pilot/internal/domain/entity"
	"trade_pilot/internal/domain/service/namematch"
	"trade_pilot/internal/infrastructure/ledgerstore"
)

func TestNewStrategy(t *testing.T) {
	rq := require.New(t)

	store, closeStore, err := ledgerstore.Open(context.Background(), config.Config{
		Ledger: config.Ledger{Driver: config.LedgerCSV, Path: filepath.Join(t.TempDir(), "p.csv")},
	})
	rq.NoError(err)
	defer closeStore(context.Background())

	for _, mode := range []entity.Mode{entity.ModeManual, entity.ModeOrder, entity.ModeSell} {
		s, err := newStrategy(mode, nil, store, namematch.NewMatcher(92))
		rq.NoError(err)
		rq.Equal(mode, s.Mode())
	}

	_, err = newStrategy(entity.Mode("scan"), nil, store, namematch.NewMatcher(92))
	rq.Error(err)
}

func TestLoadCatalog_SellWithoutCatalog(t *testing.T) {
	rq := require.New(t)

	missing := config.Pilot{CatalogPath: filepath.Join(t.TempDir(), "none.csv"), StartRow: 1}

	items, err := loadCatalog(context.Background(), missing, entity.ModeSell)
	rq.NoError(err)
	rq.Empty(items)

	_, err = loadCatalog(context.Background(), missing, entity.ModeManual)
	rq.Error(err)
}
