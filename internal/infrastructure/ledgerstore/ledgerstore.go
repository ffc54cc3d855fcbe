// Package ledgerstore opens the purchase ledger selected by configuration.
package ledgerstore

import (
	"context"
	"fmt"

	"trade_pilot/internal/config"
	"trade_pilot/internal/domain/entity"
	"trade_pilot/internal/domain/service/negotiation"
	"trade_pilot/internal/infrastructure/ledgerfile"
	"trade_pilot/internal/infrastructure/persistence"
	"trade_pilot/pkg/application/connectors"
)

// Store is the purchase ledger plus the read side used by summaries.
type Store interface {
	negotiation.Ledger
	Holdings(ctx context.Context) ([]entity.Holding, error)
}

// Open returns the configured ledger. The closer is always safe to call.
func Open(ctx context.Context, cfg config.Config) (Store, func(context.Context), error) {
	switch cfg.Ledger.Driver {
	case config.LedgerSQLite:
		conn := &connectors.SQLite{Path: cfg.Ledger.SQLitePath}
		repo := persistence.NewPurchaseRepository(conn.Client(ctx))
		if err := repo.Migrate(ctx); err != nil {
			conn.Close(ctx)
			return nil, nil, fmt.Errorf("repo.Migrate: %w", err)
		}
		return repo, conn.Close, nil

	case config.LedgerPostgres:
		conn := &connectors.Postgres{
			DSN:             cfg.Postgres.DSN,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		}
		repo := persistence.NewPurchaseRepository(conn.Client(ctx))
		if err := repo.Migrate(ctx); err != nil {
			conn.Close(ctx)
			return nil, nil, fmt.Errorf("repo.Migrate: %w", err)
		}
		return repo, conn.Close, nil

	default:
		return ledgerfile.New(cfg.Ledger.Path), func(context.Context) {}, nil
	}
}
