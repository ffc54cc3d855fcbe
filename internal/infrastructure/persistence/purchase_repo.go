package persistence

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jmoiron/sqlx"

	"trade_pilot/internal/domain"
	"trade_pilot/internal/domain/entity"
	"trade_pilot/pkg/errcodes"
)

//go:embed migrations/*.sql
var migrations embed.FS

// PurchaseRepository is the SQL purchase ledger. The same queries run on
// postgres and sqlite.
type PurchaseRepository struct {
	db *sqlx.DB
}

func NewPurchaseRepository(db *sqlx.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (r *PurchaseRepository) Migrate(ctx context.Context) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		query, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if _, err := r.db.ExecContext(ctx, string(query)); err != nil {
			return domain.WrapError(err, errcodes.LedgerUnavailable, "apply "+name)
		}
	}
	return nil
}

func (r *PurchaseRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.WrapError(err, errcodes.LedgerUnavailable, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapError(err, errcodes.LedgerUnavailable, "failed to commit")
	}
	return nil
}

func (r *PurchaseRepository) Append(ctx context.Context, entry entity.LedgerEntry) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO purchases (timestamp, item_name, quantity, price_per_unit, purchase_type)
			VALUES (:timestamp, :item_name, :quantity, :price_per_unit, :purchase_type)`

		if _, err := tx.NamedExecContext(ctx, query, fromLedgerEntry(entry)); err != nil {
			return domain.WrapError(err, errcodes.LedgerUnavailable, "failed to append purchase")
		}
		return nil
	})
}

func (r *PurchaseRepository) Holding(ctx context.Context, itemName string) (entity.Holding, error) {
	query := r.db.Rebind(`
		SELECT CAST(COALESCE(SUM(quantity), 0) AS BIGINT) AS total_quantity,
		       CAST(COALESCE(SUM(quantity * price_per_unit), 0) AS BIGINT) AS total_cost
		FROM purchases
		WHERE item_name = ?`)

	var schema holdingSchema
	if err := r.db.GetContext(ctx, &schema, query, itemName); err != nil {
		return entity.Holding{}, domain.WrapError(err, errcodes.LedgerUnavailable, "failed to aggregate purchases")
	}
	schema.ItemName = itemName
	return schema.toDomain(), nil
}

// Holdings aggregates the whole ledger, ordered by item name.
func (r *PurchaseRepository) Holdings(ctx context.Context) ([]entity.Holding, error) {
	query := `
		SELECT item_name,
		       CAST(SUM(quantity) AS BIGINT) AS total_quantity,
		       CAST(SUM(quantity * price_per_unit) AS BIGINT) AS total_cost
		FROM purchases
		GROUP BY item_name
		ORDER BY item_name`

	var schemas []holdingSchema
	if err := r.db.SelectContext(ctx, &schemas, query); err != nil {
		return nil, domain.WrapError(err, errcodes.LedgerUnavailable, "failed to aggregate purchases")
	}

	result := make([]entity.Holding, 0, len(schemas))
	for _, s := range schemas {
		result = append(result, s.toDomain())
	}
	return result, nil
}

// Entries returns the ledger in insertion order.
func (r *PurchaseRepository) Entries(ctx context.Context) ([]entity.LedgerEntry, error) {
	query := `SELECT timestamp, item_name, quantity, price_per_unit, purchase_type FROM purchases ORDER BY timestamp`

	var schemas []purchaseSchema
	if err := r.db.SelectContext(ctx, &schemas, query); err != nil {
		return nil, domain.WrapError(err, errcodes.LedgerUnavailable, "failed to list purchases")
	}

	result := make([]entity.LedgerEntry, 0, len(schemas))
	for _, s := range schemas {
		result = append(result, s.toDomain())
	}
	return result, nil
}
