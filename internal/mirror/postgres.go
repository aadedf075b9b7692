// Package mirror replicates committed store effects into PostgreSQL so
// reporting and background jobs can query SQL without touching the
// in-memory core. The mirror is write-behind: failures are logged and
// never roll back a committed operation.
package mirror

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ironmart/ironmart/internal/ledger"
	"github.com/ironmart/ironmart/internal/pos"
)

// Mirror writes committed products, movements and sales to Postgres.
type Mirror struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New constructs a Mirror over an established pool.
func New(pool *pgxpool.Pool, logger *slog.Logger) *Mirror {
	return &Mirror{pool: pool, logger: logger}
}

const upsertProductSQL = `
INSERT INTO products (id, name, category, price, cost, stock, sku, barcode, box_quantity, location, branch_id, revision)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	category = EXCLUDED.category,
	price = EXCLUDED.price,
	cost = EXCLUDED.cost,
	stock = EXCLUDED.stock,
	sku = EXCLUDED.sku,
	barcode = EXCLUDED.barcode,
	box_quantity = EXCLUDED.box_quantity,
	location = EXCLUDED.location,
	branch_id = EXCLUDED.branch_id,
	revision = EXCLUDED.revision
WHERE products.revision < EXCLUDED.revision`

// ProductUpserted replicates a product record. Stale revisions are
// dropped so late writes cannot overwrite newer state.
func (m *Mirror) ProductUpserted(ctx context.Context, p ledger.Product) error {
	_, err := m.pool.Exec(ctx, upsertProductSQL,
		p.ID, p.Name, p.Category, p.Price, p.Cost, p.Stock, p.SKU, p.Barcode,
		p.BoxQuantity, string(p.Location), p.BranchID, p.Revision)
	if err != nil {
		m.logger.Warn("mirror product upsert", slog.String("product_id", p.ID), slog.Any("error", err))
	}
	return err
}

const insertMovementSQL = `
INSERT INTO inventory_transactions (product_id, sku, delta, new_stock, reason, reference_id, actor_id, posted_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// MovementPosted appends one stock movement row.
func (m *Mirror) MovementPosted(ctx context.Context, mv ledger.Movement) error {
	_, err := m.pool.Exec(ctx, insertMovementSQL,
		mv.ProductID, mv.SKU, mv.Delta, mv.NewStock, string(mv.Reason), mv.ReferenceID, mv.ActorID, mv.PostedAt)
	if err != nil {
		m.logger.Warn("mirror movement insert", slog.String("product_id", mv.ProductID), slog.Any("error", err))
	}
	return err
}

const insertSaleSQL = `
INSERT INTO sales (id, sold_at, subtotal, tax, total, cashier_id, payment_method)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO NOTHING`

const insertSaleItemSQL = `
INSERT INTO sale_items (sale_id, product_id, name, quantity, price, cost)
VALUES ($1, $2, $3, $4, $5, $6)`

// SaleCommitted replicates a sale and its lines in one transaction.
func (m *Mirror) SaleCommitted(ctx context.Context, sale pos.Sale) error {
	err := pgx.BeginFunc(ctx, m.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, insertSaleSQL,
			sale.ID, sale.Date, sale.Subtotal, sale.Tax, sale.Total, sale.CashierID, sale.PaymentMethod)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		for _, item := range sale.Items {
			if _, err := tx.Exec(ctx, insertSaleItemSQL,
				sale.ID, item.ProductID, item.Name, item.Quantity, item.Price, item.Cost); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		m.logger.Warn("mirror sale insert", slog.String("sale_id", sale.ID), slog.Any("error", err))
	}
	return err
}
