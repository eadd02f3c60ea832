package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/supermarket-receipt/internal/catalog"
	"github.com/xenking/supermarket-receipt/internal/domain/product"
)

const (
	listProductsSQL = `SELECT name, unit, price FROM products ORDER BY name, unit`

	upsertProductSQL = `INSERT INTO products (name, unit, price)
		VALUES ($1, $2, $3)
		ON CONFLICT (name, unit) DO UPDATE SET price = EXCLUDED.price, updated_at = now()`
)

// CatalogRepository reads and writes catalog prices.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// Load snapshots the whole table into an in-memory catalog.
func (r *CatalogRepository) Load(ctx context.Context) (*catalog.Memory, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	entries, err := pgx.CollectRows(rows, scanEntry)
	if err != nil {
		return nil, errors.Wrap(err, "scan products")
	}
	return catalog.NewMemory(entries...), nil
}

// Upsert sets the unit price of p.
func (r *CatalogRepository) Upsert(ctx context.Context, p product.Product, price decimal.Decimal) error {
	if _, err := r.pool.Exec(ctx, upsertProductSQL, p.Name, p.Unit.String(), price); err != nil {
		return errors.Wrapf(err, "upsert product %s", p)
	}
	return nil
}

// UpsertAll writes all entries in a single transaction.
func (r *CatalogRepository) UpsertAll(ctx context.Context, entries []catalog.Entry) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, e := range entries {
			batch.Queue(upsertProductSQL, e.Product.Name, e.Product.Unit.String(), e.Price)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return errors.Wrap(err, "upsert products")
		}
		return nil
	})
}

func scanEntry(row pgx.CollectableRow) (catalog.Entry, error) {
	var (
		name, unit string
		price      decimal.Decimal
	)
	if err := row.Scan(&name, &unit, &price); err != nil {
		return catalog.Entry{}, err
	}
	u, err := product.ParseUnit(unit)
	if err != nil {
		return catalog.Entry{}, err
	}
	return catalog.Entry{Product: product.Product{Name: name, Unit: u}, Price: price}, nil
}
