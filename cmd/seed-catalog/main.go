// Command seed-catalog upserts the products of price book files into the
// PostgreSQL catalog.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/supermarket-receipt/internal/catalog"
	"github.com/xenking/supermarket-receipt/internal/pricebook"
	"github.com/xenking/supermarket-receipt/internal/storage/postgres"
)

func main() {
	var databaseURL string
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	lg, err := zap.NewProduction()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = lg.Sync() }()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		lg.Fatal("Database URL is required: set --database-url or DATABASE_URL")
	}
	if flag.NArg() == 0 {
		lg.Fatal("At least one price book file is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, databaseURL, flag.Args()); err != nil {
		lg.Fatal("Seed failed", zap.Error(err))
	}
	lg.Info("Seed completed")
}

func run(ctx context.Context, lg *zap.Logger, databaseURL string, files []string) error {
	docs, err := pricebook.ReadFiles(ctx, files...)
	if err != nil {
		return errors.Wrap(err, "read price books")
	}
	entries := products(docs)
	lg.Info("Read price books", zap.Int("files", len(files)), zap.Int("products", len(entries)))

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := postgres.NewCatalogRepository(pool).UpsertAll(ctx, entries); err != nil {
		return errors.Wrap(err, "seed products")
	}
	for _, e := range entries {
		lg.Debug("Upserted product", zap.Stringer("product", e.Product), zap.Stringer("price", e.Price))
	}
	return nil
}

// products merges declared products; a later declaration of the same product
// overrides the price.
func products(docs []*pricebook.Document) []catalog.Entry {
	m := catalog.NewMemory()
	for _, doc := range docs {
		for _, p := range doc.Products {
			m.Add(p.Product(), p.Price)
		}
	}
	return m.Entries()
}
