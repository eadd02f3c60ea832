// Command print-receipt checks out the cart declared in price book files and
// prints the receipt.
//
//	print-receipt [flags] catalog.json [offers.json.gz ...] cart.json
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/supermarket-receipt/internal/domain/checkout"
	"github.com/xenking/supermarket-receipt/internal/pricebook"
	"github.com/xenking/supermarket-receipt/internal/receipt"
	"github.com/xenking/supermarket-receipt/internal/storage/postgres"
)

type options struct {
	format      string
	columns     int
	crlf        bool
	databaseURL string
	files       []string
}

func main() {
	var (
		opts    options
		verbose bool
	)
	flag.StringVar(&opts.format, "format", "text", "output format: text, html or json")
	flag.IntVar(&opts.columns, "columns", receipt.DefaultColumns, "receipt width")
	flag.BoolVar(&opts.crlf, "crlf", false, "use CRLF line endings")
	flag.StringVar(&opts.databaseURL, "database-url", "", "load catalog prices from PostgreSQL before applying price books")
	flag.BoolVar(&verbose, "v", false, "verbose logging")
	flag.Usage = func() {
		_, _ = fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] pricebook.json...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	opts.files = flag.Args()

	lg, err := newLogger(verbose)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, os.Stdout, opts); err != nil {
		lg.Error("Print receipt failed", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func run(ctx context.Context, lg *zap.Logger, out io.Writer, opts options) error {
	if len(opts.files) == 0 {
		return errors.New("at least one price book file is required")
	}

	gen, err := receipt.ForFormat(opts.format)
	if err != nil {
		return err
	}
	layout := receipt.Options{Columns: opts.columns}
	if opts.crlf {
		layout.LineSeparator = "\r\n"
	}

	book, err := loadBook(ctx, lg, opts)
	if err != nil {
		return err
	}

	teller := checkout.NewTeller(book.Catalog, checkout.WithLogger(lg.Named("teller")))
	teller.Register(book.Offers...)

	r, err := teller.Checkout(book.Cart)
	if err != nil {
		return errors.Wrap(err, "checkout")
	}

	if _, err := io.WriteString(out, gen.Generate(r, layout)+"\n"); err != nil {
		return errors.Wrap(err, "write receipt")
	}
	return nil
}

// loadBook merges the price book files, on top of the database catalog when
// one is configured.
func loadBook(ctx context.Context, lg *zap.Logger, opts options) (*pricebook.Book, error) {
	if opts.databaseURL == "" {
		return pricebook.LoadFiles(ctx, opts.files...)
	}

	pool, err := postgres.NewPool(ctx, opts.databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	base, err := postgres.NewCatalogRepository(pool).Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load catalog")
	}
	lg.Debug("Catalog loaded from database", zap.Int("products", base.Len()))

	docs, err := pricebook.ReadFiles(ctx, opts.files...)
	if err != nil {
		return nil, err
	}
	return pricebook.BuildOn(base, docs...)
}
