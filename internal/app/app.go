// Package app wires the receipt server together.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xenking/supermarket-receipt/internal/catalog"
	"github.com/xenking/supermarket-receipt/internal/domain/checkout"
	"github.com/xenking/supermarket-receipt/internal/handler"
	"github.com/xenking/supermarket-receipt/internal/pricebook"
	"github.com/xenking/supermarket-receipt/internal/storage/postgres"
	"github.com/xenking/supermarket-receipt/pkg/health"
	"github.com/xenking/supermarket-receipt/pkg/httpmiddleware"
)

// Run loads the catalog and offers, starts the HTTP server, and handles
// graceful shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	opts, err := cfg.Receipt.Options()
	if err != nil {
		return errors.Wrap(err, "receipt options")
	}

	healthSvc := health.New()
	healthSvc.Register(health.Check{
		Name: "goroutines",
		Kind: health.Liveness,
		Func: health.GoroutineCountCheck(cfg.Health.MaxGoroutines),
	})

	base := catalog.NewMemory()
	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if base, err = loadCatalog(ctx, pool); err != nil {
			return err
		}
		healthSvc.Register(health.Check{
			Name:    "postgres",
			Kind:    health.Readiness,
			Timeout: 5 * time.Second,
			Func:    health.PingCheck(pool),
		})
		lg.Info("Catalog loaded from database", zap.Int("products", base.Len()))
	}

	docs, err := pricebook.ReadFiles(ctx, cfg.Pricebooks...)
	if err != nil {
		return errors.Wrap(err, "read price books")
	}
	book, err := pricebook.BuildOn(base, docs...)
	if err != nil {
		return errors.Wrap(err, "build price book")
	}
	if len(book.Cart.Items()) > 0 {
		lg.Warn("Ignoring cart lines in price books")
	}

	teller := checkout.NewTeller(book.Catalog, checkout.WithLogger(lg.Named("teller")))
	teller.Register(book.Offers...)
	lg.Info("Offers registered",
		zap.Int("products", book.Catalog.Len()),
		zap.Int("offers", len(teller.Offers())),
	)

	healthSvc.Register(health.Check{
		Name: "catalog",
		Kind: health.Readiness,
		Func: health.NonEmptyCheck("catalog", book.Catalog.Len),
	})
	healthSvc.Start(ctx, cfg.Health.Interval)
	healthSvc.SetReady(true)

	h, err := handler.NewHandler(handler.Config{Receipt: opts}, teller, book.Catalog,
		m.TracerProvider(), m.MeterProvider())
	if err != nil {
		return errors.Wrap(err, "create handler")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)
	routeFinder := httpmiddleware.MakeRouteFinder(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(lg),
			httpmiddleware.Recovery(),
			httpmiddleware.Instrument("receipt-server", routeFinder, m),
			httpmiddleware.LogRequests(routeFinder),
			httpmiddleware.Labeler(routeFinder),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

func loadCatalog(ctx context.Context, pool *pgxpool.Pool) (*catalog.Memory, error) {
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return nil, errors.Wrap(err, "run migrations")
	}
	m, err := postgres.NewCatalogRepository(pool).Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load catalog")
	}
	return m, nil
}
