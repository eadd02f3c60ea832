//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xenking/supermarket-receipt/internal/catalog"
	"github.com/xenking/supermarket-receipt/internal/domain/product"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "receipt",
				"POSTGRES_PASSWORD": "receipt",
				"POSTGRES_DB":       "receipt",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://receipt:receipt@%s:%s/receipt?sslmode=disable", host, port.Port())
}

func TestCatalogRepository(t *testing.T) {
	ctx := context.Background()

	pool, err := NewPool(ctx, startPostgres(t))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, RunMigrations(ctx, pool))
	require.NoError(t, RunMigrations(ctx, pool), "migrations are idempotent")

	repo := NewCatalogRepository(pool)

	apples := product.Product{Name: "Apples", Unit: product.Kilo}
	peeler := product.Product{Name: "Peeler", Unit: product.Each}
	eachApple := product.Product{Name: "Apples", Unit: product.Each}

	require.NoError(t, repo.UpsertAll(ctx, []catalog.Entry{
		{Product: apples, Price: decimal.RequireFromString("1.99")},
		{Product: peeler, Price: decimal.RequireFromString("10")},
	}))
	require.NoError(t, repo.Upsert(ctx, apples, decimal.RequireFromString("2.49")))
	require.NoError(t, repo.Upsert(ctx, eachApple, decimal.RequireFromString("0.35")))

	m, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())

	for p, want := range map[product.Product]string{
		apples:    "2.49",
		peeler:    "10",
		eachApple: "0.35",
	} {
		price, err := m.UnitPrice(p)
		require.NoError(t, err, p.String())
		assert.True(t, decimal.RequireFromString(want).Equal(price), "%s: got %s", p, price)
	}

	err = repo.Upsert(ctx, peeler, decimal.RequireFromString("-1"))
	require.Error(t, err, "negative prices violate the check constraint")
}
