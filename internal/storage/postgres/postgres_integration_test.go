//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/xenking/storefront/internal/catalog"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
)

func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("storefront"),
		tcpostgres.WithUsername("storefront"),
		tcpostgres.WithPassword("storefront"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "start postgres container")
	testcontainers.CleanupContainer(t, container)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, RunMigrations(ctx, pool))
	// Migrations are idempotent.
	require.NoError(t, RunMigrations(ctx, pool))
	return pool
}

func TestIntegration_Repositories(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	t.Run("products", func(t *testing.T) {
		repo := NewProductRepository(pool)
		products, err := catalog.Default()
		require.NoError(t, err)

		// Insert in reverse to prove listing follows position, not insertion.
		for i := len(products) - 1; i >= 0; i-- {
			require.NoError(t, repo.Upsert(ctx, products[i], i))
		}

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, len(products))
		for i := range products {
			assert.Equal(t, products[i].ID, list[i].ID)
			assert.True(t, products[i].UnitPrice.Equal(list[i].UnitPrice))
			assert.Equal(t, products[i].Image, list[i].Image)
		}

		updated := products[0]
		updated.Name = "Renamed"
		require.NoError(t, repo.Upsert(ctx, updated, 0))

		got, err := repo.GetByID(ctx, updated.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)

		_, err = repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, product.ErrNotFound)
	})

	t.Run("orders", func(t *testing.T) {
		repo := NewOrderRepository(pool)
		base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		for i, id := range []string{"order-a", "order-b"} {
			require.NoError(t, repo.Create(ctx, &order.Order{
				ID:       id,
				Identity: "admin",
				Items: []order.Item{
					{ProductID: "product-5", Name: "USB-C Hub", UnitPrice: decimal.RequireFromString("12.00"), Quantity: 2},
				},
				Total:    decimal.RequireFromString("24.00"),
				PlacedAt: base.Add(time.Duration(i) * time.Minute),
			}))
		}

		list, err := repo.ListByIdentity(ctx, "admin")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "order-b", list[0].ID)
		assert.Equal(t, base.Add(time.Minute), list[0].PlacedAt)
		assert.Equal(t, "24.00", list[0].Total.StringFixed(2))
		require.Len(t, list[0].Items, 1)
		assert.Equal(t, 2, list[0].Items[0].Quantity)

		none, err := repo.ListByIdentity(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}
