package repository

import (
	"context"
	"testing"
	"time"

	"coffeeshop/internal/database"
	"coffeeshop/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer with the application schema
// and returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seedMenuItems inserts menu items and fills in their generated IDs.
func seedMenuItems(t *testing.T, pool *pgxpool.Pool, items []model.MenuItem) []model.MenuItem {
	ctx := context.Background()

	query := `
		INSERT INTO menu_items (name, description, price, category, stock, is_available, is_featured, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	for i := range items {
		it := &items[i]
		if it.CreatedAt.IsZero() {
			it.CreatedAt = time.Now()
		}
		err := pool.QueryRow(ctx, query,
			it.Name, it.Description, it.Price.String(), it.Category, it.Stock, it.IsAvailable, it.IsFeatured, it.CreatedAt,
		).Scan(&it.ID)
		require.NoError(t, err)
	}
	return items
}

func defaultMenu() []model.MenuItem {
	return []model.MenuItem{
		{Name: "Latte", Description: "Espresso with steamed milk", Price: dec("7.49"), Category: "coffee", Stock: 20, IsAvailable: true, IsFeatured: true},
		{Name: "Mocha", Description: "Chocolate espresso", Price: dec("8.49"), Category: "coffee", Stock: 3, IsAvailable: true},
		{Name: "Croissant", Description: "Butter pastry", Price: dec("3.25"), Category: "pastry", Stock: 0, IsAvailable: true},
		{Name: "Seasonal Tea", Description: "Retired blend", Price: dec("4.00"), Category: "tea", Stock: 10, IsAvailable: false, IsFeatured: true},
	}
}
