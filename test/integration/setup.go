// Package integration exercises the repositories, services and HTTP API
// against a real PostgreSQL instance started with testcontainers.
package integration

import (
	"context"
	"strings"
	"testing"
	"time"

	"coffeeshop/internal/database"
	"coffeeshop/internal/repository"
	"coffeeshop/internal/seed"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a migrated test database.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB starts a PostgreSQL container and applies the schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("coffeeshop"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// fixtureCatalogue keeps every coupon valid for the lifetime of the suite.
const fixtureCatalogue = `
categories:
  - slug: coffee
    name: Coffee
  - slug: pastry
    name: Pastries
menu_items:
  - name: Latte
    price: "7.49"
    category: coffee
    stock: 40
  - name: Mocha
    price: "8.49"
    category: coffee
    stock: 30
  - name: Croissant
    price: "3.25"
    category: pastry
    stock: 2
  - name: Cinnamon Roll
    price: "3.95"
    category: pastry
    stock: 10
    unavailable: true
coupons:
  - code: WELCOME10
    name: Welcome offer
    discount_type: percentage
    discount_value: "10"
    minimum_amount: "20.00"
    maximum_discount: "5.00"
    valid_from: 2020-01-01T00:00:00Z
    valid_to: 2099-12-31T23:59:59Z
  - code: SAVE20
    name: Save 20
    discount_type: percentage
    discount_value: "20"
    minimum_amount: "0"
    maximum_discount: "10.00"
    usage_limit: 1
    valid_from: 2020-01-01T00:00:00Z
    valid_to: 2099-12-31T23:59:59Z
  - code: EXPIRED
    name: Long gone
    discount_type: fixed
    discount_value: "2.00"
    valid_from: 2020-01-01T00:00:00Z
    valid_to: 2020-12-31T23:59:59Z
`

// SeedCatalogue loads the fixture catalogue through the seeder.
func SeedCatalogue(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	doc, err := seed.Parse(strings.NewReader(fixtureCatalogue))
	if err != nil {
		t.Fatalf("failed to parse fixture catalogue: %v", err)
	}

	logger := zerolog.Nop()
	seeder := seed.NewSeeder(
		repository.NewCatalogueRepository(pool, logger),
		repository.NewCouponRepository(pool, logger),
		logger,
	)
	if _, err := seeder.Apply(context.Background(), doc); err != nil {
		t.Fatalf("failed to seed catalogue: %v", err)
	}
}

// MenuItemID looks up a seeded item by name.
func MenuItemID(t *testing.T, pool *pgxpool.Pool, name string) int64 {
	t.Helper()

	var id int64
	if err := pool.QueryRow(context.Background(), "SELECT id FROM menu_items WHERE name = $1", name).Scan(&id); err != nil {
		t.Fatalf("failed to find menu item %s: %v", name, err)
	}
	return id
}

// CleanupDB empties every table and resets identities.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE wishlist_items, review_helpful_votes, reviews, coupon_usages, coupons,
			order_lines, orders, cart_lines, carts, menu_items, categories, users
		RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("failed to clean database: %v", err)
	}
}
