package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"coffeeshop/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const menuItemColumns = `id, name, description, price, category, stock, is_available, is_featured, created_at`

// menuRepository implements the MenuRepository interface using PostgreSQL.
type menuRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewMenuRepository creates a new PostgreSQL-backed menu repository.
func NewMenuRepository(pool *pgxpool.Pool, logger zerolog.Logger) MenuRepository {
	return &menuRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "menu").Logger(),
	}
}

func scanMenuItem(row pgx.Row) (*model.MenuItem, error) {
	var item model.MenuItem
	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.Price,
		&item.Category,
		&item.Stock,
		&item.IsAvailable,
		&item.IsFeatured,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *menuRepository) collect(rows pgx.Rows) ([]model.MenuItem, error) {
	defer rows.Close()

	items := make([]model.MenuItem, 0)
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan menu item row")
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating menu item rows")
		return nil, fmt.Errorf("error iterating menu items: %w", err)
	}

	return items, nil
}

// menuOrderBy maps a sort key onto an ORDER BY clause. Unknown keys sort by name.
func menuOrderBy(sort string) string {
	switch sort {
	case model.SortByPriceLow:
		return "price ASC, name ASC"
	case model.SortByPriceHigh:
		return "price DESC, name ASC"
	case model.SortByRating:
		return "(SELECT AVG(rv.rating) FROM reviews rv WHERE rv.menu_item_id = menu_items.id) DESC NULLS LAST, name ASC"
	case model.SortByPopular:
		return "(SELECT COALESCE(SUM(ol.quantity), 0) FROM order_lines ol WHERE ol.menu_item_id = menu_items.id) DESC, name ASC"
	default:
		return "name ASC"
	}
}

// Search returns available menu items matching the filter.
func (r *menuRepository) Search(ctx context.Context, filter model.MenuFilter) ([]model.MenuItem, error) {
	conds := []string{"is_available = TRUE"}
	var args []any
	param := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q := strings.TrimSpace(filter.Query); q != "" {
		p := param("%" + q + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %s OR description ILIKE %s)", p, p))
	}
	if filter.Category != "" {
		conds = append(conds, "category = "+param(filter.Category))
	}
	if filter.MinPrice != nil {
		conds = append(conds, "price >= "+param(filter.MinPrice.String()))
	}
	if filter.MaxPrice != nil {
		conds = append(conds, "price <= "+param(filter.MaxPrice.String()))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM menu_items
		WHERE %s
		ORDER BY %s
	`, menuItemColumns, strings.Join(conds, " AND "), menuOrderBy(filter.Sort))

	if filter.Limit > 0 {
		query += " LIMIT " + param(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + param(filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to search menu items")
		return nil, fmt.Errorf("failed to search menu items: %w", err)
	}

	items, err := r.collect(rows)
	if err != nil {
		return nil, err
	}

	r.logger.Debug().
		Int("count", len(items)).
		Str("query", filter.Query).
		Str("category", filter.Category).
		Msg("searched menu items")

	return items, nil
}

// GetByID retrieves a single menu item by its ID.
func (r *menuRepository) GetByID(ctx context.Context, id int64) (*model.MenuItem, error) {
	query := `SELECT ` + menuItemColumns + ` FROM menu_items WHERE id = $1`

	item, err := scanMenuItem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("menu_item_id", id).Msg("menu item not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("menu_item_id", id).Msg("failed to query menu item")
		return nil, fmt.Errorf("failed to query menu item: %w", err)
	}

	return item, nil
}

// Featured returns available featured items, newest first.
func (r *menuRepository) Featured(ctx context.Context, limit int) ([]model.MenuItem, error) {
	query := `
		SELECT ` + menuItemColumns + `
		FROM menu_items
		WHERE is_featured = TRUE AND is_available = TRUE
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query featured items")
		return nil, fmt.Errorf("failed to query featured items: %w", err)
	}

	return r.collect(rows)
}

// Categories returns all active categories ordered by name.
func (r *menuRepository) Categories(ctx context.Context) ([]model.Category, error) {
	query := `
		SELECT id, slug, name, description, is_active
		FROM categories
		WHERE is_active = TRUE
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query categories")
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &c.Description, &c.IsActive); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan category row")
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating category rows")
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// UpdateStock sets the stock level of a menu item.
func (r *menuRepository) UpdateStock(ctx context.Context, id int64, stock int) (*model.MenuItem, error) {
	query := `
		UPDATE menu_items SET stock = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + menuItemColumns

	return r.update(ctx, "stock", id, query, id, stock)
}

// UpdatePrice sets the catalogue price of a menu item. Existing orders keep
// the price they were placed at.
func (r *menuRepository) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (*model.MenuItem, error) {
	query := `
		UPDATE menu_items SET price = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + menuItemColumns

	return r.update(ctx, "price", id, query, id, price.String())
}

func (r *menuRepository) update(ctx context.Context, field string, id int64, query string, args ...any) (*model.MenuItem, error) {
	item, err := scanMenuItem(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("menu_item_id", id).Str("field", field).Msg("failed to update menu item")
		return nil, fmt.Errorf("failed to update menu item %s: %w", field, err)
	}

	r.logger.Info().Int64("menu_item_id", id).Str("field", field).Msg("menu item updated")
	return item, nil
}

// catalogueRepository implements CatalogueRepository using PostgreSQL.
type catalogueRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCatalogueRepository creates a repository used to seed categories and menu items.
func NewCatalogueRepository(pool *pgxpool.Pool, logger zerolog.Logger) CatalogueRepository {
	return &catalogueRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "catalogue").Logger(),
	}
}

func (r *catalogueRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return beginTx(ctx, r.pool, r.logger)
}

func (r *catalogueRepository) UpsertCategory(ctx context.Context, tx pgx.Tx, category *model.Category) error {
	query := `
		INSERT INTO categories (slug, name, description, is_active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			is_active = EXCLUDED.is_active
		RETURNING id
	`

	err := tx.QueryRow(ctx, query, category.Slug, category.Name, category.Description, category.IsActive).Scan(&category.ID)
	if err != nil {
		r.logger.Error().Err(err).Str("slug", category.Slug).Msg("failed to upsert category")
		return fmt.Errorf("failed to upsert category %s: %w", category.Slug, err)
	}
	return nil
}

func (r *catalogueRepository) UpsertMenuItem(ctx context.Context, tx pgx.Tx, item *model.MenuItem) error {
	query := `
		INSERT INTO menu_items (name, description, price, category, stock, is_available, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			category = EXCLUDED.category,
			stock = EXCLUDED.stock,
			is_available = EXCLUDED.is_available,
			is_featured = EXCLUDED.is_featured,
			updated_at = NOW()
		RETURNING id, created_at
	`

	err := tx.QueryRow(ctx, query,
		item.Name,
		item.Description,
		item.Price.String(),
		item.Category,
		item.Stock,
		item.IsAvailable,
		item.IsFeatured,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("name", item.Name).Msg("failed to upsert menu item")
		return fmt.Errorf("failed to upsert menu item %s: %w", item.Name, err)
	}
	return nil
}
