package repository

import (
	"context"
	"fmt"

	"coffeeshop/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type wishlistRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewWishlistRepository creates a new PostgreSQL-backed wishlist repository.
func NewWishlistRepository(pool *pgxpool.Pool, logger zerolog.Logger) WishlistRepository {
	return &wishlistRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "wishlist").Logger(),
	}
}

func (r *wishlistRepository) Toggle(ctx context.Context, userID string, menuItemID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id = $1 AND menu_item_id = $2`, userID, menuItemID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Int64("menu_item_id", menuItemID).Msg("failed to remove wishlist item")
		return false, fmt.Errorf("failed to remove wishlist item: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO wishlist_items (user_id, menu_item_id) VALUES ($1, $2)
		ON CONFLICT (user_id, menu_item_id) DO NOTHING
	`, userID, menuItemID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Int64("menu_item_id", menuItemID).Msg("failed to add wishlist item")
		return false, fmt.Errorf("failed to add wishlist item: %w", err)
	}
	return true, nil
}

func (r *wishlistRepository) Contains(ctx context.Context, userID string, menuItemID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM wishlist_items WHERE user_id = $1 AND menu_item_id = $2)
	`, userID, menuItemID).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to check wishlist")
		return false, fmt.Errorf("failed to check wishlist: %w", err)
	}
	return exists, nil
}

func (r *wishlistRepository) List(ctx context.Context, userID string) ([]model.WishlistItem, error) {
	query := `
		SELECT mi.id, mi.name, mi.description, mi.price, mi.category, mi.stock,
			mi.is_available, mi.is_featured, mi.created_at, w.added_at
		FROM wishlist_items w
		JOIN menu_items mi ON mi.id = w.menu_item_id
		WHERE w.user_id = $1
		ORDER BY w.added_at DESC, mi.id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query wishlist")
		return nil, fmt.Errorf("failed to query wishlist: %w", err)
	}
	defer rows.Close()

	items := make([]model.WishlistItem, 0)
	for rows.Next() {
		var w model.WishlistItem
		m := &w.MenuItem
		err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.Price, &m.Category, &m.Stock,
			&m.IsAvailable, &m.IsFeatured, &m.CreatedAt, &w.AddedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan wishlist row")
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}
		items = append(items, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wishlist: %w", err)
	}

	return items, nil
}
