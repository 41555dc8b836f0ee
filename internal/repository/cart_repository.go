package repository

import (
	"context"
	"errors"
	"fmt"

	"coffeeshop/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cart lines are always read joined to the live catalogue price.
const cartLinesQuery = `
	SELECT cl.id, cl.cart_id, cl.menu_item_id, mi.name, mi.price, cl.quantity
	FROM cart_lines cl
	JOIN menu_items mi ON mi.id = cl.menu_item_id
	WHERE cl.cart_id = $1
	ORDER BY cl.id
`

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// ownerColumn returns the carts column identifying owner and its value.
func ownerColumn(owner model.Owner) (string, string) {
	if owner.IsUser() {
		return "user_id", owner.UserID
	}
	return "session_key", owner.SessionKey
}

func (r *cartRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return beginTx(ctx, r.pool, r.logger)
}

// GetOrCreate returns the owner's cart, creating it on first use.
func (r *cartRepository) GetOrCreate(ctx context.Context, owner model.Owner) (*model.Cart, error) {
	column, value := ownerColumn(owner)
	query := fmt.Sprintf(`
		INSERT INTO carts (%[1]s) VALUES ($1)
		ON CONFLICT (%[1]s) WHERE %[1]s IS NOT NULL
		DO UPDATE SET updated_at = carts.updated_at
		RETURNING id, created_at, updated_at
	`, column)

	cart := model.Cart{Owner: owner}
	if err := r.pool.QueryRow(ctx, query, value).Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt); err != nil {
		r.logger.Error().Err(err).Str("owner", owner.String()).Msg("failed to get or create cart")
		return nil, fmt.Errorf("failed to get or create cart: %w", err)
	}

	return &cart, nil
}

// Lines returns the cart lines priced at the current catalogue price.
func (r *cartRepository) Lines(ctx context.Context, cartID int64) ([]model.CartLine, error) {
	rows, err := r.pool.Query(ctx, cartLinesQuery, cartID)
	if err != nil {
		r.logger.Error().Err(err).Int64("cart_id", cartID).Msg("failed to query cart lines")
		return nil, fmt.Errorf("failed to query cart lines: %w", err)
	}
	return r.collectLines(rows)
}

func (r *cartRepository) collectLines(rows pgx.Rows) ([]model.CartLine, error) {
	defer rows.Close()

	lines := make([]model.CartLine, 0)
	for rows.Next() {
		var l model.CartLine
		if err := rows.Scan(&l.ID, &l.CartID, &l.MenuItemID, &l.Name, &l.UnitPrice, &l.Quantity); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart line row")
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart line rows")
		return nil, fmt.Errorf("error iterating cart lines: %w", err)
	}

	return lines, nil
}

// AddLine increments the quantity of an existing line for the item or creates it.
// It returns model.ErrQuantityTooLarge, leaving the line untouched, when the
// merged quantity would exceed model.MaxLineQuantity.
func (r *cartRepository) AddLine(ctx context.Context, cartID, menuItemID int64, quantity int) (*model.CartLine, error) {
	query := `
		WITH upserted AS (
			INSERT INTO cart_lines (cart_id, menu_item_id, quantity)
			VALUES ($1, $2, $3)
			ON CONFLICT (cart_id, menu_item_id)
			DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity, updated_at = NOW()
			WHERE cart_lines.quantity + EXCLUDED.quantity <= $4
			RETURNING id, cart_id, menu_item_id, quantity
		)
		SELECT u.id, u.cart_id, u.menu_item_id, mi.name, mi.price, u.quantity
		FROM upserted u
		JOIN menu_items mi ON mi.id = u.menu_item_id
	`

	var l model.CartLine
	err := r.pool.QueryRow(ctx, query, cartID, menuItemID, quantity, model.MaxLineQuantity).
		Scan(&l.ID, &l.CartID, &l.MenuItemID, &l.Name, &l.UnitPrice, &l.Quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrQuantityTooLarge
	}
	if err != nil {
		r.logger.Error().
			Err(err).
			Int64("cart_id", cartID).
			Int64("menu_item_id", menuItemID).
			Msg("failed to add cart line")
		return nil, fmt.Errorf("failed to add cart line: %w", err)
	}

	r.logger.Debug().
		Int64("cart_id", cartID).
		Int64("menu_item_id", menuItemID).
		Int("quantity", l.Quantity).
		Msg("cart line upserted")

	return &l, nil
}

// UpdateLineQuantity sets the quantity of a line scoped to the cart.
func (r *cartRepository) UpdateLineQuantity(ctx context.Context, cartID, lineID int64, quantity int) error {
	query := `UPDATE cart_lines SET quantity = $3, updated_at = NOW() WHERE cart_id = $1 AND id = $2`

	tag, err := r.pool.Exec(ctx, query, cartID, lineID, quantity)
	if err != nil {
		r.logger.Error().Err(err).Int64("cart_line_id", lineID).Msg("failed to update cart line")
		return fmt.Errorf("failed to update cart line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrLineNotFound
	}
	return nil
}

// DeleteLine removes a line scoped to the cart.
func (r *cartRepository) DeleteLine(ctx context.Context, cartID, lineID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1 AND id = $2`, cartID, lineID)
	if err != nil {
		r.logger.Error().Err(err).Int64("cart_line_id", lineID).Msg("failed to delete cart line")
		return fmt.Errorf("failed to delete cart line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrLineNotFound
	}
	return nil
}

// LockCart locks the owner's cart row within tx.
func (r *cartRepository) LockCart(ctx context.Context, tx pgx.Tx, owner model.Owner) (*model.Cart, error) {
	column, value := ownerColumn(owner)
	query := fmt.Sprintf(`
		SELECT id, created_at, updated_at
		FROM carts
		WHERE %s = $1
		FOR UPDATE
	`, column)

	cart := model.Cart{Owner: owner}
	err := tx.QueryRow(ctx, query, value).Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("owner", owner.String()).Msg("failed to lock cart")
		return nil, fmt.Errorf("failed to lock cart: %w", mapTxError(err))
	}

	return &cart, nil
}

// LockLines locks the cart lines and the menu rows they price from.
func (r *cartRepository) LockLines(ctx context.Context, tx pgx.Tx, cartID int64) ([]model.CartLine, error) {
	rows, err := tx.Query(ctx, cartLinesQuery+" FOR UPDATE OF cl FOR SHARE OF mi", cartID)
	if err != nil {
		r.logger.Error().Err(err).Int64("cart_id", cartID).Msg("failed to lock cart lines")
		return nil, fmt.Errorf("failed to lock cart lines: %w", mapTxError(err))
	}
	return r.collectLines(rows)
}

// ClearLines deletes every line of the cart within tx.
func (r *cartRepository) ClearLines(ctx context.Context, tx pgx.Tx, cartID int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID); err != nil {
		r.logger.Error().Err(err).Int64("cart_id", cartID).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", mapTxError(err))
	}
	return nil
}
