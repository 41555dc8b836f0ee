package repository

import (
	"context"
	"fmt"
	"time"

	"coffeeshop/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// analyticsRepository implements AnalyticsRepository with plain aggregate
// queries. Bucketing by day happens in the service.
type analyticsRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAnalyticsRepository creates a new PostgreSQL-backed analytics repository.
func NewAnalyticsRepository(pool *pgxpool.Pool, logger zerolog.Logger) AnalyticsRepository {
	return &analyticsRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "analytics").Logger(),
	}
}

func (r *analyticsRepository) count(ctx context.Context, name, query string, args ...any) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		r.logger.Error().Err(err).Str("aggregate", name).Msg("failed to count")
		return 0, fmt.Errorf("failed to count %s: %w", name, err)
	}
	return n, nil
}

func (r *analyticsRepository) CountOrders(ctx context.Context) (int, error) {
	return r.count(ctx, "orders", `SELECT COUNT(*) FROM orders`)
}

func (r *analyticsRepository) CountOrdersByStatus(ctx context.Context, status model.OrderStatus) (int, error) {
	return r.count(ctx, "orders by status", `SELECT COUNT(*) FROM orders WHERE status = $1`, string(status))
}

func (r *analyticsRepository) CountCustomers(ctx context.Context) (int, error) {
	query := `
		SELECT COUNT(DISTINCT o.user_id)
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		WHERE o.user_id IS NOT NULL AND COALESCE(u.is_staff, FALSE) = FALSE
	`
	return r.count(ctx, "customers", query)
}

func (r *analyticsRepository) CountLowStock(ctx context.Context, threshold int) (int, error) {
	return r.count(ctx, "low stock items", `SELECT COUNT(*) FROM menu_items WHERE stock <= $1`, threshold)
}

// OrderTotals returns the creation time and total of every order in [from, to)
// whose status is one of statuses.
func (r *analyticsRepository) OrderTotals(ctx context.Context, from, to time.Time, statuses []model.OrderStatus) ([]model.OrderTotal, error) {
	query := `
		SELECT created_at, total_amount
		FROM orders
		WHERE created_at >= $1 AND created_at < $2 AND status = ANY($3)
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, from, to, statusStrings(statuses))
	if err != nil {
		r.logger.Error().Err(err).Time("from", from).Time("to", to).Msg("failed to query order totals")
		return nil, fmt.Errorf("failed to query order totals: %w", err)
	}
	defer rows.Close()

	totals := make([]model.OrderTotal, 0)
	for rows.Next() {
		var t model.OrderTotal
		if err := rows.Scan(&t.CreatedAt, &t.TotalAmount); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order total row")
			return nil, fmt.Errorf("failed to scan order total: %w", err)
		}
		totals = append(totals, t)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order total rows")
		return nil, fmt.Errorf("error iterating order totals: %w", err)
	}

	return totals, nil
}

// ItemQuantities sums ordered quantities per menu item, in the order each item
// was first sold.
func (r *analyticsRepository) ItemQuantities(ctx context.Context) ([]model.ItemQuantity, error) {
	query := `
		SELECT ol.menu_item_id, mi.name, SUM(ol.quantity)
		FROM order_lines ol
		JOIN menu_items mi ON mi.id = ol.menu_item_id
		GROUP BY ol.menu_item_id, mi.name
		ORDER BY MIN(ol.seq)
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query item quantities")
		return nil, fmt.Errorf("failed to query item quantities: %w", err)
	}
	defer rows.Close()

	quantities := make([]model.ItemQuantity, 0)
	for rows.Next() {
		var q model.ItemQuantity
		if err := rows.Scan(&q.MenuItemID, &q.Name, &q.Quantity); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan item quantity row")
			return nil, fmt.Errorf("failed to scan item quantity: %w", err)
		}
		quantities = append(quantities, q)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating item quantity rows")
		return nil, fmt.Errorf("error iterating item quantities: %w", err)
	}

	return quantities, nil
}

// CategoryStats sums quantity and line revenue per menu category, highest revenue first.
func (r *analyticsRepository) CategoryStats(ctx context.Context) ([]model.CategoryStat, error) {
	query := `
		SELECT mi.category, SUM(ol.quantity), SUM(ol.quantity * ol.price)
		FROM order_lines ol
		JOIN menu_items mi ON mi.id = ol.menu_item_id
		GROUP BY mi.category
		ORDER BY SUM(ol.quantity * ol.price) DESC, mi.category
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query category stats")
		return nil, fmt.Errorf("failed to query category stats: %w", err)
	}
	defer rows.Close()

	stats := make([]model.CategoryStat, 0)
	for rows.Next() {
		var s model.CategoryStat
		if err := rows.Scan(&s.Category, &s.TotalQuantity, &s.TotalRevenue); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan category stat row")
			return nil, fmt.Errorf("failed to scan category stat: %w", err)
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating category stat rows")
		return nil, fmt.Errorf("error iterating category stats: %w", err)
	}

	return stats, nil
}
