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

// reviewRepository implements the ReviewRepository interface using PostgreSQL.
type reviewRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool *pgxpool.Pool, logger zerolog.Logger) ReviewRepository {
	return &reviewRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "review").Logger(),
	}
}

// Create inserts a review.
func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	query := `
		INSERT INTO reviews (menu_item_id, user_id, rating, title, comment, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, helpful_count, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		review.MenuItemID,
		review.UserID,
		review.Rating,
		review.Title,
		review.Comment,
		review.IsVerified,
	).Scan(&review.ID, &review.HelpfulCount, &review.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrReviewExists
		}
		r.logger.Error().
			Err(err).
			Int64("menu_item_id", review.MenuItemID).
			Str("user_id", review.UserID).
			Msg("failed to create review")
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

// ListByMenuItem returns an item's reviews newest first.
func (r *reviewRepository) ListByMenuItem(ctx context.Context, menuItemID int64) ([]model.Review, error) {
	query := `
		SELECT id, menu_item_id, user_id, rating, title, comment, helpful_count, is_verified, created_at
		FROM reviews
		WHERE menu_item_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, menuItemID)
	if err != nil {
		r.logger.Error().Err(err).Int64("menu_item_id", menuItemID).Msg("failed to query reviews")
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]model.Review, 0)
	for rows.Next() {
		var rv model.Review
		err := rows.Scan(
			&rv.ID,
			&rv.MenuItemID,
			&rv.UserID,
			&rv.Rating,
			&rv.Title,
			&rv.Comment,
			&rv.HelpfulCount,
			&rv.IsVerified,
			&rv.CreatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan review row")
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating review rows")
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviews, nil
}

// HasPurchased reports whether the user has a non-cancelled order containing the item.
func (r *reviewRepository) HasPurchased(ctx context.Context, userID string, menuItemID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM orders o
			JOIN order_lines ol ON ol.order_id = o.id
			WHERE o.user_id = $1 AND ol.menu_item_id = $2 AND o.status <> 'cancelled'
		)
	`

	var purchased bool
	if err := r.pool.QueryRow(ctx, query, userID, menuItemID).Scan(&purchased); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Int64("menu_item_id", menuItemID).Msg("failed to check purchase")
		return false, fmt.Errorf("failed to check purchase: %w", err)
	}
	return purchased, nil
}

// ToggleHelpful flips the user's helpful vote on a review in one transaction.
func (r *reviewRepository) ToggleHelpful(ctx context.Context, reviewID int64, userID string) (resp *model.HelpfulResponse, err error) {
	tx, err := beginTx(ctx, r.pool, r.logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				r.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	var count int
	err = tx.QueryRow(ctx, `SELECT helpful_count FROM reviews WHERE id = $1 FOR UPDATE`, reviewID).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to lock review: %w", mapTxError(err))
	}

	tag, err := tx.Exec(ctx, `DELETE FROM review_helpful_votes WHERE review_id = $1 AND user_id = $2`, reviewID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove helpful vote: %w", mapTxError(err))
	}

	resp = &model.HelpfulResponse{}
	delta := -1
	if tag.RowsAffected() == 0 {
		_, err = tx.Exec(ctx, `INSERT INTO review_helpful_votes (review_id, user_id) VALUES ($1, $2)`, reviewID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to add helpful vote: %w", mapTxError(err))
		}
		resp.Helpful = true
		delta = 1
	}

	err = tx.QueryRow(ctx, `
		UPDATE reviews SET helpful_count = GREATEST(helpful_count + $2, 0), updated_at = NOW()
		WHERE id = $1
		RETURNING helpful_count
	`, reviewID, delta).Scan(&resp.HelpfulCount)
	if err != nil {
		return nil, fmt.Errorf("failed to update helpful count: %w", mapTxError(err))
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Int64("review_id", reviewID).Msg("failed to commit helpful vote")
		return nil, fmt.Errorf("failed to commit helpful vote: %w", mapTxError(err))
	}

	r.logger.Debug().
		Int64("review_id", reviewID).
		Bool("helpful", resp.Helpful).
		Int("helpful_count", resp.HelpfulCount).
		Msg("helpful vote toggled")

	return resp, nil
}
