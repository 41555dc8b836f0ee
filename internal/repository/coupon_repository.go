package repository

import (
	"context"
	"errors"
	"fmt"

	"coffeeshop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const couponColumns = `id, code, name, description, discount_type, discount_value, minimum_amount,
	maximum_discount, usage_limit, used_count, valid_from, valid_to, is_active`

// couponRepository implements the CouponRepository interface using PostgreSQL.
type couponRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCouponRepository creates a new PostgreSQL-backed coupon repository.
func NewCouponRepository(pool *pgxpool.Pool, logger zerolog.Logger) CouponRepository {
	return &couponRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "coupon").Logger(),
	}
}

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var (
		c            model.Coupon
		discountType string
		maxDiscount  decimal.NullDecimal
	)
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Name,
		&c.Description,
		&discountType,
		&c.DiscountValue,
		&c.MinimumAmount,
		&maxDiscount,
		&c.UsageLimit,
		&c.UsedCount,
		&c.ValidFrom,
		&c.ValidTo,
		&c.IsActive,
	)
	if err != nil {
		return nil, err
	}
	c.DiscountType = model.DiscountType(discountType)
	if maxDiscount.Valid {
		c.MaximumDiscount = &maxDiscount.Decimal
	}
	return &c, nil
}

func (r *couponRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return beginTx(ctx, r.pool, r.logger)
}

// GetByCode retrieves a coupon by its normalised code.
func (r *couponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`

	c, err := scanCoupon(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("code", code).Msg("coupon not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query coupon")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}
	return c, nil
}

// GetByCodeForUpdate locks the coupon row so usage counting is serialised.
func (r *couponRepository) GetByCodeForUpdate(ctx context.Context, tx pgx.Tx, code string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1 FOR UPDATE`

	c, err := scanCoupon(tx.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to lock coupon")
		return nil, fmt.Errorf("failed to lock coupon: %w", mapTxError(err))
	}
	return c, nil
}

// GetUsageByOrder returns the usage recorded for an order, if any.
func (r *couponRepository) GetUsageByOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.CouponUsage, error) {
	query := `
		SELECT u.id, u.coupon_id, c.code, u.user_id, u.order_id, u.discount_amount, u.used_at
		FROM coupon_usages u
		JOIN coupons c ON c.id = u.coupon_id
		WHERE u.order_id = $1
	`

	var (
		u      model.CouponUsage
		userID *string
	)
	err := tx.QueryRow(ctx, query, orderID).Scan(
		&u.ID, &u.CouponID, &u.Code, &userID, &u.OrderID, &u.DiscountAmount, &u.UsedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query coupon usage")
		return nil, fmt.Errorf("failed to query coupon usage: %w", mapTxError(err))
	}
	u.UserID = derefString(userID)
	return &u, nil
}

// IncrementUsage adds one to the coupon's used count.
func (r *couponRepository) IncrementUsage(ctx context.Context, tx pgx.Tx, couponID int64) error {
	_, err := tx.Exec(ctx, `UPDATE coupons SET used_count = used_count + 1 WHERE id = $1`, couponID)
	if err != nil {
		r.logger.Error().Err(err).Int64("coupon_id", couponID).Msg("failed to increment coupon usage")
		return fmt.Errorf("failed to increment coupon usage: %w", mapTxError(err))
	}
	return nil
}

// CreateUsage records a coupon usage. A second usage for the same order loses
// the race and is reported as a concurrent modification.
func (r *couponRepository) CreateUsage(ctx context.Context, tx pgx.Tx, usage *model.CouponUsage) error {
	query := `
		INSERT INTO coupon_usages (coupon_id, user_id, order_id, discount_amount, used_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (order_id) DO NOTHING
		RETURNING id
	`

	err := tx.QueryRow(ctx, query,
		usage.CouponID,
		nullString(usage.UserID),
		usage.OrderID,
		usage.DiscountAmount.String(),
		usage.UsedAt,
	).Scan(&usage.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn().Str("order_id", usage.OrderID.String()).Msg("coupon usage already recorded for order")
			return model.ErrConcurrentModification
		}
		r.logger.Error().Err(err).Str("order_id", usage.OrderID.String()).Msg("failed to record coupon usage")
		return fmt.Errorf("failed to record coupon usage: %w", mapTxError(err))
	}

	r.logger.Info().
		Str("code", usage.Code).
		Str("order_id", usage.OrderID.String()).
		Str("discount", usage.DiscountAmount.String()).
		Msg("coupon usage recorded")

	return nil
}

// Upsert creates or updates a coupon definition by code.
func (r *couponRepository) Upsert(ctx context.Context, tx pgx.Tx, c *model.Coupon) error {
	query := `
		INSERT INTO coupons (code, name, description, discount_type, discount_value, minimum_amount,
			maximum_discount, usage_limit, valid_from, valid_to, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			discount_type = EXCLUDED.discount_type,
			discount_value = EXCLUDED.discount_value,
			minimum_amount = EXCLUDED.minimum_amount,
			maximum_discount = EXCLUDED.maximum_discount,
			usage_limit = EXCLUDED.usage_limit,
			valid_from = EXCLUDED.valid_from,
			valid_to = EXCLUDED.valid_to,
			is_active = EXCLUDED.is_active
		RETURNING id, used_count
	`

	err := tx.QueryRow(ctx, query,
		c.Code,
		c.Name,
		c.Description,
		string(c.DiscountType),
		c.DiscountValue.String(),
		c.MinimumAmount.String(),
		nullDecimal(c.MaximumDiscount),
		c.UsageLimit,
		c.ValidFrom,
		c.ValidTo,
		c.IsActive,
	).Scan(&c.ID, &c.UsedCount)
	if err != nil {
		r.logger.Error().Err(err).Str("code", c.Code).Msg("failed to upsert coupon")
		return fmt.Errorf("failed to upsert coupon %s: %w", c.Code, err)
	}
	return nil
}
