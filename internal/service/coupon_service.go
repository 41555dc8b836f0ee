package service

import (
	"context"
	"fmt"
	"time"

	"coffeeshop/internal/coupon"
	"coffeeshop/internal/model"
	"coffeeshop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// couponService implements CouponService.
type couponService struct {
	couponRepo repository.CouponRepository
	orderRepo  repository.OrderRepository
	now        func() time.Time
	logger     zerolog.Logger
}

// NewCouponService creates a new coupon service.
func NewCouponService(couponRepo repository.CouponRepository, orderRepo repository.OrderRepository, logger zerolog.Logger) CouponService {
	return &couponService{
		couponRepo: couponRepo,
		orderRepo:  orderRepo,
		now:        time.Now,
		logger:     logger.With().Str("service", "coupon").Logger(),
	}
}

// Quote computes the discount a code would give on total.
func (s *couponService) Quote(ctx context.Context, code string, total decimal.Decimal) (*model.Discount, error) {
	code = coupon.NormalizeCode(code)
	if code == "" {
		return nil, model.ErrCouponNotFound
	}
	if total.IsNegative() {
		return nil, model.ErrInvalidPrice
	}

	c, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		s.logger.Error().Err(err).Str("coupon_code", code).Msg("failed to get coupon")
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	if c == nil {
		s.logger.Debug().Str("coupon_code", code).Msg("coupon not found")
		return nil, model.ErrCouponNotFound
	}

	discount, err := coupon.Evaluate(c, total, s.now())
	if err != nil {
		s.logger.Debug().Err(err).Str("coupon_code", code).Str("total", total.String()).Msg("coupon rejected")
		return nil, err
	}
	return &discount, nil
}

// Apply redeems a code against an order's frozen total. The order row lock
// serialises concurrent applications to the same order; the coupon row lock
// serialises usage counting across orders.
func (s *couponService) Apply(ctx context.Context, code string, orderID uuid.UUID) (usage *model.CouponUsage, err error) {
	code = coupon.NormalizeCode(code)
	if code == "" {
		return nil, model.ErrCouponNotFound
	}

	tx, err := s.couponRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to apply coupon: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	existing, err := s.couponRepo.GetUsageByOrder(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon usage: %w", err)
	}
	if existing != nil {
		if existing.Code != code {
			s.logger.Warn().
				Str("order_id", orderID.String()).
				Str("applied", existing.Code).
				Str("requested", code).
				Msg("order already has a coupon")
			return nil, model.ErrCouponAlreadyApplied
		}
		s.logger.Debug().Str("order_id", orderID.String()).Str("coupon_code", code).Msg("coupon already applied to order")
		return existing, nil
	}

	c, err := s.couponRepo.GetByCodeForUpdate(ctx, tx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to lock coupon: %w", err)
	}
	if c == nil {
		return nil, model.ErrCouponNotFound
	}

	now := s.now()
	discount, err := coupon.Evaluate(c, order.TotalAmount, now)
	if err != nil {
		return nil, err
	}

	if err = s.couponRepo.IncrementUsage(ctx, tx, c.ID); err != nil {
		return nil, fmt.Errorf("failed to apply coupon: %w", err)
	}

	usage = &model.CouponUsage{
		CouponID:       c.ID,
		Code:           c.Code,
		UserID:         order.Owner.UserID,
		OrderID:        orderID,
		DiscountAmount: discount.Amount,
		UsedAt:         now.UTC(),
	}
	if err = s.couponRepo.CreateUsage(ctx, tx, usage); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to apply coupon: %w", err)
	}
	committed = true

	s.logger.Info().
		Str("coupon_code", c.Code).
		Str("order_id", orderID.String()).
		Str("discount", discount.Amount.String()).
		Msg("coupon applied")

	return usage, nil
}
