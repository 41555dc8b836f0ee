package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coffeeshop/internal/model"
	"coffeeshop/internal/notify"
	"coffeeshop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultOrderPageSize = 20

// checkoutService implements CheckoutService.
type checkoutService struct {
	orderRepo       repository.OrderRepository
	cartRepo        repository.CartRepository
	notifier        notify.Notifier
	defaultCurrency model.Currency
	now             func() time.Time
	logger          zerolog.Logger
}

// NewCheckoutService creates a new checkout service. Orders placed without a
// currency are recorded in defaultCurrency.
func NewCheckoutService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	notifier notify.Notifier,
	defaultCurrency model.Currency,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		orderRepo:       orderRepo,
		cartRepo:        cartRepo,
		notifier:        notifier,
		defaultCurrency: defaultCurrency,
		now:             time.Now,
		logger:          logger.With().Str("service", "checkout").Logger(),
	}
}

// Checkout materialises the owner's cart into an order in a single
// transaction. Order lines copy the catalogue price at this instant.
func (s *checkoutService) Checkout(ctx context.Context, req *model.CheckoutRequest) (order *model.Order, err error) {
	if req == nil {
		return nil, fmt.Errorf("checkout request is nil")
	}
	if err := req.Owner.Validate(); err != nil {
		return nil, err
	}

	currency := s.defaultCurrency
	if strings.TrimSpace(string(req.Currency)) != "" {
		if currency, err = model.ParseCurrency(string(req.Currency)); err != nil {
			return nil, err
		}
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	cart, err := s.cartRepo.LockCart(ctx, tx, req.Owner)
	if err != nil {
		return nil, fmt.Errorf("failed to lock cart: %w", err)
	}
	if cart == nil {
		return nil, model.ErrEmptyCart
	}

	lines, err := s.cartRepo.LockLines(ctx, tx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock cart lines: %w", err)
	}
	cart.Lines = lines
	if cart.TotalItems() == 0 {
		return nil, model.ErrEmptyCart
	}

	now := s.now().UTC()
	order = &model.Order{
		ID:          uuid.New(),
		Owner:       req.Owner,
		Customer:    req.Customer,
		Currency:    currency,
		Status:      model.StatusPending,
		TotalAmount: cart.TotalPrice().Round(2),
		Notes:       strings.TrimSpace(req.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
		Lines:       make([]model.OrderLine, len(lines)),
	}
	for i, l := range lines {
		order.Lines[i] = model.OrderLine{
			ID:         uuid.New(),
			OrderID:    order.ID,
			MenuItemID: l.MenuItemID,
			Name:       l.Name,
			Quantity:   l.Quantity,
			Price:      l.UnitPrice,
		}
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderLines(ctx, tx, order.Lines); err != nil {
		return nil, fmt.Errorf("failed to create order lines: %w", err)
	}

	if err = s.cartRepo.ClearLines(ctx, tx, cart.ID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("owner", req.Owner.String()).
		Int("line_count", len(order.Lines)).
		Str("total", order.TotalAmount.String()).
		Str("currency", string(order.Currency)).
		Msg("order created successfully")

	if nErr := s.notifier.OrderCreated(ctx, model.NewOrderCreatedEvent(order)); nErr != nil {
		s.logger.Error().Err(nErr).Str("order_id", order.ID.String()).Msg("failed to publish order created event")
	}

	return order, nil
}

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	dashboard DashboardCache
	logger    zerolog.Logger
}

// OrderOption customises the order service.
type OrderOption func(*orderService)

// WithDashboardInvalidation drops the cached dashboard whenever an order
// changes status, since revenue and pending counts depend on it.
func WithDashboardInvalidation(cache DashboardCache) OrderOption {
	return func(s *orderService) {
		s.dashboard = cache
	}
}

// NewOrderService creates a new order service.
func NewOrderService(orderRepo repository.OrderRepository, logger zerolog.Logger, opts ...OrderOption) OrderService {
	s := &orderService{
		orderRepo: orderRepo,
		logger:    logger.With().Str("service", "order").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetByID retrieves an order by its ID with its snapshotted lines.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	return order, nil
}

// List returns orders newest first.
func (s *orderService) List(ctx context.Context, status model.OrderStatus, limit, offset int) ([]model.Order, error) {
	if status != "" && !status.Valid() {
		return nil, model.ErrInvalidStatusTransition
	}
	limit, offset = normalizePage(limit, offset, defaultOrderPageSize)

	orders, err := s.orderRepo.List(ctx, status, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Str("status", string(status)).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus moves an order forward, or cancels it, and optionally replaces
// its notes. Re-sending the current status only updates the notes.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, req model.UpdateOrderStatusRequest) (order *model.Order, err error) {
	if !req.Status.Valid() {
		return nil, model.ErrInvalidStatusTransition
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err = s.orderRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if req.Status != order.Status && !order.Status.CanTransitionTo(req.Status) {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("from", string(order.Status)).
			Str("to", string(req.Status)).
			Msg("rejected status transition")
		return nil, model.ErrInvalidStatusTransition
	}

	if err = s.orderRepo.UpdateStatus(ctx, tx, id, req.Status, req.Notes); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("from", string(order.Status)).
		Str("to", string(req.Status)).
		Msg("order status updated")

	if s.dashboard != nil {
		if cErr := s.dashboard.Invalidate(ctx); cErr != nil {
			s.logger.Warn().Err(cErr).Str("order_id", id.String()).Msg("failed to invalidate dashboard cache")
		}
	}

	return s.GetByID(ctx, id)
}
