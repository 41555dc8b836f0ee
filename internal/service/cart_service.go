package service

import (
	"context"
	"errors"
	"fmt"

	"coffeeshop/internal/model"
	"coffeeshop/internal/repository"

	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cartRepo repository.CartRepository
	menuRepo repository.MenuRepository
	logger   zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(cartRepo repository.CartRepository, menuRepo repository.MenuRepository, logger zerolog.Logger) CartService {
	return &cartService{
		cartRepo: cartRepo,
		menuRepo: menuRepo,
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

// Get returns the owner's cart with lines priced at the current catalogue price.
func (s *cartService) Get(ctx context.Context, owner model.Owner) (*model.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, owner)
	if err != nil {
		s.logger.Error().Err(err).Str("owner", owner.String()).Msg("failed to get cart")
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	cart.Lines, err = s.cartRepo.Lines(ctx, cart.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("cart_id", cart.ID).Msg("failed to load cart lines")
		return nil, fmt.Errorf("failed to load cart lines: %w", err)
	}

	return cart, nil
}

// Add adds quantity units of an available menu item, merging with an existing line.
func (s *cartService) Add(ctx context.Context, owner model.Owner, menuItemID int64, quantity int) (*model.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		s.logger.Warn().
			Int64("menu_item_id", menuItemID).
			Int("quantity", quantity).
			Msg("invalid quantity")
		return nil, model.ErrInvalidQuantity
	}
	if quantity > model.MaxLineQuantity {
		return nil, model.ErrQuantityTooLarge
	}

	item, err := s.menuRepo.GetByID(ctx, menuItemID)
	if err != nil {
		s.logger.Error().Err(err).Int64("menu_item_id", menuItemID).Msg("failed to get menu item")
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}
	if item == nil || !item.IsAvailable {
		return nil, model.ErrItemUnavailable
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, owner)
	if err != nil {
		s.logger.Error().Err(err).Str("owner", owner.String()).Msg("failed to get cart")
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	line, err := s.cartRepo.AddLine(ctx, cart.ID, menuItemID, quantity)
	if err != nil {
		if errors.Is(err, model.ErrQuantityTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	s.logger.Info().
		Int64("cart_id", cart.ID).
		Int64("menu_item_id", menuItemID).
		Int("quantity", line.Quantity).
		Msg("item added to cart")

	return s.reload(ctx, cart)
}

// UpdateQuantity sets a line quantity. A quantity of zero or less removes the line.
func (s *cartService) UpdateQuantity(ctx context.Context, owner model.Owner, lineID int64, quantity int) (*model.Cart, error) {
	if quantity <= 0 {
		return s.Remove(ctx, owner, lineID)
	}
	if quantity > model.MaxLineQuantity {
		return nil, model.ErrQuantityTooLarge
	}
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if err := s.cartRepo.UpdateLineQuantity(ctx, cart.ID, lineID, quantity); err != nil {
		if errors.Is(err, model.ErrLineNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("cart_line_id", lineID).Msg("failed to update cart line")
		return nil, fmt.Errorf("failed to update cart line: %w", err)
	}

	return s.reload(ctx, cart)
}

// Remove deletes a line from the owner's cart.
func (s *cartService) Remove(ctx context.Context, owner model.Owner, lineID int64) (*model.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if err := s.cartRepo.DeleteLine(ctx, cart.ID, lineID); err != nil {
		if errors.Is(err, model.ErrLineNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("cart_line_id", lineID).Msg("failed to remove cart line")
		return nil, fmt.Errorf("failed to remove cart line: %w", err)
	}

	s.logger.Info().Int64("cart_id", cart.ID).Int64("cart_line_id", lineID).Msg("cart line removed")
	return s.reload(ctx, cart)
}

func (s *cartService) reload(ctx context.Context, cart *model.Cart) (*model.Cart, error) {
	lines, err := s.cartRepo.Lines(ctx, cart.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("cart_id", cart.ID).Msg("failed to load cart lines")
		return nil, fmt.Errorf("failed to load cart lines: %w", err)
	}
	cart.Lines = lines
	return cart, nil
}
