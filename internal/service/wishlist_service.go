package service

import (
	"context"
	"fmt"

	"coffeeshop/internal/model"
	"coffeeshop/internal/repository"

	"github.com/rs/zerolog"
)

type wishlistService struct {
	wishlistRepo repository.WishlistRepository
	menuRepo     repository.MenuRepository
	logger       zerolog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(wishlistRepo repository.WishlistRepository, menuRepo repository.MenuRepository, logger zerolog.Logger) WishlistService {
	return &wishlistService{
		wishlistRepo: wishlistRepo,
		menuRepo:     menuRepo,
		logger:       logger.With().Str("service", "wishlist").Logger(),
	}
}

// Toggle adds the item to the wishlist or removes it when already present.
func (s *wishlistService) Toggle(ctx context.Context, userID string, menuItemID int64) (bool, error) {
	if userID == "" {
		return false, model.ErrInvalidOwner
	}

	item, err := s.menuRepo.GetByID(ctx, menuItemID)
	if err != nil {
		return false, fmt.Errorf("failed to get menu item: %w", err)
	}
	if item == nil {
		return false, model.ErrMenuItemNotFound
	}

	in, err := s.wishlistRepo.Toggle(ctx, userID, menuItemID)
	if err != nil {
		return false, fmt.Errorf("failed to toggle wishlist: %w", err)
	}

	s.logger.Debug().Str("user_id", userID).Int64("menu_item_id", menuItemID).Bool("in_wishlist", in).Msg("wishlist toggled")
	return in, nil
}

func (s *wishlistService) Contains(ctx context.Context, userID string, menuItemID int64) (bool, error) {
	if userID == "" {
		return false, model.ErrInvalidOwner
	}
	return s.wishlistRepo.Contains(ctx, userID, menuItemID)
}

func (s *wishlistService) List(ctx context.Context, userID string) ([]model.WishlistItem, error) {
	if userID == "" {
		return nil, model.ErrInvalidOwner
	}
	items, err := s.wishlistRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	return items, nil
}
