package service

import (
	"context"
	"fmt"

	"coffeeshop/internal/model"
	"coffeeshop/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultMenuPageSize = 50
	defaultFeatured     = 6
)

// menuService implements MenuService.
type menuService struct {
	menuRepo repository.MenuRepository
	logger   zerolog.Logger
}

// NewMenuService creates a new menu service.
func NewMenuService(menuRepo repository.MenuRepository, logger zerolog.Logger) MenuService {
	return &menuService{
		menuRepo: menuRepo,
		logger:   logger.With().Str("service", "menu").Logger(),
	}
}

// Search lists available menu items matching the filter.
func (s *menuService) Search(ctx context.Context, filter model.MenuFilter) ([]model.MenuItem, error) {
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset, defaultMenuPageSize)

	switch filter.Sort {
	case model.SortByName, model.SortByPriceLow, model.SortByPriceHigh, model.SortByRating, model.SortByPopular:
	default:
		filter.Sort = model.SortByName
	}

	items, err := s.menuRepo.Search(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Str("query", filter.Query).Msg("failed to search menu")
		return nil, fmt.Errorf("failed to search menu: %w", err)
	}

	s.logger.Debug().
		Int("count", len(items)).
		Str("sort", filter.Sort).
		Msg("menu searched")

	return items, nil
}

// GetByID retrieves a single menu item.
func (s *menuService) GetByID(ctx context.Context, id int64) (*model.MenuItem, error) {
	item, err := s.menuRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("menu_item_id", id).Msg("failed to get menu item")
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}
	if item == nil {
		return nil, model.ErrMenuItemNotFound
	}
	return item, nil
}

// Categories lists active categories.
func (s *menuService) Categories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.menuRepo.Categories(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get categories")
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// Featured lists available featured items.
func (s *menuService) Featured(ctx context.Context, limit int) ([]model.MenuItem, error) {
	limit, _ = normalizePage(limit, 0, defaultFeatured)

	items, err := s.menuRepo.Featured(ctx, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get featured items")
		return nil, fmt.Errorf("failed to get featured items: %w", err)
	}
	return items, nil
}

// UpdateStock sets the stock level of an item.
func (s *menuService) UpdateStock(ctx context.Context, id int64, stock int) (*model.MenuItem, error) {
	if stock < 0 {
		return nil, model.ErrInvalidQuantity
	}

	item, err := s.menuRepo.UpdateStock(ctx, id, stock)
	if err != nil {
		s.logger.Error().Err(err).Int64("menu_item_id", id).Msg("failed to update stock")
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}
	if item == nil {
		return nil, model.ErrMenuItemNotFound
	}

	if item.Stock <= model.LowStockThreshold {
		s.logger.Warn().
			Int64("menu_item_id", id).
			Str("name", item.Name).
			Int("stock", item.Stock).
			Msg("menu item is low on stock")
	}
	return item, nil
}

// UpdatePrice sets the catalogue price of an item. Orders already placed keep
// their snapshotted prices.
func (s *menuService) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (*model.MenuItem, error) {
	if price.IsNegative() {
		return nil, model.ErrInvalidPrice
	}

	item, err := s.menuRepo.UpdatePrice(ctx, id, price.Round(2))
	if err != nil {
		s.logger.Error().Err(err).Int64("menu_item_id", id).Msg("failed to update price")
		return nil, fmt.Errorf("failed to update price: %w", err)
	}
	if item == nil {
		return nil, model.ErrMenuItemNotFound
	}
	return item, nil
}
