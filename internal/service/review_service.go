package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"coffeeshop/internal/model"
	"coffeeshop/internal/repository"

	"github.com/rs/zerolog"
)

type reviewService struct {
	reviewRepo repository.ReviewRepository
	menuRepo   repository.MenuRepository
	logger     zerolog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(reviewRepo repository.ReviewRepository, menuRepo repository.MenuRepository, logger zerolog.Logger) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		menuRepo:   menuRepo,
		logger:     logger.With().Str("service", "review").Logger(),
	}
}

// Add records the user's review of a menu item. Reviews from users who have
// ordered the item are marked verified.
func (s *reviewService) Add(ctx context.Context, userID string, menuItemID int64, req model.AddReviewRequest) (*model.Review, error) {
	if userID == "" {
		return nil, model.ErrInvalidOwner
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, model.ErrInvalidRating
	}
	title, comment := strings.TrimSpace(req.Title), strings.TrimSpace(req.Comment)
	if title == "" || comment == "" {
		return nil, model.ErrInvalidReview
	}

	item, err := s.menuRepo.GetByID(ctx, menuItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}
	if item == nil {
		return nil, model.ErrMenuItemNotFound
	}

	verified, err := s.reviewRepo.HasPurchased(ctx, userID, menuItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to check purchase: %w", err)
	}

	review := &model.Review{
		MenuItemID: menuItemID,
		UserID:     userID,
		Rating:     req.Rating,
		Title:      title,
		Comment:    comment,
		IsVerified: verified,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, model.ErrReviewExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.logger.Info().
		Int64("menu_item_id", menuItemID).
		Str("user_id", userID).
		Int("rating", req.Rating).
		Bool("verified", verified).
		Msg("review added")

	return review, nil
}

// List returns an item's reviews with their rating summary.
func (s *reviewService) List(ctx context.Context, menuItemID int64) (*model.ReviewSummary, error) {
	reviews, err := s.reviewRepo.ListByMenuItem(ctx, menuItemID)
	if err != nil {
		s.logger.Error().Err(err).Int64("menu_item_id", menuItemID).Msg("failed to list reviews")
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	summary := model.NewReviewSummary(reviews)
	return &summary, nil
}

func (s *reviewService) ToggleHelpful(ctx context.Context, userID string, reviewID int64) (*model.HelpfulResponse, error) {
	if userID == "" {
		return nil, model.ErrInvalidOwner
	}
	return s.reviewRepo.ToggleHelpful(ctx, reviewID, userID)
}
