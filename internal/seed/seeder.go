package seed

import (
	"context"
	"fmt"

	"coffeeshop/internal/repository"

	"github.com/rs/zerolog"
)

// Result counts the rows written by Apply.
type Result struct {
	Categories int
	MenuItems  int
	Coupons    int
}

// Seeder writes catalogue documents to the database.
type Seeder struct {
	catalogue repository.CatalogueRepository
	coupons   repository.CouponRepository
	logger    zerolog.Logger
}

// NewSeeder creates a new seeder.
func NewSeeder(catalogue repository.CatalogueRepository, coupons repository.CouponRepository, logger zerolog.Logger) *Seeder {
	return &Seeder{
		catalogue: catalogue,
		coupons:   coupons,
		logger:    logger.With().Str("component", "seeder").Logger(),
	}
}

// Apply validates doc and upserts all of it in a single transaction. Either
// the whole document is written or nothing is. Coupon usage counters are
// left untouched on existing rows.
func (s *Seeder) Apply(ctx context.Context, doc *Document) (result Result, err error) {
	categories, err := doc.categories()
	if err != nil {
		return Result{}, err
	}
	items, err := doc.menuItems()
	if err != nil {
		return Result{}, err
	}
	coupons, err := doc.coupons()
	if err != nil {
		return Result{}, err
	}

	tx, err := s.catalogue.BeginTx(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to seed catalogue: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	for i := range categories {
		if err = s.catalogue.UpsertCategory(ctx, tx, &categories[i]); err != nil {
			return Result{}, err
		}
	}
	for i := range items {
		if err = s.catalogue.UpsertMenuItem(ctx, tx, &items[i]); err != nil {
			return Result{}, err
		}
	}
	for i := range coupons {
		if err = s.coupons.Upsert(ctx, tx, &coupons[i]); err != nil {
			return Result{}, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return Result{}, fmt.Errorf("failed to commit catalogue: %w", err)
	}

	result = Result{Categories: len(categories), MenuItems: len(items), Coupons: len(coupons)}
	s.logger.Info().
		Int("categories", result.Categories).
		Int("menu_items", result.MenuItems).
		Int("coupons", result.Coupons).
		Msg("catalogue seeded")

	return result, nil
}
