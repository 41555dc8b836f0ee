package service

import (
	"context"
	"fmt"
	"time"

	"coffeeshop/internal/model"
	"coffeeshop/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultSalesDays = 7
	maxSalesDays     = 90
	dayLayout        = "2006-01-02"
)

// DashboardCache stores the most recent dashboard snapshot.
type DashboardCache interface {
	Get(ctx context.Context) (*model.DashboardStats, bool)
	Set(ctx context.Context, stats *model.DashboardStats) error
	Invalidate(ctx context.Context) error
}

// AnalyticsOption customises the analytics service.
type AnalyticsOption func(*analyticsService)

// WithDashboardCache serves dashboards from cache until they expire.
func WithDashboardCache(cache DashboardCache) AnalyticsOption {
	return func(s *analyticsService) {
		s.cache = cache
	}
}

// WithLocation sets the timezone that calendar days are computed in.
func WithLocation(loc *time.Location) AnalyticsOption {
	return func(s *analyticsService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLowStockThreshold sets the stock level counted as low.
func WithLowStockThreshold(threshold int) AnalyticsOption {
	return func(s *analyticsService) {
		s.lowStock = threshold
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) AnalyticsOption {
	return func(s *analyticsService) {
		s.now = now
	}
}

// analyticsService implements AnalyticsService.
type analyticsService struct {
	repo     repository.AnalyticsRepository
	cache    DashboardCache
	loc      *time.Location
	lowStock int
	now      func() time.Time
	logger   zerolog.Logger
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(repo repository.AnalyticsRepository, logger zerolog.Logger, opts ...AnalyticsOption) AnalyticsService {
	s := &analyticsService{
		repo:     repo,
		loc:      time.UTC,
		lowStock: model.LowStockThreshold,
		now:      time.Now,
		logger:   logger.With().Str("service", "analytics").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// startOfDay returns local midnight of the day containing t.
func (s *analyticsService) startOfDay(t time.Time) time.Time {
	y, m, d := t.In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

// Dashboard returns the admin summary, from cache when a fresh snapshot exists.
func (s *analyticsService) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	if s.cache != nil {
		if stats, ok := s.cache.Get(ctx); ok {
			s.logger.Debug().Msg("dashboard served from cache")
			return stats, nil
		}
	}

	now := s.now()
	stats := &model.DashboardStats{GeneratedAt: now.UTC()}

	var err error
	if stats.TotalOrders, err = s.repo.CountOrders(ctx); err != nil {
		return nil, s.fail(err, "total orders")
	}
	if stats.TotalCustomers, err = s.repo.CountCustomers(ctx); err != nil {
		return nil, s.fail(err, "total customers")
	}
	if stats.PendingOrders, err = s.repo.CountOrdersByStatus(ctx, model.StatusPending); err != nil {
		return nil, s.fail(err, "pending orders")
	}
	if stats.LowStockCount, err = s.repo.CountLowStock(ctx, s.lowStock); err != nil {
		return nil, s.fail(err, "low stock count")
	}

	today := s.startOfDay(now)
	totals, err := s.repo.OrderTotals(ctx, today, today.AddDate(0, 0, 1), model.RevenueStatuses)
	if err != nil {
		return nil, s.fail(err, "today's revenue")
	}
	stats.TodayRevenue = decimal.Zero
	for _, t := range totals {
		stats.TodayRevenue = stats.TodayRevenue.Add(t.TotalAmount)
	}

	quantities, err := s.repo.ItemQuantities(ctx)
	if err != nil {
		return nil, s.fail(err, "popular item")
	}
	stats.MostPopularItem = mostPopular(quantities)

	if s.cache != nil {
		if err := s.cache.Set(ctx, stats); err != nil {
			s.logger.Warn().Err(err).Msg("failed to cache dashboard")
		}
	}

	return stats, nil
}

// mostPopular returns the item with the highest quantity. On a tie the item
// sold first wins.
func mostPopular(quantities []model.ItemQuantity) *model.PopularItem {
	var best *model.PopularItem
	for _, q := range quantities {
		if best == nil || q.Quantity > best.Quantity {
			best = &model.PopularItem{MenuItemID: q.MenuItemID, Name: q.Name, Quantity: q.Quantity}
		}
	}
	return best
}

// SalesSeries returns revenue and order counts for each of the last days
// calendar days including today, oldest first. Days without qualifying orders
// are reported with zero values.
func (s *analyticsService) SalesSeries(ctx context.Context, days int) ([]model.DailySales, error) {
	if days <= 0 {
		days = defaultSalesDays
	}
	if days > maxSalesDays {
		days = maxSalesDays
	}

	today := s.startOfDay(s.now())
	from := today.AddDate(0, 0, -(days - 1))
	to := today.AddDate(0, 0, 1)

	totals, err := s.repo.OrderTotals(ctx, from, to, model.RevenueStatuses)
	if err != nil {
		return nil, s.fail(err, "sales series")
	}

	series := make([]model.DailySales, days)
	index := make(map[string]int, days)
	for i := range series {
		day := from.AddDate(0, 0, i).Format(dayLayout)
		series[i] = model.DailySales{Date: day, Revenue: decimal.Zero}
		index[day] = i
	}

	for _, t := range totals {
		i, ok := index[t.CreatedAt.In(s.loc).Format(dayLayout)]
		if !ok {
			continue
		}
		series[i].Revenue = series[i].Revenue.Add(t.TotalAmount)
		series[i].Orders++
	}

	return series, nil
}

// CategoryStats returns sales per category, highest revenue first.
func (s *analyticsService) CategoryStats(ctx context.Context) ([]model.CategoryStat, error) {
	stats, err := s.repo.CategoryStats(ctx)
	if err != nil {
		return nil, s.fail(err, "category stats")
	}
	return stats, nil
}

func (s *analyticsService) fail(err error, what string) error {
	s.logger.Error().Err(err).Str("aggregate", what).Msg("failed to compute analytics")
	return fmt.Errorf("failed to compute %s: %w", what, err)
}
