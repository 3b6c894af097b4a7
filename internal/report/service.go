package report

import (
	"context"
	"time"

	"kopimas-be/internal/logger"
	"kopimas-be/internal/order"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	topProductsLimit  = 5
	recentOrdersLimit = 5

	topProductsWindowDays  = 30
	dailyRevenueWindowDays = 7
)

type Service interface {
	DashboardStats(ctx context.Context) (*DashboardStats, error)
	TopProducts(ctx context.Context, windowDays int) ([]TopProduct, error)
	DailyRevenue(ctx context.Context, windowDays int) ([]DailyRevenue, error)
	RevenueForPeriod(ctx context.Context, period string) (*RevenueReport, error)
}

// service composes the reporting queries with the order repository so recent
// orders carry the same items+products shape the order endpoints return.
type service struct {
	repo      Repository
	orderRepo order.Repository
	now       func() time.Time
}

func NewService(repo Repository, orderRepo order.Repository) Service {
	return &service{
		repo:      repo,
		orderRepo: orderRepo,
		now:       time.Now,
	}
}

func (s *service) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "DashboardStats"))

	now := s.now()
	// Calendar day in local time: inclusive start, exclusive next midnight.
	// Assumes the DB session timezone matches this zone (see DailyRevenue).
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)

	totalOrders, err := s.repo.CountOrders(ctx)
	if err != nil {
		log.Error("failed to count orders", zap.Error(err))
		return nil, err
	}

	todayOrders, err := s.repo.CountOrdersBetween(ctx, today, tomorrow)
	if err != nil {
		return nil, err
	}

	totalRevenue, err := s.repo.SumRevenue(ctx)
	if err != nil {
		return nil, err
	}

	activeProducts, err := s.repo.CountActiveProducts(ctx)
	if err != nil {
		return nil, err
	}

	recentOrders, err := s.orderRepo.ListRecent(ctx, recentOrdersLimit)
	if err != nil {
		return nil, err
	}

	topProducts, err := s.repo.TopProducts(ctx, now.AddDate(0, 0, -topProductsWindowDays), topProductsLimit)
	if err != nil {
		return nil, err
	}

	dailyRevenue, err := s.repo.DailyRevenue(ctx, now.AddDate(0, 0, -dailyRevenueWindowDays))
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalOrders:    totalOrders,
		TodayOrders:    todayOrders,
		TotalRevenue:   totalRevenue,
		ActiveProducts: activeProducts,
		RecentOrders:   recentOrders,
		TopProducts:    topProducts,
		DailyRevenue:   dailyRevenue,
	}, nil
}

func (s *service) TopProducts(ctx context.Context, windowDays int) ([]TopProduct, error) {
	if windowDays <= 0 {
		windowDays = topProductsWindowDays
	}
	return s.repo.TopProducts(ctx, s.now().AddDate(0, 0, -windowDays), topProductsLimit)
}

func (s *service) DailyRevenue(ctx context.Context, windowDays int) ([]DailyRevenue, error) {
	if windowDays <= 0 {
		windowDays = dailyRevenueWindowDays
	}
	return s.repo.DailyRevenue(ctx, s.now().AddDate(0, 0, -windowDays))
}

func (s *service) RevenueForPeriod(ctx context.Context, period string) (*RevenueReport, error) {
	now := s.now()

	var since time.Time
	switch period {
	case "24h":
		since = now.Add(-24 * time.Hour)
	case "7d":
		since = now.AddDate(0, 0, -7)
	case "30d":
		since = now.AddDate(0, 0, -30)
	case "90d":
		since = now.AddDate(0, 0, -90)
	default:
		// Unrecognized periods fall back to the 7-day window.
		since = now.AddDate(0, 0, -7)
	}

	entries, err := s.repo.RevenueEntries(ctx, since)
	if err != nil {
		return nil, err
	}

	revenue := decimal.Zero
	for _, e := range entries {
		revenue = revenue.Add(e.Amount)
	}

	orderCount := len(entries)
	average := decimal.Zero
	if orderCount > 0 {
		average = revenue.Div(decimal.NewFromInt(int64(orderCount))).Round(2)
	}

	return &RevenueReport{
		Period:            period,
		Revenue:           revenue,
		OrderCount:        orderCount,
		AverageOrderValue: average,
		Orders:            entries,
	}, nil
}
