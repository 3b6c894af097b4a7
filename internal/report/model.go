package report

import (
	"time"

	"kopimas-be/internal/catalog"
	"kopimas-be/internal/order"

	"github.com/shopspring/decimal"
)

type DashboardStats struct {
	TotalOrders    int64           `json:"totalOrders"`
	TodayOrders    int64           `json:"todayOrders"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	ActiveProducts int64           `json:"activeProducts"`
	RecentOrders   []order.Order   `json:"recentOrders"`
	TopProducts    []TopProduct    `json:"topProducts"`
	DailyRevenue   []DailyRevenue  `json:"dailyRevenue"`
}

// TopProduct resolves to the product's current details, not a historical
// snapshot.
type TopProduct struct {
	Product       catalog.Product `json:"product"`
	TotalQuantity int64           `json:"totalQuantity"`
	OrderCount    int64           `json:"orderCount"`
}

type DailyRevenue struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

type RevenueReport struct {
	Period            string          `json:"period"`
	Revenue           decimal.Decimal `json:"revenue"`
	OrderCount        int             `json:"orderCount"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	Orders            []RevenueEntry  `json:"orders"`
}

type RevenueEntry struct {
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
}
