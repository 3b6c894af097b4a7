package rest

import (
	"context"

	"kopimas-be/internal/catalog"
	"kopimas-be/internal/order"
	"kopimas-be/internal/report"

	"github.com/stretchr/testify/mock"
)

type mockCatalogService struct {
	mock.Mock
}

func (m *mockCatalogService) ListActive(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *mockCatalogService) Get(ctx context.Context, id int64) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *mockCatalogService) Create(ctx context.Context, input catalog.NewProduct) (*catalog.Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *mockCatalogService) Update(ctx context.Context, id int64, input catalog.UpdateProduct) (*catalog.Product, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *mockCatalogService) Deactivate(ctx context.Context, id int64) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *mockCatalogService) HardDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) List(ctx context.Context) ([]order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *mockOrderService) Get(ctx context.Context, id int64) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *mockOrderService) Create(ctx context.Context, input order.CreateOrderInput) (*order.Order, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *mockOrderService) Update(ctx context.Context, id int64, input order.UpdateOrderInput) (*order.Order, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *mockOrderService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOrderService) SetPaid(ctx context.Context, id int64, paid bool) (*order.Order, error) {
	args := m.Called(ctx, id, paid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *mockOrderService) AddItem(ctx context.Context, orderID int64, input order.ItemInput) (*order.OrderItem, error) {
	args := m.Called(ctx, orderID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.OrderItem), args.Error(1)
}

func (m *mockOrderService) UpdateItem(ctx context.Context, orderID, itemID int64, input order.ItemInput) (*order.OrderItem, error) {
	args := m.Called(ctx, orderID, itemID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.OrderItem), args.Error(1)
}

func (m *mockOrderService) RemoveItem(ctx context.Context, orderID, itemID int64) error {
	args := m.Called(ctx, orderID, itemID)
	return args.Error(0)
}

type mockReportService struct {
	mock.Mock
}

func (m *mockReportService) DashboardStats(ctx context.Context) (*report.DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.DashboardStats), args.Error(1)
}

func (m *mockReportService) TopProducts(ctx context.Context, windowDays int) ([]report.TopProduct, error) {
	args := m.Called(ctx, windowDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.TopProduct), args.Error(1)
}

func (m *mockReportService) DailyRevenue(ctx context.Context, windowDays int) ([]report.DailyRevenue, error) {
	args := m.Called(ctx, windowDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.DailyRevenue), args.Error(1)
}

func (m *mockReportService) RevenueForPeriod(ctx context.Context, period string) (*report.RevenueReport, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.RevenueReport), args.Error(1)
}
