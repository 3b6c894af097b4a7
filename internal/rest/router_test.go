package rest

import (
	"encoding/json"
	"net/http"
	"testing"

	"kopimas-be/internal/catalog"
	"kopimas-be/internal/report"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestRouter(catalogSvc *mockCatalogService, orderSvc *mockOrderService, reportSvc *mockReportService) http.Handler {
	return NewRouter(catalogSvc, orderSvc, reportSvc, "test")
}

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(new(mockCatalogService), new(mockOrderService), new(mockReportService))

	rec := doRequest(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["environment"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestRouter_UnknownAPIRoute(t *testing.T) {
	h := newTestRouter(new(mockCatalogService), new(mockOrderService), new(mockReportService))

	rec := doRequest(t, h, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"not found"`)
	assert.Contains(t, rec.Body.String(), "/api/nope")
}

func TestRouter_DashboardStats(t *testing.T) {
	reportSvc := new(mockReportService)
	h := newTestRouter(new(mockCatalogService), new(mockOrderService), reportSvc)

	reportSvc.On("DashboardStats", mock.Anything).Return(&report.DashboardStats{
		TotalOrders:    10,
		TodayOrders:    2,
		TotalRevenue:   decimal.RequireFromString("55.50"),
		ActiveProducts: 4,
	}, nil).Once()

	rec := doRequest(t, h, http.MethodGet, "/api/dashboard/stats", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalOrders":10`)
	assert.Contains(t, rec.Body.String(), `"totalRevenue":55.5`)
}

func TestRouter_DashboardRevenue(t *testing.T) {
	t.Run("PeriodPassedThrough", func(t *testing.T) {
		reportSvc := new(mockReportService)
		h := newTestRouter(new(mockCatalogService), new(mockOrderService), reportSvc)

		reportSvc.On("RevenueForPeriod", mock.Anything, "30d").Return(&report.RevenueReport{
			Period:            "30d",
			Revenue:           decimal.RequireFromString("100.00"),
			OrderCount:        4,
			AverageOrderValue: decimal.RequireFromString("25.00"),
		}, nil).Once()

		rec := doRequest(t, h, http.MethodGet, "/api/dashboard/revenue?period=30d", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"averageOrderValue":25`)
		reportSvc.AssertExpectations(t)
	})

	t.Run("MissingPeriodDefaultsToSevenDays", func(t *testing.T) {
		reportSvc := new(mockReportService)
		h := newTestRouter(new(mockCatalogService), new(mockOrderService), reportSvc)

		reportSvc.On("RevenueForPeriod", mock.Anything, "7d").
			Return(&report.RevenueReport{Period: "7d"}, nil).Once()

		rec := doRequest(t, h, http.MethodGet, "/api/dashboard/revenue", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		reportSvc.AssertExpectations(t)
	})
}

func TestRouter_RequestIDHeader(t *testing.T) {
	catalogSvc := new(mockCatalogService)
	h := newTestRouter(catalogSvc, new(mockOrderService), new(mockReportService))

	catalogSvc.On("ListActive", mock.Anything).Return([]catalog.Product{}, nil).Once()

	rec := doRequest(t, h, http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
