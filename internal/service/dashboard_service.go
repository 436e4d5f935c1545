package service

import (
	"time"

	"go-techmart-analytics/internal/repository"
	"go-techmart-analytics/pkg/apperr"
)

type DashboardOverview struct {
	Sales struct {
		Total          float64       `json:"total"`
		TotalLifetime  float64       `json:"total_lifetime"`
		SalesBreakdown []SalesBucket `json:"hourly_breakdown"`
	} `json:"sales"`
	Customers    *CustomerMetrics         `json:"customers"`
	Transactions *repository.RangeMetrics `json:"transactions"`
	Alerts       struct {
		LowStockProducts       []LowStockProduct       `json:"low_stock_products"`
		SuspiciousTransactions []SuspiciousTransaction `json:"suspicious_transactions"`
	} `json:"alerts"`
}

type DashboardService interface {
	Overview(timeRange string) (*DashboardOverview, error)
}

type dashboardService struct {
	analytics AnalyticsService
	lowStock  int
}

func NewDashboardService(analytics AnalyticsService, lowStockThreshold int) DashboardService {
	return &dashboardService{analytics: analytics, lowStock: lowStockThreshold}
}

var timeRangeWindows = map[string]time.Duration{
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
	"90d": 90 * 24 * time.Hour,
}

func (s *dashboardService) Overview(timeRange string) (*DashboardOverview, error) {
	window, ok := timeRangeWindows[timeRange]
	if !ok {
		return nil, apperr.Validation("Invalid time_range: %s (expected 24h, 7d, 30d or 90d)", timeRange)
	}

	overview := &DashboardOverview{}

	total, err := s.analytics.TotalSales(window)
	if err != nil {
		return nil, err
	}
	lifetime, err := s.analytics.TotalSales(0)
	if err != nil {
		return nil, err
	}
	overview.Sales.Total = total
	overview.Sales.TotalLifetime = lifetime

	// Hourly breakdown for 24h; longer spans re-aggregate to daily buckets
	// inside SalesByHour.
	breakdown, err := s.analytics.SalesByHour(int(window / time.Hour))
	if err != nil {
		return nil, err
	}
	overview.Sales.SalesBreakdown = breakdown

	if overview.Customers, err = s.analytics.CustomerMetrics(); err != nil {
		return nil, err
	}
	if overview.Transactions, err = s.analytics.TransactionMetrics(window); err != nil {
		return nil, err
	}
	if overview.Alerts.LowStockProducts, err = s.analytics.LowStockProducts(s.lowStock); err != nil {
		return nil, err
	}
	if overview.Alerts.SuspiciousTransactions, err = s.analytics.DetectSuspicious(window); err != nil {
		return nil, err
	}
	return overview, nil
}
