package service

import (
	"testing"
	"time"

	"go-techmart-analytics/internal/model"
	"go-techmart-analytics/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalesByHourEmptyLedger(t *testing.T) {
	env := newTestEnv(t)

	buckets, err := env.analytics.SalesByHour(24)
	require.NoError(t, err)
	assert.Empty(t, buckets)
}

func TestSalesByHourGapFilled(t *testing.T) {
	env := newTestEnv(t)
	customer := seedCustomer(t, env.db, "buyer@example.com", "north")
	product := seedProduct(t, env.db, "Widget", "gadgets", 25, 100)

	anchor := time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)
	seedTransaction(t, env.db, customer, product, 2, 25, model.StatusCompleted, anchor)
	seedTransaction(t, env.db, customer, product, 1, 25, model.StatusCompleted, anchor.Add(-47*time.Hour))

	buckets, err := env.analytics.SalesByHour(48)
	require.NoError(t, err)
	require.Len(t, buckets, 48)

	// Span runs hour by hour with no gaps, ending at the anchor hour.
	start := anchor.Truncate(time.Hour).Add(-47 * time.Hour)
	for i, b := range buckets {
		assert.Equal(t, start.Add(time.Duration(i)*time.Hour).Format(time.RFC3339), b.Hour)
	}

	assert.Equal(t, 25.0, buckets[0].TotalSales)
	assert.Equal(t, 1, buckets[0].NumTransactions)
	assert.Equal(t, 50.0, buckets[47].TotalSales)
	assert.Equal(t, 1, buckets[47].NumTransactions)

	for i := 1; i < 47; i++ {
		assert.Zero(t, buckets[i].TotalSales)
		assert.Zero(t, buckets[i].NumTransactions)
	}
}

func TestSalesByHourWideSpanAggregatesDaily(t *testing.T) {
	env := newTestEnv(t)
	customer := seedCustomer(t, env.db, "buyer@example.com", "north")
	product := seedProduct(t, env.db, "Widget", "gadgets", 10, 100)

	anchor := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	seedTransaction(t, env.db, customer, product, 1, 10, model.StatusCompleted, anchor)

	buckets, err := env.analytics.SalesByHour(720)
	require.NoError(t, err)
	assert.Len(t, buckets, 30)
	assert.Equal(t, 10.0, buckets[29].TotalSales)
}

func TestSalesByHourRejectsInvalidSpan(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.analytics.SalesByHour(0)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestSalesTrendsWeeklyGrowth(t *testing.T) {
	env := newTestEnv(t)
	customer := seedCustomer(t, env.db, "buyer@example.com", "north")
	product := seedProduct(t, env.db, "Widget", "gadgets", 50, 100)

	anchor := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	// First week of the 14-day span: 100. Second week: 150.
	seedTransaction(t, env.db, customer, product, 2, 50, model.StatusCompleted, anchor.AddDate(0, 0, -10))
	seedTransaction(t, env.db, customer, product, 3, 50, model.StatusCompleted, anchor)

	trends, err := env.analytics.SalesTrends(14)
	require.NoError(t, err)
	require.Len(t, trends.DailySales, 14)
	require.Len(t, trends.WeeklyGrowth, 2)

	assert.Equal(t, 100.0, trends.WeeklyGrowth[0].TotalSales)
	assert.Equal(t, 0.0, trends.WeeklyGrowth[0].GrowthRate)
	assert.Equal(t, 150.0, trends.WeeklyGrowth[1].TotalSales)
	assert.InDelta(t, 50.0, trends.WeeklyGrowth[1].GrowthRate, 0.001)

	require.Len(t, trends.TopSellingDays, 2)
	assert.Equal(t, 150.0, trends.TopSellingDays[0].TotalSales)
}

func TestSalesTrendsGrowthAgainstEmptyPriorWeek(t *testing.T) {
	env := newTestEnv(t)
	customer := seedCustomer(t, env.db, "buyer@example.com", "north")
	product := seedProduct(t, env.db, "Widget", "gadgets", 50, 100)

	anchor := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	seedTransaction(t, env.db, customer, product, 3, 50, model.StatusCompleted, anchor)

	trends, err := env.analytics.SalesTrends(14)
	require.NoError(t, err)
	require.Len(t, trends.WeeklyGrowth, 2)

	// Prior week sold nothing: growth reported as 0, not a division error.
	assert.Equal(t, 0.0, trends.WeeklyGrowth[0].TotalSales)
	assert.Equal(t, 150.0, trends.WeeklyGrowth[1].TotalSales)
	assert.Equal(t, 0.0, trends.WeeklyGrowth[1].GrowthRate)
}

func TestSalesTrendsEmptyLedger(t *testing.T) {
	env := newTestEnv(t)

	trends, err := env.analytics.SalesTrends(30)
	require.NoError(t, err)
	assert.Empty(t, trends.DailySales)
	assert.Empty(t, trends.WeeklyGrowth)
	assert.Empty(t, trends.TopSellingDays)
}

func TestCustomerBehavior(t *testing.T) {
	env := newTestEnv(t)
	product := seedProduct(t, env.db, "Widget", "gadgets", 10, 1000)

	anchor := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)

	single := seedCustomer(t, env.db, "single@example.com", "north")
	regular := seedCustomer(t, env.db, "regular@example.com", "north")
	frequent := seedCustomer(t, env.db, "frequent@example.com", "south")
	seedCustomer(t, env.db, "dormant@example.com", "south")

	seedTransaction(t, env.db, single, product, 1, 10, model.StatusCompleted, anchor)
	for i := 0; i < 3; i++ {
		// Outside the trailing 30 days of the anchor.
		seedTransaction(t, env.db, regular, product, 1, 10, model.StatusCompleted, anchor.AddDate(0, 0, -35-i))
	}
	for i := 0; i < 7; i++ {
		seedTransaction(t, env.db, frequent, product, 1, 10, model.StatusCompleted, anchor.AddDate(0, 0, -i))
	}

	require.NoError(t, env.db.Model(single).Update("total_spent", 1500).Error)
	require.NoError(t, env.db.Model(regular).Update("total_spent", 750).Error)
	require.NoError(t, env.db.Model(frequent).Update("total_spent", 400).Error)

	behavior, err := env.analytics.CustomerBehavior()
	require.NoError(t, err)

	dist := behavior.PurchaseFrequency.FrequencyDistribution
	assert.Equal(t, 1, dist.SinglePurchase)
	assert.Equal(t, 1, dist.TwoToFive)
	assert.Equal(t, 1, dist.SixPlus)
	assert.InDelta(t, 2.75, behavior.PurchaseFrequency.AveragePurchases, 0.001)

	// Segments are disjoint and cover every customer with a completed
	// purchase.
	seg := behavior.CustomerSegments
	assert.Equal(t, 1, seg.HighValue)
	assert.Equal(t, 1, seg.MediumValue)
	assert.Equal(t, 1, seg.LowValue)

	// Retention counts against all customers, dormant ones included.
	assert.Equal(t, int64(4), behavior.RetentionMetrics.TotalCustomers)
	assert.Equal(t, int64(2), behavior.RetentionMetrics.RetainedCustomers)
	assert.InDelta(t, 50.0, behavior.RetentionMetrics.RetentionRate, 0.001)
}

func TestCustomerSegmentBoundaries(t *testing.T) {
	env := newTestEnv(t)
	product := seedProduct(t, env.db, "Widget", "gadgets", 10, 1000)

	anchor := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	totals := []float64{1500, 1000.01, 1000, 500, 499.99}
	for i, total := range totals {
		c := seedCustomer(t, env.db, []string{"a", "b", "c", "d", "e"}[i]+"@example.com", "north")
		seedTransaction(t, env.db, c, product, 1, 10, model.StatusCompleted, anchor)
		require.NoError(t, env.db.Model(c).Update("total_spent", total).Error)
	}

	behavior, err := env.analytics.CustomerBehavior()
	require.NoError(t, err)

	seg := behavior.CustomerSegments
	assert.Equal(t, 2, seg.HighValue)   // strictly above 1000
	assert.Equal(t, 2, seg.MediumValue) // 500 through 1000 inclusive
	assert.Equal(t, 1, seg.LowValue)    // strictly below 500
	assert.Equal(t, len(totals), seg.HighValue+seg.MediumValue+seg.LowValue)
}

func TestDetectSuspiciousSweep(t *testing.T) {
	env := newTestEnv(t)
	customer := seedCustomer(t, env.db, "buyer@example.com", "north")
	product := seedProduct(t, env.db, "Widget", "gadgets", 10, 1000)

	anchor := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		seedTransaction(t, env.db, customer, product, 1, 10, model.StatusCompleted,
			anchor.Add(-time.Duration(i+1)*time.Hour))
	}
	// Mean amount is 32.5, so the threshold at 3x is 97.5.
	outlier := seedTransaction(t, env.db, customer, product, 1, 100, model.StatusCompleted, anchor)

	suspicious, err := env.analytics.DetectSuspicious(24 * time.Hour)
	require.NoError(t, err)
	require.Len(t, suspicious, 1)
	assert.Equal(t, outlier.ID, suspicious[0].ID)
	assert.Equal(t, 100.0, suspicious[0].Amount)
	assert.Equal(t, customer.ID, suspicious[0].CustomerID)
}

func TestDetectSuspiciousEmptyLedger(t *testing.T) {
	env := newTestEnv(t)

	suspicious, err := env.analytics.DetectSuspicious(24 * time.Hour)
	require.NoError(t, err)
	assert.Empty(t, suspicious)
}

func TestLowStockProducts(t *testing.T) {
	env := newTestEnv(t)
	seedProduct(t, env.db, "Nearly gone", "gadgets", 10, 5)
	seedProduct(t, env.db, "At threshold", "gadgets", 10, 10)
	seedProduct(t, env.db, "Plenty", "gadgets", 10, 11)

	low, err := env.analytics.LowStockProducts(10)
	require.NoError(t, err)
	assert.Len(t, low, 2)

	_, err = env.analytics.LowStockProducts(-1)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestProductPerformance(t *testing.T) {
	env := newTestEnv(t)
	customer := seedCustomer(t, env.db, "buyer@example.com", "north")
	widget := seedProduct(t, env.db, "Widget", "gadgets", 100, 50)
	cable := seedProduct(t, env.db, "Cable", "accessories", 10, 50)

	anchor := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	seedTransaction(t, env.db, customer, widget, 3, 100, model.StatusCompleted, anchor)
	seedTransaction(t, env.db, customer, cable, 5, 10, model.StatusCompleted, anchor.Add(-time.Hour))

	perf, err := env.analytics.ProductPerformance(30, "")
	require.NoError(t, err)

	require.Len(t, perf.TopProducts, 2)
	assert.Equal(t, "Widget", perf.TopProducts[0].Name)
	assert.Equal(t, 300.0, perf.TopProducts[0].Revenue)
	assert.Equal(t, int64(3), perf.TopProducts[0].UnitsSold)
	assert.Equal(t, "Cable", perf.TopProducts[1].Name)

	require.Contains(t, perf.CategoryPerformance, "gadgets")
	require.Contains(t, perf.CategoryPerformance, "accessories")
	assert.Equal(t, 300.0, perf.CategoryPerformance["gadgets"].TotalRevenue)
	assert.Equal(t, int64(5), perf.CategoryPerformance["accessories"].UnitsSold)
}

func TestProductPerformanceUnknownCategory(t *testing.T) {
	env := newTestEnv(t)
	seedProduct(t, env.db, "Widget", "gadgets", 100, 50)

	_, err := env.analytics.ProductPerformance(30, "nonexistent")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestGeographicAnalytics(t *testing.T) {
	env := newTestEnv(t)
	north := seedCustomer(t, env.db, "north@example.com", "north")
	south := seedCustomer(t, env.db, "south@example.com", "south")
	widget := seedProduct(t, env.db, "Widget", "gadgets", 100, 50)
	cable := seedProduct(t, env.db, "Cable", "accessories", 10, 50)

	anchor := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	seedTransaction(t, env.db, north, widget, 2, 100, model.StatusCompleted, anchor)
	seedTransaction(t, env.db, north, cable, 1, 10, model.StatusCompleted, anchor.Add(-time.Hour))
	seedTransaction(t, env.db, south, cable, 4, 10, model.StatusCompleted, anchor.Add(-2*time.Hour))

	geo, err := env.analytics.GeographicAnalytics(30)
	require.NoError(t, err)
	require.Len(t, geo.RegionalSales, 2)

	byRegion := map[string]RegionalSales{}
	for _, r := range geo.RegionalSales {
		byRegion[r.Region] = r
	}
	assert.Equal(t, 210.0, byRegion["north"].TotalSales)
	assert.Equal(t, int64(2), byRegion["north"].NumProducts)
	assert.Equal(t, 40.0, byRegion["south"].TotalSales)

	require.Contains(t, geo.RegionalPreferences, "south")
	require.Len(t, geo.RegionalPreferences["south"], 1)
	assert.Equal(t, "Cable", geo.RegionalPreferences["south"][0].ProductName)
}

func TestTotalSalesWindows(t *testing.T) {
	env := newTestEnv(t)
	customer := seedCustomer(t, env.db, "buyer@example.com", "north")
	product := seedProduct(t, env.db, "Widget", "gadgets", 10, 1000)

	anchor := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	seedTransaction(t, env.db, customer, product, 1, 10, model.StatusCompleted, anchor)
	seedTransaction(t, env.db, customer, product, 2, 10, model.StatusCompleted, anchor.AddDate(0, 0, -10))

	lifetime, err := env.analytics.TotalSales(0)
	require.NoError(t, err)
	assert.Equal(t, 30.0, lifetime)

	recent, err := env.analytics.TotalSales(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 10.0, recent)
}

func TestTransactionMetricsEmptyLedger(t *testing.T) {
	env := newTestEnv(t)

	metrics, err := env.analytics.TransactionMetrics(24 * time.Hour)
	require.NoError(t, err)
	assert.Zero(t, metrics.TransactionCount)
	assert.Zero(t, metrics.TotalAmount)
	assert.Zero(t, metrics.AverageAmount)
}
