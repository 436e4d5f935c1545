package service

import (
	"sort"
	"time"

	"go-techmart-analytics/internal/config"
	"go-techmart-analytics/internal/model"
	"go-techmart-analytics/internal/repository"
	"go-techmart-analytics/pkg/apperr"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxHourlySpan is the widest span served at hourly granularity. Wider
// requests are re-aggregated to daily buckets to bound output size.
const maxHourlySpan = 7 * 24

// highRiskScore marks a customer as high risk in the customer metrics.
const highRiskScore = 0.7

type SalesBucket struct {
	Hour            string  `json:"hour"`
	TotalSales      float64 `json:"total_sales"`
	NumTransactions int     `json:"num_transactions"`
}

type DailySales struct {
	Date            string  `json:"date"`
	TotalSales      float64 `json:"total_sales"`
	NumTransactions int     `json:"num_transactions"`
}

type WeeklyGrowth struct {
	WeekStart  string  `json:"week_start"`
	TotalSales float64 `json:"total_sales"`
	GrowthRate float64 `json:"growth_rate"`
}

type TopDay struct {
	Date       string  `json:"date"`
	TotalSales float64 `json:"total_sales"`
}

type SalesTrends struct {
	DailySales     []DailySales   `json:"daily_sales"`
	WeeklyGrowth   []WeeklyGrowth `json:"weekly_growth"`
	TopSellingDays []TopDay       `json:"top_selling_days"`
}

type FrequencyDistribution struct {
	SinglePurchase int `json:"single_purchase"`
	TwoToFive      int `json:"2-5_purchases"`
	SixPlus        int `json:"6+_purchases"`
}

type PurchaseFrequency struct {
	AveragePurchases      float64               `json:"average_purchases"`
	FrequencyDistribution FrequencyDistribution `json:"frequency_distribution"`
}

type CustomerSegments struct {
	HighValue   int `json:"high_value"`
	MediumValue int `json:"medium_value"`
	LowValue    int `json:"low_value"`
}

type RetentionMetrics struct {
	RetentionRate     float64 `json:"retention_rate"`
	TotalCustomers    int64   `json:"total_customers"`
	RetainedCustomers int64   `json:"retained_customers"`
}

type CustomerBehavior struct {
	PurchaseFrequency PurchaseFrequency `json:"purchase_frequency"`
	CustomerSegments  CustomerSegments  `json:"customer_segments"`
	RetentionMetrics  RetentionMetrics  `json:"retention_metrics"`
}

type ProductPerf struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	UnitsSold     int64     `json:"units_sold"`
	Revenue       float64   `json:"revenue"`
	StockQuantity int       `json:"stock_quantity"`
}

type CategoryPerf struct {
	TotalRevenue float64 `json:"total_revenue"`
	UnitsSold    int64   `json:"units_sold"`
	AvgTurnover  float64 `json:"avg_turnover"`
}

type ProductPerformance struct {
	TopProducts         []ProductPerf           `json:"top_products"`
	CategoryPerformance map[string]CategoryPerf `json:"category_performance"`
}

type RegionalSales struct {
	Region       string  `json:"region"`
	TotalSales   float64 `json:"total_sales"`
	NumCustomers int64   `json:"num_customers"`
	NumProducts  int64   `json:"num_products"`
}

type RegionalProduct struct {
	ProductName string `json:"product_name"`
	Category    string `json:"category"`
	UnitsSold   int64  `json:"units_sold"`
}

type GeographicAnalytics struct {
	RegionalSales       []RegionalSales              `json:"regional_sales"`
	RegionalPreferences map[string][]RegionalProduct `json:"regional_preferences"`
}

type SuspiciousTransaction struct {
	ID         uuid.UUID               `json:"id"`
	Amount     float64                 `json:"amount"`
	Timestamp  string                  `json:"timestamp"`
	CustomerID uuid.UUID               `json:"customer_id"`
	Status     model.TransactionStatus `json:"status"`
}

type LowStockProduct struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	StockQuantity int       `json:"stock_quantity"`
	Category      string    `json:"category"`
}

type CustomerMetrics struct {
	TotalCustomers    int64   `json:"total_customers"`
	AverageSpent      float64 `json:"average_spent"`
	HighRiskCustomers int64   `json:"high_risk_customers"`
}

// AnalyticsService is the aggregation engine. Every windowed operation
// anchors its window to the latest transaction timestamp in the ledger, not
// the wall clock, so results are deterministic over historical datasets. An
// empty ledger yields zero-valued results, never an error.
type AnalyticsService interface {
	SalesByHour(hours int) ([]SalesBucket, error)
	SalesTrends(days int) (*SalesTrends, error)
	CustomerBehavior() (*CustomerBehavior, error)
	ProductPerformance(days int, category string) (*ProductPerformance, error)
	GeographicAnalytics(days int) (*GeographicAnalytics, error)
	DetectSuspicious(window time.Duration) ([]SuspiciousTransaction, error)
	LowStockProducts(threshold int) ([]LowStockProduct, error)
	TotalSales(window time.Duration) (float64, error)
	TransactionMetrics(window time.Duration) (*repository.RangeMetrics, error)
	CustomerMetrics() (*CustomerMetrics, error)
}

type analyticsService struct {
	ledger    repository.LedgerRepository
	customers repository.CustomerRepository
	products  repository.ProductRepository
	cfg       config.AnalyticsConfig
	log       *zap.Logger
}

func NewAnalyticsService(
	ledger repository.LedgerRepository,
	customers repository.CustomerRepository,
	products repository.ProductRepository,
	cfg config.AnalyticsConfig,
	log *zap.Logger,
) AnalyticsService {
	return &analyticsService{
		ledger:    ledger,
		customers: customers,
		products:  products,
		cfg:       cfg,
		log:       log,
	}
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *analyticsService) SalesByHour(hours int) ([]SalesBucket, error) {
	if hours < 1 || hours > 365*24 {
		return nil, apperr.Validation("hours must be between 1 and %d", 365*24)
	}

	latest, ok, err := s.ledger.LatestTimestamp()
	if err != nil {
		return nil, apperr.Database(err)
	}
	if !ok {
		return []SalesBucket{}, nil
	}

	from := latest.Add(-time.Duration(hours) * time.Hour)
	transactions, err := s.ledger.InRange(from, latest)
	if err != nil {
		return nil, apperr.Database(err)
	}

	if hours > maxHourlySpan {
		days := (hours + 23) / 24
		daily := bucketDaily(transactions, latest, days)
		buckets := make([]SalesBucket, len(daily))
		for i, d := range daily {
			buckets[i] = SalesBucket{Hour: d.Date, TotalSales: d.TotalSales, NumTransactions: d.NumTransactions}
		}
		return buckets, nil
	}

	// Fixed one-hour buckets ending at the anchor hour; every bucket in the
	// span is emitted even when empty, so charts never have gaps.
	start := latest.UTC().Truncate(time.Hour).Add(-time.Duration(hours-1) * time.Hour)
	buckets := make([]SalesBucket, hours)
	index := make(map[time.Time]int, hours)
	for i := 0; i < hours; i++ {
		h := start.Add(time.Duration(i) * time.Hour)
		index[h] = i
		buckets[i] = SalesBucket{Hour: h.Format(time.RFC3339)}
	}

	for _, t := range transactions {
		h := t.Timestamp.UTC().Truncate(time.Hour)
		i, found := index[h]
		if !found {
			continue
		}
		buckets[i].TotalSales += t.TotalAmount()
		buckets[i].NumTransactions++
	}
	return buckets, nil
}

// bucketDaily distributes transactions over gap-free one-day buckets ending
// at the anchor day.
func bucketDaily(transactions []model.Transaction, latest time.Time, days int) []DailySales {
	start := truncateDay(latest).AddDate(0, 0, -(days - 1))
	buckets := make([]DailySales, days)
	index := make(map[time.Time]int, days)
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		index[d] = i
		buckets[i] = DailySales{Date: d.Format(time.RFC3339)}
	}

	for _, t := range transactions {
		d := truncateDay(t.Timestamp)
		i, found := index[d]
		if !found {
			continue
		}
		buckets[i].TotalSales += t.TotalAmount()
		buckets[i].NumTransactions++
	}
	return buckets
}

func (s *analyticsService) SalesTrends(days int) (*SalesTrends, error) {
	if days < 1 || days > 365 {
		return nil, apperr.Validation("days must be between 1 and 365")
	}

	empty := &SalesTrends{
		DailySales:     []DailySales{},
		WeeklyGrowth:   []WeeklyGrowth{},
		TopSellingDays: []TopDay{},
	}

	latest, ok, err := s.ledger.LatestTimestamp()
	if err != nil {
		return nil, apperr.Database(err)
	}
	if !ok {
		return empty, nil
	}

	from := latest.AddDate(0, 0, -days)
	transactions, err := s.ledger.InRange(from, latest)
	if err != nil {
		return nil, apperr.Database(err)
	}

	daily := bucketDaily(transactions, latest, days)

	// Consecutive 7-day groups. Growth against an empty prior week is
	// reported as 0, never a division error.
	weekly := []WeeklyGrowth{}
	prevWeek := 0.0
	for i := 0; i < len(daily); i += 7 {
		end := i + 7
		if end > len(daily) {
			end = len(daily)
		}
		var weekTotal float64
		for _, d := range daily[i:end] {
			weekTotal += d.TotalSales
		}
		growth := 0.0
		if prevWeek > 0 {
			growth = (weekTotal - prevWeek) / prevWeek * 100
		}
		weekly = append(weekly, WeeklyGrowth{
			WeekStart:  daily[i].Date,
			TotalSales: weekTotal,
			GrowthRate: growth,
		})
		prevWeek = weekTotal
	}

	withSales := []TopDay{}
	for _, d := range daily {
		if d.TotalSales > 0 {
			withSales = append(withSales, TopDay{Date: d.Date, TotalSales: d.TotalSales})
		}
	}
	sort.Slice(withSales, func(i, j int) bool { return withSales[i].TotalSales > withSales[j].TotalSales })
	if len(withSales) > 5 {
		withSales = withSales[:5]
	}

	return &SalesTrends{
		DailySales:     daily,
		WeeklyGrowth:   weekly,
		TopSellingDays: withSales,
	}, nil
}

func (s *analyticsService) CustomerBehavior() (*CustomerBehavior, error) {
	totalCustomers, err := s.customers.Count()
	if err != nil {
		return nil, apperr.Database(err)
	}

	stats, err := s.ledger.CompletedPurchaseStats()
	if err != nil {
		return nil, apperr.Database(err)
	}

	behavior := &CustomerBehavior{}
	behavior.RetentionMetrics.TotalCustomers = totalCustomers
	if len(stats) == 0 {
		return behavior, nil
	}

	var totalPurchases int64
	for _, c := range stats {
		totalPurchases += c.Purchases

		switch {
		case c.Purchases == 1:
			behavior.PurchaseFrequency.FrequencyDistribution.SinglePurchase++
		case c.Purchases <= 5:
			behavior.PurchaseFrequency.FrequencyDistribution.TwoToFive++
		default:
			behavior.PurchaseFrequency.FrequencyDistribution.SixPlus++
		}

		// Value segments are disjoint and exhaustive over total_spent.
		switch {
		case c.TotalSpent > 1000:
			behavior.CustomerSegments.HighValue++
		case c.TotalSpent >= 500:
			behavior.CustomerSegments.MediumValue++
		default:
			behavior.CustomerSegments.LowValue++
		}
	}
	if totalCustomers > 0 {
		behavior.PurchaseFrequency.AveragePurchases = round2(float64(totalPurchases) / float64(totalCustomers))
	}

	// Retention: share of all customers with a completed purchase in the
	// trailing 30 days, anchored to the latest transaction timestamp.
	latest, ok, err := s.ledger.LatestTimestamp()
	if err != nil {
		return nil, apperr.Database(err)
	}
	if ok && totalCustomers > 0 {
		retained, err := s.ledger.ActiveCustomerCount(latest.AddDate(0, 0, -30))
		if err != nil {
			return nil, apperr.Database(err)
		}
		behavior.RetentionMetrics.RetainedCustomers = retained
		behavior.RetentionMetrics.RetentionRate = round2(float64(retained) / float64(totalCustomers) * 100)
	}
	return behavior, nil
}

func (s *analyticsService) ProductPerformance(days int, category string) (*ProductPerformance, error) {
	if days < 1 || days > 365 {
		return nil, apperr.Validation("days must be between 1 and 365")
	}
	if category != "" {
		exists, err := s.products.CategoryExists(category)
		if err != nil {
			return nil, apperr.Database(err)
		}
		if !exists {
			return nil, apperr.Validation("Invalid category: %s", category)
		}
	}

	result := &ProductPerformance{
		TopProducts:         []ProductPerf{},
		CategoryPerformance: map[string]CategoryPerf{},
	}

	latest, ok, err := s.ledger.LatestTimestamp()
	if err != nil {
		return nil, apperr.Database(err)
	}
	if !ok {
		return result, nil
	}

	rows, err := s.ledger.ProductSalesInRange(latest.AddDate(0, 0, -days), latest, category)
	if err != nil {
		return nil, apperr.Database(err)
	}

	type catAgg struct {
		revenue  float64
		units    int64
		products int
	}
	byCategory := map[string]*catAgg{}
	for _, p := range rows {
		agg := byCategory[p.Category]
		if agg == nil {
			agg = &catAgg{}
			byCategory[p.Category] = agg
		}
		agg.revenue += p.Revenue
		agg.units += p.UnitsSold
		agg.products++
	}
	for cat, agg := range byCategory {
		turnover := 0.0
		if agg.products > 0 {
			turnover = float64(agg.units) / float64(agg.products)
		}
		result.CategoryPerformance[cat] = CategoryPerf{
			TotalRevenue: agg.revenue,
			UnitsSold:    agg.units,
			AvgTurnover:  turnover,
		}
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Revenue > rows[j].Revenue })
	for i, p := range rows {
		if i == 10 {
			break
		}
		result.TopProducts = append(result.TopProducts, ProductPerf{
			ID:            p.ProductID,
			Name:          p.Name,
			Category:      p.Category,
			UnitsSold:     p.UnitsSold,
			Revenue:       p.Revenue,
			StockQuantity: p.StockQuantity,
		})
	}
	return result, nil
}

func (s *analyticsService) GeographicAnalytics(days int) (*GeographicAnalytics, error) {
	if days < 1 || days > 365 {
		return nil, apperr.Validation("days must be between 1 and 365")
	}

	result := &GeographicAnalytics{
		RegionalSales:       []RegionalSales{},
		RegionalPreferences: map[string][]RegionalProduct{},
	}

	latest, ok, err := s.ledger.LatestTimestamp()
	if err != nil {
		return nil, apperr.Database(err)
	}
	if !ok {
		return result, nil
	}
	from := latest.AddDate(0, 0, -days)

	regions, err := s.ledger.SalesByRegion(from, latest)
	if err != nil {
		return nil, apperr.Database(err)
	}

	for _, r := range regions {
		result.RegionalSales = append(result.RegionalSales, RegionalSales{
			Region:       r.Region,
			TotalSales:   r.TotalSales,
			NumCustomers: r.NumCustomers,
			NumProducts:  r.NumProducts,
		})

		top, err := s.ledger.TopProductsByRegion(from, latest, r.Region, 5)
		if err != nil {
			return nil, apperr.Database(err)
		}
		prefs := make([]RegionalProduct, 0, len(top))
		for _, p := range top {
			prefs = append(prefs, RegionalProduct{
				ProductName: p.Name,
				Category:    p.Category,
				UnitsSold:   p.UnitsSold,
			})
		}
		result.RegionalPreferences[r.Region] = prefs
	}
	return result, nil
}

// DetectSuspicious is the retrospective batch sweep: it flags window
// transactions whose amount reaches the configured multiple of the
// ledger-wide mean. Coarser than, and independent from, the per-transaction
// scorer.
func (s *analyticsService) DetectSuspicious(window time.Duration) ([]SuspiciousTransaction, error) {
	latest, ok, err := s.ledger.LatestTimestamp()
	if err != nil {
		return nil, apperr.Database(err)
	}
	if !ok {
		return []SuspiciousTransaction{}, nil
	}

	meanAmount, err := s.ledger.MeanAmount()
	if err != nil {
		return nil, apperr.Database(err)
	}

	transactions, err := s.ledger.InRange(latest.Add(-window), latest)
	if err != nil {
		return nil, apperr.Database(err)
	}

	threshold := meanAmount * s.cfg.SuspiciousMultiplier
	suspicious := []SuspiciousTransaction{}
	for _, t := range transactions {
		if t.TotalAmount() >= threshold {
			suspicious = append(suspicious, SuspiciousTransaction{
				ID:         t.ID,
				Amount:     t.TotalAmount(),
				Timestamp:  t.Timestamp.UTC().Format(time.RFC3339),
				CustomerID: t.CustomerID,
				Status:     t.Status,
			})
		}
	}
	if len(suspicious) > 0 {
		s.log.Warn("suspicious transactions in window",
			zap.Int("count", len(suspicious)),
			zap.Duration("window", window),
		)
	}
	return suspicious, nil
}

func (s *analyticsService) LowStockProducts(threshold int) ([]LowStockProduct, error) {
	if threshold < 0 {
		return nil, apperr.Validation("threshold must not be negative")
	}

	products, err := s.products.LowStock(threshold)
	if err != nil {
		return nil, apperr.Database(err)
	}

	result := make([]LowStockProduct, 0, len(products))
	for _, p := range products {
		result = append(result, LowStockProduct{
			ID:            p.ID,
			Name:          p.Name,
			StockQuantity: p.StockQuantity,
			Category:      p.Category,
		})
	}
	return result, nil
}

// TotalSales sums price*quantity over the window; window 0 means lifetime.
func (s *analyticsService) TotalSales(window time.Duration) (float64, error) {
	if window == 0 {
		total, err := s.ledger.TotalSales(nil, nil)
		if err != nil {
			return 0, apperr.Database(err)
		}
		return total, nil
	}

	latest, ok, err := s.ledger.LatestTimestamp()
	if err != nil {
		return 0, apperr.Database(err)
	}
	if !ok {
		return 0, nil
	}
	since := latest.Add(-window)
	total, err := s.ledger.TotalSales(&since, &latest)
	if err != nil {
		return 0, apperr.Database(err)
	}
	return total, nil
}

func (s *analyticsService) TransactionMetrics(window time.Duration) (*repository.RangeMetrics, error) {
	latest, ok, err := s.ledger.LatestTimestamp()
	if err != nil {
		return nil, apperr.Database(err)
	}
	if !ok {
		return &repository.RangeMetrics{}, nil
	}

	metrics, err := s.ledger.RangeMetrics(latest.Add(-window), latest)
	if err != nil {
		return nil, apperr.Database(err)
	}
	return metrics, nil
}

func (s *analyticsService) CustomerMetrics() (*CustomerMetrics, error) {
	count, err := s.customers.Count()
	if err != nil {
		return nil, apperr.Database(err)
	}
	avg, err := s.customers.AverageSpent()
	if err != nil {
		return nil, apperr.Database(err)
	}
	highRisk, err := s.customers.HighRiskCount(highRiskScore)
	if err != nil {
		return nil, apperr.Database(err)
	}
	return &CustomerMetrics{
		TotalCustomers:    count,
		AverageSpent:      avg,
		HighRiskCustomers: highRisk,
	}, nil
}
