package repository

import (
	"errors"
	"time"

	"go-techmart-analytics/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerRepository is the read/write surface over the transaction ledger.
// Aggregate primitives (counts, sums, group-bys, max timestamp) live here so
// the scoring and analytics layers never touch SQL directly.
type LedgerRepository interface {
	Create(tx *gorm.DB, t *model.Transaction) error
	FindByID(id uuid.UUID) (*model.Transaction, error)
	FindAll(skip, limit int) ([]model.Transaction, int64, error)
	UpdateStatus(tx *gorm.DB, id uuid.UUID, status model.TransactionStatus) error

	// Scorer primitives. These take the caller's *gorm.DB so the checks run
	// inside the same transaction scope as the write being scored.
	CountByCustomerSince(tx *gorm.DB, customerID uuid.UUID, since time.Time) (int64, error)
	PriceHistory(tx *gorm.DB, customerID uuid.UUID) ([]float64, error)

	// LatestTimestamp anchors every window calculation. ok is false when the
	// ledger is empty.
	LatestTimestamp() (time.Time, bool, error)

	InRange(from, to time.Time) ([]model.Transaction, error)
	MeanAmount() (float64, error)
	TotalSales(since *time.Time, until *time.Time) (float64, error)
	RangeMetrics(from, to time.Time) (*RangeMetrics, error)

	CompletedPurchaseStats() ([]CustomerPurchaseStats, error)
	ActiveCustomerCount(since time.Time) (int64, error)
	RecentByCustomer(customerID uuid.UUID, limit int) ([]model.Transaction, error)

	ProductSalesInRange(from, to time.Time, category string) ([]ProductSales, error)
	SalesByRegion(from, to time.Time) ([]RegionSales, error)
	TopProductsByRegion(from, to time.Time, region string, limit int) ([]RegionProductSales, error)
}

// RangeMetrics is the count/total/avg rollup for a window.
type RangeMetrics struct {
	TransactionCount int64   `json:"transaction_count"`
	TotalAmount      float64 `json:"total_amount"`
	AverageAmount    float64 `json:"average_amount"`
}

// CustomerPurchaseStats pairs a customer's completed purchase count with the
// maintained total_spent rollup.
type CustomerPurchaseStats struct {
	CustomerID uuid.UUID
	Purchases  int64
	TotalSpent float64
}

// ProductSales is the per-product rollup for product performance.
type ProductSales struct {
	ProductID     uuid.UUID
	Name          string
	Category      string
	UnitsSold     int64
	Revenue       float64
	StockQuantity int
}

// RegionSales aggregates sales by customer region.
type RegionSales struct {
	Region       string
	TotalSales   float64
	NumCustomers int64
	NumProducts  int64
}

// RegionProductSales is one product's units sold within a region.
type RegionProductSales struct {
	Name      string
	Category  string
	UnitsSold int64
}

type ledgerRepo struct {
	db *gorm.DB
}

func NewLedgerRepo(db *gorm.DB) LedgerRepository {
	return &ledgerRepo{db}
}

func (r *ledgerRepo) Create(tx *gorm.DB, t *model.Transaction) error {
	return tx.Create(t).Error
}

func (r *ledgerRepo) FindByID(id uuid.UUID) (*model.Transaction, error) {
	var t model.Transaction
	err := r.db.Preload("Product").Preload("Customer").First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ledgerRepo) FindAll(skip, limit int) ([]model.Transaction, int64, error) {
	var total int64
	if err := r.db.Model(&model.Transaction{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var transactions []model.Transaction
	err := r.db.Order("timestamp DESC").Offset(skip).Limit(limit).Find(&transactions).Error
	return transactions, total, err
}

func (r *ledgerRepo) UpdateStatus(tx *gorm.DB, id uuid.UUID, status model.TransactionStatus) error {
	return tx.Model(&model.Transaction{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *ledgerRepo) CountByCustomerSince(tx *gorm.DB, customerID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := tx.Model(&model.Transaction{}).
		Where("customer_id = ? AND timestamp >= ?", customerID, since).
		Count(&count).Error
	return count, err
}

func (r *ledgerRepo) PriceHistory(tx *gorm.DB, customerID uuid.UUID) ([]float64, error) {
	var prices []float64
	err := tx.Model(&model.Transaction{}).
		Where("customer_id = ?", customerID).
		Order("timestamp ASC").
		Pluck("price", &prices).Error
	return prices, err
}

func (r *ledgerRepo) LatestTimestamp() (time.Time, bool, error) {
	var t model.Transaction
	err := r.db.Select("timestamp").Order("timestamp DESC").First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return t.Timestamp, true, nil
}

func (r *ledgerRepo) InRange(from, to time.Time) ([]model.Transaction, error) {
	var transactions []model.Transaction
	err := r.db.
		Where("timestamp >= ? AND timestamp <= ?", from, to).
		Order("timestamp ASC").
		Find(&transactions).Error
	return transactions, err
}

func (r *ledgerRepo) MeanAmount() (float64, error) {
	var mean float64
	err := r.db.Model(&model.Transaction{}).
		Select("COALESCE(AVG(price * quantity), 0)").
		Scan(&mean).Error
	return mean, err
}

func (r *ledgerRepo) TotalSales(since *time.Time, until *time.Time) (float64, error) {
	query := r.db.Model(&model.Transaction{}).
		Select("COALESCE(SUM(price * quantity), 0)")
	if since != nil {
		query = query.Where("timestamp >= ?", *since)
	}
	if until != nil {
		query = query.Where("timestamp <= ?", *until)
	}
	var total float64
	err := query.Scan(&total).Error
	return total, err
}

func (r *ledgerRepo) RangeMetrics(from, to time.Time) (*RangeMetrics, error) {
	var m RangeMetrics
	err := r.db.Model(&model.Transaction{}).
		Select(`
			COUNT(*) as transaction_count,
			COALESCE(SUM(price * quantity), 0) as total_amount,
			COALESCE(AVG(price * quantity), 0) as average_amount
		`).
		Where("timestamp >= ? AND timestamp <= ?", from, to).
		Scan(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *ledgerRepo) CompletedPurchaseStats() ([]CustomerPurchaseStats, error) {
	var results []CustomerPurchaseStats

	rows, err := r.db.Model(&model.Transaction{}).
		Select("transactions.customer_id, COUNT(*) as purchases, customers.total_spent").
		Joins("JOIN customers ON customers.id = transactions.customer_id").
		Where("transactions.status = ?", model.StatusCompleted).
		Group("transactions.customer_id, customers.total_spent").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s CustomerPurchaseStats
		if err := rows.Scan(&s.CustomerID, &s.Purchases, &s.TotalSpent); err != nil {
			return nil, err
		}
		results = append(results, s)
	}
	return results, rows.Err()
}

func (r *ledgerRepo) ActiveCustomerCount(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.Transaction{}).
		Where("status = ? AND timestamp >= ?", model.StatusCompleted, since).
		Distinct("customer_id").
		Count(&count).Error
	return count, err
}

func (r *ledgerRepo) RecentByCustomer(customerID uuid.UUID, limit int) ([]model.Transaction, error) {
	var transactions []model.Transaction
	err := r.db.
		Where("customer_id = ?", customerID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&transactions).Error
	return transactions, err
}

func (r *ledgerRepo) ProductSalesInRange(from, to time.Time, category string) ([]ProductSales, error) {
	query := r.db.Model(&model.Transaction{}).
		Select(`
			products.id,
			products.name,
			products.category,
			COALESCE(SUM(transactions.quantity), 0) as units_sold,
			COALESCE(SUM(transactions.price * transactions.quantity), 0) as revenue,
			products.stock_quantity
		`).
		Joins("JOIN products ON products.id = transactions.product_id").
		Where("transactions.timestamp >= ? AND transactions.timestamp <= ?", from, to).
		Group("products.id, products.name, products.category, products.stock_quantity")
	if category != "" {
		query = query.Where("products.category = ?", category)
	}

	rows, err := query.Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ProductSales
	for rows.Next() {
		var p ProductSales
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Category, &p.UnitsSold, &p.Revenue, &p.StockQuantity); err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

func (r *ledgerRepo) SalesByRegion(from, to time.Time) ([]RegionSales, error) {
	rows, err := r.db.Model(&model.Transaction{}).
		Select(`
			customers.region,
			COALESCE(SUM(transactions.price * transactions.quantity), 0) as total_sales,
			COUNT(DISTINCT transactions.customer_id) as num_customers,
			COUNT(DISTINCT transactions.product_id) as num_products
		`).
		Joins("JOIN customers ON customers.id = transactions.customer_id").
		Where("transactions.timestamp >= ? AND transactions.timestamp <= ?", from, to).
		Group("customers.region").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []RegionSales
	for rows.Next() {
		var s RegionSales
		if err := rows.Scan(&s.Region, &s.TotalSales, &s.NumCustomers, &s.NumProducts); err != nil {
			return nil, err
		}
		results = append(results, s)
	}
	return results, rows.Err()
}

func (r *ledgerRepo) TopProductsByRegion(from, to time.Time, region string, limit int) ([]RegionProductSales, error) {
	rows, err := r.db.Model(&model.Transaction{}).
		Select(`
			products.name,
			products.category,
			COALESCE(SUM(transactions.quantity), 0) as units_sold
		`).
		Joins("JOIN products ON products.id = transactions.product_id").
		Joins("JOIN customers ON customers.id = transactions.customer_id").
		Where("customers.region = ? AND transactions.timestamp >= ? AND transactions.timestamp <= ?", region, from, to).
		Group("products.name, products.category").
		Order("units_sold DESC").
		Limit(limit).
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []RegionProductSales
	for rows.Next() {
		var p RegionProductSales
		if err := rows.Scan(&p.Name, &p.Category, &p.UnitsSold); err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}
