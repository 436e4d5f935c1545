package repository

import (
	"go-techmart-analytics/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(c *model.Customer) error
	FindByID(tx *gorm.DB, id uuid.UUID) (*model.Customer, error)
	Search(search string, skip, limit int) ([]model.Customer, int64, error)
	FindAllIDs() ([]uuid.UUID, error)
	Count() (int64, error)
	AverageSpent() (float64, error)
	HighRiskCount(threshold float64) (int64, error)

	// RecomputeTotal rewrites total_spent from the sum of price*quantity over
	// the customer's COMPLETED transactions and returns the new value. Must be
	// called inside the same transaction scope as the write that changed the
	// ledger, so the rollup invariant holds at commit.
	RecomputeTotal(tx *gorm.DB, id uuid.UUID) (float64, error)
}

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepo(db *gorm.DB) CustomerRepository {
	return &customerRepo{db}
}

func (r *customerRepo) Create(c *model.Customer) error {
	return r.db.Create(c).Error
}

func (r *customerRepo) FindByID(tx *gorm.DB, id uuid.UUID) (*model.Customer, error) {
	if tx == nil {
		tx = r.db
	}
	var customer model.Customer
	err := tx.First(&customer, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepo) Search(search string, skip, limit int) ([]model.Customer, int64, error) {
	query := r.db.Model(&model.Customer{})
	if search != "" {
		query = query.Where("email LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []model.Customer
	err := query.Order("created_at ASC").Offset(skip).Limit(limit).Find(&customers).Error
	return customers, total, err
}

func (r *customerRepo) FindAllIDs() ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.Model(&model.Customer{}).Pluck("id", &ids).Error
	return ids, err
}

func (r *customerRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Customer{}).Count(&count).Error
	return count, err
}

func (r *customerRepo) AverageSpent() (float64, error) {
	var avg float64
	err := r.db.Model(&model.Customer{}).
		Select("COALESCE(AVG(total_spent), 0)").
		Scan(&avg).Error
	return avg, err
}

func (r *customerRepo) HighRiskCount(threshold float64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Customer{}).
		Where("risk_score >= ?", threshold).
		Count(&count).Error
	return count, err
}

func (r *customerRepo) RecomputeTotal(tx *gorm.DB, id uuid.UUID) (float64, error) {
	var total float64
	err := tx.Model(&model.Transaction{}).
		Select("COALESCE(SUM(price * quantity), 0)").
		Where("customer_id = ? AND status = ?", id, model.StatusCompleted).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}

	err = tx.Model(&model.Customer{}).
		Where("id = ?", id).
		Update("total_spent", total).Error
	return total, err
}
