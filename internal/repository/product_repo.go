package repository

import (
	"go-techmart-analytics/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	FindAll(category string, supplierID *uuid.UUID, skip, limit int) ([]model.Product, int64, error)
	CategoryExists(category string) (bool, error)
	LowStock(threshold int) ([]model.Product, error)
	UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) FindByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	if tx == nil {
		tx = r.db
	}
	var product model.Product
	err := tx.First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindAll(category string, supplierID *uuid.UUID, skip, limit int) ([]model.Product, int64, error) {
	query := r.db.Model(&model.Product{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if supplierID != nil {
		query = query.Where("supplier_id = ?", *supplierID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []model.Product
	err := query.Order("name ASC").Offset(skip).Limit(limit).Find(&products).Error
	return products, total, err
}

func (r *productRepo) CategoryExists(category string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Product{}).
		Where("category = ?", category).
		Count(&count).Error
	return count > 0, err
}

func (r *productRepo) LowStock(threshold int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.
		Where("stock_quantity <= ?", threshold).
		Order("stock_quantity ASC").
		Find(&products).Error
	return products, err
}

// UpdateStock runs on the caller's *gorm.DB so the decrement stays inside the
// creation's transaction scope.
func (r *productRepo) UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int) error {
	return tx.Model(&model.Product{}).
		Where("id = ?", id).
		Update("stock_quantity", newStock).Error
}
