package repository

import (
	"time"

	"go-techmart-analytics/internal/model"

	"gorm.io/gorm"
)

// AlertFilter narrows the alert listing. Zero values mean "no filter".
type AlertFilter struct {
	Type     model.AlertType
	Severity model.AlertSeverity
	Since    *time.Time
	Skip     int
	Limit    int
}

type AlertRepository interface {
	Create(tx *gorm.DB, alert *model.Alert) error
	List(filter AlertFilter) ([]model.Alert, int64, error)
}

type alertRepo struct {
	db *gorm.DB
}

func NewAlertRepo(db *gorm.DB) AlertRepository {
	return &alertRepo{db}
}

func (r *alertRepo) Create(tx *gorm.DB, alert *model.Alert) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(alert).Error
}

func (r *alertRepo) List(filter AlertFilter) ([]model.Alert, int64, error) {
	query := r.db.Model(&model.Alert{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Severity != "" {
		query = query.Where("severity = ?", filter.Severity)
	}
	if filter.Since != nil {
		query = query.Where("created_at >= ?", *filter.Since)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var alerts []model.Alert
	err := query.Order("created_at DESC").Offset(filter.Skip).Limit(filter.Limit).Find(&alerts).Error
	return alerts, total, err
}
