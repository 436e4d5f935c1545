package model

import "github.com/google/uuid"

type Product struct {
	BaseModel
	Name          string     `gorm:"type:varchar(255);not null;index" json:"name" validate:"required"`
	Category      string     `gorm:"type:varchar(100);not null;index" json:"category" validate:"required"`
	Price         float64    `gorm:"not null" json:"price" validate:"required,gt=0"`
	StockQuantity int        `gorm:"not null;default:0" json:"stock_quantity" validate:"gte=0"`
	SupplierID    *uuid.UUID `gorm:"type:uuid;index" json:"supplier_id,omitempty"`
	Supplier      *Supplier  `gorm:"foreignKey:SupplierID" json:"supplier,omitempty" validate:"-"`

	Transactions []Transaction `json:"transactions,omitempty"`
}
