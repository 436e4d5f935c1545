package model

import "time"

type Customer struct {
	BaseModel
	Email            string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	RegistrationDate time.Time `gorm:"not null" json:"registration_date"`
	// TotalSpent is a derived rollup over COMPLETED transactions. It is only
	// ever written by the recompute in the customer repository, inside the
	// same unit of work as the write that changed it.
	TotalSpent float64 `gorm:"not null;default:0" json:"total_spent"`
	RiskScore  float64 `gorm:"not null;default:0" json:"risk_score"`
	Region     string  `gorm:"type:varchar(100);index" json:"region"`

	Transactions []Transaction `json:"transactions,omitempty"`
}
