package model

type Supplier struct {
	BaseModel
	Name             string  `gorm:"type:varchar(255);not null;index" json:"name" validate:"required"`
	ReliabilityScore float64 `gorm:"not null;default:0" json:"reliability_score"`
	Country          string  `gorm:"type:varchar(100)" json:"country"`

	Products []Product `json:"products,omitempty"`
}
