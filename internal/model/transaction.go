package model

import (
	"time"

	"github.com/google/uuid"
)

type TransactionStatus string

const (
	StatusPending    TransactionStatus = "pending"
	StatusCompleted  TransactionStatus = "completed"
	StatusFailed     TransactionStatus = "failed"
	StatusSuspicious TransactionStatus = "suspicious"
	StatusFlagged    TransactionStatus = "flagged"
	StatusRefunded   TransactionStatus = "refunded"
)

// ValidStatus reports whether s is one of the persisted status tags.
func ValidStatus(s TransactionStatus) bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusSuspicious, StatusFlagged, StatusRefunded:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PayCreditCard   PaymentMethod = "credit_card"
	PayDebitCard    PaymentMethod = "debit_card"
	PayPaypal       PaymentMethod = "paypal"
	PayBankTransfer PaymentMethod = "bank_transfer"
	PayMobileWallet PaymentMethod = "mobile_wallet"
)

// NormalizePaymentMethod maps incoming payment method tags onto the persisted
// enum. The deprecated wallet variants collapse into mobile_wallet; keeping the
// mapping in one place so the collapse can be undone if consumers ever need
// the split. Returns false for unknown tags.
func NormalizePaymentMethod(raw string) (PaymentMethod, bool) {
	switch PaymentMethod(raw) {
	case PayCreditCard, PayDebitCard, PayPaypal, PayBankTransfer, PayMobileWallet:
		return PaymentMethod(raw), true
	}
	switch raw {
	case "apple_pay", "google_pay":
		return PayMobileWallet, true
	}
	return "", false
}

type Transaction struct {
	BaseModel
	CustomerID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"customer_id" validate:"uuid_required"`
	Customer      *Customer         `gorm:"foreignKey:CustomerID" json:"customer,omitempty" validate:"-"`
	ProductID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"product_id" validate:"uuid_required"`
	Product       *Product          `gorm:"foreignKey:ProductID" json:"product,omitempty" validate:"-"`
	Quantity      int               `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	Price         float64           `gorm:"not null" json:"price" validate:"required,gt=0"`
	PaymentMethod PaymentMethod     `gorm:"type:varchar(20);not null" json:"payment_method" validate:"required"`
	Status        TransactionStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Timestamp     time.Time         `gorm:"not null;index" json:"timestamp"`
}

// TotalAmount is always derived from price * quantity, never stored, so the
// two can not drift apart.
func (t *Transaction) TotalAmount() float64 {
	return t.Price * float64(t.Quantity)
}

// TransactionResponse is the creation response. FraudCheck is a side-channel
// attached only here; it is not part of the persisted row.
type TransactionResponse struct {
	ID            uuid.UUID         `json:"id"`
	CustomerID    uuid.UUID         `json:"customer_id"`
	ProductID     uuid.UUID         `json:"product_id"`
	Quantity      int               `json:"quantity"`
	Price         float64           `json:"price"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	Status        TransactionStatus `json:"status"`
	Timestamp     string            `json:"timestamp"`
	TotalAmount   float64           `json:"total_amount"`
	FraudCheck    interface{}       `json:"fraud_check,omitempty"`
}

// ToResponse converts a Transaction to its API shape (ISO-8601 timestamp,
// derived total).
func (t *Transaction) ToResponse() TransactionResponse {
	return TransactionResponse{
		ID:            t.ID,
		CustomerID:    t.CustomerID,
		ProductID:     t.ProductID,
		Quantity:      t.Quantity,
		Price:         t.Price,
		PaymentMethod: t.PaymentMethod,
		Status:        t.Status,
		Timestamp:     t.Timestamp.UTC().Format(time.RFC3339),
		TotalAmount:   t.TotalAmount(),
	}
}
