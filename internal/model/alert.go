package model

import "time"

type AlertType string

const (
	AlertLowStock              AlertType = "low_stock"
	AlertSuspiciousTransaction AlertType = "suspicious_transaction"
	AlertSystem                AlertType = "system"
)

type AlertSeverity string

const (
	SeverityInfo    AlertSeverity = "info"
	SeverityWarning AlertSeverity = "warning"
	SeverityError   AlertSeverity = "error"
)

func ValidAlertType(t AlertType) bool {
	switch t {
	case AlertLowStock, AlertSuspiciousTransaction, AlertSystem:
		return true
	}
	return false
}

func ValidSeverity(s AlertSeverity) bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError:
		return true
	}
	return false
}

// Alert is an immutable detection record. Alerts are never auto-deleted;
// repeated scans over the same condition create new rows (audit trail).
type Alert struct {
	BaseModel
	Type       AlertType              `gorm:"type:varchar(50);not null;index" json:"type"`
	Message    string                 `gorm:"type:text;not null" json:"message"`
	Severity   AlertSeverity          `gorm:"type:varchar(10);not null;default:'info'" json:"severity"`
	Metadata   map[string]interface{} `gorm:"serializer:json" json:"metadata"`
	ResolvedAt *time.Time             `json:"resolved_at,omitempty"`
}
