package service

import (
	"fmt"
	"time"

	"go-techmart-analytics/internal/model"
	"go-techmart-analytics/internal/repository"
	"go-techmart-analytics/internal/ws"
	"go-techmart-analytics/pkg/apperr"

	"go.uber.org/zap"
)

type CreateAlertRequest struct {
	Type     string                 `json:"type" validate:"required"`
	Message  string                 `json:"message" validate:"required"`
	Severity string                 `json:"severity"`
	Metadata map[string]interface{} `json:"metadata"`
}

type AlertList struct {
	Items []model.Alert `json:"items"`
	Total int64         `json:"total"`
}

type SystemStatus struct {
	Status       string        `json:"status"`
	ActiveAlerts []model.Alert `json:"active_alerts"`
	LastChecked  string        `json:"last_checked"`
}

// AlertService is the alerting bridge: scan results become persisted alert
// records, one alert per triggering scan with the offending entities embedded
// in metadata. Repeated scans over the same condition intentionally create
// duplicate alerts; each detection is its own audit record.
type AlertService interface {
	Create(req *CreateAlertRequest) (*model.Alert, error)
	List(filter repository.AlertFilter) (*AlertList, error)
	RaiseLowStock(products []LowStockProduct) (*model.Alert, error)
	RaiseSuspicious(transactions []SuspiciousTransaction) (*model.Alert, error)
	SystemStatus() (*SystemStatus, error)
}

type alertService struct {
	alerts    repository.AlertRepository
	analytics AnalyticsService
	lowStock  int
	hub       *ws.Hub
	log       *zap.Logger
}

func NewAlertService(
	alerts repository.AlertRepository,
	analytics AnalyticsService,
	lowStockThreshold int,
	hub *ws.Hub,
	log *zap.Logger,
) AlertService {
	return &alertService{
		alerts:    alerts,
		analytics: analytics,
		lowStock:  lowStockThreshold,
		hub:       hub,
		log:       log,
	}
}

func (s *alertService) persist(alert *model.Alert) (*model.Alert, error) {
	if err := s.alerts.Create(nil, alert); err != nil {
		return nil, apperr.Database(err)
	}
	s.hub.BroadcastJSON(map[string]interface{}{
		"type":  "alert",
		"alert": alert,
	})
	return alert, nil
}

func (s *alertService) Create(req *CreateAlertRequest) (*model.Alert, error) {
	if !model.ValidAlertType(model.AlertType(req.Type)) {
		return nil, apperr.Validation("Invalid alert type: %s", req.Type)
	}
	severity := model.AlertSeverity(req.Severity)
	if req.Severity == "" {
		severity = model.SeverityInfo
	}
	if !model.ValidSeverity(severity) {
		return nil, apperr.Validation("Invalid severity: %s", req.Severity)
	}
	if req.Message == "" {
		return nil, apperr.Validation("Alert message must not be empty")
	}

	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return s.persist(&model.Alert{
		Type:     model.AlertType(req.Type),
		Message:  req.Message,
		Severity: severity,
		Metadata: metadata,
	})
}

func (s *alertService) List(filter repository.AlertFilter) (*AlertList, error) {
	if filter.Type != "" && !model.ValidAlertType(filter.Type) {
		return nil, apperr.Validation("Invalid alert_type: %s", filter.Type)
	}
	if filter.Severity != "" && !model.ValidSeverity(filter.Severity) {
		return nil, apperr.Validation("Invalid severity: %s", filter.Severity)
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}

	alerts, total, err := s.alerts.List(filter)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if alerts == nil {
		alerts = []model.Alert{}
	}
	return &AlertList{Items: alerts, Total: total}, nil
}

func (s *alertService) RaiseLowStock(products []LowStockProduct) (*model.Alert, error) {
	if len(products) == 0 {
		return nil, nil
	}
	s.log.Warn("low stock alert", zap.Int("products", len(products)))
	return s.persist(&model.Alert{
		Type:     model.AlertLowStock,
		Message:  fmt.Sprintf("%d products are running low on stock", len(products)),
		Severity: model.SeverityWarning,
		Metadata: map[string]interface{}{"products": products},
	})
}

func (s *alertService) RaiseSuspicious(transactions []SuspiciousTransaction) (*model.Alert, error) {
	if len(transactions) == 0 {
		return nil, nil
	}
	s.log.Warn("suspicious transactions alert", zap.Int("transactions", len(transactions)))
	return s.persist(&model.Alert{
		Type:     model.AlertSuspiciousTransaction,
		Message:  fmt.Sprintf("%d suspicious transactions detected in the last 24h", len(transactions)),
		Severity: model.SeverityWarning,
		Metadata: map[string]interface{}{"transactions": transactions},
	})
}

// SystemStatus runs the low-stock and suspicious sweeps, persists an alert
// for each non-empty result and reports overall health.
func (s *alertService) SystemStatus() (*SystemStatus, error) {
	lowStock, err := s.analytics.LowStockProducts(s.lowStock)
	if err != nil {
		return nil, err
	}
	suspicious, err := s.analytics.DetectSuspicious(24 * time.Hour)
	if err != nil {
		return nil, err
	}

	active := []model.Alert{}
	if alert, err := s.RaiseLowStock(lowStock); err != nil {
		return nil, err
	} else if alert != nil {
		active = append(active, *alert)
	}
	if alert, err := s.RaiseSuspicious(suspicious); err != nil {
		return nil, err
	} else if alert != nil {
		active = append(active, *alert)
	}

	status := "healthy"
	if len(active) > 0 {
		status = "warning"
	}
	return &SystemStatus{
		Status:       status,
		ActiveAlerts: active,
		LastChecked:  time.Now().UTC().Format(time.RFC3339),
	}, nil
}
