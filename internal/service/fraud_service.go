package service

import (
	"time"

	"go-techmart-analytics/internal/config"
	"go-techmart-analytics/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FraudAnalysis is the combined scorer result. Attached to the creation
// response as a side channel; never persisted on the transaction row.
type FraudAnalysis struct {
	IsSuspicious bool                   `json:"is_suspicious"`
	Reasons      []string               `json:"reasons"`
	RiskScore    float64                `json:"risk_score"`
	Details      map[string]interface{} `json:"details"`
}

const (
	ReasonHighVelocity  = "High transaction velocity"
	ReasonUnusualAmount = "Unusual transaction amount"
)

type FraudService interface {
	// Analyze scores one prospective transaction. The checks run on the
	// caller's transaction scope; at is the transaction timestamp, so scoring
	// is deterministic and replayable against historical data. Any query
	// error propagates: a scoring failure must abort the creation, never
	// pass the transaction through as clean.
	Analyze(tx *gorm.DB, customerID uuid.UUID, amount float64, at time.Time) (*FraudAnalysis, error)
}

type fraudService struct {
	ledger repository.LedgerRepository
	cfg    config.FraudConfig
	log    *zap.Logger
}

func NewFraudService(ledger repository.LedgerRepository, cfg config.FraudConfig, log *zap.Logger) FraudService {
	return &fraudService{ledger: ledger, cfg: cfg, log: log}
}

type checkResult struct {
	isSuspicious bool
	reason       string
	details      map[string]interface{}
}

// checkVelocity counts the customer's transactions in the trailing window.
// Works from zero history; fires at the configured threshold.
func (s *fraudService) checkVelocity(tx *gorm.DB, customerID uuid.UUID, at time.Time) (*checkResult, error) {
	windowStart := at.Add(-time.Duration(s.cfg.VelocityWindowMinutes) * time.Minute)

	count, err := s.ledger.CountByCustomerSince(tx, customerID, windowStart)
	if err != nil {
		return nil, err
	}

	suspicious := count >= int64(s.cfg.MaxTransactionsPerWindow)
	result := &checkResult{
		isSuspicious: suspicious,
		details: map[string]interface{}{
			"window_minutes":    s.cfg.VelocityWindowMinutes,
			"transaction_count": count,
			"threshold":         s.cfg.MaxTransactionsPerWindow,
		},
	}
	if suspicious {
		result.reason = ReasonHighVelocity
	}
	return result, nil
}

// checkAmount compares amount against the customer's historical price list.
// Below the minimum sample the check is a no-op, reported as insufficient
// history. z is forced to 0 when the history has no spread.
func (s *fraudService) checkAmount(tx *gorm.DB, customerID uuid.UUID, amount float64) (*checkResult, error) {
	prices, err := s.ledger.PriceHistory(tx, customerID)
	if err != nil {
		return nil, err
	}

	if len(prices) < s.cfg.MinCustomerTransactions {
		return &checkResult{
			details: map[string]interface{}{
				"message":           "Insufficient transaction history",
				"transaction_count": len(prices),
			},
		}, nil
	}

	m := mean(prices)
	sd := stdDev(prices)
	z := 0.0
	if sd > 0 {
		z = (amount - m) / sd
	}

	suspicious := z > s.cfg.AmountStdDevThreshold
	result := &checkResult{
		isSuspicious: suspicious,
		details: map[string]interface{}{
			"z_score":          round2(z),
			"customer_mean":    round2(m),
			"customer_std_dev": round2(sd),
			"threshold":        s.cfg.AmountStdDevThreshold,
		},
	}
	if suspicious {
		result.reason = ReasonUnusualAmount
	}
	return result, nil
}

func (s *fraudService) Analyze(tx *gorm.DB, customerID uuid.UUID, amount float64, at time.Time) (*FraudAnalysis, error) {
	velocity, err := s.checkVelocity(tx, customerID, at)
	if err != nil {
		return nil, err
	}
	amountCheck, err := s.checkAmount(tx, customerID, amount)
	if err != nil {
		return nil, err
	}

	// Ordered union: velocity first, then amount.
	reasons := []string{}
	if velocity.reason != "" {
		reasons = append(reasons, velocity.reason)
	}
	if amountCheck.reason != "" {
		reasons = append(reasons, amountCheck.reason)
	}

	analysis := &FraudAnalysis{
		IsSuspicious: velocity.isSuspicious || amountCheck.isSuspicious,
		Reasons:      reasons,
		RiskScore:    0.5 * float64(len(reasons)),
		Details: map[string]interface{}{
			"velocity_check": velocity.details,
			"amount_check":   amountCheck.details,
		},
	}

	if analysis.IsSuspicious {
		s.log.Warn("suspicious transaction detected",
			zap.String("customer_id", customerID.String()),
			zap.Float64("amount", amount),
			zap.Strings("reasons", reasons),
			zap.Float64("risk_score", analysis.RiskScore),
		)
	}
	return analysis, nil
}
