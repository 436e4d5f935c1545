package service

import (
	"errors"
	"fmt"
	"time"

	"go-techmart-analytics/internal/model"
	"go-techmart-analytics/internal/repository"
	"go-techmart-analytics/internal/ws"
	"go-techmart-analytics/pkg/apperr"
	"go-techmart-analytics/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxQuantityPerTransaction = 1000
	maxPricePerTransaction    = 1_000_000
)

type CreateTransactionRequest struct {
	CustomerID    uuid.UUID `json:"customer_id" validate:"uuid_required"`
	ProductID     uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity      int       `json:"quantity" validate:"required,gt=0"`
	Price         float64   `json:"price" validate:"required,gt=0"`
	PaymentMethod string    `json:"payment_method" validate:"required"`
}

type TransactionService interface {
	Create(req *CreateTransactionRequest) (*model.TransactionResponse, error)
	GetByID(id uuid.UUID) (*model.Transaction, error)
	List(skip, limit int) ([]model.Transaction, int64, error)
	UpdateStatus(id uuid.UUID, status model.TransactionStatus) (*model.Transaction, error)
}

type transactionService struct {
	db        *gorm.DB
	ledger    repository.LedgerRepository
	customers repository.CustomerRepository
	products  repository.ProductRepository
	alerts    repository.AlertRepository
	fraud     FraudService
	hub       *ws.Hub
	log       *zap.Logger
}

func NewTransactionService(
	db *gorm.DB,
	ledger repository.LedgerRepository,
	customers repository.CustomerRepository,
	products repository.ProductRepository,
	alerts repository.AlertRepository,
	fraud FraudService,
	hub *ws.Hub,
	log *zap.Logger,
) TransactionService {
	return &transactionService{
		db:        db,
		ledger:    ledger,
		customers: customers,
		products:  products,
		alerts:    alerts,
		fraud:     fraud,
		hub:       hub,
		log:       log,
	}
}

// Create runs the whole creation unit of work: validation, reference checks,
// fraud scoring, the insert, the stock decrement and the total_spent
// recompute all commit together or not at all. Isolation against concurrent
// writers is the store's job; no application-level locks are taken.
func (s *transactionService) Create(req *CreateTransactionRequest) (*model.TransactionResponse, error) {
	// 1. Validate input before touching the store.
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, apperr.Validation("Field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}
	if req.Quantity > maxQuantityPerTransaction {
		return nil, apperr.Validation("Quantity cannot exceed %d units per transaction", maxQuantityPerTransaction)
	}
	if req.Price > maxPricePerTransaction {
		return nil, apperr.Validation("Price cannot exceed %s per transaction", "1,000,000")
	}
	method, ok := model.NormalizePaymentMethod(req.PaymentMethod)
	if !ok {
		return nil, apperr.Validation("Unknown payment method: %s", req.PaymentMethod)
	}

	var created *model.Transaction
	var analysis *FraudAnalysis
	var raisedAlert *model.Alert

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// 2. Referenced entities must exist; reject before any mutation.
		if _, err := s.customers.FindByID(tx, req.CustomerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Customer", req.CustomerID)
			}
			return apperr.Database(err)
		}
		product, err := s.products.FindByID(tx, req.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Product", req.ProductID)
			}
			return apperr.Database(err)
		}

		// 3. Stock check before any mutation.
		if product.StockQuantity < req.Quantity {
			return apperr.BusinessLogic(
				"Insufficient stock. Available: %d, Requested: %d",
				product.StockQuantity, req.Quantity,
			)
		}

		now := time.Now().UTC()
		amount := req.Price * float64(req.Quantity)

		// 4. Score before the write. A scoring failure aborts the creation;
		// it never falls through as "not suspicious".
		analysis, err = s.fraud.Analyze(tx, req.CustomerID, amount, now)
		if err != nil {
			return apperr.Database(err)
		}

		status := model.StatusPending
		if analysis.IsSuspicious {
			status = model.StatusFlagged
		}

		t := &model.Transaction{
			CustomerID:    req.CustomerID,
			ProductID:     req.ProductID,
			Quantity:      req.Quantity,
			Price:         req.Price,
			PaymentMethod: method,
			Status:        status,
			Timestamp:     now,
		}
		if err := s.ledger.Create(tx, t); err != nil {
			return apperr.Database(err)
		}

		// 5. Decrement stock exactly once per accepted transaction.
		if err := s.products.UpdateStock(tx, product.ID, product.StockQuantity-req.Quantity); err != nil {
			return apperr.Database(err)
		}

		// 6. Keep the total_spent rollup in the same unit of work.
		if _, err := s.customers.RecomputeTotal(tx, req.CustomerID); err != nil {
			return apperr.Database(err)
		}

		// 7. Flagged transactions emit exactly one alert carrying the full
		// analysis.
		if analysis.IsSuspicious {
			alert := &model.Alert{
				Type:     model.AlertSuspiciousTransaction,
				Message:  fmt.Sprintf("Transaction %s flagged: %v", t.ID, analysis.Reasons),
				Severity: model.SeverityWarning,
				Metadata: map[string]interface{}{
					"transaction_id": t.ID.String(),
					"customer_id":    t.CustomerID.String(),
					"amount":         amount,
					"analysis":       analysis,
				},
			}
			if err := s.alerts.Create(tx, alert); err != nil {
				return apperr.Database(err)
			}
			raisedAlert = alert
		}

		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("transaction created",
		zap.String("id", created.ID.String()),
		zap.String("customer_id", created.CustomerID.String()),
		zap.Float64("amount", created.TotalAmount()),
		zap.String("status", string(created.Status)),
	)

	if raisedAlert != nil {
		s.hub.BroadcastJSON(map[string]interface{}{
			"type":  "alert",
			"alert": raisedAlert,
		})
	}

	resp := created.ToResponse()
	resp.FraudCheck = analysis
	return &resp, nil
}

func (s *transactionService) GetByID(id uuid.UUID) (*model.Transaction, error) {
	t, err := s.ledger.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Transaction", id)
		}
		return nil, apperr.Database(err)
	}
	return t, nil
}

func (s *transactionService) List(skip, limit int) ([]model.Transaction, int64, error) {
	transactions, total, err := s.ledger.FindAll(skip, limit)
	if err != nil {
		return nil, 0, apperr.Database(err)
	}
	return transactions, total, nil
}

// UpdateStatus transitions a transaction and recomputes the owning customer's
// total in the same unit of work, since COMPLETED and REFUNDED transitions
// change the rollup.
func (s *transactionService) UpdateStatus(id uuid.UUID, status model.TransactionStatus) (*model.Transaction, error) {
	if !model.ValidStatus(status) {
		return nil, apperr.Validation("Unknown status: %s", status)
	}

	var updated *model.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var t model.Transaction
		if err := tx.First(&t, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Transaction", id)
			}
			return apperr.Database(err)
		}

		if err := s.ledger.UpdateStatus(tx, id, status); err != nil {
			return apperr.Database(err)
		}
		t.Status = status

		if _, err := s.customers.RecomputeTotal(tx, t.CustomerID); err != nil {
			return apperr.Database(err)
		}

		updated = &t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("transaction status updated",
		zap.String("id", id.String()),
		zap.String("status", string(status)),
	)
	return updated, nil
}
