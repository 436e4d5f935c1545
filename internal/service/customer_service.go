package service

import (
	"errors"
	"time"

	"go-techmart-analytics/internal/model"
	"go-techmart-analytics/internal/repository"
	"go-techmart-analytics/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerSummary struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	RegistrationDate string    `json:"registration_date"`
	TotalSpent       float64   `json:"total_spent"`
	RiskScore        float64   `json:"risk_score"`
	Region           string    `json:"region"`
}

type CustomerPage struct {
	Items   []CustomerSummary `json:"items"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	Pages   int               `json:"pages"`
	HasMore bool              `json:"has_more"`
}

type CustomerDetail struct {
	CustomerSummary
	RecentTransactions []RecentTransaction `json:"recent_transactions"`
}

type RecentTransaction struct {
	ID        uuid.UUID               `json:"id"`
	Amount    float64                 `json:"amount"`
	Timestamp string                  `json:"timestamp"`
	Status    model.TransactionStatus `json:"status"`
}

type CustomerService interface {
	List(search string, skip, limit int) (*CustomerPage, error)
	Get(id uuid.UUID) (*CustomerDetail, error)
}

type customerService struct {
	customers repository.CustomerRepository
	ledger    repository.LedgerRepository
}

func NewCustomerService(customers repository.CustomerRepository, ledger repository.LedgerRepository) CustomerService {
	return &customerService{customers: customers, ledger: ledger}
}

func summarize(c *model.Customer) CustomerSummary {
	return CustomerSummary{
		ID:               c.ID,
		Email:            c.Email,
		RegistrationDate: c.RegistrationDate.UTC().Format(time.RFC3339),
		TotalSpent:       c.TotalSpent,
		RiskScore:        c.RiskScore,
		Region:           c.Region,
	}
}

func (s *customerService) List(search string, skip, limit int) (*CustomerPage, error) {
	if skip < 0 {
		return nil, apperr.Validation("skip must not be negative")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	customers, total, err := s.customers.Search(search, skip, limit)
	if err != nil {
		return nil, apperr.Database(err)
	}

	items := make([]CustomerSummary, 0, len(customers))
	for i := range customers {
		items = append(items, summarize(&customers[i]))
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	return &CustomerPage{
		Items:   items,
		Total:   total,
		Page:    skip/limit + 1,
		Pages:   pages,
		HasMore: int64(skip+limit) < total,
	}, nil
}

func (s *customerService) Get(id uuid.UUID) (*CustomerDetail, error) {
	customer, err := s.customers.FindByID(nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Customer", id)
		}
		return nil, apperr.Database(err)
	}

	recent, err := s.ledger.RecentByCustomer(id, 5)
	if err != nil {
		return nil, apperr.Database(err)
	}

	detail := &CustomerDetail{
		CustomerSummary:    summarize(customer),
		RecentTransactions: []RecentTransaction{},
	}
	for _, t := range recent {
		detail.RecentTransactions = append(detail.RecentTransactions, RecentTransaction{
			ID:        t.ID,
			Amount:    t.TotalAmount(),
			Timestamp: t.Timestamp.UTC().Format(time.RFC3339),
			Status:    t.Status,
		})
	}
	return detail, nil
}
