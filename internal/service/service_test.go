package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"go-techmart-analytics/internal/config"
	"go-techmart-analytics/internal/model"
	"go-techmart-analytics/internal/repository"
	"go-techmart-analytics/internal/ws"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Named shared-cache databases keep one in-memory store per test while
	// GORM's connection pool stays free to open extra connections.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Supplier{},
		&model.Product{},
		&model.Customer{},
		&model.Transaction{},
		&model.Alert{},
	))
	return db
}

type testEnv struct {
	db           *gorm.DB
	ledger       repository.LedgerRepository
	customers    repository.CustomerRepository
	products     repository.ProductRepository
	alertRepo    repository.AlertRepository
	fraud        FraudService
	analytics    AnalyticsService
	transactions TransactionService
	alerts       AlertService
}

func defaultFraudConfig() config.FraudConfig {
	return config.FraudConfig{
		VelocityWindowMinutes:    60,
		MaxTransactionsPerWindow: 5,
		AmountStdDevThreshold:    2.0,
		MinCustomerTransactions:  3,
	}
}

func defaultAnalyticsConfig() config.AnalyticsConfig {
	return config.AnalyticsConfig{
		LowStockThreshold:    10,
		SuspiciousMultiplier: 3.0,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	log := zap.NewNop()
	hub := ws.NewHub()
	go hub.Run()

	ledger := repository.NewLedgerRepo(db)
	customers := repository.NewCustomerRepo(db)
	products := repository.NewProductRepo(db)
	alertRepo := repository.NewAlertRepo(db)

	fraud := NewFraudService(ledger, defaultFraudConfig(), log)
	analytics := NewAnalyticsService(ledger, customers, products, defaultAnalyticsConfig(), log)
	transactions := NewTransactionService(db, ledger, customers, products, alertRepo, fraud, hub, log)
	alerts := NewAlertService(alertRepo, analytics, defaultAnalyticsConfig().LowStockThreshold, hub, log)

	return &testEnv{
		db:           db,
		ledger:       ledger,
		customers:    customers,
		products:     products,
		alertRepo:    alertRepo,
		fraud:        fraud,
		analytics:    analytics,
		transactions: transactions,
		alerts:       alerts,
	}
}

func seedCustomer(t *testing.T, db *gorm.DB, email, region string) *model.Customer {
	t.Helper()
	c := &model.Customer{
		Email:            email,
		RegistrationDate: time.Now().UTC().AddDate(0, -6, 0),
		Region:           region,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func seedProduct(t *testing.T, db *gorm.DB, name, category string, price float64, stock int) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:          name,
		Category:      category,
		Price:         price,
		StockQuantity: stock,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// seedTransaction inserts a ledger row directly, bypassing the creation unit
// of work, so tests can shape history freely.
func seedTransaction(t *testing.T, db *gorm.DB, c *model.Customer, p *model.Product, quantity int, price float64, status model.TransactionStatus, ts time.Time) *model.Transaction {
	t.Helper()
	tx := &model.Transaction{
		CustomerID:    c.ID,
		ProductID:     p.ID,
		Quantity:      quantity,
		Price:         price,
		PaymentMethod: model.PayCreditCard,
		Status:        status,
		Timestamp:     ts.UTC(),
	}
	require.NoError(t, db.Create(tx).Error)
	return tx
}
