package service

import (
	"fmt"
	"testing"
	"time"

	"go-techmart-analytics/internal/model"
	"go-techmart-analytics/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCustomerSvc(env *testEnv) CustomerService {
	return NewCustomerService(env.customers, env.ledger)
}

func TestCustomerListPagination(t *testing.T) {
	env := newTestEnv(t)
	svc := newCustomerSvc(env)

	for i := 0; i < 7; i++ {
		seedCustomer(t, env.db, fmt.Sprintf("user%d@example.com", i), "north")
	}

	page, err := svc.List("", 0, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), page.Total)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 3, page.Pages)
	assert.True(t, page.HasMore)

	page, err = svc.List("", 6, 3)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 3, page.Page)
	assert.False(t, page.HasMore)

	_, err = svc.List("", -1, 10)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestCustomerListSearch(t *testing.T) {
	env := newTestEnv(t)
	svc := newCustomerSvc(env)

	seedCustomer(t, env.db, "alice@example.com", "north")
	seedCustomer(t, env.db, "bob@example.com", "south")

	page, err := svc.List("alice", 0, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "alice@example.com", page.Items[0].Email)
}

func TestCustomerDetail(t *testing.T) {
	env := newTestEnv(t)
	svc := newCustomerSvc(env)

	customer := seedCustomer(t, env.db, "alice@example.com", "north")
	product := seedProduct(t, env.db, "Widget", "gadgets", 10, 100)

	anchor := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		seedTransaction(t, env.db, customer, product, 1, 10, model.StatusCompleted,
			anchor.Add(-time.Duration(i)*time.Hour))
	}

	detail, err := svc.Get(customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", detail.Email)

	// Only the five most recent transactions, newest first.
	require.Len(t, detail.RecentTransactions, 5)
	assert.Equal(t, anchor.Format(time.RFC3339), detail.RecentTransactions[0].Timestamp)
	assert.Equal(t, 10.0, detail.RecentTransactions[0].Amount)
}

func TestCustomerDetailNotFound(t *testing.T) {
	env := newTestEnv(t)
	svc := newCustomerSvc(env)

	_, err := svc.Get(uuid.New())
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
