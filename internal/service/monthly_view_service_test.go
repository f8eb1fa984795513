package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/dafibh/pocketledger/pocketledger-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type viewFixture struct {
	svc          *MonthlyViewService
	transactions *testutil.MockTransactionRepository
	categories   *testutil.MockCategoryRepository
	userID       uuid.UUID
	groceries    *domain.Category
	salary       *domain.Category
}

// newViewFixture seeds the March 2024 example: expense 40 (groceries),
// income 100 (salary), and an April expense 15 (groceries)
func newViewFixture() *viewFixture {
	transactions := testutil.NewMockTransactionRepository()
	categories := testutil.NewMockCategoryRepository()
	userID := uuid.New()

	groceries := &domain.Category{ID: uuid.New(), UserID: userID, Name: "Groceries", Type: domain.TransactionTypeExpense}
	salary := &domain.Category{ID: uuid.New(), UserID: userID, Name: "Salary", Type: domain.TransactionTypeIncome}
	categories.AddCategory(groceries)
	categories.AddCategory(salary)

	f := &viewFixture{
		svc:          NewMonthlyViewService(transactions, categories, 4),
		transactions: transactions,
		categories:   categories,
		userID:       userID,
		groceries:    groceries,
		salary:       salary,
	}
	f.add("2024-03-05", domain.TransactionTypeExpense, "40", groceries.ID)
	f.add("2024-03-20", domain.TransactionTypeIncome, "100", salary.ID)
	f.add("2024-04-01", domain.TransactionTypeExpense, "15", groceries.ID)
	return f
}

func (f *viewFixture) add(date string, txType domain.TransactionType, amount string, categoryID uuid.UUID) {
	id := categoryID
	f.transactions.AddTransaction(&domain.Transaction{
		UserID:     f.userID,
		CategoryID: &id,
		Amount:     decimal.RequireFromString(amount),
		Type:       txType,
		Date:       date,
	})
}

func TestGetMonthlyView(t *testing.T) {
	f := newViewFixture()

	result, err := f.svc.GetMonthlyView(context.Background(), f.userID, march2024, domain.NewCategoryFilterSet())
	require.NoError(t, err)
	assert.Len(t, result.View.Filtered, 2)
	assert.Equal(t, "60.00", result.View.Total.StringFixed(2))
	assert.Len(t, result.Categories, 2)
	assert.Empty(t, result.Unresolved)

	result, err = f.svc.GetMonthlyView(context.Background(), f.userID, march2024, domain.NewCategoryFilterSet(f.groceries.ID))
	require.NoError(t, err)
	require.Len(t, result.View.Filtered, 1)
	assert.Equal(t, "-40.00", result.View.Total.StringFixed(2))
	assert.Len(t, result.Categories, 1)
	assert.Equal(t, "Groceries", result.Categories[f.groceries.ID].Name)
}

func TestGetMonthlyView_UnresolvedCategories(t *testing.T) {
	f := newViewFixture()
	f.categories.Failures[f.salary.ID] = domain.NewStoreError("get category", errors.New("timeout"))
	deleted := uuid.New()
	f.add("2024-03-25", domain.TransactionTypeExpense, "5", deleted)

	result, err := f.svc.GetMonthlyView(context.Background(), f.userID, march2024, domain.NewCategoryFilterSet())
	require.NoError(t, err)

	assert.Equal(t, "55.00", result.View.Total.StringFixed(2))
	assert.Contains(t, result.Categories, f.groceries.ID)
	require.Len(t, result.Unresolved, 2)
	assert.ErrorIs(t, result.Unresolved[f.salary.ID], domain.ErrStore)
	assert.ErrorIs(t, result.Unresolved[deleted], domain.ErrNotFound)
}

func TestGetMonthlyView_StoreErrorSurfaces(t *testing.T) {
	f := newViewFixture()
	f.transactions.ListErr = domain.NewStoreError("list transactions", errors.New("connection reset"))

	_, err := f.svc.GetMonthlyView(context.Background(), f.userID, march2024, domain.NewCategoryFilterSet())
	assert.ErrorIs(t, err, domain.ErrStore)
}

func TestGetMonthlyView_OtherUsersCategoriesDoNotResolve(t *testing.T) {
	f := newViewFixture()
	foreign := &domain.Category{ID: uuid.New(), UserID: uuid.New(), Name: "Not mine"}
	f.categories.AddCategory(foreign)
	f.add("2024-03-07", domain.TransactionTypeExpense, "1", foreign.ID)

	result, err := f.svc.GetMonthlyView(context.Background(), f.userID, march2024, domain.NewCategoryFilterSet())
	require.NoError(t, err)
	assert.NotContains(t, result.Categories, foreign.ID)
	assert.ErrorIs(t, result.Unresolved[foreign.ID], domain.ErrCategoryNotFound)
}

func TestCompose_SeedSkipsLookups(t *testing.T) {
	f := newViewFixture()
	snapshot, err := f.svc.Snapshot(context.Background(), f.userID)
	require.NoError(t, err)

	first, err := f.svc.Compose(context.Background(), f.userID, snapshot, march2024, domain.NewCategoryFilterSet(), nil)
	require.NoError(t, err)
	_, err = f.svc.Compose(context.Background(), f.userID, snapshot, march2024, domain.NewCategoryFilterSet(), first.Categories)
	require.NoError(t, err)

	assert.Equal(t, 1, f.categories.Calls(f.groceries.ID))
	assert.Equal(t, 1, f.categories.Calls(f.salary.ID))
}

func TestCompose_Cancelled(t *testing.T) {
	f := newViewFixture()
	snapshot, err := f.svc.Snapshot(context.Background(), f.userID)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.svc.Compose(ctx, f.userID, snapshot, march2024, domain.NewCategoryFilterSet(), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}
