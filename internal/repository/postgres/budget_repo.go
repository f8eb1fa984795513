package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const budgetColumns = `id, user_id, month, initial_amount, used_amount, created_at, updated_at`

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

// Create inserts a budget; one per user and month
func (r *BudgetRepository) Create(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	initial, err := decimalToPgNumeric(budget.InitialAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid initial amount: %w", err)
	}
	used, err := decimalToPgNumeric(budget.UsedAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid used amount: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO budgets (user_id, month, initial_amount, used_amount)
		VALUES ($1, $2, $3, $4)
		RETURNING `+budgetColumns,
		uuidToPg(budget.UserID), budget.Month.String(), initial, used)
	created, err := scanBudget(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrBudgetAlreadyExists
		}
		return nil, domain.NewStoreError("create budget", err)
	}
	return created, nil
}

// GetByID retrieves a budget owned by userID
func (r *BudgetRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Budget, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = $1 AND user_id = $2`,
		uuidToPg(id), uuidToPg(userID))
	return r.one(row, "get budget")
}

// GetByMonth retrieves the budget of a month
func (r *BudgetRepository) GetByMonth(ctx context.Context, userID uuid.UUID, month domain.MonthSelector) (*domain.Budget, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 AND month = $2`,
		uuidToPg(userID), month.String())
	return r.one(row, "get budget by month")
}

// GetByUserID lists budgets, latest month first
func (r *BudgetRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Budget, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 ORDER BY month DESC`,
		uuidToPg(userID))
	if err != nil {
		return nil, domain.NewStoreError("list budgets", err)
	}
	budgets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Budget, error) {
		return scanBudget(row)
	})
	if err != nil {
		return nil, domain.NewStoreError("list budgets", err)
	}
	return budgets, nil
}

// Update replaces month and amounts
func (r *BudgetRepository) Update(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	initial, err := decimalToPgNumeric(budget.InitialAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid initial amount: %w", err)
	}
	used, err := decimalToPgNumeric(budget.UsedAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid used amount: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE budgets SET month = $3, initial_amount = $4, used_amount = $5, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING `+budgetColumns,
		uuidToPg(budget.ID), uuidToPg(budget.UserID), budget.Month.String(), initial, used)
	updated, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		if isPgUniqueViolation(err) {
			return nil, domain.ErrBudgetAlreadyExists
		}
		return nil, domain.NewStoreError("update budget", err)
	}
	return updated, nil
}

// Delete removes a budget
func (r *BudgetRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, uuidToPg(id), uuidToPg(userID))
	if err != nil {
		return domain.NewStoreError("delete budget", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}

func (r *BudgetRepository) one(row pgx.Row, op string) (*domain.Budget, error) {
	budget, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, domain.NewStoreError(op, err)
	}
	return budget, nil
}

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var (
		id, userID           pgtype.UUID
		month                string
		initial, used        pgtype.Numeric
		createdAt, updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &userID, &month, &initial, &used, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	selector, err := domain.ParseMonthSelector(month)
	if err != nil {
		return nil, err
	}
	return &domain.Budget{
		ID:            pgToUUID(id),
		UserID:        pgToUUID(userID),
		Month:         selector,
		InitialAmount: pgNumericToDecimal(initial),
		UsedAmount:    pgNumericToDecimal(used),
		CreatedAt:     createdAt.Time,
		UpdatedAt:     updatedAt.Time,
	}, nil
}
