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

const reportColumns = `id, user_id, month, total_income, total_expense, created_at, updated_at`

// MonthlyReportRepository implements domain.MonthlyReportRepository using PostgreSQL
type MonthlyReportRepository struct {
	pool *pgxpool.Pool
}

// NewMonthlyReportRepository creates a new MonthlyReportRepository
func NewMonthlyReportRepository(pool *pgxpool.Pool) *MonthlyReportRepository {
	return &MonthlyReportRepository{pool: pool}
}

// Create inserts a report; one per user and month
func (r *MonthlyReportRepository) Create(ctx context.Context, report *domain.MonthlyReport) (*domain.MonthlyReport, error) {
	income, expense, err := reportAmounts(report)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO monthly_reports (user_id, month, total_income, total_expense)
		VALUES ($1, $2, $3, $4)
		RETURNING `+reportColumns,
		uuidToPg(report.UserID), report.Month.String(), income, expense)
	created, err := scanReport(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrReportAlreadyExists
		}
		return nil, domain.NewStoreError("create monthly report", err)
	}
	return created, nil
}

// GetByID retrieves a report owned by userID
func (r *MonthlyReportRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.MonthlyReport, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM monthly_reports WHERE id = $1 AND user_id = $2`,
		uuidToPg(id), uuidToPg(userID))
	return r.one(row, "get monthly report")
}

// GetByMonth retrieves the report of a month
func (r *MonthlyReportRepository) GetByMonth(ctx context.Context, userID uuid.UUID, month domain.MonthSelector) (*domain.MonthlyReport, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM monthly_reports WHERE user_id = $1 AND month = $2`,
		uuidToPg(userID), month.String())
	return r.one(row, "get monthly report by month")
}

// GetByUserID lists reports, latest month first
func (r *MonthlyReportRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.MonthlyReport, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+reportColumns+` FROM monthly_reports WHERE user_id = $1 ORDER BY month DESC`,
		uuidToPg(userID))
	if err != nil {
		return nil, domain.NewStoreError("list monthly reports", err)
	}
	reports, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.MonthlyReport, error) {
		return scanReport(row)
	})
	if err != nil {
		return nil, domain.NewStoreError("list monthly reports", err)
	}
	return reports, nil
}

// Update replaces month and totals
func (r *MonthlyReportRepository) Update(ctx context.Context, report *domain.MonthlyReport) (*domain.MonthlyReport, error) {
	income, expense, err := reportAmounts(report)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE monthly_reports SET month = $3, total_income = $4, total_expense = $5, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING `+reportColumns,
		uuidToPg(report.ID), uuidToPg(report.UserID), report.Month.String(), income, expense)
	updated, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReportNotFound
		}
		if isPgUniqueViolation(err) {
			return nil, domain.ErrReportAlreadyExists
		}
		return nil, domain.NewStoreError("update monthly report", err)
	}
	return updated, nil
}

// Delete removes a report
func (r *MonthlyReportRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM monthly_reports WHERE id = $1 AND user_id = $2`, uuidToPg(id), uuidToPg(userID))
	if err != nil {
		return domain.NewStoreError("delete monthly report", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}

func (r *MonthlyReportRepository) one(row pgx.Row, op string) (*domain.MonthlyReport, error) {
	report, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReportNotFound
		}
		return nil, domain.NewStoreError(op, err)
	}
	return report, nil
}

func reportAmounts(report *domain.MonthlyReport) (pgtype.Numeric, pgtype.Numeric, error) {
	income, err := decimalToPgNumeric(report.TotalIncome)
	if err != nil {
		return pgtype.Numeric{}, pgtype.Numeric{}, fmt.Errorf("invalid total income: %w", err)
	}
	expense, err := decimalToPgNumeric(report.TotalExpense)
	if err != nil {
		return pgtype.Numeric{}, pgtype.Numeric{}, fmt.Errorf("invalid total expense: %w", err)
	}
	return income, expense, nil
}

func scanReport(row pgx.Row) (*domain.MonthlyReport, error) {
	var (
		id, userID           pgtype.UUID
		month                string
		income, expense      pgtype.Numeric
		createdAt, updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &userID, &month, &income, &expense, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	selector, err := domain.ParseMonthSelector(month)
	if err != nil {
		return nil, err
	}
	return &domain.MonthlyReport{
		ID:           pgToUUID(id),
		UserID:       pgToUUID(userID),
		Month:        selector,
		TotalIncome:  pgNumericToDecimal(income),
		TotalExpense: pgNumericToDecimal(expense),
		CreatedAt:    createdAt.Time,
		UpdatedAt:    updatedAt.Time,
	}, nil
}
