package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MonthlyReport stores the income and expense totals of a closed month.
type MonthlyReport struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"userId"`
	Month        MonthSelector   `json:"month"`
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Net returns income minus expense.
func (r *MonthlyReport) Net() decimal.Decimal {
	return r.TotalIncome.Sub(r.TotalExpense)
}

type MonthlyReportRepository interface {
	Create(ctx context.Context, report *MonthlyReport) (*MonthlyReport, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*MonthlyReport, error)
	GetByMonth(ctx context.Context, userID uuid.UUID, month MonthSelector) (*MonthlyReport, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*MonthlyReport, error)
	Update(ctx context.Context, report *MonthlyReport) (*MonthlyReport, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
