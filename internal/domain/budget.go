package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Budget is a spending allowance for one month.
type Budget struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"userId"`
	Month         MonthSelector   `json:"month"`
	InitialAmount decimal.Decimal `json:"initialAmount"`
	UsedAmount    decimal.Decimal `json:"usedAmount"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Remaining returns what is left of the budget; negative when overspent.
func (b *Budget) Remaining() decimal.Decimal {
	return b.InitialAmount.Sub(b.UsedAmount)
}

type BudgetRepository interface {
	Create(ctx context.Context, budget *Budget) (*Budget, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Budget, error)
	GetByMonth(ctx context.Context, userID uuid.UUID, month MonthSelector) (*Budget, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*Budget, error)
	Update(ctx context.Context, budget *Budget) (*Budget, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
