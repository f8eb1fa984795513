package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// DateLayout is the wire format of transaction dates.
const DateLayout = "2006-01-02"

// MaxAmount is the largest money value a NUMERIC(12,2) column holds.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// ExceedsMaxAmount reports whether the magnitude of amount is above MaxAmount.
func ExceedsMaxAmount(amount decimal.Decimal) bool {
	return amount.Abs().GreaterThan(MaxAmount)
}

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	CategoryID  *uuid.UUID      `json:"categoryId,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Description *string         `json:"description,omitempty"`
	Date        string          `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ParseDate parses the transaction's calendar date.
func (t *Transaction) ParseDate() (time.Time, error) {
	d, err := time.Parse(DateLayout, t.Date)
	if err != nil {
		return time.Time{}, NewParseError("date", t.Date, err)
	}
	return d, nil
}

// SignedAmount returns the amount with the sign implied by the type.
func (t *Transaction) SignedAmount() (decimal.Decimal, error) {
	if t.Amount.IsNegative() {
		return decimal.Zero, NewParseError("amount", t.Amount.String(), errors.New("amount must be a non-negative magnitude"))
	}
	switch t.Type {
	case TransactionTypeIncome:
		return t.Amount, nil
	case TransactionTypeExpense:
		return t.Amount.Neg(), nil
	default:
		return decimal.Zero, NewParseError("type", string(t.Type), errors.New("unknown transaction type"))
	}
}

// HasCategory reports whether the transaction references a category.
func (t *Transaction) HasCategory() bool {
	return t.CategoryID != nil && *t.CategoryID != uuid.Nil
}

type TransactionRepository interface {
	Create(ctx context.Context, transaction *Transaction) (*Transaction, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Transaction, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*Transaction, error)
	Update(ctx context.Context, transaction *Transaction) (*Transaction, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
