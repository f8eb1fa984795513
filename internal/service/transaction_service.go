package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/aggregation"
	"github.com/dafibh/pocketledger/pocketledger-backend/internal/calculator"
	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/dafibh/pocketledger/pocketledger-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionService handles transaction-related business logic
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	categoryRepo    domain.CategoryRepository
	eventPublisher  websocket.EventPublisher
	now             func() time.Time
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionRepository, categoryRepo domain.CategoryRepository) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		now:             time.Now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *TransactionService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *TransactionService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// TransactionInput holds the input for creating or updating a transaction.
// Exactly one of Amount and Expression is used; Amount wins when both are set.
type TransactionInput struct {
	CategoryID  *uuid.UUID
	Amount      *decimal.Decimal
	Expression  *string
	Type        domain.TransactionType
	Description *string
	Date        *string
}

// resolveAmount returns the positive two-place amount of the input
func resolveAmount(input TransactionInput) (decimal.Decimal, error) {
	if input.Amount != nil {
		amount := *input.Amount
		if !amount.IsPositive() {
			return decimal.Zero, domain.NewValidationError("amount", "amount must be greater than zero")
		}
		if !amount.Equal(amount.Round(2)) {
			return decimal.Zero, domain.NewValidationError("amount", "amount must have at most two decimal places")
		}
		if domain.ExceedsMaxAmount(amount) {
			return decimal.Zero, domain.NewValidationError("amount", "amount must not exceed "+domain.MaxAmount.StringFixed(2))
		}
		return amount, nil
	}
	if input.Expression != nil && strings.TrimSpace(*input.Expression) != "" {
		return calculator.EvaluateAmount(*input.Expression)
	}
	return decimal.Zero, domain.NewValidationError("amount", "amount is required")
}

// validateInput checks the submission before anything reaches the store
func (s *TransactionService) validateInput(ctx context.Context, userID uuid.UUID, input TransactionInput) (*domain.Transaction, error) {
	if input.CategoryID == nil || *input.CategoryID == uuid.Nil {
		return nil, domain.NewValidationError("categoryId", "category is required")
	}

	amount, err := resolveAmount(input)
	if err != nil {
		return nil, err
	}

	if !input.Type.Valid() {
		return nil, domain.NewValidationError("type", "type must be income or expense")
	}

	date := s.now().Format(domain.DateLayout)
	if input.Date != nil && strings.TrimSpace(*input.Date) != "" {
		date = strings.TrimSpace(*input.Date)
		if _, err := time.Parse(domain.DateLayout, date); err != nil {
			return nil, domain.NewValidationError("date", "date must be YYYY-MM-DD")
		}
	}

	var description *string
	if input.Description != nil {
		trimmed := strings.TrimSpace(*input.Description)
		if trimmed != "" {
			if utf8.RuneCountInString(trimmed) > domain.MaxDescriptionLength {
				return nil, domain.NewValidationError("description", "description is too long")
			}
			description = &trimmed
		}
	}

	if _, err := s.categoryRepo.GetByID(ctx, userID, *input.CategoryID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewValidationError("categoryId", "category does not exist")
		}
		return nil, err
	}

	categoryID := *input.CategoryID
	return &domain.Transaction{
		UserID:      userID,
		CategoryID:  &categoryID,
		Amount:      amount,
		Type:        input.Type,
		Description: description,
		Date:        date,
	}, nil
}

// CreateTransaction creates a new transaction with validation
func (s *TransactionService) CreateTransaction(ctx context.Context, userID uuid.UUID, input TransactionInput) (*domain.Transaction, error) {
	transaction, err := s.validateInput(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	created, err := s.transactionRepo.Create(ctx, transaction)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.TransactionCreated(created))
	return created, nil
}

// GetTransactions lists the user's transactions, restricted to month when given
func (s *TransactionService) GetTransactions(ctx context.Context, userID uuid.UUID, month *domain.MonthSelector) ([]*domain.Transaction, error) {
	transactions, err := s.transactionRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if month == nil {
		return transactions, nil
	}
	return aggregation.FilterByMonth(transactions, *month), nil
}

// GetTransactionByID retrieves one of the user's transactions
func (s *TransactionService) GetTransactionByID(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(ctx, userID, id)
}

// UpdateTransaction replaces an existing transaction with validation
func (s *TransactionService) UpdateTransaction(ctx context.Context, userID, id uuid.UUID, input TransactionInput) (*domain.Transaction, error) {
	transaction, err := s.validateInput(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	existing, err := s.transactionRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	transaction.ID = existing.ID
	if input.Date == nil || strings.TrimSpace(*input.Date) == "" {
		transaction.Date = existing.Date
	}

	updated, err := s.transactionRepo.Update(ctx, transaction)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.TransactionUpdated(updated))
	return updated, nil
}

// DeleteTransaction removes a transaction
func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.transactionRepo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.publishEvent(userID, websocket.TransactionDeleted(map[string]interface{}{"id": id}))
	return nil
}
