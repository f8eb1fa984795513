package service

import (
	"context"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/aggregation"
	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/dafibh/pocketledger/pocketledger-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BudgetService handles monthly budget business logic
type BudgetService struct {
	budgetRepo      domain.BudgetRepository
	transactionRepo domain.TransactionRepository
	eventPublisher  websocket.EventPublisher
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgetRepo domain.BudgetRepository, transactionRepo domain.TransactionRepository) *BudgetService {
	return &BudgetService{
		budgetRepo:      budgetRepo,
		transactionRepo: transactionRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *BudgetService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *BudgetService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// BudgetInput holds the fields of a create or update request
type BudgetInput struct {
	Month         domain.MonthSelector
	InitialAmount decimal.Decimal
	// UsedAmount defaults to zero on create and is kept on update when nil
	UsedAmount *decimal.Decimal
}

func validateMoney(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return domain.NewValidationError(field, "amount must not be negative")
	}
	if !amount.Equal(amount.Round(2)) {
		return domain.NewValidationError(field, "amount must have at most two decimal places")
	}
	if domain.ExceedsMaxAmount(amount) {
		return domain.NewValidationError(field, "amount must not exceed "+domain.MaxAmount.StringFixed(2))
	}
	return nil
}

func validateBudgetInput(input BudgetInput) error {
	if input.Month.IsZero() {
		return domain.NewValidationError("month", "month is required")
	}
	if err := validateMoney("initialAmount", input.InitialAmount); err != nil {
		return err
	}
	if input.UsedAmount != nil {
		if err := validateMoney("usedAmount", *input.UsedAmount); err != nil {
			return err
		}
	}
	return nil
}

// CreateBudget creates the budget of a month; one budget per month
func (s *BudgetService) CreateBudget(ctx context.Context, userID uuid.UUID, input BudgetInput) (*domain.Budget, error) {
	if err := validateBudgetInput(input); err != nil {
		return nil, err
	}

	used := decimal.Zero
	if input.UsedAmount != nil {
		used = *input.UsedAmount
	}

	created, err := s.budgetRepo.Create(ctx, &domain.Budget{
		UserID:        userID,
		Month:         input.Month,
		InitialAmount: input.InitialAmount,
		UsedAmount:    used,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.BudgetUpdated(created))
	return created, nil
}

// GetBudgets lists the user's budgets, latest month first
func (s *BudgetService) GetBudgets(ctx context.Context, userID uuid.UUID) ([]*domain.Budget, error) {
	return s.budgetRepo.GetByUserID(ctx, userID)
}

// GetBudgetByID retrieves one budget
func (s *BudgetService) GetBudgetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Budget, error) {
	return s.budgetRepo.GetByID(ctx, userID, id)
}

// GetBudgetByMonth retrieves the budget of a month
func (s *BudgetService) GetBudgetByMonth(ctx context.Context, userID uuid.UUID, month domain.MonthSelector) (*domain.Budget, error) {
	return s.budgetRepo.GetByMonth(ctx, userID, month)
}

// UpdateBudget changes month and amounts
func (s *BudgetService) UpdateBudget(ctx context.Context, userID, id uuid.UUID, input BudgetInput) (*domain.Budget, error) {
	if err := validateBudgetInput(input); err != nil {
		return nil, err
	}

	existing, err := s.budgetRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	used := existing.UsedAmount
	if input.UsedAmount != nil {
		used = *input.UsedAmount
	}

	updated, err := s.budgetRepo.Update(ctx, &domain.Budget{
		ID:            existing.ID,
		UserID:        userID,
		Month:         input.Month,
		InitialAmount: input.InitialAmount,
		UsedAmount:    used,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.BudgetUpdated(updated))
	return updated, nil
}

// DeleteBudget removes a budget
func (s *BudgetService) DeleteBudget(ctx context.Context, userID, id uuid.UUID) error {
	return s.budgetRepo.Delete(ctx, userID, id)
}

// Recalculate sets the used amount to the expense total of the budget's month
func (s *BudgetService) Recalculate(ctx context.Context, userID, id uuid.UUID) (*domain.Budget, error) {
	budget, err := s.budgetRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	transactions, err := s.transactionRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := aggregation.ComputeMonthlyView(transactions, budget.Month, domain.NewCategoryFilterSet())
	for _, skipped := range view.Skipped {
		log.Warn().Err(skipped).Str("user_id", userID.String()).Msg("Skipping unparseable transaction")
	}

	next := *budget
	next.UsedAmount = view.Expense.Round(2)
	if err := validateMoney("usedAmount", next.UsedAmount); err != nil {
		return nil, err
	}
	updated, err := s.budgetRepo.Update(ctx, &next)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.BudgetUpdated(updated))
	return updated, nil
}
