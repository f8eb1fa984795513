package service

import (
	"context"
	"errors"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/aggregation"
	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/dafibh/pocketledger/pocketledger-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// MonthlyReportService handles monthly report business logic
type MonthlyReportService struct {
	reportRepo      domain.MonthlyReportRepository
	transactionRepo domain.TransactionRepository
	eventPublisher  websocket.EventPublisher
}

// NewMonthlyReportService creates a new MonthlyReportService
func NewMonthlyReportService(reportRepo domain.MonthlyReportRepository, transactionRepo domain.TransactionRepository) *MonthlyReportService {
	return &MonthlyReportService{
		reportRepo:      reportRepo,
		transactionRepo: transactionRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *MonthlyReportService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *MonthlyReportService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// MonthlyReportInput holds the fields of a create or update request
type MonthlyReportInput struct {
	Month        domain.MonthSelector
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
}

func validateReportInput(input MonthlyReportInput) error {
	if input.Month.IsZero() {
		return domain.NewValidationError("month", "month is required")
	}
	return validateReportTotals(input.TotalIncome, input.TotalExpense)
}

func validateReportTotals(income, expense decimal.Decimal) error {
	if err := validateMoney("totalIncome", income); err != nil {
		return err
	}
	return validateMoney("totalExpense", expense)
}

// CreateReport stores a report for a month; one report per month
func (s *MonthlyReportService) CreateReport(ctx context.Context, userID uuid.UUID, input MonthlyReportInput) (*domain.MonthlyReport, error) {
	if err := validateReportInput(input); err != nil {
		return nil, err
	}

	created, err := s.reportRepo.Create(ctx, &domain.MonthlyReport{
		UserID:       userID,
		Month:        input.Month,
		TotalIncome:  input.TotalIncome,
		TotalExpense: input.TotalExpense,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.MonthlyReportUpdated(created))
	return created, nil
}

// GetReports lists the user's reports, latest month first
func (s *MonthlyReportService) GetReports(ctx context.Context, userID uuid.UUID) ([]*domain.MonthlyReport, error) {
	return s.reportRepo.GetByUserID(ctx, userID)
}

// GetReportByID retrieves one report
func (s *MonthlyReportService) GetReportByID(ctx context.Context, userID, id uuid.UUID) (*domain.MonthlyReport, error) {
	return s.reportRepo.GetByID(ctx, userID, id)
}

// UpdateReport replaces a report's month and totals
func (s *MonthlyReportService) UpdateReport(ctx context.Context, userID, id uuid.UUID, input MonthlyReportInput) (*domain.MonthlyReport, error) {
	if err := validateReportInput(input); err != nil {
		return nil, err
	}

	existing, err := s.reportRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.reportRepo.Update(ctx, &domain.MonthlyReport{
		ID:           existing.ID,
		UserID:       userID,
		Month:        input.Month,
		TotalIncome:  input.TotalIncome,
		TotalExpense: input.TotalExpense,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.MonthlyReportUpdated(updated))
	return updated, nil
}

// DeleteReport removes a report
func (s *MonthlyReportService) DeleteReport(ctx context.Context, userID, id uuid.UUID) error {
	return s.reportRepo.Delete(ctx, userID, id)
}

// GenerateReport computes the month's totals from the user's transactions and
// creates or refreshes the stored report
func (s *MonthlyReportService) GenerateReport(ctx context.Context, userID uuid.UUID, month domain.MonthSelector) (*domain.MonthlyReport, error) {
	if month.IsZero() {
		return nil, domain.NewValidationError("month", "month is required")
	}

	transactions, err := s.transactionRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := aggregation.ComputeMonthlyView(transactions, month, domain.NewCategoryFilterSet())
	for _, skipped := range view.Skipped {
		log.Warn().Err(skipped).Str("user_id", userID.String()).Str("month", month.String()).Msg("Skipping unparseable transaction")
	}

	report := &domain.MonthlyReport{
		UserID:       userID,
		Month:        month,
		TotalIncome:  view.Income.Round(2),
		TotalExpense: view.Expense.Round(2),
	}
	if err := validateReportTotals(report.TotalIncome, report.TotalExpense); err != nil {
		return nil, err
	}

	existing, err := s.reportRepo.GetByMonth(ctx, userID, month)
	switch {
	case err == nil:
		report.ID = existing.ID
		report, err = s.reportRepo.Update(ctx, report)
	case errors.Is(err, domain.ErrReportNotFound):
		report, err = s.reportRepo.Create(ctx, report)
	}
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.MonthlyReportUpdated(report))
	return report, nil
}
