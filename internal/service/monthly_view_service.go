package service

import (
	"context"
	"errors"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/aggregation"
	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MonthlyViewResult is a computed monthly view with the categories it references.
// Unresolved holds the category ids whose lookup failed, with the cause.
type MonthlyViewResult struct {
	View       aggregation.MonthlyView
	Categories aggregation.CategoryIndex
	Unresolved map[uuid.UUID]error
}

// MonthlyViewService builds monthly views from the user's transaction snapshot
type MonthlyViewService struct {
	transactionRepo domain.TransactionRepository
	categoryRepo    domain.CategoryRepository
	concurrency     int
}

// NewMonthlyViewService creates a new MonthlyViewService; concurrency caps category lookups per build
func NewMonthlyViewService(transactionRepo domain.TransactionRepository, categoryRepo domain.CategoryRepository, concurrency int) *MonthlyViewService {
	return &MonthlyViewService{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		concurrency:     concurrency,
	}
}

// Snapshot fetches every transaction of the user
func (s *MonthlyViewService) Snapshot(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error) {
	return s.transactionRepo.GetByUserID(ctx, userID)
}

// Compose runs the month and category filters over snapshot and resolves the
// categories of the filtered transactions. Categories in seed are not looked up again.
// A cancelled ctx yields ctx.Err() and no result.
func (s *MonthlyViewService) Compose(ctx context.Context, userID uuid.UUID, snapshot []*domain.Transaction, month domain.MonthSelector, filter domain.CategoryFilterSet, seed aggregation.CategoryIndex) (*MonthlyViewResult, error) {
	view := aggregation.ComputeMonthlyView(snapshot, month, filter)
	for _, skipped := range view.Skipped {
		log.Warn().Err(skipped).Str("user_id", userID.String()).Str("month", month.String()).Msg("Skipping unparseable transaction")
	}

	lookup := func(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
		return s.categoryRepo.GetByID(ctx, userID, id)
	}
	index, failures, err := aggregation.BuildCategoryIndexWithOptions(ctx, view.Filtered, lookup, aggregation.IndexOptions{
		Concurrency: s.concurrency,
		Seed:        seed,
	})
	if err != nil {
		return nil, err
	}

	for id, failure := range failures {
		event := log.Debug()
		if !errors.Is(failure, domain.ErrNotFound) {
			event = log.Warn()
		}
		event.Err(failure).Str("user_id", userID.String()).Str("category_id", id.String()).Msg("Category lookup failed")
	}

	return &MonthlyViewResult{View: view, Categories: index, Unresolved: failures}, nil
}

// GetMonthlyView fetches a fresh snapshot and composes the view of month under filter
func (s *MonthlyViewService) GetMonthlyView(ctx context.Context, userID uuid.UUID, month domain.MonthSelector, filter domain.CategoryFilterSet) (*MonthlyViewResult, error) {
	snapshot, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Compose(ctx, userID, snapshot, month, filter, nil)
}

// NewSession starts a live view for userID; onUpdate receives every result that is
// not superseded by a newer request
func (s *MonthlyViewService) NewSession(userID uuid.UUID, onUpdate func(*MonthlyViewResult)) *ViewSession {
	return newViewSession(s, userID, onUpdate)
}
