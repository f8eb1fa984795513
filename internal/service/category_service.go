package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/dafibh/pocketledger/pocketledger-backend/internal/websocket"
	"github.com/google/uuid"
)

// CategoryService handles category business logic
type CategoryService struct {
	categoryRepo   domain.CategoryRepository
	eventPublisher websocket.EventPublisher
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *CategoryService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *CategoryService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// CategoryInput holds the fields of a create or update request
type CategoryInput struct {
	Name string
	Type domain.CategoryType
	Icon *string
}

func validateCategoryInput(input CategoryInput) (string, *string, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return "", nil, domain.NewValidationError("name", "name is required")
	}
	if utf8.RuneCountInString(name) > domain.MaxCategoryNameLength {
		return "", nil, domain.NewValidationError("name", "name is too long")
	}
	if !input.Type.Valid() {
		return "", nil, domain.NewValidationError("type", "type must be income or expense")
	}

	var icon *string
	if input.Icon != nil {
		trimmed := strings.TrimSpace(*input.Icon)
		if trimmed != "" {
			if utf8.RuneCountInString(trimmed) > domain.MaxIconGlyphLength {
				return "", nil, domain.NewValidationError("icon", "icon is too long")
			}
			icon = &trimmed
		}
	}
	return name, icon, nil
}

// CreateCategory creates a new category for the user
func (s *CategoryService) CreateCategory(ctx context.Context, userID uuid.UUID, input CategoryInput) (*domain.Category, error) {
	name, icon, err := validateCategoryInput(input)
	if err != nil {
		return nil, err
	}

	created, err := s.categoryRepo.Create(ctx, &domain.Category{
		UserID: userID,
		Name:   name,
		Type:   input.Type,
		Icon:   icon,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.CategoryCreated(created))
	return created, nil
}

// GetCategories lists the user's categories
func (s *CategoryService) GetCategories(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error) {
	return s.categoryRepo.GetByUserID(ctx, userID)
}

// GetCategoryByID retrieves one of the user's categories
func (s *CategoryService) GetCategoryByID(ctx context.Context, userID, id uuid.UUID) (*domain.Category, error) {
	return s.categoryRepo.GetByID(ctx, userID, id)
}

// UpdateCategory replaces name, type and icon glyph; the uploaded icon is kept
func (s *CategoryService) UpdateCategory(ctx context.Context, userID, id uuid.UUID, input CategoryInput) (*domain.Category, error) {
	name, icon, err := validateCategoryInput(input)
	if err != nil {
		return nil, err
	}

	existing, err := s.categoryRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.categoryRepo.Update(ctx, &domain.Category{
		ID:       existing.ID,
		UserID:   userID,
		Name:     name,
		Type:     input.Type,
		Icon:     icon,
		IconPath: existing.IconPath,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.CategoryUpdated(updated))
	return updated, nil
}

// DeleteCategory removes a category; its transactions become uncategorized
func (s *CategoryService) DeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.publishEvent(userID, websocket.CategoryDeleted(map[string]interface{}{"id": id}))
	return nil
}
