package service

import (
	"context"
	"strings"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Supported profile preferences
var (
	SupportedLanguages = map[string]bool{"en": true, "id": true}
	SupportedThemes    = map[string]bool{"light": true, "dark": true, "system": true}
)

// ProfileService handles profile-related business logic
type ProfileService struct {
	userRepo domain.UserRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(userRepo domain.UserRepository) *ProfileService {
	return &ProfileService{userRepo: userRepo}
}

// GetProfile retrieves a user's profile
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdatePreferencesInput holds the preferences to change; nil keeps the current value
type UpdatePreferencesInput struct {
	Language *string
	Theme    *string
}

// UpdatePreferences changes language and theme
func (s *ProfileService) UpdatePreferences(ctx context.Context, userID uuid.UUID, input UpdatePreferencesInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	language := user.Language
	if input.Language != nil {
		language = strings.ToLower(strings.TrimSpace(*input.Language))
		if !SupportedLanguages[language] {
			return nil, domain.NewValidationError("language", "unsupported language")
		}
	}
	theme := user.Theme
	if input.Theme != nil {
		theme = strings.ToLower(strings.TrimSpace(*input.Theme))
		if !SupportedThemes[theme] {
			return nil, domain.NewValidationError("theme", "unsupported theme")
		}
	}

	return s.userRepo.UpdatePreferences(ctx, userID, language, theme)
}

// DeleteAccount removes the user; categories, transactions, budgets and reports cascade
func (s *ProfileService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	log.Info().Str("user_id", userID.String()).Msg("User account deleted")
	return nil
}
