package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultLanguage = "en"
	DefaultTheme    = "light"
)

// User represents a user in the system
type User struct {
	ID        uuid.UUID `json:"id"`
	Auth0ID   string    `json:"auth0Id"`
	Email     string    `json:"email"`
	Language  string    `json:"language"`
	Theme     string    `json:"theme"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByAuth0ID(ctx context.Context, auth0ID string) (*User, error)
	CreateOrGetByAuth0ID(ctx context.Context, auth0ID, email string) (*User, error)
	UpdatePreferences(ctx context.Context, id uuid.UUID, language, theme string) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
