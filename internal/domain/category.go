package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CategoryType groups categories for display; it is not enforced against transaction types.
type CategoryType = TransactionType

type Category struct {
	ID        uuid.UUID    `json:"id"`
	UserID    uuid.UUID    `json:"userId"`
	Name      string       `json:"name"`
	Type      CategoryType `json:"type"`
	Icon      *string      `json:"icon,omitempty"`
	IconPath  *string      `json:"iconPath,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// CategoryLookup resolves a single category by identifier.
type CategoryLookup func(ctx context.Context, id uuid.UUID) (*Category, error)

type CategoryRepository interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Category, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*Category, error)
	Update(ctx context.Context, category *Category) (*Category, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
