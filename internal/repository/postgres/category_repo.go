package postgres

import (
	"context"
	"errors"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const categoryColumns = `id, user_id, name, type, icon, icon_path, created_at, updated_at`

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create inserts a category
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO categories (user_id, name, type, icon, icon_path)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+categoryColumns,
		uuidToPg(category.UserID), category.Name, string(category.Type),
		stringPtrToPgText(category.Icon), stringPtrToPgText(category.IconPath))
	created, err := scanCategory(row)
	if err != nil {
		if isPgForeignKeyViolation(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.NewStoreError("create category", err)
	}
	return created, nil
}

// GetByID retrieves a category owned by userID
func (r *CategoryRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Category, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND user_id = $2`,
		uuidToPg(id), uuidToPg(userID))
	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, domain.NewStoreError("get category", err)
	}
	return category, nil
}

// GetByUserID lists a user's categories ordered by name
func (r *CategoryRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+categoryColumns+` FROM categories WHERE user_id = $1 ORDER BY name, id`,
		uuidToPg(userID))
	if err != nil {
		return nil, domain.NewStoreError("list categories", err)
	}
	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Category, error) {
		return scanCategory(row)
	})
	if err != nil {
		return nil, domain.NewStoreError("list categories", err)
	}
	return categories, nil
}

// Update replaces name, type and icon fields
func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE categories SET name = $3, type = $4, icon = $5, icon_path = $6, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING `+categoryColumns,
		uuidToPg(category.ID), uuidToPg(category.UserID), category.Name, string(category.Type),
		stringPtrToPgText(category.Icon), stringPtrToPgText(category.IconPath))
	updated, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, domain.NewStoreError("update category", err)
	}
	return updated, nil
}

// Delete removes a category; its transactions become uncategorized
func (r *CategoryRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, uuidToPg(id), uuidToPg(userID))
	if err != nil {
		return domain.NewStoreError("delete category", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var (
		id, userID           pgtype.UUID
		categoryType         string
		icon, iconPath       pgtype.Text
		createdAt, updatedAt pgtype.Timestamptz
		category             domain.Category
	)
	if err := row.Scan(&id, &userID, &category.Name, &categoryType, &icon, &iconPath, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	category.ID = pgToUUID(id)
	category.UserID = pgToUUID(userID)
	category.Type = domain.CategoryType(categoryType)
	category.Icon = pgTextToStringPtr(icon)
	category.IconPath = pgTextToStringPtr(iconPath)
	category.CreatedAt = createdAt.Time
	category.UpdatedAt = updatedAt.Time
	return &category, nil
}
