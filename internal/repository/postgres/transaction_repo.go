package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// date is read back as text so the domain keeps the wire form.
const transactionColumns = `id, user_id, category_id, amount, type, description, to_char(date, 'YYYY-MM-DD'), created_at, updated_at`

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create creates a new transaction
func (r *TransactionRepository) Create(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO transactions (user_id, category_id, amount, type, description, date)
		VALUES ($1, $2, $3, $4, $5, $6::date)
		RETURNING `+transactionColumns,
		uuidToPg(transaction.UserID), uuidPtrToPg(transaction.CategoryID), amount,
		string(transaction.Type), stringPtrToPgText(transaction.Description), transaction.Date)
	created, err := scanTransaction(row)
	if err != nil {
		if isPgForeignKeyViolation(err) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, domain.NewStoreError("create transaction", err)
	}
	return created, nil
}

// GetByID retrieves a transaction owned by userID
func (r *TransactionRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND user_id = $2`,
		uuidToPg(id), uuidToPg(userID))
	transaction, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, domain.NewStoreError("get transaction", err)
	}
	return transaction, nil
}

// GetByUserID returns the user's full transaction snapshot, newest first
func (r *TransactionRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC, created_at DESC`,
		uuidToPg(userID))
	if err != nil {
		return nil, domain.NewStoreError("list transactions", err)
	}
	transactions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Transaction, error) {
		return scanTransaction(row)
	})
	if err != nil {
		return nil, domain.NewStoreError("list transactions", err)
	}
	return transactions, nil
}

// Update replaces the mutable fields of a transaction
func (r *TransactionRepository) Update(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE transactions
		SET category_id = $3, amount = $4, type = $5, description = $6, date = $7::date, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING `+transactionColumns,
		uuidToPg(transaction.ID), uuidToPg(transaction.UserID), uuidPtrToPg(transaction.CategoryID), amount,
		string(transaction.Type), stringPtrToPgText(transaction.Description), transaction.Date)
	updated, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		if isPgForeignKeyViolation(err) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, domain.NewStoreError("update transaction", err)
	}
	return updated, nil
}

// Delete removes a transaction
func (r *TransactionRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, uuidToPg(id), uuidToPg(userID))
	if err != nil {
		return domain.NewStoreError("delete transaction", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		id, userID, categoryID pgtype.UUID
		amount                 pgtype.Numeric
		txType                 string
		description            pgtype.Text
		createdAt, updatedAt   pgtype.Timestamptz
		transaction            domain.Transaction
	)
	if err := row.Scan(&id, &userID, &categoryID, &amount, &txType, &description, &transaction.Date, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	transaction.ID = pgToUUID(id)
	transaction.UserID = pgToUUID(userID)
	transaction.CategoryID = pgToUUIDPtr(categoryID)
	transaction.Amount = pgNumericToDecimal(amount)
	transaction.Type = domain.TransactionType(txType)
	transaction.Description = pgTextToStringPtr(description)
	transaction.CreatedAt = createdAt.Time
	transaction.UpdatedAt = updatedAt.Time
	return &transaction, nil
}
