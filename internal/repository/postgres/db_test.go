package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

func TestDecimalNumericRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "0.01", "10.25", "-40", "123456789.99"} {
		d := decimal.RequireFromString(s)
		num, err := decimalToPgNumeric(d)
		if err != nil {
			t.Fatalf("decimalToPgNumeric(%s) error: %v", s, err)
		}
		if got := pgNumericToDecimal(num); !got.Equal(d) {
			t.Errorf("round trip %s = %s", s, got)
		}
	}
}

func TestUUIDConversions(t *testing.T) {
	id := uuid.New()
	if got := pgToUUID(uuidToPg(id)); got != id {
		t.Errorf("Expected %s, got %s", id, got)
	}
	if uuidPtrToPg(nil).Valid {
		t.Error("Expected nil pointer to be NULL")
	}
	nilID := uuid.Nil
	if uuidPtrToPg(&nilID).Valid {
		t.Error("Expected uuid.Nil to be NULL")
	}
	if pgToUUIDPtr(uuidPtrToPg(nil)) != nil {
		t.Error("Expected NULL to map to nil pointer")
	}
}

func TestPgErrorClassification(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	foreignKey := &pgconn.PgError{Code: "23503"}

	if !isPgUniqueViolation(unique) {
		t.Error("Expected wrapped 23505 to be a unique violation")
	}
	if isPgUniqueViolation(foreignKey) || isPgUniqueViolation(errors.New("boom")) || isPgUniqueViolation(nil) {
		t.Error("Expected only 23505 to be a unique violation")
	}
	if !isPgForeignKeyViolation(foreignKey) {
		t.Error("Expected 23503 to be a foreign key violation")
	}
}
