package handler

import (
	"strings"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/dafibh/pocketledger/pocketledger-backend/internal/middleware"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// requireUser returns the authenticated user's id
func requireUser(c echo.Context) (uuid.UUID, bool) {
	userID := middleware.GetUserID(c)
	return userID, userID != uuid.Nil
}

// parseIDParam parses a uuid path parameter. When ok is false the 400
// response has already been written and err is what the handler returns.
func parseIDParam(c echo.Context, name string) (id uuid.UUID, ok bool, err error) {
	id, parseErr := uuid.Parse(c.Param(name))
	if parseErr != nil {
		return uuid.Nil, false, NewValidationError(c, "Invalid "+name, []ValidationError{
			{Field: name, Message: "Must be a valid id"},
		})
	}
	return id, true, nil
}

// parseMonthField parses a YYYY-MM request field
func parseMonthField(field, raw string) (domain.MonthSelector, *ValidationError) {
	month, err := domain.ParseMonthSelector(raw)
	if err != nil {
		return domain.MonthSelector{}, &ValidationError{Field: field, Message: "Month must be YYYY-MM"}
	}
	return month, nil
}

// parseAmountField parses a decimal request field
func parseAmountField(field, raw string) (decimal.Decimal, *ValidationError) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, &ValidationError{Field: field, Message: "Invalid amount format"}
	}
	return amount, nil
}
