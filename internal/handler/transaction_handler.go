package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/dafibh/pocketledger/pocketledger-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// TransactionRequest represents the create/update transaction request.
// Either amount or expression must be set; amount wins when both are.
type TransactionRequest struct {
	CategoryID  string  `json:"categoryId" validate:"required,uuid"`
	Amount      *string `json:"amount" validate:"required_without=Expression"`
	Expression  *string `json:"expression" validate:"omitempty,max=256"`
	Type        string  `json:"type" validate:"required,oneof=income expense"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Date        *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID          string  `json:"id"`
	CategoryID  *string `json:"categoryId"`
	Amount      string  `json:"amount"`
	Type        string  `json:"type"`
	Description *string `json:"description"`
	Date        string  `json:"date"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toTransactionResponse(tx *domain.Transaction) TransactionResponse {
	var categoryID *string
	if tx.CategoryID != nil {
		id := tx.CategoryID.String()
		categoryID = &id
	}
	return TransactionResponse{
		ID:          tx.ID.String(),
		CategoryID:  categoryID,
		Amount:      tx.Amount.StringFixed(2),
		Type:        string(tx.Type),
		Description: tx.Description,
		Date:        tx.Date,
		CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   tx.UpdatedAt.Format(time.RFC3339),
	}
}

func toTransactionResponses(transactions []*domain.Transaction) []TransactionResponse {
	response := make([]TransactionResponse, len(transactions))
	for i, tx := range transactions {
		response[i] = toTransactionResponse(tx)
	}
	return response
}

// toInput converts the request; the error response has been written when ok is false
func (r TransactionRequest) toInput(c echo.Context) (service.TransactionInput, bool, error) {
	input := service.TransactionInput{
		Type:        domain.TransactionType(r.Type),
		Expression:  r.Expression,
		Description: r.Description,
		Date:        r.Date,
	}

	categoryID, err := uuid.Parse(r.CategoryID)
	if err != nil {
		return input, false, NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "categoryId", Message: "Must be a valid id"},
		})
	}
	input.CategoryID = &categoryID

	if r.Amount != nil && strings.TrimSpace(*r.Amount) != "" {
		amount, err := decimal.NewFromString(strings.TrimSpace(*r.Amount))
		if err != nil {
			return input, false, NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "amount", Message: "Invalid amount format"},
			})
		}
		input.Amount = &amount
	}

	return input, true, nil
}

// CreateTransaction handles POST /api/v1/transactions
// @Summary Create transaction
// @Tags transactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body TransactionRequest true "Transaction"
// @Success 201 {object} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req TransactionRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	input, ok, err := req.toInput(c)
	if !ok {
		return err
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request().Context(), userID, input)
	if err != nil {
		return handleServiceError(c, err, "create transaction")
	}

	return c.JSON(http.StatusCreated, toTransactionResponse(transaction))
}

// GetTransactions handles GET /api/v1/transactions
// @Summary List transactions
// @Tags transactions
// @Security BearerAuth
// @Produce json
// @Param month query string false "Month (YYYY-MM)"
// @Success 200 {array} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Router /transactions [get]
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var month *domain.MonthSelector
	if raw := c.QueryParam("month"); raw != "" {
		parsed, err := domain.ParseMonthSelector(raw)
		if err != nil {
			return NewValidationError(c, "Invalid month", []ValidationError{
				{Field: "month", Message: "Month must be YYYY-MM"},
			})
		}
		month = &parsed
	}

	transactions, err := h.transactionService.GetTransactions(c.Request().Context(), userID, month)
	if err != nil {
		return handleServiceError(c, err, "get transactions")
	}

	return c.JSON(http.StatusOK, toTransactionResponses(transactions))
}

// GetTransaction handles GET /api/v1/transactions/:id
// @Summary Get transaction
// @Tags transactions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} TransactionResponse
// @Failure 404 {object} ProblemDetails
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}

	transaction, err := h.transactionService.GetTransactionByID(c.Request().Context(), userID, id)
	if err != nil {
		return handleServiceError(c, err, "get transaction")
	}

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// UpdateTransaction handles PUT /api/v1/transactions/:id
// @Summary Update transaction
// @Tags transactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param request body TransactionRequest true "Transaction"
// @Success 200 {object} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}

	var req TransactionRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	input, ok, err := req.toInput(c)
	if !ok {
		return err
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Request().Context(), userID, id, input)
	if err != nil {
		return handleServiceError(c, err, "update transaction")
	}

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// DeleteTransaction handles DELETE /api/v1/transactions/:id
// @Summary Delete transaction
// @Tags transactions
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}

	if err := h.transactionService.DeleteTransaction(c.Request().Context(), userID, id); err != nil {
		return handleServiceError(c, err, "delete transaction")
	}

	return c.NoContent(http.StatusNoContent)
}
