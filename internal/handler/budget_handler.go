package handler

import (
	"net/http"
	"time"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/dafibh/pocketledger/pocketledger-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// BudgetHandler handles budget-related HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// BudgetRequest represents the create/update budget request
type BudgetRequest struct {
	Month         string  `json:"month" validate:"required"`
	InitialAmount string  `json:"initialAmount" validate:"required"`
	UsedAmount    *string `json:"usedAmount"`
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID            string `json:"id"`
	Month         string `json:"month"`
	InitialAmount string `json:"initialAmount"`
	UsedAmount    string `json:"usedAmount"`
	Remaining     string `json:"remaining"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

func toBudgetResponse(budget *domain.Budget) BudgetResponse {
	return BudgetResponse{
		ID:            budget.ID.String(),
		Month:         budget.Month.String(),
		InitialAmount: budget.InitialAmount.StringFixed(2),
		UsedAmount:    budget.UsedAmount.StringFixed(2),
		Remaining:     budget.Remaining().StringFixed(2),
		CreatedAt:     budget.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     budget.UpdatedAt.Format(time.RFC3339),
	}
}

func (r BudgetRequest) toInput() (service.BudgetInput, []ValidationError) {
	var input service.BudgetInput
	var errs []ValidationError

	month, verr := parseMonthField("month", r.Month)
	if verr != nil {
		errs = append(errs, *verr)
	}
	input.Month = month

	initial, verr := parseAmountField("initialAmount", r.InitialAmount)
	if verr != nil {
		errs = append(errs, *verr)
	}
	input.InitialAmount = initial

	if r.UsedAmount != nil {
		used, verr := parseAmountField("usedAmount", *r.UsedAmount)
		if verr != nil {
			errs = append(errs, *verr)
		}
		input.UsedAmount = &used
	}

	return input, errs
}

// CreateBudget handles POST /api/v1/budgets
// @Summary Create the budget of a month
// @Tags budgets
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body BudgetRequest true "Budget"
// @Success 201 {object} BudgetResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /budgets [post]
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req BudgetRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	input, errs := req.toInput()
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	budget, err := h.budgetService.CreateBudget(c.Request().Context(), userID, input)
	if err != nil {
		return handleServiceError(c, err, "create budget")
	}

	return c.JSON(http.StatusCreated, toBudgetResponse(budget))
}

// GetBudgets handles GET /api/v1/budgets, or the budget of one month with ?month=YYYY-MM
// @Summary List budgets
// @Tags budgets
// @Security BearerAuth
// @Produce json
// @Param month query string false "Month (YYYY-MM)"
// @Success 200 {array} BudgetResponse
// @Router /budgets [get]
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if raw := c.QueryParam("month"); raw != "" {
		month, verr := parseMonthField("month", raw)
		if verr != nil {
			return NewValidationError(c, "Invalid month", []ValidationError{*verr})
		}
		budget, err := h.budgetService.GetBudgetByMonth(c.Request().Context(), userID, month)
		if err != nil {
			return handleServiceError(c, err, "get budget")
		}
		return c.JSON(http.StatusOK, []BudgetResponse{toBudgetResponse(budget)})
	}

	budgets, err := h.budgetService.GetBudgets(c.Request().Context(), userID)
	if err != nil {
		return handleServiceError(c, err, "get budgets")
	}

	response := make([]BudgetResponse, len(budgets))
	for i, budget := range budgets {
		response[i] = toBudgetResponse(budget)
	}
	return c.JSON(http.StatusOK, response)
}

// GetBudget handles GET /api/v1/budgets/:id
// @Summary Get budget
// @Tags budgets
// @Security BearerAuth
// @Produce json
// @Param id path string true "Budget ID"
// @Success 200 {object} BudgetResponse
// @Failure 404 {object} ProblemDetails
// @Router /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}

	budget, err := h.budgetService.GetBudgetByID(c.Request().Context(), userID, id)
	if err != nil {
		return handleServiceError(c, err, "get budget")
	}

	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// UpdateBudget handles PUT /api/v1/budgets/:id
// @Summary Update budget
// @Tags budgets
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Budget ID"
// @Param request body BudgetRequest true "Budget"
// @Success 200 {object} BudgetResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}

	var req BudgetRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	input, errs := req.toInput()
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	budget, err := h.budgetService.UpdateBudget(c.Request().Context(), userID, id, input)
	if err != nil {
		return handleServiceError(c, err, "update budget")
	}

	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// DeleteBudget handles DELETE /api/v1/budgets/:id
// @Summary Delete budget
// @Tags budgets
// @Security BearerAuth
// @Param id path string true "Budget ID"
// @Success 204
// @Router /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}

	if err := h.budgetService.DeleteBudget(c.Request().Context(), userID, id); err != nil {
		return handleServiceError(c, err, "delete budget")
	}

	return c.NoContent(http.StatusNoContent)
}

// RecalculateBudget handles POST /api/v1/budgets/:id/recalculate
// @Summary Set used amount to the month's expenses
// @Tags budgets
// @Security BearerAuth
// @Produce json
// @Param id path string true "Budget ID"
// @Success 200 {object} BudgetResponse
// @Router /budgets/{id}/recalculate [post]
func (h *BudgetHandler) RecalculateBudget(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}

	budget, err := h.budgetService.Recalculate(c.Request().Context(), userID, id)
	if err != nil {
		return handleServiceError(c, err, "recalculate budget")
	}

	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

