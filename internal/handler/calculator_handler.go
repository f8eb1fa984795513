package handler

import (
	"net/http"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/calculator"
	"github.com/labstack/echo/v4"
)

// CalculatorHandler evaluates amount keypad expressions
type CalculatorHandler struct{}

// NewCalculatorHandler creates a new CalculatorHandler
func NewCalculatorHandler() *CalculatorHandler {
	return &CalculatorHandler{}
}

// EvaluateRequest carries the expression typed on the keypad
type EvaluateRequest struct {
	Expression string `json:"expression" validate:"required,max=256"`
}

// EvaluateResponse is the evaluated value rounded to cents
type EvaluateResponse struct {
	Result string `json:"result"`
}

// Evaluate handles POST /api/v1/calculator/evaluate
// @Summary Evaluate a keypad expression
// @Tags calculator
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body EvaluateRequest true "Expression"
// @Success 200 {object} EvaluateResponse
// @Failure 400 {object} ProblemDetails
// @Router /calculator/evaluate [post]
func (h *CalculatorHandler) Evaluate(c echo.Context) error {
	var req EvaluateRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	value, err := calculator.Evaluate(req.Expression)
	if err != nil {
		return handleServiceError(c, err, "evaluate expression")
	}

	return c.JSON(http.StatusOK, EvaluateResponse{Result: value.StringFixed(2)})
}
