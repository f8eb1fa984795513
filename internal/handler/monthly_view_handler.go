package handler

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/dafibh/pocketledger/pocketledger-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// Reasons a referenced category is missing from a view
const (
	UnresolvedNotFound    = "not_found"
	UnresolvedUnavailable = "unavailable"
)

// MonthlyViewHandler serves the aggregated monthly view
type MonthlyViewHandler struct {
	viewService *service.MonthlyViewService
	now         func() time.Time
}

// NewMonthlyViewHandler creates a new MonthlyViewHandler
func NewMonthlyViewHandler(viewService *service.MonthlyViewService) *MonthlyViewHandler {
	return &MonthlyViewHandler{viewService: viewService, now: time.Now}
}

// UnresolvedCategoryResponse names a category the view references but could not load
type UnresolvedCategoryResponse struct {
	CategoryID string `json:"categoryId"`
	Reason     string `json:"reason"`
}

// MonthlyViewResponse is the monthly view sent over HTTP and WebSocket
type MonthlyViewResponse struct {
	Month        string                       `json:"month"`
	Filter       []string                     `json:"filter"`
	Total        string                       `json:"total"`
	Income       string                       `json:"income"`
	Expense      string                       `json:"expense"`
	Transactions []TransactionResponse        `json:"transactions"`
	Categories   map[string]CategoryResponse  `json:"categories"`
	Unresolved   []UnresolvedCategoryResponse `json:"unresolved"`
	Skipped      int                          `json:"skipped"`
}

func toMonthlyViewResponse(result *service.MonthlyViewResult) MonthlyViewResponse {
	view := result.View

	filter := make([]string, 0, view.Filter.Len())
	for _, id := range view.Filter.IDs() {
		filter = append(filter, id.String())
	}

	categories := make(map[string]CategoryResponse, len(result.Categories))
	for id, category := range result.Categories {
		categories[id.String()] = toCategoryResponse(category)
	}

	unresolved := make([]UnresolvedCategoryResponse, 0, len(result.Unresolved))
	for id, cause := range result.Unresolved {
		reason := UnresolvedUnavailable
		if errors.Is(cause, domain.ErrNotFound) {
			reason = UnresolvedNotFound
		}
		unresolved = append(unresolved, UnresolvedCategoryResponse{CategoryID: id.String(), Reason: reason})
	}
	sort.Slice(unresolved, func(i, j int) bool {
		return unresolved[i].CategoryID < unresolved[j].CategoryID
	})

	return MonthlyViewResponse{
		Month:        view.Month.String(),
		Filter:       filter,
		Total:        view.Total.StringFixed(2),
		Income:       view.Income.StringFixed(2),
		Expense:      view.Expense.StringFixed(2),
		Transactions: toTransactionResponses(view.Filtered),
		Categories:   categories,
		Unresolved:   unresolved,
		Skipped:      len(view.Skipped),
	}
}

// GetMonthlyView handles GET /api/v1/views/monthly
// @Summary Monthly view
// @Description Transactions of a month narrowed by categories, with the signed total and the categories they reference.
// @Tags views
// @Security BearerAuth
// @Produce json
// @Param month query string false "Month (YYYY-MM), defaults to the current month"
// @Param categories query string false "Comma separated category ids; empty means all"
// @Success 200 {object} MonthlyViewResponse
// @Failure 400 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /views/monthly [get]
func (h *MonthlyViewHandler) GetMonthlyView(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	month := domain.MonthOf(h.now())
	if raw := c.QueryParam("month"); raw != "" {
		parsed, verr := parseMonthField("month", raw)
		if verr != nil {
			return NewValidationError(c, "Invalid month", []ValidationError{*verr})
		}
		month = parsed
	}

	filter, err := domain.ParseCategoryFilterSet(c.QueryParam("categories"))
	if err != nil {
		return handleServiceError(c, err, "parse categories")
	}

	result, err := h.viewService.GetMonthlyView(c.Request().Context(), userID, month, filter)
	if err != nil {
		return handleServiceError(c, err, "build monthly view")
	}

	return c.JSON(http.StatusOK, toMonthlyViewResponse(result))
}
