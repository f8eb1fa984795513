package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/labstack/echo/v4"
)

// MonthHandler handles month navigation requests
type MonthHandler struct {
	now func() time.Time
}

// NewMonthHandler creates a new MonthHandler
func NewMonthHandler() *MonthHandler {
	return &MonthHandler{now: time.Now}
}

// MonthResponse represents a month selector in API responses
type MonthResponse struct {
	Month     string `json:"month"`
	Year      int    `json:"year"`
	MonthNum  int    `json:"monthNumber"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func toMonthResponse(m domain.MonthSelector) MonthResponse {
	start, end := m.Bounds()
	return MonthResponse{
		Month:     m.String(),
		Year:      m.Year,
		MonthNum:  int(m.Month),
		StartDate: start.Format(domain.DateLayout),
		EndDate:   end.Format(domain.DateLayout),
	}
}

// GetCurrent handles GET /api/v1/months/current
// @Summary Current month
// @Tags months
// @Security BearerAuth
// @Produce json
// @Success 200 {object} MonthResponse
// @Router /months/current [get]
func (h *MonthHandler) GetCurrent(c echo.Context) error {
	return c.JSON(http.StatusOK, toMonthResponse(domain.MonthOf(h.now())))
}

// Step handles GET /api/v1/months/:year/:month/step?delta=N
// @Summary Step a month selector
// @Description Moves the selector by delta months, carrying across years.
// @Tags months
// @Security BearerAuth
// @Produce json
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Param delta query int false "Months to move, negative for earlier" default(1)
// @Success 200 {object} MonthResponse
// @Failure 400 {object} ProblemDetails
// @Router /months/{year}/{month}/step [get]
func (h *MonthHandler) Step(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return NewValidationError(c, "Invalid year", []ValidationError{
			{Field: "year", Message: "Year must be a number"},
		})
	}
	monthNum, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		return NewValidationError(c, "Invalid month", []ValidationError{
			{Field: "month", Message: "Month must be between 1 and 12"},
		})
	}

	month, err := domain.NewMonthSelector(year, monthNum)
	if err != nil {
		return handleServiceError(c, err, "step month")
	}

	delta := 1
	if raw := c.QueryParam("delta"); raw != "" {
		delta, err = strconv.Atoi(raw)
		if err != nil {
			return NewValidationError(c, "Invalid delta", []ValidationError{
				{Field: "delta", Message: "Delta must be an integer"},
			})
		}
	}

	next, err := month.StepChecked(delta)
	if err != nil {
		return handleServiceError(c, err, "step month")
	}
	return c.JSON(http.StatusOK, toMonthResponse(next))
}
