package handler

import (
	"net/http"
	"time"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/dafibh/pocketledger/pocketledger-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// MonthlyReportHandler handles monthly report HTTP requests
type MonthlyReportHandler struct {
	reportService *service.MonthlyReportService
}

// NewMonthlyReportHandler creates a new MonthlyReportHandler
func NewMonthlyReportHandler(reportService *service.MonthlyReportService) *MonthlyReportHandler {
	return &MonthlyReportHandler{reportService: reportService}
}

// MonthlyReportRequest represents the create/update report request
type MonthlyReportRequest struct {
	Month        string `json:"month" validate:"required"`
	TotalIncome  string `json:"totalIncome" validate:"required"`
	TotalExpense string `json:"totalExpense" validate:"required"`
}

// GenerateReportRequest selects the month to generate
type GenerateReportRequest struct {
	Month string `json:"month" validate:"required"`
}

// MonthlyReportResponse represents a report in API responses
type MonthlyReportResponse struct {
	ID           string `json:"id"`
	Month        string `json:"month"`
	TotalIncome  string `json:"totalIncome"`
	TotalExpense string `json:"totalExpense"`
	Net          string `json:"net"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

func toMonthlyReportResponse(report *domain.MonthlyReport) MonthlyReportResponse {
	return MonthlyReportResponse{
		ID:           report.ID.String(),
		Month:        report.Month.String(),
		TotalIncome:  report.TotalIncome.StringFixed(2),
		TotalExpense: report.TotalExpense.StringFixed(2),
		Net:          report.Net().StringFixed(2),
		CreatedAt:    report.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    report.UpdatedAt.Format(time.RFC3339),
	}
}

func (r MonthlyReportRequest) toInput() (service.MonthlyReportInput, []ValidationError) {
	var input service.MonthlyReportInput
	var errs []ValidationError

	var verr *ValidationError
	if input.Month, verr = parseMonthField("month", r.Month); verr != nil {
		errs = append(errs, *verr)
	}
	if input.TotalIncome, verr = parseAmountField("totalIncome", r.TotalIncome); verr != nil {
		errs = append(errs, *verr)
	}
	if input.TotalExpense, verr = parseAmountField("totalExpense", r.TotalExpense); verr != nil {
		errs = append(errs, *verr)
	}
	return input, errs
}

// CreateReport handles POST /api/v1/reports
// @Summary Create monthly report
// @Tags reports
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body MonthlyReportRequest true "Report"
// @Success 201 {object} MonthlyReportResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /reports [post]
func (h *MonthlyReportHandler) CreateReport(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req MonthlyReportRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	input, errs := req.toInput()
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	report, err := h.reportService.CreateReport(c.Request().Context(), userID, input)
	if err != nil {
		return handleServiceError(c, err, "create report")
	}

	return c.JSON(http.StatusCreated, toMonthlyReportResponse(report))
}

// GetReports handles GET /api/v1/reports
// @Summary List monthly reports
// @Tags reports
// @Security BearerAuth
// @Produce json
// @Success 200 {array} MonthlyReportResponse
// @Router /reports [get]
func (h *MonthlyReportHandler) GetReports(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	reports, err := h.reportService.GetReports(c.Request().Context(), userID)
	if err != nil {
		return handleServiceError(c, err, "get reports")
	}

	response := make([]MonthlyReportResponse, len(reports))
	for i, report := range reports {
		response[i] = toMonthlyReportResponse(report)
	}
	return c.JSON(http.StatusOK, response)
}

// GetReport handles GET /api/v1/reports/:id
// @Summary Get monthly report
// @Tags reports
// @Security BearerAuth
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} MonthlyReportResponse
// @Failure 404 {object} ProblemDetails
// @Router /reports/{id} [get]
func (h *MonthlyReportHandler) GetReport(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}

	report, err := h.reportService.GetReportByID(c.Request().Context(), userID, id)
	if err != nil {
		return handleServiceError(c, err, "get report")
	}

	return c.JSON(http.StatusOK, toMonthlyReportResponse(report))
}

// UpdateReport handles PUT /api/v1/reports/:id
// @Summary Update monthly report
// @Tags reports
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param request body MonthlyReportRequest true "Report"
// @Success 200 {object} MonthlyReportResponse
// @Router /reports/{id} [put]
func (h *MonthlyReportHandler) UpdateReport(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}

	var req MonthlyReportRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	input, errs := req.toInput()
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	report, err := h.reportService.UpdateReport(c.Request().Context(), userID, id, input)
	if err != nil {
		return handleServiceError(c, err, "update report")
	}

	return c.JSON(http.StatusOK, toMonthlyReportResponse(report))
}

// DeleteReport handles DELETE /api/v1/reports/:id
// @Summary Delete monthly report
// @Tags reports
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 204
// @Router /reports/{id} [delete]
func (h *MonthlyReportHandler) DeleteReport(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}

	if err := h.reportService.DeleteReport(c.Request().Context(), userID, id); err != nil {
		return handleServiceError(c, err, "delete report")
	}

	return c.NoContent(http.StatusNoContent)
}

// GenerateReport handles POST /api/v1/reports/generate
// @Summary Compute and store the totals of a month
// @Tags reports
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body GenerateReportRequest true "Month"
// @Success 200 {object} MonthlyReportResponse
// @Failure 400 {object} ProblemDetails
// @Router /reports/generate [post]
func (h *MonthlyReportHandler) GenerateReport(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req GenerateReportRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	month, verr := parseMonthField("month", req.Month)
	if verr != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{*verr})
	}

	report, err := h.reportService.GenerateReport(c.Request().Context(), userID, month)
	if err != nil {
		return handleServiceError(c, err, "generate report")
	}

	return c.JSON(http.StatusOK, toMonthlyReportResponse(report))
}
