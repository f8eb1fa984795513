package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// IconHandler handles category icon uploads
type IconHandler struct {
	iconService *service.IconService
}

// NewIconHandler creates a new IconHandler
func NewIconHandler(iconService *service.IconService) *IconHandler {
	return &IconHandler{iconService: iconService}
}

// IconResponse represents an uploaded icon
type IconResponse struct {
	Category CategoryResponse `json:"category"`
	URL      string           `json:"url"`
}

func (h *IconHandler) enabled() bool {
	return h.iconService != nil && h.iconService.IsEnabled()
}

// UploadIcon handles POST /api/v1/categories/:id/icon
// @Summary Upload a category icon
// @Tags categories
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Category ID"
// @Param file formData file true "JPEG, PNG or WebP image"
// @Success 201 {object} IconResponse
// @Failure 400 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /categories/{id}/icon [post]
func (h *IconHandler) UploadIcon(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if !h.enabled() {
		return NewServiceUnavailableError(c, "Icon uploads are disabled (storage not configured)")
	}

	categoryID, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}
	if file.Size > service.MaxIconSize {
		return iconValidationError(c, service.ErrIconTooLarge)
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	// one byte over the limit is enough to reject
	data, err := io.ReadAll(io.LimitReader(src, service.MaxIconSize+1))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	result, err := h.iconService.UploadIcon(c.Request().Context(), userID, categoryID, data, file.Filename)
	if err != nil {
		if isIconValidationError(err) {
			return iconValidationError(c, err)
		}
		return handleServiceError(c, err, "upload icon")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("category_id", categoryID.String()).
		Msg("Category icon uploaded")

	return c.JSON(http.StatusCreated, IconResponse{
		Category: toCategoryResponse(result.Category),
		URL:      result.URL,
	})
}

// GetIcon handles GET /api/v1/categories/:id/icon
// @Summary Get a presigned URL for the category icon
// @Tags categories
// @Security BearerAuth
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} IconResponse
// @Failure 404 {object} ProblemDetails
// @Router /categories/{id}/icon [get]
func (h *IconHandler) GetIcon(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if !h.enabled() {
		return NewServiceUnavailableError(c, "Icon storage is not configured")
	}

	categoryID, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}

	url, err := h.iconService.GetIconURL(c.Request().Context(), userID, categoryID)
	if err != nil {
		if errors.Is(err, service.ErrNoIcon) {
			return NewNotFoundError(c, "Category has no uploaded icon")
		}
		return handleServiceError(c, err, "get icon")
	}

	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

// DeleteIcon handles DELETE /api/v1/categories/:id/icon
// @Summary Remove the uploaded category icon
// @Tags categories
// @Security BearerAuth
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} CategoryResponse
// @Router /categories/{id}/icon [delete]
func (h *IconHandler) DeleteIcon(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if !h.enabled() {
		return NewServiceUnavailableError(c, "Icon deletion is disabled (storage not configured)")
	}

	categoryID, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}

	category, err := h.iconService.RemoveIcon(c.Request().Context(), userID, categoryID)
	if err != nil {
		return handleServiceError(c, err, "delete icon")
	}

	return c.JSON(http.StatusOK, toCategoryResponse(category))
}

func isIconValidationError(err error) bool {
	return errors.Is(err, service.ErrIconTooLarge) ||
		errors.Is(err, service.ErrInvalidIconFormat) ||
		errors.Is(err, service.ErrIconTooSmall) ||
		errors.Is(err, service.ErrInvalidIconData)
}

func iconValidationError(c echo.Context, err error) error {
	return NewValidationError(c, "Validation failed", []ValidationError{
		{Field: "file", Message: capitalize(err.Error())},
	})
}
