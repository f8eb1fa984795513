package handler

import (
	"net/http"
	"time"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/dafibh/pocketledger/pocketledger-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CategoryRequest represents the create/update category request
type CategoryRequest struct {
	Name string  `json:"name" validate:"required,max=100"`
	Type string  `json:"type" validate:"required,oneof=income expense"`
	Icon *string `json:"icon" validate:"omitempty,max=64"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Icon          *string `json:"icon"`
	HasCustomIcon bool    `json:"hasCustomIcon"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

func toCategoryResponse(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:            category.ID.String(),
		Name:          category.Name,
		Type:          string(category.Type),
		Icon:          category.Icon,
		HasCustomIcon: category.IconPath != nil && *category.IconPath != "",
		CreatedAt:     category.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     category.UpdatedAt.Format(time.RFC3339),
	}
}

func (r CategoryRequest) toInput() service.CategoryInput {
	return service.CategoryInput{
		Name: r.Name,
		Type: domain.CategoryType(r.Type),
		Icon: r.Icon,
	}
}

// CreateCategory handles POST /api/v1/categories
// @Summary Create category
// @Tags categories
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CategoryRequest true "Category"
// @Success 201 {object} CategoryResponse
// @Failure 400 {object} ProblemDetails
// @Router /categories [post]
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CategoryRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	category, err := h.categoryService.CreateCategory(c.Request().Context(), userID, req.toInput())
	if err != nil {
		return handleServiceError(c, err, "create category")
	}

	return c.JSON(http.StatusCreated, toCategoryResponse(category))
}

// GetCategories handles GET /api/v1/categories
// @Summary List categories
// @Tags categories
// @Security BearerAuth
// @Produce json
// @Success 200 {array} CategoryResponse
// @Router /categories [get]
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	categories, err := h.categoryService.GetCategories(c.Request().Context(), userID)
	if err != nil {
		return handleServiceError(c, err, "get categories")
	}

	response := make([]CategoryResponse, len(categories))
	for i, category := range categories {
		response[i] = toCategoryResponse(category)
	}
	return c.JSON(http.StatusOK, response)
}

// GetCategory handles GET /api/v1/categories/:id
// @Summary Get category
// @Tags categories
// @Security BearerAuth
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} CategoryResponse
// @Failure 404 {object} ProblemDetails
// @Router /categories/{id} [get]
func (h *CategoryHandler) GetCategory(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}

	category, err := h.categoryService.GetCategoryByID(c.Request().Context(), userID, id)
	if err != nil {
		return handleServiceError(c, err, "get category")
	}

	return c.JSON(http.StatusOK, toCategoryResponse(category))
}

// UpdateCategory handles PUT /api/v1/categories/:id
// @Summary Update category
// @Tags categories
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param request body CategoryRequest true "Category"
// @Success 200 {object} CategoryResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}

	var req CategoryRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	category, err := h.categoryService.UpdateCategory(c.Request().Context(), userID, id, req.toInput())
	if err != nil {
		return handleServiceError(c, err, "update category")
	}

	return c.JSON(http.StatusOK, toCategoryResponse(category))
}

// DeleteCategory handles DELETE /api/v1/categories/:id
// @Summary Delete category
// @Tags categories
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Router /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, ok, err := parseIDParam(c, "id")
	if !ok {
		return err
	}

	if err := h.categoryService.DeleteCategory(c.Request().Context(), userID, id); err != nil {
		return handleServiceError(c, err, "delete category")
	}

	return c.NoContent(http.StatusNoContent)
}
