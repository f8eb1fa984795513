package handler

import (
	"net/http"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	profileService *service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// UpdateProfileRequest represents the update profile request
type UpdateProfileRequest struct {
	Language *string `json:"language" validate:"omitempty,max=8"`
	Theme    *string `json:"theme" validate:"omitempty,max=16"`
}

// GetProfile handles GET /profile
// @Summary Get profile
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} UserResponse
// @Router /profile [get]
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	user, err := h.profileService.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return handleServiceError(c, err, "get profile")
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateProfile handles PUT /profile
// @Summary Update language and theme
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "Preferences"
// @Success 200 {object} UserResponse
// @Failure 400 {object} ProblemDetails
// @Router /profile [put]
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req UpdateProfileRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	user, err := h.profileService.UpdatePreferences(c.Request().Context(), userID, service.UpdatePreferencesInput{
		Language: req.Language,
		Theme:    req.Theme,
	})
	if err != nil {
		return handleServiceError(c, err, "update profile")
	}

	log.Info().Str("user_id", userID.String()).Msg("Profile updated")

	return c.JSON(http.StatusOK, toUserResponse(user))
}

// DeleteAccount handles DELETE /profile
// @Summary Delete account and all its data
// @Tags profile
// @Security BearerAuth
// @Success 204
// @Router /profile [delete]
func (h *ProfileHandler) DeleteAccount(c echo.Context) error {
	userID, ok := requireUser(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if err := h.profileService.DeleteAccount(c.Request().Context(), userID); err != nil {
		return handleServiceError(c, err, "delete account")
	}

	return c.NoContent(http.StatusNoContent)
}
