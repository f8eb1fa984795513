package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/labstack/echo/v4"
)

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantField  string
	}{
		{"validation", domain.NewValidationError("amount", "too small"), http.StatusBadRequest, ErrorTypeValidation, "amount"},
		{"wrapped validation", fmt.Errorf("create: %w", domain.NewValidationError("type", "bad")), http.StatusBadRequest, ErrorTypeValidation, "type"},
		{"parse", domain.NewParseError("categories", "x", errors.New("invalid id")), http.StatusBadRequest, ErrorTypeParse, "categories"},
		{"not found", domain.ErrCategoryNotFound, http.StatusNotFound, ErrorTypeNotFound, ""},
		{"conflict", domain.ErrBudgetAlreadyExists, http.StatusConflict, ErrorTypeConflict, ""},
		{"cancelled", context.Canceled, http.StatusServiceUnavailable, ErrorTypeServiceUnavailable, ""},
		{"store failure", domain.NewStoreError("list", errors.New("boom")), http.StatusInternalServerError, ErrorTypeInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			c, rec := newJSONContext(e, http.MethodGet, "/api/v1/anything", "")

			if err := handleServiceError(c, tt.err, "do thing"); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			problem := decodeProblem(t, rec)
			if problem.Type != tt.wantType {
				t.Errorf("Expected type %s, got %s", tt.wantType, problem.Type)
			}
			if problem.Instance != "/api/v1/anything" {
				t.Errorf("Expected instance /api/v1/anything, got %s", problem.Instance)
			}
			if tt.wantField != "" && !hasFieldError(problem, tt.wantField) {
				t.Errorf("Expected a %s field error, got %+v", tt.wantField, problem.Errors)
			}
		})
	}
}

func TestHandleServiceError_InternalDetailHidesCause(t *testing.T) {
	e := newTestEcho()
	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/anything", "")

	handleServiceError(c, errors.New("password=hunter2"), "load view")

	problem := decodeProblem(t, rec)
	if problem.Detail != "Failed to load view" {
		t.Errorf("Expected generic detail, got %q", problem.Detail)
	}
}

func TestCapitalize(t *testing.T) {
	tests := map[string]string{
		"":                   "",
		"category not found": "Category not found",
		"Already":            "Already",
		"1 thing":            "1 thing",
	}
	for in, want := range tests {
		if got := capitalize(in); got != want {
			t.Errorf("capitalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBindAndValidate_ReportsJSONFieldNames(t *testing.T) {
	e := newTestEcho()
	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/categories", `{"name": "", "type": "other"}`)

	var req CategoryRequest
	ok, err := bindAndValidate(c, &req)
	if ok {
		t.Fatal("Expected validation to fail")
	}
	if err != nil {
		t.Fatalf("Expected the response to be written, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}

	problem := decodeProblem(t, rec)
	if !hasFieldError(problem, "name") || !hasFieldError(problem, "type") {
		t.Errorf("Expected name and type field errors, got %+v", problem.Errors)
	}
}

func TestBindAndValidate_MissingValidatorFails(t *testing.T) {
	e := echo.New()
	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/categories", `{"name": "", "type": "other"}`)

	var req CategoryRequest
	ok, err := bindAndValidate(c, &req)
	if ok {
		t.Fatal("Expected the request to be rejected without a validator")
	}
	if err != nil {
		t.Fatalf("Expected the response to be written, got %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", rec.Code)
	}
}
