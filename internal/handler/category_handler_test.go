package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/dafibh/pocketledger/pocketledger-backend/internal/service"
	"github.com/dafibh/pocketledger/pocketledger-backend/internal/testutil"
	"github.com/google/uuid"
)

func TestCreateCategory(t *testing.T) {
	e := newTestEcho()
	repo := testutil.NewMockCategoryRepository()
	publisher := testutil.NewMockEventPublisher()
	categoryService := service.NewCategoryService(repo)
	categoryService.SetEventPublisher(publisher)
	handler := NewCategoryHandler(categoryService)
	userID := uuid.New()

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/categories", `{"name": "  Groceries ", "type": "expense", "icon": "cart"}`)
	setupUserContext(c, userID)

	if err := handler.CreateCategory(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response CategoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Name != "Groceries" {
		t.Errorf("Expected trimmed name 'Groceries', got %q", response.Name)
	}
	if response.Icon == nil || *response.Icon != "cart" {
		t.Errorf("Expected icon 'cart', got %v", response.Icon)
	}
	if response.HasCustomIcon {
		t.Error("Expected no custom icon")
	}
	if types := publisher.Types(); len(types) != 1 || types[0] != "category.created" {
		t.Errorf("Expected one category.created event, got %v", types)
	}
}

func TestCreateCategory_Validation(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"missing name", `{"type": "expense"}`, "name"},
		{"bad type", `{"name": "Rent", "type": "transfer"}`, "type"},
		{"blank name", `{"name": "   ", "type": "expense"}`, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			handler := NewCategoryHandler(service.NewCategoryService(testutil.NewMockCategoryRepository()))

			c, rec := newJSONContext(e, http.MethodPost, "/api/v1/categories", tt.body)
			setupUserContext(c, uuid.New())

			if err := handler.CreateCategory(c); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d", rec.Code)
			}
			if !hasFieldError(decodeProblem(t, rec), tt.wantField) {
				t.Errorf("Expected a %s field error, got %s", tt.wantField, rec.Body.String())
			}
		})
	}
}

func TestCreateCategory_Unauthenticated(t *testing.T) {
	e := newTestEcho()
	handler := NewCategoryHandler(service.NewCategoryService(testutil.NewMockCategoryRepository()))

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/categories", `{"name": "Rent", "type": "expense"}`)

	if err := handler.CreateCategory(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestGetCategories_OnlyOwn(t *testing.T) {
	e := newTestEcho()
	repo := testutil.NewMockCategoryRepository()
	handler := NewCategoryHandler(service.NewCategoryService(repo))
	userID := uuid.New()

	repo.AddCategory(&domain.Category{ID: uuid.New(), UserID: userID, Name: "Salary", Type: domain.TransactionTypeIncome})
	repo.AddCategory(&domain.Category{ID: uuid.New(), UserID: userID, Name: "Groceries", Type: domain.TransactionTypeExpense})
	repo.AddCategory(&domain.Category{ID: uuid.New(), UserID: uuid.New(), Name: "Other", Type: domain.TransactionTypeExpense})

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/categories", "")
	setupUserContext(c, userID)

	if err := handler.GetCategories(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var response []CategoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(response))
	}
	if response[0].Name != "Groceries" || response[1].Name != "Salary" {
		t.Errorf("Expected categories ordered by name, got %s, %s", response[0].Name, response[1].Name)
	}
}

func TestGetCategory(t *testing.T) {
	e := newTestEcho()
	repo := testutil.NewMockCategoryRepository()
	handler := NewCategoryHandler(service.NewCategoryService(repo))
	userID := uuid.New()
	category := &domain.Category{ID: uuid.New(), UserID: userID, Name: "Rent", Type: domain.TransactionTypeExpense}
	repo.AddCategory(category)

	tests := []struct {
		name       string
		param      string
		wantStatus int
	}{
		{"found", category.ID.String(), http.StatusOK},
		{"unknown id", uuid.New().String(), http.StatusNotFound},
		{"malformed id", "not-a-uuid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newJSONContext(e, http.MethodGet, "/api/v1/categories/"+tt.param, "")
			c.SetParamNames("id")
			c.SetParamValues(tt.param)
			setupUserContext(c, userID)

			if err := handler.GetCategory(c); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestUpdateCategory(t *testing.T) {
	e := newTestEcho()
	repo := testutil.NewMockCategoryRepository()
	handler := NewCategoryHandler(service.NewCategoryService(repo))
	userID := uuid.New()
	category := &domain.Category{ID: uuid.New(), UserID: userID, Name: "Rent", Type: domain.TransactionTypeExpense}
	repo.AddCategory(category)

	c, rec := newJSONContext(e, http.MethodPut, "/api/v1/categories/"+category.ID.String(), `{"name": "Housing", "type": "expense"}`)
	c.SetParamNames("id")
	c.SetParamValues(category.ID.String())
	setupUserContext(c, userID)

	if err := handler.UpdateCategory(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response CategoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Name != "Housing" {
		t.Errorf("Expected name 'Housing', got %s", response.Name)
	}
}

func TestDeleteCategory(t *testing.T) {
	e := newTestEcho()
	repo := testutil.NewMockCategoryRepository()
	handler := NewCategoryHandler(service.NewCategoryService(repo))
	userID := uuid.New()
	category := &domain.Category{ID: uuid.New(), UserID: userID, Name: "Rent", Type: domain.TransactionTypeExpense}
	repo.AddCategory(category)

	c, rec := newJSONContext(e, http.MethodDelete, "/api/v1/categories/"+category.ID.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(category.ID.String())
	setupUserContext(c, userID)

	if err := handler.DeleteCategory(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
	if _, ok := repo.Categories[category.ID]; ok {
		t.Error("Expected category to be deleted")
	}
}
