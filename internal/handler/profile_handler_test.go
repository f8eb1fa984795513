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

func newProfileFixture() (*ProfileHandler, *testutil.MockUserRepository, *domain.User) {
	userRepo := testutil.NewMockUserRepository()
	user := &domain.User{ID: uuid.New(), Auth0ID: "auth0|profile", Email: "p@example.com", Language: "en", Theme: "light"}
	userRepo.AddUser(user)
	return NewProfileHandler(service.NewProfileService(userRepo)), userRepo, user
}

func TestGetProfile(t *testing.T) {
	e := newTestEcho()
	handler, _, user := newProfileFixture()

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/profile", "")
	setupUserContext(c, user.ID)

	if err := handler.GetProfile(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.ID != user.ID.String() {
		t.Errorf("Expected id %s, got %s", user.ID, response.ID)
	}
}

func TestGetProfile_UserGone(t *testing.T) {
	e := newTestEcho()
	handler, _, _ := newProfileFixture()

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/profile", "")
	setupUserContext(c, uuid.New())

	if err := handler.GetProfile(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestUpdateProfile(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantField  string
		wantTheme  string
	}{
		{"changes theme", `{"theme": "Dark"}`, http.StatusOK, "", "dark"},
		{"changes both", `{"language": "id", "theme": "system"}`, http.StatusOK, "", "system"},
		{"unsupported language", `{"language": "fr"}`, http.StatusBadRequest, "language", ""},
		{"unsupported theme", `{"theme": "neon"}`, http.StatusBadRequest, "theme", ""},
		{"malformed body", `{"theme":`, http.StatusBadRequest, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			handler, _, user := newProfileFixture()

			c, rec := newJSONContext(e, http.MethodPut, "/api/v1/profile", tt.body)
			setupUserContext(c, user.ID)

			if err := handler.UpdateProfile(c); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}

			if tt.wantStatus == http.StatusOK {
				var response UserResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
					t.Fatalf("Failed to unmarshal response: %v", err)
				}
				if response.Theme != tt.wantTheme {
					t.Errorf("Expected theme %q, got %q", tt.wantTheme, response.Theme)
				}
				return
			}
			if tt.wantField != "" && !hasFieldError(decodeProblem(t, rec), tt.wantField) {
				t.Errorf("Expected a %s field error, got %s", tt.wantField, rec.Body.String())
			}
		})
	}
}

func TestDeleteAccount(t *testing.T) {
	e := newTestEcho()
	handler, userRepo, user := newProfileFixture()

	c, rec := newJSONContext(e, http.MethodDelete, "/api/v1/profile", "")
	setupUserContext(c, user.ID)

	if err := handler.DeleteAccount(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
	if _, ok := userRepo.ByID[user.ID]; ok {
		t.Error("Expected user to be deleted")
	}
}
