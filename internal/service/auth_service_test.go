package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/dafibh/pocketledger/pocketledger-backend/internal/testutil"
	"github.com/google/uuid"
)

func TestAuthenticateUser_NewUser(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	service := NewAuthService(userRepo)

	auth0ID := "auth0|12345"
	email := "test@example.com"

	result, err := service.AuthenticateUser(context.Background(), auth0ID, email)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !result.IsNewUser {
		t.Error("Expected IsNewUser to be true for new user")
	}
	if result.User.Auth0ID != auth0ID {
		t.Errorf("Expected auth0ID %s, got %s", auth0ID, result.User.Auth0ID)
	}
	if result.User.Email != email {
		t.Errorf("Expected email %s, got %s", email, result.User.Email)
	}
	if result.User.Language != domain.DefaultLanguage || result.User.Theme != domain.DefaultTheme {
		t.Errorf("Expected default preferences, got %s/%s", result.User.Language, result.User.Theme)
	}
}

func TestAuthenticateUser_ExistingUser(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	service := NewAuthService(userRepo)

	existing := &domain.User{ID: uuid.New(), Auth0ID: "auth0|existing", Email: "existing@example.com"}
	userRepo.AddUser(existing)

	result, err := service.AuthenticateUser(context.Background(), existing.Auth0ID, existing.Email)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.IsNewUser {
		t.Error("Expected IsNewUser to be false for existing user")
	}
	if result.User.ID != existing.ID {
		t.Errorf("Expected user ID %s, got %s", existing.ID, result.User.ID)
	}
}

func TestAuthenticateUser_MissingSubject(t *testing.T) {
	service := NewAuthService(testutil.NewMockUserRepository())

	_, err := service.AuthenticateUser(context.Background(), "", "a@b.c")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestAuthenticateUser_CreateFails(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	storeErr := domain.NewStoreError("create user", errors.New("connection refused"))
	userRepo.CreateFn = func(auth0ID, email string) (*domain.User, error) {
		return nil, storeErr
	}
	service := NewAuthService(userRepo)

	_, err := service.AuthenticateUser(context.Background(), "auth0|x", "x@example.com")
	if !errors.Is(err, domain.ErrStore) {
		t.Errorf("Expected store error, got %v", err)
	}
}

func TestGetUserIDByAuth0ID(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	service := NewAuthService(userRepo)

	user := &domain.User{ID: uuid.New(), Auth0ID: "auth0|lookup"}
	userRepo.AddUser(user)

	id, err := service.GetUserIDByAuth0ID(context.Background(), "auth0|lookup")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if id != user.ID {
		t.Errorf("Expected %s, got %s", user.ID, id)
	}

	id, err = service.GetUserIDByAuth0ID(context.Background(), "auth0|missing")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
	if id != uuid.Nil {
		t.Errorf("Expected nil id, got %s", id)
	}
}
