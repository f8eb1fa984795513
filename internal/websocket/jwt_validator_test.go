package websocket

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// mockUserLookup is a test double for UserLookup
type mockUserLookup struct {
	userID uuid.UUID
	err    error
}

func (m *mockUserLookup) GetUserIDByAuth0ID(ctx context.Context, auth0ID string) (uuid.UUID, error) {
	return m.userID, m.err
}

func TestUserLookup_Interface(t *testing.T) {
	var _ UserLookup = (*mockUserLookup)(nil)
}

func TestValidatorErrors(t *testing.T) {
	assert.Equal(t, "user not found", ErrUserNotFound.Error())
	assert.Equal(t, "invalid token", ErrInvalidToken.Error())
}

func TestCustomClaims_Validate(t *testing.T) {
	claims := &CustomClaims{}
	assert.NoError(t, claims.Validate(context.Background()))
}

func TestNewAuth0JWTValidator_Success(t *testing.T) {
	lookup := &mockUserLookup{userID: uuid.New()}

	v, err := NewAuth0JWTValidator("test.auth0.com", "https://api.pocketledger.test", lookup)
	assert.NoError(t, err)
	assert.NotNil(t, v)
	assert.NotNil(t, v.validator)
	assert.Equal(t, lookup, v.userLookup)
}

func TestAuth0JWTValidator_ValidateToken_InvalidJWT(t *testing.T) {
	lookup := &mockUserLookup{userID: uuid.New()}

	v, err := NewAuth0JWTValidator("test.auth0.com", "https://api.pocketledger.test", lookup)
	assert.NoError(t, err)

	userID, err := v.ValidateToken(context.Background(), "invalid-token")
	assert.Error(t, err)
	assert.Equal(t, uuid.Nil, userID)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}
