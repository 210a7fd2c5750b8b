package auth

import (
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/config"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *JWTManager {
	return NewJWTManager(config.JWTConfig{
		Secret:          "test-secret-that-is-long-enough-for-hs256",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "wardtrack-test",
	})
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := newTestManager()
	id := domain.Identity{
		EmployeeID:   uuid.New(),
		EmployeeCode: "EMP001",
		Name:         "Dana Reyes",
		IsAdmin:      true,
	}

	pair, err := m.GenerateTokenPair(id)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)

	got, err := m.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	got, err = m.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, id.EmployeeCode, got.EmployeeCode)
}

func TestJWTManager_TypeMismatch(t *testing.T) {
	m := newTestManager()
	pair, err := m.GenerateTokenPair(domain.Identity{EmployeeID: uuid.New(), EmployeeCode: "EMP002"})
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenTypeMismatch)

	_, err = m.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenTypeMismatch)
}

func TestJWTManager_Expired(t *testing.T) {
	m := newTestManager()
	issued := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	pair, err := m.GenerateTokenPair(domain.Identity{EmployeeID: uuid.New(), EmployeeCode: "EMP003"})
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(time.Hour) }
	_, err = m.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	pair, err := newTestManager().GenerateTokenPair(domain.Identity{EmployeeID: uuid.New()})
	require.NoError(t, err)

	other := NewJWTManager(config.JWTConfig{
		Secret:         "a-different-secret-of-sufficient-length",
		AccessTokenTTL: time.Minute,
		Issuer:         "wardtrack-test",
	})
	_, err = other.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
