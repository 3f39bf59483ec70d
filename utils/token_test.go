package utils

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", 7*24*time.Hour)

	token, err := m.Generate("64b7f0c2a1b2c3d4e5f60718", "a@b.com", "citizen", "")
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "citizen", claims.Role)
	assert.Empty(t, claims.AccessToken)
	assert.InDelta(t, time.Now().Add(7*24*time.Hour).Unix(), claims.ExpiresAt, 5)
}

func TestTokenManager_CarriesAccessToken(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, err := m.Generate("64b7f0c2a1b2c3d4e5f60718", "a@b.com", "citizen", "ya29.provider")
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "ya29.provider", claims.AccessToken)
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager("test-secret", -time.Minute)

	token, err := m.Generate("64b7f0c2a1b2c3d4e5f60718", "a@b.com", "citizen", "")
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	token, err := NewTokenManager("one", time.Hour).Generate("64b7f0c2a1b2c3d4e5f60718", "a@b.com", "citizen", "")
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_RejectsOtherAlgorithms(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UserID:         "64b7f0c2a1b2c3d4e5f60718",
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.Parse(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_Garbage(t *testing.T) {
	_, err := NewTokenManager("s", time.Hour).Parse("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
