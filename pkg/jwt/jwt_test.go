package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "equipskill-sandbox", 1)

	token, err := tm.GenerateToken("u-1", "ada@example.com", "Ada Lovelace", "both")
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "Ada Lovelace", claims.Name)
	assert.Equal(t, "equipskill-sandbox", claims.Issuer)
}

func TestValidateToken_Errors(t *testing.T) {
	tm := NewTokenManager("secret", "iss", 1)

	other, err := NewTokenManager("other", "iss", 1).GenerateToken("u-1", "", "", "")
	require.NoError(t, err)
	_, err = tm.ValidateToken(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewTokenManager("secret", "iss", -1).GenerateToken("u-1", "", "", "")
	require.NoError(t, err)
	_, err = tm.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrExpiredToken)

	_, err = tm.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_FallsBackToSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "u-9",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	got, err := NewTokenManager("secret", "iss", 1).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-9", got.UserID)
}

func TestSubjectUnverified(t *testing.T) {
	token, err := NewTokenManager("whatever", "iss", 1).GenerateToken("u-3", "", "", "")
	require.NoError(t, err)

	sub, err := SubjectUnverified(token)
	require.NoError(t, err)
	assert.Equal(t, "u-3", sub)

	_, err = SubjectUnverified("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
