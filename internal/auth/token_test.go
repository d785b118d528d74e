package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager("a-very-long-secret-used-for-tests-only", time.Hour)

	token, expiresAt, err := manager.Issue(42, "artist")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := manager.Parse(token)
	require.NoError(t, err)
	require.Equal(t, uint(42), claims.UserID)
	require.Equal(t, "artist", claims.Role)
}

func TestTokenRejectsExpired(t *testing.T) {
	manager := NewTokenManager("secret", time.Minute)
	manager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := manager.Issue(1, "user")
	require.NoError(t, err)

	manager.now = time.Now
	_, err = manager.Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsForeignSecret(t *testing.T) {
	issuer := NewTokenManager("secret-one", time.Hour)
	verifier := NewTokenManager("secret-two", time.Hour)

	token, _, err := issuer.Issue(1, "user")
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsMissingSubject(t *testing.T) {
	manager := NewTokenManager("secret", time.Hour)
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := raw.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = manager.Parse(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hashed, err := HashPassword("correct horse")
	require.NoError(t, err)
	require.True(t, CheckPassword(hashed, "correct horse"))
	require.False(t, CheckPassword(hashed, "battery staple"))
}
