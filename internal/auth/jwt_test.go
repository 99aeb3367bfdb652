package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestIssueAndVerify(t *testing.T) {
	svc, err := NewService(testSecret, "7d")
	require.NoError(t, err)

	token, err := svc.Issue("user-1", "john@example.com", "USER")
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "john@example.com", claims.Email)
	assert.Equal(t, "USER", claims.Role)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer, err := NewService("another-secret", "1h")
	require.NoError(t, err)
	verifier, err := NewService(testSecret, "1h")
	require.NoError(t, err)

	token, err := issuer.Issue("user-1", "a@b.co", "USER")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	svc, err := NewService(testSecret, "1h")
	require.NoError(t, err)

	claims := Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	svc, err := NewService(testSecret, "1h")
	require.NoError(t, err)

	claims := Claims{
		UserID: "user-1",
		Role:   "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Verify(none)
	assert.ErrorIs(t, err, ErrInvalidToken)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = svc.Verify(hs512)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc, err := NewService(testSecret, "1h")
	require.NoError(t, err)

	for _, token := range []string{"", "abc", "a.b.c"} {
		_, err := svc.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken, token)
	}
}

func TestParseExpiry(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"30s", 30 * time.Second},
		{"15m", 15 * time.Minute},
		{"12h", 12 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"2w", 14 * 24 * time.Hour},
		{"3y", 3 * 24 * time.Hour},
		{"", 7 * 24 * time.Hour},
	}

	for _, tt := range tests {
		got, err := ParseExpiry(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"d", "0d", "-1h", "abc"} {
		_, err := ParseExpiry(bad)
		assert.Error(t, err, bad)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Passw0rd")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "Passw0rd"))
	assert.False(t, CheckPassword(hash, "passw0rd"))
}
