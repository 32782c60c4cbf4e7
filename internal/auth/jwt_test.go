package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/storefront/internal/auth"
)

func TestJWT_IssueAndValidateRoundTrip(t *testing.T) {
	t.Parallel()

	secret := "test-secret-key-very-long-and-secure"
	var userID int64 = 42

	t.Run("access token round-trip", func(t *testing.T) {
		t.Parallel()

		token, err := auth.IssueAccessToken(secret, userID, "admin", 5*time.Minute)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := auth.ValidateToken(secret, token)
		require.NoError(t, err)
		require.NotNil(t, claims)

		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, "42", claims.Subject)
		assert.Equal(t, "admin", claims.Role)
		assert.Equal(t, auth.TokenTypeAccess, claims.TokenType)
		assert.Equal(t, "storefront", claims.Issuer)
	})

	t.Run("refresh token round-trip", func(t *testing.T) {
		t.Parallel()

		token, err := auth.IssueRefreshToken(secret, userID, "customer", 24*time.Hour)
		require.NoError(t, err)

		claims, err := auth.ValidateToken(secret, token)
		require.NoError(t, err)

		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, "customer", claims.Role)
		assert.Equal(t, auth.TokenTypeRefresh, claims.TokenType)
		assert.NotNil(t, claims.IssuedAt)
		assert.NotNil(t, claims.ExpiresAt)
	})
}

func TestJWT_Rejected(t *testing.T) {
	t.Parallel()

	secret := "test-secret-key"

	expired, err := auth.IssueAccessToken(secret, 1, "customer", -1*time.Second)
	require.NoError(t, err)

	valid, err := auth.IssueAccessToken(secret, 1, "customer", 5*time.Minute)
	require.NoError(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		UserID: 1,
	})
	foreignToken, err := foreign.SignedString([]byte(secret))
	require.NoError(t, err)

	noUser := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "storefront",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	noUserToken, err := noUser.SignedString([]byte(secret))
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, auth.Claims{UserID: 1})
	noneToken, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{name: "expired", secret: secret, token: expired},
		{name: "wrong secret", secret: "wrong-secret", token: valid},
		{name: "malformed", secret: secret, token: "not.a.valid.jwt.token"},
		{name: "empty", secret: secret, token: ""},
		{name: "foreign issuer", secret: secret, token: foreignToken},
		{name: "missing user id", secret: secret, token: noUserToken},
		{name: "alg none", secret: secret, token: noneToken},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			claims, err := auth.ValidateToken(tc.secret, tc.token)
			require.Error(t, err)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}
