package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateECKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return privateKey
}

func createSignedToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	tokenStr, err := token.SignedString(generateECKey(t))
	require.NoError(t, err)
	return tokenStr
}

func userClaims(subject string, ttl time.Duration) *Claims {
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: subject + "@example.com",
		Name:  "Test User",
	}
}

func TestParseIdentity(t *testing.T) {
	t.Run("reads identity claims", func(t *testing.T) {
		token := createSignedToken(t, userClaims("u1", time.Hour))

		session, err := ParseIdentity(token)
		require.NoError(t, err)
		assert.Equal(t, token, session.Token)
		assert.Equal(t, "u1", session.User.ID)
		assert.Equal(t, "u1@example.com", session.User.Email)
		assert.Equal(t, "Test User", session.User.Name)
		assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 5*time.Second)
		assert.False(t, session.CreatedAt.IsZero())
	})

	t.Run("token without expiry", func(t *testing.T) {
		claims := userClaims("u1", time.Hour)
		claims.ExpiresAt = nil

		session, err := ParseIdentity(createSignedToken(t, claims))
		require.NoError(t, err)
		assert.True(t, session.ExpiresAt.IsZero())
		assert.False(t, session.IsExpired())
	})

	t.Run("expired token still parses", func(t *testing.T) {
		session, err := ParseIdentity(createSignedToken(t, userClaims("u1", -time.Hour)))
		require.NoError(t, err)
		assert.True(t, session.IsExpired())
	})

	t.Run("missing subject", func(t *testing.T) {
		_, err := ParseIdentity(createSignedToken(t, userClaims("", time.Hour)))
		assert.ErrorIs(t, err, ErrMissingSubject)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseIdentity("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
