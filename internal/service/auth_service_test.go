package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"history-quiz/internal/config"
	"history-quiz/internal/dto"
	"history-quiz/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_IssueAndValidate(t *testing.T) {
	svc, err := NewAuthService(config.AuthConfig{JWTSecret: "testsecretkeydontuseinproduction", TokenTTL: time.Hour})
	require.NoError(t, err)

	tok, err := svc.IssueAnonymousToken(context.Background())
	require.NoError(t, err)
	assert.True(t, util.IsULID(tok.UserID))
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, 5*time.Second)

	claims, err := svc.ValidateJWT(context.Background(), tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, tok.UserID, claims.UserID)
	assert.Equal(t, "access", claims.TokenType)
}

func TestAuthService_EphemeralSecret(t *testing.T) {
	a, err := NewAuthService(config.AuthConfig{})
	require.NoError(t, err)
	b, err := NewAuthService(config.AuthConfig{})
	require.NoError(t, err)

	tok, err := a.IssueAnonymousToken(context.Background())
	require.NoError(t, err)

	_, err = a.ValidateJWT(context.Background(), tok.AccessToken)
	assert.NoError(t, err)
	_, err = b.ValidateJWT(context.Background(), tok.AccessToken)
	assert.True(t, errors.Is(err, ErrInvalidJWTToken))
}

func TestAuthService_ValidateJWT_Rejects(t *testing.T) {
	secret := "testsecretkeydontuseinproduction"
	svc, err := NewAuthService(config.AuthConfig{JWTSecret: secret, TokenTTL: time.Hour})
	require.NoError(t, err)

	sign := func(claims dto.AuthClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not.a.token"},
		{
			name: "expired",
			token: sign(dto.AuthClaims{UserID: "u1", TokenType: "access", RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			}}),
		},
		{name: "refresh token type", token: sign(dto.AuthClaims{UserID: "u1", TokenType: "refresh"})},
		{name: "missing user id", token: sign(dto.AuthClaims{TokenType: "access"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateJWT(context.Background(), tt.token)
			assert.True(t, errors.Is(err, ErrInvalidJWTToken))
		})
	}
}
