package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"history-quiz/internal/config"
	"history-quiz/internal/dto"
	"history-quiz/internal/logger"
	"history-quiz/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const tokenTypeAccess = "access"

var ErrInvalidJWTToken = errors.New("invalid jwt token")

// AuthService issues and validates anonymous access tokens. Each token
// carries a fresh ULID user id that keys the caller's stored progress.
type AuthService interface {
	IssueAnonymousToken(ctx context.Context) (*dto.TokenResponse, error)
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

type authServiceImpl struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthService uses the configured secret. Without one a random secret
// is generated, so tokens do not survive a restart.
func NewAuthService(cfg config.AuthConfig) (AuthService, error) {
	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate jwt secret: %w", err)
		}
		secret = []byte(hex.EncodeToString(buf))
		logger.Get().Warn("auth.jwt_secret is not set, using an ephemeral secret")
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 720 * time.Hour
	}

	return &authServiceImpl{secret: secret, ttl: ttl, now: time.Now}, nil
}

func (s *authServiceImpl) IssueAnonymousToken(ctx context.Context) (*dto.TokenResponse, error) {
	userID := util.NewULID()
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := dto.AuthClaims{
		UserID:    userID,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	logger.Get().Info("Issued anonymous token", zap.String("userID", userID))
	return &dto.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		UserID:      userID,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *authServiceImpl) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			logger.Get().Debug("JWT token expired", zap.Error(err))
		} else {
			logger.Get().Debug("JWT validation failed", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	claims, ok := token.Claims.(*dto.AuthClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidJWTToken
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, fmt.Errorf("%w: unexpected token type %q", ErrInvalidJWTToken, claims.TokenType)
	}
	return claims, nil
}
