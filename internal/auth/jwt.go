package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")
	ErrTokenExpired = errors.New("token expired")
)

// TokenClaims carries the authenticated actor's identity. Handlers read
// UserID and RoleID from these claims and pass them explicitly into the
// approval engine; there is no ambient session state.
type TokenClaims struct {
	UserID    string `json:"uid"`
	RoleID    string `json:"rid"`
	TokenType string `json:"typ"` // "access" or "refresh"
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// JWTService issues and validates HS256 tokens. Revoked token IDs are
// kept in a redis denylist until their natural expiry.
type JWTService struct {
	secret        []byte
	issuer        string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	redisClient   redis.UniversalClient
}

func NewJWTService(secret, issuer string, expiryMinutes, refreshDays int, redisClient redis.UniversalClient) *JWTService {
	return &JWTService{
		secret:        []byte(secret),
		issuer:        issuer,
		accessExpiry:  time.Duration(expiryMinutes) * time.Minute,
		refreshExpiry: time.Duration(refreshDays) * 24 * time.Hour,
		redisClient:   redisClient,
	}
}

func (s *JWTService) GenerateTokenPair(userID, roleID string) (*TokenPair, error) {
	access, err := s.generateToken(userID, roleID, "access", s.accessExpiry)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refresh, err := s.generateToken(userID, roleID, "refresh", s.refreshExpiry)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessExpiry.Seconds()),
	}, nil
}

func (s *JWTService) generateToken(userID, roleID, tokenType string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID:    userID,
		RoleID:    roleID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ValidateToken parses and verifies a token, rejecting revoked ones.
func (s *JWTService) ValidateToken(ctx context.Context, tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if s.redisClient != nil && claims.ID != "" {
		revoked, err := s.redisClient.Exists(ctx, denylistKey(claims.ID)).Result()
		if err == nil && revoked > 0 {
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}

// RevokeToken denylists a token until it would have expired anyway.
func (s *JWTService) RevokeToken(ctx context.Context, claims *TokenClaims) error {
	if s.redisClient == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.redisClient.Set(ctx, denylistKey(claims.ID), "1", ttl).Err()
}

// RefreshTokenPair exchanges a valid refresh token for a new pair and
// revokes the old refresh token.
func (s *JWTService) RefreshTokenPair(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.ValidateToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != "refresh" {
		return nil, ErrInvalidToken
	}
	pair, err := s.GenerateTokenPair(claims.UserID, claims.RoleID)
	if err != nil {
		return nil, err
	}
	if err := s.RevokeToken(ctx, claims); err != nil {
		return nil, fmt.Errorf("revoke old refresh token: %w", err)
	}
	return pair, nil
}

func denylistKey(tokenID string) string {
	return "auth:denylist:" + tokenID
}
