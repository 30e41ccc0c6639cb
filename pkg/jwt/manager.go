package jwt

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken token is malformed, unsigned, or wrongly signed
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken token is past its expiry
	ErrExpiredToken = errors.New("expired token")
)

// Token types carried in the token_type claim
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims JWT payload for API tokens
type Claims struct {
	jwt.RegisteredClaims
	UserID    uint64 `json:"user_id"`
	Username  string `json:"username,omitempty"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"token_type"`
}

// Manager issues and verifies HMAC-signed tokens
type Manager struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewManager creates a token manager; lifetimes in minutes
func NewManager(secret string, expiresInMin, refreshInMin int) *Manager {
	return &Manager{
		secretKey:  []byte(secret),
		accessTTL:  time.Duration(expiresInMin) * time.Minute,
		refreshTTL: time.Duration(refreshInMin) * time.Minute,
	}
}

// GenerateAccessToken issues a short-lived access token
func (m *Manager) GenerateAccessToken(userID uint64, username, role string) (string, error) {
	return m.sign(&Claims{
		RegisteredClaims: m.registered(userID, m.accessTTL),
		UserID:           userID,
		Username:         username,
		Role:             role,
		TokenType:        TokenTypeAccess,
	})
}

// GenerateRefreshToken issues a long-lived refresh token carrying only identity
func (m *Manager) GenerateRefreshToken(userID uint64) (string, error) {
	return m.sign(&Claims{
		RegisteredClaims: m.registered(userID, m.refreshTTL),
		UserID:           userID,
		TokenType:        TokenTypeRefresh,
	})
}

// VerifyToken parses and validates a token of either type
func (m *Manager) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// VerifyAccessToken validates a token and requires the access type.
// Refresh tokens are only good for the refresh endpoint.
func (m *Manager) VerifyAccessToken(tokenString string) (*Claims, error) {
	claims, err := m.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefreshToken validates a token and requires the refresh type
func (m *Manager) VerifyRefreshToken(tokenString string) (*Claims, error) {
	claims, err := m.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeRefresh {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *Manager) registered(userID uint64, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(userID, 10),
		Issuer:    "lokalo-backend",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (m *Manager) sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}
