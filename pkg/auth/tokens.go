package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distinguishes access from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the payload of every token minted by TokenManager.
type Claims struct {
	TokenType    TokenType    `json:"token_type"`
	UserMetadata UserMetadata `json:"user_metadata"`
	jwt.RegisteredClaims
}

// TokenPair is returned at login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Blacklist records revoked token ids. Add must be idempotent.
type Blacklist interface {
	Add(ctx context.Context, jti, subject string, expiresAt time.Time) error
	Contains(ctx context.Context, jti string) (bool, error)
}

// TokenConfig holds signing parameters.
type TokenConfig struct {
	SigningKey []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenManager issues and verifies HS256 tokens and owns refresh token
// revocation.
type TokenManager struct {
	cfg       TokenConfig
	blacklist Blacklist
	now       func() time.Time
}

func NewTokenManager(cfg TokenConfig, blacklist Blacklist) *TokenManager {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 5 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 24 * time.Hour
	}
	return &TokenManager{
		cfg:       cfg,
		blacklist: blacklist,
		now:       time.Now,
	}
}

// IssuePair mints an access/refresh pair for subject, both bound to meta.
func (m *TokenManager) IssuePair(subject string, meta UserMetadata) (*TokenPair, error) {
	if meta.IPAddress == "" {
		return nil, ErrMissingClientIP
	}

	refresh, err := m.sign(subject, TokenTypeRefresh, meta, m.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	access, err := m.sign(subject, TokenTypeAccess, meta, m.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// RefreshToAccess derives a new access token from verified refresh claims.
// The metadata is carried over from the refresh token so the login context
// stays the anchor for every later check.
func (m *TokenManager) RefreshToAccess(ctx context.Context, refresh *Claims) (string, error) {
	if refresh == nil || refresh.TokenType != TokenTypeRefresh {
		return "", fmt.Errorf("%w: not a refresh token", ErrInvalidToken)
	}

	revoked, err := m.isRevoked(ctx, refresh)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", fmt.Errorf("%w: token is blacklisted", ErrInvalidToken)
	}

	return m.sign(refresh.Subject, TokenTypeAccess, refresh.UserMetadata, m.cfg.AccessTTL)
}

// Verify parses token and checks signature, expiry and type. Refresh tokens
// are additionally checked against the blacklist.
func (m *TokenManager) Verify(ctx context.Context, token string, want TokenType) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != want {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrInvalidToken, want, claims.TokenType)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: missing subject or id", ErrInvalidToken)
	}

	if want == TokenTypeRefresh {
		revoked, err := m.isRevoked(ctx, claims)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, fmt.Errorf("%w: token is blacklisted", ErrInvalidToken)
		}
	}

	return claims, nil
}

// Blacklist revokes the token described by claims until it expires.
func (m *TokenManager) Blacklist(ctx context.Context, claims *Claims) error {
	if m.blacklist == nil {
		return errors.New("no blacklist configured")
	}
	expiresAt := m.now().Add(m.cfg.RefreshTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := m.blacklist.Add(ctx, claims.ID, claims.Subject, expiresAt); err != nil {
		return fmt.Errorf("blacklist token %s: %w", claims.ID, err)
	}
	return nil
}

func (m *TokenManager) isRevoked(ctx context.Context, claims *Claims) (bool, error) {
	if m.blacklist == nil {
		return false, nil
	}
	revoked, err := m.blacklist.Contains(ctx, claims.ID)
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return revoked, nil
}

func (m *TokenManager) sign(subject string, typ TokenType, meta UserMetadata, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		TokenType:    typ,
		UserMetadata: meta,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    m.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.cfg.SigningKey)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

func (m *TokenManager) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return m.cfg.SigningKey, nil
}
