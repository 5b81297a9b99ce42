package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("test-signing-key-with-enough-entropy")

func newTestManager(bl Blacklist) *TokenManager {
	return NewTokenManager(TokenConfig{
		SigningKey: testKey,
		Issuer:     "resume-api-test",
		AccessTTL:  5 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	}, bl)
}

type failingBlacklist struct{ err error }

func (f failingBlacklist) Add(context.Context, string, string, time.Time) error {
	return f.err
}

func (f failingBlacklist) Contains(context.Context, string) (bool, error) {
	return false, f.err
}

func TestIssuePair(t *testing.T) {
	m := newTestManager(NewMemoryBlacklist())
	ctx := context.Background()
	meta := UserMetadata{IPAddress: "198.51.100.7", UserAgent: "Mozilla/5.0 A"}

	pair, err := m.IssuePair("user-1", meta)
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	t.Run("access token carries metadata", func(t *testing.T) {
		claims, err := m.Verify(ctx, pair.Access, TokenTypeAccess)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.Subject)
		assert.Equal(t, meta, claims.UserMetadata)
		assert.Equal(t, "resume-api-test", claims.Issuer)
	})

	t.Run("refresh token carries metadata", func(t *testing.T) {
		claims, err := m.Verify(ctx, pair.Refresh, TokenTypeRefresh)
		require.NoError(t, err)
		assert.Equal(t, meta, claims.UserMetadata)
		assert.Equal(t, TokenTypeRefresh, claims.TokenType)
	})

	t.Run("types are not interchangeable", func(t *testing.T) {
		_, err := m.Verify(ctx, pair.Refresh, TokenTypeAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)

		_, err = m.Verify(ctx, pair.Access, TokenTypeRefresh)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("refuses to issue without client address", func(t *testing.T) {
		_, err := m.IssuePair("user-1", UserMetadata{UserAgent: "x"})
		assert.ErrorIs(t, err, ErrMissingClientIP)
	})
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	meta := UserMetadata{IPAddress: "198.51.100.7", UserAgent: "ua"}

	t.Run("garbage", func(t *testing.T) {
		m := newTestManager(nil)
		_, err := m.Verify(ctx, "not.a.token", TokenTypeAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)

		_, err = m.Verify(ctx, "", TokenTypeAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong key", func(t *testing.T) {
		pair, err := newTestManager(nil).IssuePair("u", meta)
		require.NoError(t, err)

		other := NewTokenManager(TokenConfig{SigningKey: []byte("another-key")}, nil)
		_, err = other.Verify(ctx, pair.Access, TokenTypeAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		m := newTestManager(nil)
		issued := time.Now().Add(-time.Hour)
		m.now = func() time.Time { return issued }
		pair, err := m.IssuePair("u", meta)
		require.NoError(t, err)

		m.now = time.Now
		_, err = m.Verify(ctx, pair.Access, TokenTypeAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm is rejected", func(t *testing.T) {
		claims := Claims{
			TokenType:    TokenTypeAccess,
			UserMetadata: meta,
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        "x",
				Subject:   "u",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = newTestManager(nil).Verify(ctx, unsigned, TokenTypeAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("blacklist outage is not an invalid token", func(t *testing.T) {
		outage := errors.New("connection refused")
		m := newTestManager(failingBlacklist{err: outage})
		pair, err := m.IssuePair("u", meta)
		require.NoError(t, err)

		_, err = m.Verify(ctx, pair.Refresh, TokenTypeRefresh)
		assert.ErrorIs(t, err, outage)
		assert.NotErrorIs(t, err, ErrInvalidToken)
	})
}

func TestRefreshToAccessCopiesMetadata(t *testing.T) {
	m := newTestManager(NewMemoryBlacklist())
	ctx := context.Background()
	meta := UserMetadata{IPAddress: "198.51.100.7", UserAgent: "Mozilla/5.0 A"}

	pair, err := m.IssuePair("user-1", meta)
	require.NoError(t, err)
	refresh, err := m.Verify(ctx, pair.Refresh, TokenTypeRefresh)
	require.NoError(t, err)

	access, err := m.RefreshToAccess(ctx, refresh)
	require.NoError(t, err)

	claims, err := m.Verify(ctx, access, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, meta, claims.UserMetadata)
	assert.Equal(t, "user-1", claims.Subject)
	assert.NotEqual(t, refresh.ID, claims.ID)
}

func TestBlacklistIsIdempotent(t *testing.T) {
	bl := NewMemoryBlacklist()
	m := newTestManager(bl)
	ctx := context.Background()

	pair, err := m.IssuePair("user-1", UserMetadata{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	claims, err := m.Verify(ctx, pair.Refresh, TokenTypeRefresh)
	require.NoError(t, err)

	require.NoError(t, m.Blacklist(ctx, claims))
	require.NoError(t, m.Blacklist(ctx, claims))

	_, err = m.Verify(ctx, pair.Refresh, TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.RefreshToAccess(ctx, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMemoryBlacklistSweep(t *testing.T) {
	bl := NewMemoryBlacklist()
	ctx := context.Background()
	now := time.Now()
	bl.now = func() time.Time { return now }

	require.NoError(t, bl.Add(ctx, "old", "u", now.Add(-time.Minute)))
	require.NoError(t, bl.Add(ctx, "live", "u", now.Add(time.Hour)))

	ok, err := bl.Contains(ctx, "old")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 1, bl.Sweep())

	ok, err = bl.Contains(ctx, "live")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Error(t, bl.Add(ctx, "", "u", now))
}
