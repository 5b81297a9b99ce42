package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	homeIP    = "198.51.100.7"
	attackIP  = "203.0.113.9"
	browserUA = "Mozilla/5.0 A"
)

func newRequest(path, ip, ua, token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	r.RemoteAddr = ip + ":40000"
	if ua != "" {
		r.Header.Set("User-Agent", ua)
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

func newTestValidator(t *testing.T) (*Validator, *TokenManager) {
	t.Helper()
	m := newTestManager(NewMemoryBlacklist())
	v := NewValidator(m, ValidatorConfig{
		ExcludedPathPrefixes: []string{"/v1/login", " /v1/health ", ""},
	})
	return v, m
}

func TestValidatorCheck(t *testing.T) {
	v, m := newTestValidator(t)
	pair, err := m.IssuePair("user-1", UserMetadata{IPAddress: homeIP, UserAgent: browserUA})
	require.NoError(t, err)

	t.Run("same client is validated", func(t *testing.T) {
		verdict := v.Check(newRequest("/v1/resumes", homeIP, browserUA, pair.Access))
		assert.Equal(t, StateValidated, verdict.State)
		assert.True(t, verdict.Proceed())
		require.NotNil(t, verdict.Claims)
		assert.Equal(t, "user-1", verdict.Claims.Subject)
	})

	t.Run("different address is rejected", func(t *testing.T) {
		verdict := v.Check(newRequest("/v1/resumes", attackIP, browserUA, pair.Access))
		assert.Equal(t, StateRejected, verdict.State)
		assert.False(t, verdict.Proceed())
		assert.ErrorIs(t, verdict.Err, ErrTokenBindingMismatch)
	})

	t.Run("different agent is rejected", func(t *testing.T) {
		verdict := v.Check(newRequest("/v1/resumes", homeIP, "curl/8.0", pair.Access))
		assert.Equal(t, StateRejected, verdict.State)
		assert.ErrorIs(t, verdict.Err, ErrTokenBindingMismatch)
	})

	t.Run("forwarded client is the one compared", func(t *testing.T) {
		r := newRequest("/v1/resumes", "10.0.0.1", browserUA, pair.Access)
		r.Header.Set("X-Forwarded-For", homeIP+", 10.0.0.1")
		assert.Equal(t, StateValidated, v.Check(r).State)
	})

	t.Run("anonymous request proceeds", func(t *testing.T) {
		verdict := v.Check(newRequest("/v1/templates", attackIP, "", ""))
		assert.Equal(t, StateValidated, verdict.State)
		assert.True(t, verdict.Anonymous())
		assert.Nil(t, verdict.Err)
	})

	t.Run("non bearer scheme is anonymous", func(t *testing.T) {
		r := newRequest("/v1/templates", homeIP, browserUA, "")
		r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		assert.True(t, v.Check(r).Anonymous())
	})

	t.Run("invalid token is rejected as invalid", func(t *testing.T) {
		verdict := v.Check(newRequest("/v1/resumes", homeIP, browserUA, "garbage"))
		assert.Equal(t, StateRejected, verdict.State)
		assert.ErrorIs(t, verdict.Err, ErrInvalidToken)
		assert.NotErrorIs(t, verdict.Err, ErrTokenBindingMismatch)
	})

	t.Run("empty bearer is rejected", func(t *testing.T) {
		r := newRequest("/v1/resumes", homeIP, browserUA, "")
		r.Header.Set("Authorization", "Bearer ")
		assert.ErrorIs(t, v.Check(r).Err, ErrInvalidToken)
	})

	t.Run("refresh token cannot authenticate requests", func(t *testing.T) {
		verdict := v.Check(newRequest("/v1/resumes", homeIP, browserUA, pair.Refresh))
		assert.ErrorIs(t, verdict.Err, ErrInvalidToken)
	})

	t.Run("excluded prefix bypasses validation", func(t *testing.T) {
		for _, r := range []*http.Request{
			newRequest("/v1/login", attackIP, "evil", ""),
			newRequest("/v1/login/", attackIP, "evil", pair.Access),
			newRequest("/v1/health", attackIP, "evil", "garbage"),
		} {
			verdict := v.Check(r)
			assert.Equal(t, StatePassthrough, verdict.State, r.URL.Path)
			assert.True(t, verdict.Proceed())
			assert.Nil(t, verdict.Claims)
		}
	})

	t.Run("blank prefixes are ignored", func(t *testing.T) {
		assert.False(t, v.Excluded("/v1/resumes"))
		assert.True(t, v.Excluded("/v1/health"))
	})
}

func TestValidatorCheckRange(t *testing.T) {
	v, m := newTestValidator(t)
	pair, err := m.IssuePair("user-1", UserMetadata{IPAddress: "10.0.0.0/24", UserAgent: browserUA})
	require.NoError(t, err)

	assert.Equal(t, StateValidated, v.Check(newRequest("/v1/resumes", "10.0.0.200", browserUA, pair.Access)).State)
	assert.Equal(t, StateRejected, v.Check(newRequest("/v1/resumes", "10.0.1.200", browserUA, pair.Access)).State)
}

func TestValidatorRefresh(t *testing.T) {
	ctx := context.Background()
	home := Fingerprint{IPAddress: homeIP, UserAgent: browserUA}

	t.Run("missing token", func(t *testing.T) {
		v, _ := newTestValidator(t)
		_, err := v.Refresh(ctx, "  ", home)
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("invalid token", func(t *testing.T) {
		v, _ := newTestValidator(t)
		_, err := v.Refresh(ctx, "garbage", home)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		v, m := newTestValidator(t)
		pair, err := m.IssuePair("user-1", MetadataFor(home))
		require.NoError(t, err)
		_, err = v.Refresh(ctx, pair.Access, home)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("matching client gets a new bound access token", func(t *testing.T) {
		v, m := newTestValidator(t)
		pair, err := m.IssuePair("user-1", MetadataFor(home))
		require.NoError(t, err)

		access, err := v.Refresh(ctx, pair.Refresh, home)
		require.NoError(t, err)

		verdict := v.Check(newRequest("/v1/resumes", homeIP, browserUA, access))
		assert.Equal(t, StateValidated, verdict.State)

		// refreshing again is allowed, nothing was revoked
		_, err = v.Refresh(ctx, pair.Refresh, home)
		assert.NoError(t, err)
	})

	t.Run("mismatch revokes the refresh token", func(t *testing.T) {
		v, m := newTestValidator(t)
		pair, err := m.IssuePair("user-1", MetadataFor(home))
		require.NoError(t, err)

		_, err = v.Refresh(ctx, pair.Refresh, Fingerprint{IPAddress: attackIP, UserAgent: browserUA})
		assert.ErrorIs(t, err, ErrTokenBindingMismatch)
		var mismatch *MismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.NoError(t, mismatch.RevokeErr)

		// now from the legitimate client: revoked, not mismatched
		_, err = v.Refresh(ctx, pair.Refresh, home)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.NotErrorIs(t, err, ErrTokenBindingMismatch)
	})

	t.Run("agent mismatch also revokes", func(t *testing.T) {
		v, m := newTestValidator(t)
		pair, err := m.IssuePair("user-1", MetadataFor(home))
		require.NoError(t, err)

		_, err = v.Refresh(ctx, pair.Refresh, Fingerprint{IPAddress: homeIP, UserAgent: "curl/8.0"})
		assert.ErrorIs(t, err, ErrTokenBindingMismatch)

		_, err = v.Refresh(ctx, pair.Refresh, home)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("mismatch stays a mismatch when revocation fails", func(t *testing.T) {
		bl := &flakyBlacklist{MemoryBlacklist: NewMemoryBlacklist(), addErr: errors.New("redis down")}
		m := newTestManager(bl)
		v := NewValidator(m, ValidatorConfig{})
		pair, err := m.IssuePair("user-1", MetadataFor(home))
		require.NoError(t, err)

		_, err = v.Refresh(ctx, pair.Refresh, Fingerprint{IPAddress: attackIP, UserAgent: browserUA})
		assert.ErrorIs(t, err, ErrTokenBindingMismatch)
		assert.ErrorIs(t, err, bl.addErr)

		var mismatch *MismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.Equal(t, "user-1", mismatch.Claims.Subject)
		assert.Equal(t, homeIP, mismatch.Claims.UserMetadata.IPAddress)
	})
}

func TestValidatorRevoke(t *testing.T) {
	ctx := context.Background()
	v, m := newTestValidator(t)
	home := Fingerprint{IPAddress: homeIP, UserAgent: browserUA}
	pair, err := m.IssuePair("user-1", MetadataFor(home))
	require.NoError(t, err)

	_, err = v.Revoke(ctx, pair.Refresh, "user-2")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// still usable after the refused revocation
	_, err = v.Refresh(ctx, pair.Refresh, home)
	require.NoError(t, err)

	claims, err := v.Revoke(ctx, pair.Refresh, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)

	_, err = v.Refresh(ctx, pair.Refresh, home)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Revoke(ctx, "", "")
	assert.ErrorIs(t, err, ErrMissingToken)
}

// TestReplayScenario walks through login, use, replay from another network and
// the refresh attempts that follow.
func TestReplayScenario(t *testing.T) {
	ctx := context.Background()
	v, m := newTestValidator(t)

	login := newRequest("/v1/login", homeIP, browserUA, "")
	pair, err := m.IssuePair("user-1", MetadataFor(FingerprintFromRequest(login)))
	require.NoError(t, err)

	assert.Equal(t, StateValidated, v.Check(newRequest("/v1/resumes", homeIP, browserUA, pair.Access)).State)

	replay := v.Check(newRequest("/v1/resumes", attackIP, browserUA, pair.Access))
	assert.Equal(t, StateRejected, replay.State)
	assert.ErrorIs(t, replay.Err, ErrTokenBindingMismatch)

	_, err = v.Refresh(ctx, pair.Refresh, Fingerprint{IPAddress: attackIP, UserAgent: browserUA})
	assert.ErrorIs(t, err, ErrTokenBindingMismatch)

	_, err = v.Refresh(ctx, pair.Refresh, Fingerprint{IPAddress: homeIP, UserAgent: browserUA})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "passthrough", StatePassthrough.String())
	assert.Equal(t, "rejected", StateRejected.String())
	assert.Equal(t, "state(42)", State(42).String())
}

type flakyBlacklist struct {
	*MemoryBlacklist
	addErr error
}

func (f *flakyBlacklist) Add(context.Context, string, string, time.Time) error { return f.addErr }
