package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// State is the outcome of checking one request.
type State int

const (
	StateUnchecked State = iota
	StateAuthenticated
	StatePassthrough
	StateValidated
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateUnchecked:
		return "unchecked"
	case StateAuthenticated:
		return "authenticated"
	case StatePassthrough:
		return "passthrough"
	case StateValidated:
		return "validated"
	case StateRejected:
		return "rejected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Verdict is what Check decided. Claims is nil for anonymous and
// passthrough requests. Err is set only when State is StateRejected.
type Verdict struct {
	State       State
	Claims      *Claims
	Fingerprint Fingerprint
	Err         error
}

// Proceed reports whether the request may reach its handler.
func (v Verdict) Proceed() bool {
	return v.State == StatePassthrough || v.State == StateValidated
}

// Anonymous reports whether the request carried no token.
func (v Verdict) Anonymous() bool {
	return v.State == StateValidated && v.Claims == nil
}

// ValidatorConfig is injected at construction; there is no package state.
type ValidatorConfig struct {
	// ExcludedPathPrefixes skip binding validation entirely, in order.
	ExcludedPathPrefixes []string
}

// Validator enforces that tokens are only used from the client they were
// issued to.
type Validator struct {
	tokens   *TokenManager
	excluded []string
}

func NewValidator(tokens *TokenManager, cfg ValidatorConfig) *Validator {
	excluded := make([]string, 0, len(cfg.ExcludedPathPrefixes))
	for _, p := range cfg.ExcludedPathPrefixes {
		if p = strings.TrimSpace(p); p != "" {
			excluded = append(excluded, p)
		}
	}
	return &Validator{tokens: tokens, excluded: excluded}
}

// Excluded reports whether path matches a configured exempt prefix.
func (v *Validator) Excluded(path string) bool {
	for _, prefix := range v.excluded {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Check runs the request path state machine for r.
func (v *Validator) Check(r *http.Request) Verdict {
	if v.Excluded(r.URL.Path) {
		return Verdict{State: StatePassthrough}
	}

	fp := FingerprintFromRequest(r)

	token, present := BearerToken(r)
	if !present {
		return Verdict{State: StateValidated, Fingerprint: fp}
	}

	claims, err := v.tokens.Verify(r.Context(), token, TokenTypeAccess)
	if err != nil {
		return Verdict{State: StateRejected, Fingerprint: fp, Err: err}
	}

	// authenticated; now the binding decides
	if err := CheckBinding(claims.UserMetadata, fp); err != nil {
		return Verdict{State: StateRejected, Claims: claims, Fingerprint: fp, Err: err}
	}
	return Verdict{State: StateValidated, Claims: claims, Fingerprint: fp}
}

// Refresh exchanges a refresh token for a new access token after checking the
// caller still matches the token's binding. A mismatch revokes the refresh
// token before failing.
func (v *Validator) Refresh(ctx context.Context, refreshToken string, fp Fingerprint) (string, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return "", ErrMissingToken
	}

	claims, err := v.tokens.Verify(ctx, refreshToken, TokenTypeRefresh)
	if err != nil {
		return "", err
	}

	if err := CheckBinding(claims.UserMetadata, fp); err != nil {
		return "", &MismatchError{
			Claims:    claims,
			RevokeErr: v.tokens.Blacklist(ctx, claims),
			cause:     err,
		}
	}

	return v.tokens.RefreshToAccess(ctx, claims)
}

// Revoke blacklists a verified refresh token. When owner is not empty the
// token must have been issued to that subject. Used by logout.
func (v *Validator) Revoke(ctx context.Context, refreshToken, owner string) (*Claims, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, ErrMissingToken
	}
	claims, err := v.tokens.Verify(ctx, refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	if owner != "" && claims.Subject != owner {
		return nil, fmt.Errorf("%w: token issued to another subject", ErrInvalidToken)
	}
	if err := v.tokens.Blacklist(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// BearerToken returns the token from an "Authorization: Bearer <token>" header.
// present is false when no bearer credentials were sent at all; a bearer
// header with an empty token is present and returns "".
func BearerToken(r *http.Request) (token string, present bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, rest, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return strings.TrimSpace(rest), true
}
