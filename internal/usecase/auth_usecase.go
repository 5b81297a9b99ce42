package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/CalumRakk/resume-project/internal/domain"
	"github.com/CalumRakk/resume-project/pkg/apperror"
	"github.com/CalumRakk/resume-project/pkg/auth"
	"github.com/CalumRakk/resume-project/pkg/logger"
	"github.com/CalumRakk/resume-project/pkg/security"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const refreshPath = "/v1/refresh-token"

// compared against when the email is unknown so both paths cost one bcrypt run
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("resume-api-dummy-password"), bcrypt.DefaultCost)

type authUsecase struct {
	userRepo  domain.UserRepository
	tokens    *auth.TokenManager
	validator *auth.Validator
	tracker   *security.LoginTracker
	secLog    *security.SecurityLogger
}

func NewAuthUsecase(
	userRepo domain.UserRepository,
	tokens *auth.TokenManager,
	validator *auth.Validator,
	tracker *security.LoginTracker,
	secLog *security.SecurityLogger,
) domain.AuthUsecase {
	if secLog == nil {
		secLog = security.DefaultLogger()
	}
	return &authUsecase{
		userRepo:  userRepo,
		tokens:    tokens,
		validator: validator,
		tracker:   tracker,
		secLog:    secLog,
	}
}

// HashPassword returns the bcrypt hash stored for a user.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// NewUser builds an active user with a fresh id and hashed password.
func NewUser(email, password, role string) (*domain.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	if role == "" {
		role = domain.RoleUser
	}
	now := time.Now()
	return &domain.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (u *authUsecase) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	existing, err := u.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(err)
	}
	if existing != nil {
		return nil, apperror.Conflict("User with this email already exists")
	}

	user, err := NewUser(req.Email, req.Password, domain.RoleUser)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *authUsecase) Login(ctx context.Context, req domain.LoginRequest, client domain.ClientInfo) (*auth.TokenPair, error) {
	fp := client.Fingerprint
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if u.tracker != nil {
		blocked, err := u.tracker.IsBlocked(ctx, email, fp.IPAddress)
		if err != nil {
			logger.Log.Warn("Login tracker unavailable", "error", err)
		} else if blocked {
			u.secLog.LogLoginBlocked(ctx, email, fp.IPAddress, fp.UserAgent, client.RequestID)
			return nil, apperror.TooManyRequests("Too many failed login attempts. Please try again later.")
		}
	}

	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	hash := dummyHash
	if user != nil {
		hash = []byte(user.PasswordHash)
	}
	passwordErr := bcrypt.CompareHashAndPassword(hash, []byte(req.Password))

	if user == nil || passwordErr != nil || !user.IsActive {
		if u.tracker != nil {
			if blocked, _, err := u.tracker.RecordFailedAttempt(ctx, email, fp.IPAddress, fp.UserAgent, client.RequestID); err != nil {
				logger.Log.Warn("Failed to record login attempt", "error", err)
			} else if blocked {
				return nil, apperror.TooManyRequests("Too many failed login attempts. Please try again later.")
			}
		} else {
			u.secLog.LogLoginFailed(ctx, email, fp.IPAddress, fp.UserAgent, client.RequestID, "invalid_credentials")
		}
		return nil, apperror.Unauthorized("Invalid email or password")
	}

	pair, err := u.tokens.IssuePair(user.ID, auth.MetadataFor(fp))
	if err != nil {
		if errors.Is(err, auth.ErrMissingClientIP) {
			return nil, apperror.BadRequest("Unable to determine client address")
		}
		return nil, apperror.Internal(err)
	}

	if u.tracker != nil {
		if err := u.tracker.ClearAttempts(ctx, email, fp.IPAddress); err != nil {
			logger.Log.Warn("Failed to clear login attempts", "error", err)
		}
	}
	u.secLog.LogLoginSuccess(ctx, user.ID, fp.IPAddress, fp.UserAgent, client.RequestID)

	return pair, nil
}

// Refresh returns auth sentinel errors unchanged so the caller can tell
// authentication failures from store outages.
func (u *authUsecase) Refresh(ctx context.Context, refreshToken string, client domain.ClientInfo) (string, error) {
	fp := client.Fingerprint

	access, err := u.validator.Refresh(ctx, refreshToken, fp)
	if err == nil {
		return access, nil
	}

	var mismatch *auth.MismatchError
	switch {
	case errors.As(err, &mismatch):
		claims := mismatch.Claims
		u.secLog.LogTokenBindingMismatch(ctx, claims.Subject, claims.UserMetadata.IPAddress,
			fp.IPAddress, fp.UserAgent, client.RequestID, refreshPath)
		if mismatch.RevokeErr != nil {
			logger.Log.Error("Failed to revoke refresh token after binding mismatch",
				"user_id", claims.Subject, "error", mismatch.RevokeErr)
		} else {
			u.secLog.LogTokenRevoked(ctx, claims.Subject, claims.ID, fp.IPAddress, client.RequestID, "binding_mismatch")
		}
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
		u.secLog.LogTokenInvalid(ctx, fp.IPAddress, fp.UserAgent, client.RequestID, refreshPath, err.Error())
	default:
		logger.Log.Error("Token refresh failed", "error", err)
	}
	return "", err
}

func (u *authUsecase) Logout(ctx context.Context, userID, refreshToken string, client domain.ClientInfo) error {
	claims, err := u.validator.Revoke(ctx, refreshToken, userID)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingToken):
			return apperror.BadRequest("Refresh token is required")
		case errors.Is(err, auth.ErrInvalidToken):
			return apperror.Unauthorized("Invalid refresh token")
		default:
			return apperror.Internal(err)
		}
	}

	fp := client.Fingerprint
	u.secLog.LogTokenRevoked(ctx, claims.Subject, claims.ID, fp.IPAddress, client.RequestID, "logout")
	u.secLog.LogLogout(ctx, claims.Subject, fp.IPAddress, fp.UserAgent, client.RequestID)
	return nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal(err)
	}
	if !user.IsActive {
		return nil, apperror.Forbidden("Account is disabled")
	}
	return user, nil
}
