package middleware

import (
	"errors"
	"net/http"

	"github.com/CalumRakk/resume-project/internal/delivery/http/response"
	"github.com/CalumRakk/resume-project/internal/domain"
	"github.com/CalumRakk/resume-project/pkg/apperror"
	"github.com/CalumRakk/resume-project/pkg/auth"
	"github.com/CalumRakk/resume-project/pkg/logger"
	"github.com/CalumRakk/resume-project/pkg/security"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidToken    = "Invalid or expired token"
	msgBindingMismatch = "Token is not valid for this client"
	msgUnknownUser     = "User not found or inactive"
)

// TokenBinding authenticates bearer tokens and rejects any token presented by
// a client other than the one it was issued to. Requests without a token pass
// through anonymously; RequireAuth decides whether a route needs a user.
func TokenBinding(validator *auth.Validator, authUC domain.AuthUsecase, secLog *security.SecurityLogger) gin.HandlerFunc {
	if secLog == nil {
		secLog = security.DefaultLogger()
	}

	return func(c *gin.Context) {
		verdict := validator.Check(c.Request)

		switch verdict.State {
		case auth.StatePassthrough:
			c.Next()
			return

		case auth.StateRejected:
			ctx := c.Request.Context()
			fp := verdict.Fingerprint
			path := c.Request.URL.Path

			if errors.Is(verdict.Err, auth.ErrTokenBindingMismatch) {
				var subject, boundIP string
				if verdict.Claims != nil {
					subject = verdict.Claims.Subject
					boundIP = verdict.Claims.UserMetadata.IPAddress
				}
				secLog.LogTokenBindingMismatch(ctx, subject, boundIP, fp.IPAddress, fp.UserAgent, getRequestID(c), path)
				response.AbortWithError(c, http.StatusUnauthorized, msgBindingMismatch)
				return
			}

			secLog.LogTokenInvalid(ctx, fp.IPAddress, fp.UserAgent, getRequestID(c), path, verdict.Err.Error())
			response.AbortWithError(c, http.StatusUnauthorized, msgInvalidToken)
			return
		}

		if verdict.Anonymous() {
			c.Next()
			return
		}

		user, err := authUC.GetCurrentUser(c.Request.Context(), verdict.Claims.Subject)
		if err != nil {
			cause := err
			appErr, ok := apperror.As(err)
			if ok && appErr.Err != nil {
				cause = appErr.Err
			}

			// only a missing or disabled account is an authentication failure
			if ok && (appErr.Code == http.StatusNotFound || appErr.Code == http.StatusForbidden) {
				logger.Log.Warn("Token subject could not be loaded",
					"user_id", verdict.Claims.Subject,
					"error", cause,
					"request_id", getRequestID(c),
				)
				response.AbortWithError(c, http.StatusUnauthorized, msgUnknownUser)
				return
			}

			// ErrorHandler logs the cause and answers 500
			if !ok || appErr.Code < http.StatusInternalServerError {
				err = apperror.Internal(cause)
			}
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(string(domain.KeyUserID), user.ID)
		c.Set(string(domain.KeyUserEmail), user.Email)
		c.Set(string(domain.KeyUserRole), user.Role)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(string(domain.KeyUserID)) == "" {
			response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole allows only users holding one of roles. It expects RequireAuth
// to have run first.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(string(domain.KeyUserRole))
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		response.Error(c, http.StatusForbidden, "Insufficient permissions", nil)
		c.Abort()
	}
}
