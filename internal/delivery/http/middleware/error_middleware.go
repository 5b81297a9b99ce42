package middleware

import (
	"net/http"

	"github.com/CalumRakk/resume-project/internal/delivery/http/response"
	"github.com/CalumRakk/resume-project/pkg/apperror"
	"github.com/CalumRakk/resume-project/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr, ok := apperror.As(err)
		if ok && appErr.Code < http.StatusInternalServerError {
			response.Error(c, appErr.Code, appErr.Message, nil)
			return
		}
		if ok && appErr.Err != nil {
			err = appErr.Err
		}

		// Internal details stay in the server log.
		logger.Log.Error("Internal server error",
			"error", err,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"request_id", getRequestID(c),
		)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
