package v1

import (
	"net/http"
	"strconv"

	"github.com/CalumRakk/resume-project/internal/delivery/http/response"
	"github.com/CalumRakk/resume-project/internal/domain"
	"github.com/CalumRakk/resume-project/pkg/apperror"
	"github.com/CalumRakk/resume-project/pkg/auth"
	"github.com/CalumRakk/resume-project/pkg/validation"

	"github.com/gin-gonic/gin"
)

// bindJSON binds the body into obj and writes a 400 listing every failed
// field when it doesn't validate.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		response.Error(c, http.StatusBadRequest, "Validation failed", validation.FormatValidationErrors(err))
		return false
	}
	return true
}

// paramID parses a positive int64 path parameter.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.Error(apperror.BadRequest("Invalid " + name))
		return 0, false
	}
	return id, true
}

func currentUserID(c *gin.Context) string {
	return c.GetString(string(domain.KeyUserID))
}

func clientInfo(c *gin.Context) domain.ClientInfo {
	return domain.ClientInfo{
		Fingerprint: auth.FingerprintFromRequest(c.Request),
		RequestID:   c.GetString("RequestID"),
	}
}
