package v1

import (
	"errors"
	"io"
	"net/http"

	"github.com/CalumRakk/resume-project/internal/delivery/http/response"
	"github.com/CalumRakk/resume-project/internal/domain"
	"github.com/CalumRakk/resume-project/pkg/auth"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC domain.AuthUsecase
}

// NewAuthHandler registers the token endpoints. tokenLimit guards login and
// refresh.
func NewAuthHandler(public, protected *gin.RouterGroup, authUC domain.AuthUsecase, tokenLimit gin.HandlerFunc) {
	handler := &AuthHandler{authUC: authUC}

	public.POST("/register", handler.Register)
	public.POST("/login", tokenLimit, handler.Login)
	public.POST("/refresh-token", tokenLimit, handler.RefreshToken)

	protected.POST("/logout", handler.Logout)
	protected.GET("/auth/me", handler.Me)
}

// Register godoc
// @Summary      Register
// @Description  Create a user account with email and password.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        register  body      domain.RegisterRequest  true  "Credentials"
// @Success      201       {object}  response.Response{data=domain.User}
// @Failure      400       {object}  response.Response
// @Failure      409       {object}  response.Response
// @Router       /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authUC.Register(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "User registered", user)
}

// Login godoc
// @Summary      Login
// @Description  Exchange credentials for an access/refresh pair bound to the calling client (IP and User-Agent).
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        login  body      domain.LoginRequest  true  "Credentials"
// @Success      200    {object}  auth.TokenPair
// @Failure      400    {object}  response.Response
// @Failure      401    {object}  response.Response
// @Failure      429    {object}  response.Response
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.authUC.Login(c.Request.Context(), req, clientInfo(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

type accessResponse struct {
	Access string `json:"access"`
}

// RefreshToken godoc
// @Summary      Refresh access token
// @Description  Issue a new access token. A refresh token presented from a different client is revoked.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        refresh  body      domain.RefreshRequest  true  "Refresh token"
// @Success      200      {object}  accessResponse
// @Failure      401      {object}  response.ErrorBody
// @Failure      500      {object}  response.ErrorBody
// @Router       /refresh-token [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req domain.RefreshRequest
	// an empty body is a missing token, not a malformed request
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.AbortWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	access, err := h.authUC.Refresh(c.Request.Context(), req.Refresh, clientInfo(c))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenBindingMismatch):
			response.AbortWithError(c, http.StatusUnauthorized, "Token is not valid for this client")
		case errors.Is(err, auth.ErrMissingToken):
			response.AbortWithError(c, http.StatusUnauthorized, "Refresh token is required")
		case errors.Is(err, auth.ErrInvalidToken):
			response.AbortWithError(c, http.StatusUnauthorized, "Invalid or expired refresh token")
		default:
			response.AbortWithError(c, http.StatusInternalServerError, "Unable to refresh token")
		}
		return
	}
	c.JSON(http.StatusOK, accessResponse{Access: access})
}

// Logout godoc
// @Summary      Logout
// @Description  Revoke the caller's refresh token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        logout  body      domain.LogoutRequest  true  "Refresh token"
// @Success      200     {object}  response.Response
// @Failure      400     {object}  response.Response
// @Failure      401     {object}  response.Response
// @Router       /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req domain.LogoutRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authUC.Logout(c.Request.Context(), currentUserID(c), req.Refresh, clientInfo(c)); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Logged out", nil)
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authUC.GetCurrentUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User profile", user)
}
