package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abygeorge8848/VolunteeringPortal/internal/dto"
	"github.com/abygeorge8848/VolunteeringPortal/internal/service"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/response"
)

const refreshCookieName = "refresh_token"

// CookieOptions attributes of the refresh token cookie
type CookieOptions struct {
	Domain string
	Secure bool
	MaxAge time.Duration
}

// AuthHandler login, registration, tokens and password recovery
type AuthHandler struct {
	authSvc  service.AuthService
	resetSvc service.PasswordResetService
	cookie   CookieOptions
}

// NewAuthHandler creates an AuthHandler. A nil cookie uses insecure host-only
// cookies that live for a day.
func NewAuthHandler(authSvc service.AuthService, resetSvc service.PasswordResetService, cookie *CookieOptions) *AuthHandler {
	h := &AuthHandler{
		authSvc:  authSvc,
		resetSvc: resetSvc,
		cookie:   CookieOptions{MaxAge: 24 * time.Hour},
	}
	if cookie != nil {
		h.cookie = *cookie
	}
	return h
}

// Login volunteer login by username
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "username and password are required")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		handleAuthError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	response.OK(c, result)
}

// AdminLogin admin login by email
// POST /api/v1/admin/auth/login
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "email and password are required")
		return
	}

	result, err := h.authSvc.AdminLogin(c.Request.Context(), &req)
	if err != nil {
		handleAuthError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	response.OK(c, result)
}

// Register volunteer self-registration
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterVolunteerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "invalid registration: "+err.Error())
		return
	}

	result, err := h.authSvc.RegisterVolunteer(c.Request.Context(), &req)
	if err != nil {
		handleAuthError(c, err)
		return
	}

	response.Created(c, result)
}

// CreateAdmin another admin account, admin only
// POST /api/v1/admin/admins
func (h *AuthHandler) CreateAdmin(c *gin.Context) {
	var req dto.RegisterAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "invalid admin: "+err.Error())
		return
	}

	result, err := h.authSvc.RegisterAdmin(c.Request.Context(), &req)
	if err != nil {
		handleAuthError(c, err)
		return
	}

	response.Created(c, result)
}

// RefreshToken swaps a refresh token for a new pair. The token comes from the
// body or, failing that, the refresh cookie.
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		cookie, cookieErr := c.Cookie(refreshCookieName)
		if cookieErr != nil || cookie == "" {
			response.BadRequest(c, response.CodeInvalidParams, "refresh_token is required")
			return
		}
		req.RefreshToken = cookie
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		handleAuthError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	response.OK(c, result)
}

// Logout blacklists the access token and clears the refresh cookie
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, exp := tokenIdentity(c)
	if jti != "" {
		if err := h.authSvc.Logout(c.Request.Context(), jti, exp); err != nil {
			response.InternalError(c)
			return
		}
	}

	h.clearRefreshCookie(c)
	response.OKMessage(c, "logged out", nil)
}

// GetCurrentUser identity behind the access token
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.authSvc.GetCurrentUser(c.Request.Context(), userID, role)
	if err != nil {
		handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// ChangePassword
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "new password must be 8 to 72 characters")
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), userID, role, &req); err != nil {
		handleAuthError(c, err)
		return
	}

	response.OKMessage(c, "password updated", nil)
}

// RequestPasswordReset returns the handler that mails a reset link for the
// given account type.
// POST /api/v1/auth/password-reset
// POST /api/v1/admin/auth/password-reset
func (h *AuthHandler) RequestPasswordReset(accountType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.PasswordResetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, response.CodeInvalidParams, "a valid email is required")
			return
		}

		if err := h.resetSvc.RequestReset(c.Request.Context(), accountType, req.Email); err != nil {
			handleResetError(c, err)
			return
		}

		response.OKMessage(c, "password reset link sent", nil)
	}
}

// ConfirmPasswordReset consumes a reset token
// POST /api/v1/auth/password-reset/confirm
// POST /api/v1/admin/auth/password-reset/confirm
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req dto.PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "token and a new password of 8 to 72 characters are required")
		return
	}

	if err := h.resetSvc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		handleResetError(c, err)
		return
	}

	response.OKMessage(c, "password has been reset", nil)
}

// ── cookies ──

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	if token == "" {
		return
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, token, int(h.cookie.MaxAge.Seconds()), "/api/v1/auth", h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, "", -1, "/api/v1/auth", h.cookie.Domain, h.cookie.Secure, true)
}

// ── error mapping ──

func handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 11001, "invalid username or password")
	case errors.Is(err, service.ErrInvalidToken):
		response.Unauthorized(c, 11002, "invalid or expired token")
	case errors.Is(err, service.ErrWrongPassword):
		response.BadRequest(c, 11003, "current password is incorrect")
	case errors.Is(err, service.ErrUsernameExists):
		response.Conflict(c, 11004, "username already exists")
	case errors.Is(err, service.ErrEmailExists):
		response.Conflict(c, 11005, "email already exists")
	case errors.Is(err, service.ErrAccountNotFound):
		response.NotFound(c, 11006, "account not found")
	default:
		response.FromError(c, err)
	}
}

func handleResetError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmailNotFound):
		response.NotFound(c, 17001, "no account is registered with this email")
	case errors.Is(err, service.ErrResetTokenInvalid):
		response.BadRequest(c, 17002, "reset token is invalid or has expired")
	default:
		response.FromError(c, err)
	}
}
