// Package handler serves the login, signup and password reset pages.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/feature/auth/domain/entity"
	"storefront/internal/feature/auth/transport/http/dto"
	"storefront/internal/feature/auth/usecase"
	jwtmw "storefront/internal/platform/jwt"
	"storefront/internal/platform/validation"
	"storefront/internal/platform/web"
)

// AuthUsecase defines the auth operations the pages need.
// Following Go convention, the consumer (handler) defines the interface.
type AuthUsecase interface {
	Signup(ctx context.Context, name, email, password string) (*entity.User, error)
	Login(ctx context.Context, email, password string, client usecase.ClientInfo) (*usecase.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	RequestPasswordReset(ctx context.Context, email string) error
	VerifyResetToken(ctx context.Context, token string) (*entity.User, error)
	ResetPassword(ctx context.Context, userID uint, token, password string) error
}

// CookieOptions controls the login cookie.
type CookieOptions struct {
	Name   string
	Secure bool
}

// AuthHandler handles the auth pages and owns the login cookie.
type AuthHandler struct {
	auth   AuthUsecase
	cookie CookieOptions
	now    func() time.Time
}

func NewAuthHandler(auth AuthUsecase, cookie CookieOptions) *AuthHandler {
	return &AuthHandler{auth: auth, cookie: cookie, now: time.Now}
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}

func (h *AuthHandler) GetLogin(c *gin.Context) {
	web.Render(c, http.StatusOK, "auth/login.html", gin.H{
		"pageTitle":        "Login",
		"path":             "/login",
		"oldInput":         dto.LoginRequest{},
		"validationErrors": map[string]bool{},
	})
}

// PostLogin opens a session and sets the login cookie.
// Wrong email and wrong password produce the same message.
func (h *AuthHandler) PostLogin(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		zap.S().Warnw("login validation failed", "error", err, "remote_addr", c.ClientIP())
		h.renderLogin(c, req, validation.FirstMessage(err), validation.InvalidFields(err))
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, usecase.ClientInfo{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if errors.Is(err, usecase.ErrInvalidCredentials) {
		zap.S().Warnw("login failed", "email", req.Email, "remote_addr", c.ClientIP())
		h.renderLogin(c, req, "Invalid email or password.", map[string]bool{"email": true, "password": true})
		return
	}
	if err != nil {
		web.Fail(c, err)
		return
	}

	h.setCookie(c, res.Token, int(res.ExpiresAt.Sub(h.now()).Seconds()))
	zap.S().Infow("user login successful", "user_id", res.User.ID, "email", req.Email, "remote_addr", c.ClientIP())
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) renderLogin(c *gin.Context, req dto.LoginRequest, msg string, invalid map[string]bool) {
	web.Render(c, http.StatusUnprocessableEntity, "auth/login.html", gin.H{
		"pageTitle":        "Login",
		"path":             "/login",
		"errorMessage":     msg,
		"oldInput":         dto.LoginRequest{Email: req.Email},
		"validationErrors": invalid,
	})
}

func (h *AuthHandler) GetSignup(c *gin.Context) {
	web.Render(c, http.StatusOK, "auth/signup.html", gin.H{
		"pageTitle":        "Signup",
		"path":             "/signup",
		"oldInput":         dto.SignupRequest{},
		"validationErrors": map[string]bool{},
	})
}

// PostSignup creates the account and sends the user to the login page.
func (h *AuthHandler) PostSignup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		zap.S().Warnw("signup validation failed", "error", err, "remote_addr", c.ClientIP())
		h.renderSignup(c, req, validation.FirstMessage(err), validation.InvalidFields(err))
		return
	}

	user, err := h.auth.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if errors.Is(err, usecase.ErrEmailAlreadyExists) {
		h.renderSignup(c, req, "Email already exists, pick a different one.", map[string]bool{"email": true})
		return
	}
	if err != nil {
		web.Fail(c, err)
		return
	}

	zap.S().Infow("user signup successful", "user_id", user.ID, "email", req.Email, "remote_addr", c.ClientIP())
	web.AddFlash(c, web.FlashSuccess, "Account created successfully, login now.")
	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) renderSignup(c *gin.Context, req dto.SignupRequest, msg string, invalid map[string]bool) {
	web.Render(c, http.StatusUnprocessableEntity, "auth/signup.html", gin.H{
		"pageTitle":        "Signup",
		"path":             "/signup",
		"errorMessage":     msg,
		"oldInput":         dto.SignupRequest{Name: req.Name, Email: req.Email},
		"validationErrors": invalid,
	})
}

// PostLogout revokes the current session and clears the cookie.
func (h *AuthHandler) PostLogout(c *gin.Context) {
	if sid, ok := jwtmw.SessionID(c); ok {
		if err := h.auth.Logout(c.Request.Context(), sid); err != nil {
			zap.S().Errorw("failed to revoke session", "error", err)
		}
	}
	h.setCookie(c, "", -1)
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) GetReset(c *gin.Context) {
	web.Render(c, http.StatusOK, "auth/reset.html", gin.H{
		"pageTitle": "Reset Password",
		"path":      "/reset",
	})
}

// PostReset emails a reset link. The response does not reveal whether the email is registered.
func (h *AuthHandler) PostReset(c *gin.Context) {
	var req dto.ResetRequest
	if err := c.ShouldBind(&req); err != nil {
		web.Render(c, http.StatusUnprocessableEntity, "auth/reset.html", gin.H{
			"pageTitle":    "Reset Password",
			"path":         "/reset",
			"errorMessage": validation.FirstMessage(err),
		})
		return
	}

	if err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		web.Fail(c, err)
		return
	}
	web.AddFlash(c, web.FlashSuccess, "Sent an email to reset password.")
	c.Redirect(http.StatusFound, "/login")
}

// GetNewPassword shows the new password form for a valid reset link.
func (h *AuthHandler) GetNewPassword(c *gin.Context) {
	token := c.Param("token")
	user, err := h.auth.VerifyResetToken(c.Request.Context(), token)
	if errors.Is(err, usecase.ErrInvalidResetToken) {
		web.AddFlash(c, web.FlashError, "Reset link expired.")
		c.Redirect(http.StatusFound, "/reset")
		return
	}
	if err != nil {
		web.Fail(c, err)
		return
	}
	h.renderNewPassword(c, http.StatusOK, user.ID, token, "")
}

// PostNewPassword redeems the reset token.
func (h *AuthHandler) PostNewPassword(c *gin.Context) {
	var req dto.NewPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderNewPassword(c, http.StatusUnprocessableEntity, req.UserID, req.PasswordToken, validation.FirstMessage(err))
		return
	}

	err := h.auth.ResetPassword(c.Request.Context(), req.UserID, req.PasswordToken, req.Password)
	if errors.Is(err, usecase.ErrInvalidResetToken) {
		zap.S().Warnw("password reset rejected", "user_id", req.UserID, "remote_addr", c.ClientIP())
		web.AddFlash(c, web.FlashError, "Reset link expired.")
		c.Redirect(http.StatusFound, "/reset")
		return
	}
	if err != nil {
		web.Fail(c, err)
		return
	}

	zap.S().Infow("password reset", "user_id", req.UserID, "remote_addr", c.ClientIP())
	web.AddFlash(c, web.FlashSuccess, "Password updated successfully.")
	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) renderNewPassword(c *gin.Context, status int, userID uint, token, msg string) {
	data := gin.H{
		"pageTitle":     "New Password",
		"path":          "/new-password",
		"userId":        userID,
		"passwordToken": token,
	}
	if msg != "" {
		data["errorMessage"] = msg
	}
	web.Render(c, status, "auth/new-password.html", data)
}
