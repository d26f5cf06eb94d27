// Package dto holds the form payloads of the auth pages.
package dto

import "strings"

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// LoginRequest is the POST /login form.
type LoginRequest struct {
	Email    string `form:"email" binding:"required,email" msg:"Please enter a valid email address."`
	Password string `form:"password" binding:"min=5" msg:"Password must have min 5 characters."`
}

func (r *LoginRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
	r.Password = strings.TrimSpace(r.Password)
}

// SignupRequest is the POST /signup form.
type SignupRequest struct {
	Name            string `form:"name" binding:"min=3" msg:"Name must have min 3 characters."`
	Email           string `form:"email" binding:"required,email" msg:"Please enter a valid email."`
	Password        string `form:"password" binding:"min=5" msg:"Password must have min 5 characters."`
	ConfirmPassword string `form:"confirmPassword" binding:"eqfield=Password" msg:"Passwords have to match."`
}

func (r *SignupRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = normalizeEmail(r.Email)
	r.Password = strings.TrimSpace(r.Password)
	r.ConfirmPassword = strings.TrimSpace(r.ConfirmPassword)
}

// ResetRequest is the POST /reset form.
type ResetRequest struct {
	Email string `form:"email" binding:"required,email" msg:"Please enter a valid email."`
}

func (r *ResetRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
}

// NewPasswordRequest is the POST /new-password form rendered from a reset link.
type NewPasswordRequest struct {
	UserID        uint   `form:"userId" binding:"required" msg:"Reset link expired."`
	PasswordToken string `form:"passwordToken" binding:"required" msg:"Reset link expired."`
	Password      string `form:"password" binding:"min=5" msg:"Password must have min 5 characters."`
}

func (r *NewPasswordRequest) Normalize() {
	r.PasswordToken = strings.TrimSpace(r.PasswordToken)
	r.Password = strings.TrimSpace(r.Password)
}
