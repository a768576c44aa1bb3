package model

import (
	"errors"
	"time"
)

// Session binds a gateway session ID to the upstream bearer credential
// issued at login. The credential is read by every outgoing call,
// written once at login and cleared at logout or on an upstream
// auth rejection.
type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TerminationReason records why a session ended.
type TerminationReason string

const (
	TerminationLogout       TerminationReason = "logout"
	TerminationAuthRejected TerminationReason = "auth_rejected"
	TerminationExpired      TerminationReason = "expired"
)

var ErrSessionNotFound = errors.New("session not found")

// LoginRequest types
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	SessionID string    `json:"session_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}
