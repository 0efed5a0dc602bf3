package domain

import (
	"fmt"
	"net/http"
)

// Error codes carried in SessionError.Details["code"].
const (
	CodeSessionExpired = "session_expired"
)

// SessionError is the single failure shape produced by the request transport.
// Status 0 means no HTTP response was received.
type SessionError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *SessionError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// Code returns details.code when the details carry one.
func (e *SessionError) Code() string {
	m, ok := e.Details.(map[string]any)
	if !ok {
		return ""
	}
	code, _ := m["code"].(string)
	return code
}

// IsConnectivity reports a transport failure with no HTTP response.
func (e *SessionError) IsConnectivity() bool {
	return e.Status == 0
}

// IsSessionExpired reports that the single refresh attempt was exhausted and
// local credentials were wiped.
func (e *SessionError) IsSessionExpired() bool {
	return e.Status == http.StatusUnauthorized && e.Code() == CodeSessionExpired
}

// IsValidation reports a client error carrying field-level details.
func (e *SessionError) IsValidation() bool {
	return e.Status >= 400 && e.Status < 500 && e.Details != nil && !e.IsSessionExpired()
}

// IsServer reports a 5xx response.
func (e *SessionError) IsServer() bool {
	return e.Status >= 500
}

// NewSessionExpiredError builds the error returned after a failed refresh.
func NewSessionExpiredError() *SessionError {
	return &SessionError{
		Status:  http.StatusUnauthorized,
		Message: "session expired, please log in again",
		Details: map[string]any{"code": CodeSessionExpired},
	}
}
