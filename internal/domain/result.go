package domain

import (
	"encoding/json"
	"errors"
)

// Result is the uniform outcome of a session operation. Failures are carried
// as data in Err rather than returned as a Go error.
type Result struct {
	User    *UserProfile
	Message string
	Err     *SessionError
}

// Ok builds a successful result.
func Ok(user *UserProfile, message string) Result {
	return Result{User: user, Message: message}
}

// Fail builds a failed result from any error. A non-SessionError is wrapped
// with status 0; an empty message falls back to fallback.
func Fail(err error, fallback string) Result {
	var sessErr *SessionError
	if !errors.As(err, &sessErr) {
		sessErr = &SessionError{Message: err.Error()}
	}
	if sessErr.Message == "" {
		copied := *sessErr
		copied.Message = fallback
		sessErr = &copied
	}
	return Result{Err: sessErr}
}

// Success reports whether the operation succeeded.
func (r Result) Success() bool {
	return r.Err == nil
}

// ErrorMessage returns the failure message, or "" on success.
func (r Result) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Message
}

// Details returns the failure details (field-level validation errors), if any.
func (r Result) Details() any {
	if r.Err == nil {
		return nil
	}
	return r.Err.Details
}

type resultJSON struct {
	Success bool         `json:"success"`
	User    *UserProfile `json:"user,omitempty"`
	Message string       `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
	Details any          `json:"details,omitempty"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		Success: r.Success(),
		User:    r.User,
		Message: r.Message,
		Error:   r.ErrorMessage(),
		Details: r.Details(),
	})
}
