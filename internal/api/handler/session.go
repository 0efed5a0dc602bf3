package handler

import (
	"net/http"
	"time"

	"github.com/Rrens/profilesync/internal/api/response"
	"github.com/Rrens/profilesync/internal/domain"
	"github.com/Rrens/profilesync/internal/security"
	"github.com/Rrens/profilesync/internal/service"
)

// TokenSource exposes the stored token pair.
type TokenSource interface {
	Tokens() domain.TokenPair
}

// SessionHandler handles sign-in, sign-up and sign-out.
type SessionHandler struct {
	session *service.SessionService
	tokens  TokenSource
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(session *service.SessionService, tokens TokenSource) *SessionHandler {
	return &SessionHandler{session: session, tokens: tokens}
}

// Login handles user login
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input domain.LoginInput
	if !decode(w, r, &input) {
		return
	}

	response.Result(w, http.StatusOK, h.session.Login(r.Context(), input.Email, input.Password))
}

// Register handles user registration
func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input domain.RegisterInput
	if !decode(w, r, &input) {
		return
	}

	response.Result(w, http.StatusCreated, h.session.Register(r.Context(), input))
}

// Logout always succeeds locally, whatever the server said.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.session.Logout(r.Context())
	response.OK(w, map[string]string{
		"message": "logged out",
	})
}

type sessionStatus struct {
	Authenticated   bool                `json:"authenticated"`
	User            *domain.UserProfile `json:"user,omitempty"`
	AccessExpiresAt *time.Time          `json:"accessExpiresAt,omitempty"`
	AccessExpired   bool                `json:"accessExpired"`
}

// Status reports the locally known session. The access token's expiry is read
// from its unverified claims; an expired token is refreshed on the next call.
func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	status := sessionStatus{
		Authenticated: h.session.IsAuthenticated(),
		User:          h.session.CurrentUser(),
	}

	if tokens := h.tokens.Tokens(); tokens.HasAccess() {
		if info, err := security.InspectToken(tokens.Access); err == nil && !info.ExpiresAt.IsZero() {
			exp := info.ExpiresAt
			status.AccessExpiresAt = &exp
			status.AccessExpired = info.Expired(time.Now())
		}
	}

	response.OK(w, status)
}
