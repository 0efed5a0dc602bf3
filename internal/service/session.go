package service

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/profilesync/internal/domain"
	"github.com/Rrens/profilesync/internal/transport"
)

// Requester sends API requests. *transport.Transport implements it.
type Requester interface {
	Request(ctx context.Context, endpoint string, opts transport.Options, out any) error
	OnSessionExpired(fn func())
	Close() error
}

// CredentialStore persists tokens and the cached user. *credential.Store
// implements it.
type CredentialStore interface {
	Tokens() domain.TokenPair
	SetTokens(access, refresh string)
	Clear()
	User() *domain.UserProfile
	SetUser(user *domain.UserProfile)
}

type authResponse struct {
	Access  string          `json:"access"`
	Refresh string          `json:"refresh"`
	User    domain.WireUser `json:"user"`
	Message string          `json:"message"`
}

type profileResponse struct {
	User    domain.WireUser `json:"user"`
	Message string          `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// SessionService handles authentication and profile operations against the
// remote API and owns the in-memory current user.
type SessionService struct {
	api   Requester
	store CredentialStore

	mu   sync.RWMutex
	user *domain.UserProfile
}

// NewSessionService creates a new session service
func NewSessionService(api Requester, store CredentialStore) *SessionService {
	s := &SessionService{api: api, store: store}
	api.OnSessionExpired(s.dropUser)
	return s
}

// Login authenticates with email and password and stores the session.
func (s *SessionService) Login(ctx context.Context, email, password string) domain.Result {
	var resp authResponse
	err := s.api.Request(ctx, transport.EndpointLogin, transport.Options{
		Method: http.MethodPost,
		Body:   map[string]string{"email": email, "password": password},
	}, &resp)
	if err != nil {
		return domain.Fail(err, "login failed")
	}

	user := s.establish(resp)
	return domain.Ok(user, resp.Message)
}

// Register creates an account and stores the session. The username defaults
// to the local part of the email address.
func (s *SessionService) Register(ctx context.Context, input domain.RegisterInput) domain.Result {
	username := input.Username
	if username == "" {
		username, _, _ = strings.Cut(input.Email, "@")
	}

	var resp authResponse
	err := s.api.Request(ctx, transport.EndpointRegister, transport.Options{
		Method: http.MethodPost,
		Body: map[string]string{
			"email":     input.Email,
			"username":  username,
			"password":  input.Password,
			"password2": input.Password2,
			"full_name": input.FullName,
		},
	}, &resp)
	if err != nil {
		return domain.Fail(err, "registration failed")
	}

	user := s.establish(resp)
	return domain.Ok(user, resp.Message)
}

// Logout invalidates the refresh token on the server when one is held, then
// clears local state. Server failures are logged only.
func (s *SessionService) Logout(ctx context.Context) {
	if refresh := s.store.Tokens().Refresh; refresh != "" {
		err := s.api.Request(ctx, transport.EndpointLogout, transport.Options{
			Method: http.MethodPost,
			Body:   map[string]string{"refresh": refresh},
		}, nil)
		if err != nil {
			log.Warn().Err(err).Msg("server logout failed, clearing local session anyway")
		}
	}

	s.store.Clear()
	s.dropUser()
}

// CurrentUser returns the in-memory user, loading it from the cache on first
// use. It never calls the server.
func (s *SessionService) CurrentUser() *domain.UserProfile {
	s.mu.RLock()
	user := s.user
	s.mu.RUnlock()
	if user != nil {
		return user
	}

	cached := s.store.User()
	if cached == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		s.user = cached
	}
	return s.user
}

// IsAuthenticated reports whether an access token is held. The token is not
// validated.
func (s *SessionService) IsAuthenticated() bool {
	return s.store.Tokens().HasAccess()
}

// GetProfile fetches the profile from the server and replaces the cached copy.
func (s *SessionService) GetProfile(ctx context.Context) domain.Result {
	var resp profileResponse
	if err := s.api.Request(ctx, transport.EndpointProfile, transport.Options{}, &resp); err != nil {
		return domain.Fail(err, "failed to get profile")
	}

	user := toProfile(resp.User)
	s.setUser(user)
	return domain.Ok(user, resp.Message)
}

// UpdateProfile sends the update and caches the server's version of the
// result.
func (s *SessionService) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) domain.Result {
	var resp profileResponse
	err := s.api.Request(ctx, transport.EndpointProfile, transport.Options{
		Method: http.MethodPut,
		Body:   toWire(update),
	}, &resp)
	if err != nil {
		return domain.Fail(err, "failed to update profile")
	}

	user := toProfile(resp.User)
	s.setUser(user)
	return domain.Ok(user, resp.Message)
}

// ChangePassword changes the account password. Local state is untouched.
func (s *SessionService) ChangePassword(ctx context.Context, change domain.PasswordChange) domain.Result {
	var resp messageResponse
	err := s.api.Request(ctx, transport.EndpointChangePassword, transport.Options{
		Method: http.MethodPost,
		Body: map[string]string{
			"old_password":  change.OldPassword,
			"new_password":  change.NewPassword,
			"new_password2": change.NewPassword2,
		},
	}, &resp)
	if err != nil {
		return domain.Fail(err, "failed to change password")
	}
	return domain.Ok(nil, resp.Message)
}

// DeleteAccount deletes the account after password confirmation and clears
// local state.
func (s *SessionService) DeleteAccount(ctx context.Context, password string) domain.Result {
	var resp messageResponse
	err := s.api.Request(ctx, transport.EndpointDeleteAccount, transport.Options{
		Method: http.MethodDelete,
		Body:   map[string]string{"password": password},
	}, &resp)
	if err != nil {
		return domain.Fail(err, "failed to delete account")
	}

	s.store.Clear()
	s.dropUser()
	return domain.Ok(nil, resp.Message)
}

// Close releases the transport's resources.
func (s *SessionService) Close() error {
	return s.api.Close()
}

func (s *SessionService) establish(resp authResponse) *domain.UserProfile {
	s.store.SetTokens(resp.Access, resp.Refresh)
	user := toProfile(resp.User)
	s.setUser(user)
	return user
}

func (s *SessionService) setUser(user *domain.UserProfile) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	s.store.SetUser(user)
}

func (s *SessionService) dropUser() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}
