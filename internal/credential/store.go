// Package credential persists the access/refresh token pair and the cached
// user snapshot. Every operation is synchronous and best-effort: a failing
// backend is logged and degrades to "logged out", never to an error.
package credential

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/profilesync/internal/domain"
	"github.com/Rrens/profilesync/internal/storage"
)

// Storage keys.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

const defaultOpTimeout = 2 * time.Second

// Store is the credential store.
type Store struct {
	backend   storage.Backend
	opTimeout time.Duration
}

// NewStore creates a credential store over backend. A non-positive opTimeout
// uses the default.
func NewStore(backend storage.Backend, opTimeout time.Duration) *Store {
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	return &Store{backend: backend, opTimeout: opTimeout}
}

// Tokens returns the stored pair. Unreadable slots come back empty.
func (s *Store) Tokens() domain.TokenPair {
	return domain.TokenPair{
		Access:  s.get(KeyAccessToken),
		Refresh: s.get(KeyRefreshToken),
	}
}

// SetTokens overwrites each non-empty slot and leaves empty ones untouched.
func (s *Store) SetTokens(access, refresh string) {
	if access != "" {
		s.set(KeyAccessToken, access)
	}
	if refresh != "" {
		s.set(KeyRefreshToken, refresh)
	}
}

// Clear removes both tokens and the cached user.
func (s *Store) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()

	if err := s.backend.Delete(ctx, KeyAccessToken, KeyRefreshToken, KeyUser); err != nil {
		log.Warn().Err(err).Msg("credential store: failed to clear credentials")
	}
}

// User returns the cached user snapshot, or nil when absent or unreadable.
func (s *Store) User() *domain.UserProfile {
	raw := s.get(KeyUser)
	if raw == "" {
		return nil
	}

	var user domain.UserProfile
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		log.Warn().Err(err).Msg("credential store: discarding unreadable user snapshot")
		return nil
	}
	return &user
}

// SetUser replaces the cached user snapshot. A nil user removes it.
func (s *Store) SetUser(user *domain.UserProfile) {
	if user == nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
		defer cancel()
		if err := s.backend.Delete(ctx, KeyUser); err != nil {
			log.Warn().Err(err).Msg("credential store: failed to remove user snapshot")
		}
		return
	}

	data, err := json.Marshal(user)
	if err != nil {
		log.Warn().Err(err).Msg("credential store: failed to marshal user snapshot")
		return
	}
	s.set(KeyUser, string(data))
}

func (s *Store) get(key string) string {
	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()

	v, found, err := s.backend.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("credential store: read failed")
		return ""
	}
	if !found {
		return ""
	}
	return v
}

func (s *Store) set(key, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()

	if err := s.backend.Set(ctx, key, value); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("credential store: write failed")
	}
}
