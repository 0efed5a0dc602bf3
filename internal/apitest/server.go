// Package apitest is an in-process stand-in for the remote auth/profile API.
// It implements the same routes, status codes and error bodies, and counts
// calls per route so tests can assert on refresh and retry behaviour.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rrens/profilesync/internal/domain"
	"github.com/Rrens/profilesync/internal/security"
)

const (
	testSecret = "apitest-signing-secret-32-bytes!"

	// BasePath is where the API is mounted; append it to the server URL.
	BasePath = "/api"
)

type account struct {
	user         domain.WireUser
	passwordHash []byte
}

// Server is a fake backend.
type Server struct {
	jwt *security.JWTManager

	mu          sync.Mutex
	nextID      int64
	accounts    map[int64]*account
	byEmail     map[string]int64
	issued      map[string]bool // access token jti
	revoked     map[string]bool // access token jti
	blacklisted map[string]bool // refresh token
	calls       map[string]int
	failures    map[string][]int
}

// New creates a fake backend with no accounts.
func New() *Server {
	return &Server{
		jwt:         security.NewJWTManager(testSecret, 15*time.Minute, 24*time.Hour),
		nextID:      1,
		accounts:    make(map[int64]*account),
		byEmail:     make(map[string]int64),
		issued:      make(map[string]bool),
		revoked:     make(map[string]bool),
		blacklisted: make(map[string]bool),
		calls:       make(map[string]int),
		failures:    make(map[string][]int),
	}
}

// Start serves s on a loopback httptest server. The API lives at
// URL + BasePath.
func (s *Server) Start() *httptest.Server {
	return httptest.NewServer(s.Handler())
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.count)
	r.Use(s.injectFailures)

	r.Route(BasePath+"/auth", func(r chi.Router) {
		r.Post("/register/", s.register)
		r.Post("/login/", s.login)
		r.Post("/token/refresh/", s.refresh)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Post("/logout/", s.logout)
			r.Get("/profile/", s.getProfile)
			r.Put("/profile/", s.updateProfile)
			r.Post("/change-password/", s.changePassword)
			r.Delete("/delete-account/", s.deleteAccount)
		})
	})
	return r
}

// SeedUser creates an account directly and returns its wire form.
func (s *Server) SeedUser(email, password, fullName string) domain.WireUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(email, password, fullName, "")
}

// Calls returns how many requests hit path (e.g. "/api/auth/token/refresh/").
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

// RevokeAccessTokens makes every access token issued so far fail with 401,
// as if it had expired.
func (s *Server) RevokeAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for jti := range s.issued {
		s.revoked[jti] = true
	}
}

// BlacklistRefreshToken invalidates a refresh token.
func (s *Server) BlacklistRefreshToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blacklisted[token] = true
}

// FailNext makes the next requests to path answer with the given statuses,
// one per request, before normal handling resumes.
func (s *Server) FailNext(path string, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = append(s.failures[path], statuses...)
}

// User returns the server-side record for id.
func (s *Server) User(id int64) (domain.WireUser, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return domain.WireUser{}, false
	}
	return acc.user, true
}

// createLocked must be called with s.mu held.
func (s *Server) createLocked(email, password, fullName, username string) domain.WireUser {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if username == "" {
		username = strings.Split(email, "@")[0]
	}
	joined := time.Now().UTC().Truncate(time.Second)

	user := domain.WireUser{
		ID:              s.nextID,
		Username:        username,
		FullName:        fullName,
		Email:           strings.ToLower(email),
		DateJoined:      &joined,
		ThemeMode:       "system",
		AccentColor:     "blue",
		FontFamily:      "inter",
		FontSize:        14,
		ShowTooltips:    true,
		Animations:      true,
		EmailAlerts:     true,
		DigestFrequency: "daily",
		SecurityAlerts:  true,
		DNDStartTime:    "21:00",
		DNDEndTime:      "07:00",
		LoginAlerts:     true,
	}
	s.nextID++
	s.accounts[user.ID] = &account{user: user, passwordHash: hash}
	s.byEmail[user.Email] = user.ID
	return user
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		queue := s.failures[r.URL.Path]
		var status int
		if len(queue) > 0 {
			status, s.failures[r.URL.Path] = queue[0], queue[1:]
		}
		s.mu.Unlock()

		if status != 0 {
			writeJSON(w, status, map[string]any{"detail": http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
