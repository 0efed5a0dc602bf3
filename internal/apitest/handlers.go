package apitest

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Rrens/profilesync/internal/domain"
)

type ctxKey struct{}

type fieldErrors map[string][]string

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"detail": "Authentication credentials were not provided.",
			})
			return
		}

		claims, err := s.jwt.ValidateAccessToken(token)
		valid := err == nil
		if valid {
			s.mu.Lock()
			_, exists := s.accounts[claims.UserID]
			valid = exists && !s.revoked[claims.ID]
			s.mu.Unlock()
		}

		if !valid {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"detail": "Given token not valid for any token type",
				"code":   "token_not_valid",
			})
			return
		}

		ctx := context.WithValue(r.Context(), ctxKey{}, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		Username  string `json:"username"`
		Password  string `json:"password"`
		Password2 string `json:"password2"`
		FullName  string `json:"full_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "JSON parse error"})
		return
	}

	errs := fieldErrors{}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		errs["email"] = []string{"This field is required."}
	}
	if req.Password == "" {
		errs["password"] = []string{"This field is required."}
	}
	if req.Password2 == "" {
		errs["password2"] = []string{"This field is required."}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[strings.ToLower(email)]; email != "" && taken {
		errs["email"] = []string{"This email address is already registered. Please use a different email address."}
	}
	if len(errs) == 0 && req.Password != req.Password2 {
		errs["password"] = []string{"The passwords you entered do not match. Please make sure both password fields are identical."}
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	user := s.createLocked(email, req.Password, strings.TrimSpace(req.FullName), req.Username)
	access, refresh, err := s.issueLocked(user.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": "token error"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":    user,
		"access":  access,
		"refresh": refresh,
		"message": "User registered successfully",
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Please provide both email and password"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[strings.ToLower(req.Email)]
	if !ok || bcrypt.CompareHashAndPassword(s.accounts[id].passwordHash, []byte(req.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid credentials"})
		return
	}

	access, refresh, err := s.issueLocked(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": "token error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":    s.accounts[id].user,
		"access":  access,
		"refresh": refresh,
		"message": "Login successful",
	})
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Refresh == "" {
		writeJSON(w, http.StatusBadRequest, fieldErrors{"refresh": {"This field is required."}})
		return
	}

	claims, err := s.jwt.ValidateRefreshToken(req.Refresh)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil || s.blacklisted[req.Refresh] {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"detail": "Token is invalid or expired",
			"code":   "token_not_valid",
		})
		return
	}
	if _, ok := s.accounts[claims.UserID]; !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"detail": "User not found",
			"code":   "user_not_found",
		})
		return
	}

	access, err := s.jwt.GenerateAccessToken(claims.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": "token error"})
		return
	}
	s.trackLocked(access)

	writeJSON(w, http.StatusOK, map[string]any{"access": access})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.Refresh != "" {
		if _, err := s.jwt.ValidateRefreshToken(req.Refresh); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid token"})
			return
		}
		s.BlacklistRefreshToken(req.Refresh)
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Logout successful"})
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := s.User(userID(r))
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "JSON parse error"})
		return
	}
	delete(patch, "id")
	delete(patch, "username")
	delete(patch, "date_joined")

	s.mu.Lock()
	defer s.mu.Unlock()

	id := userID(r)
	acc := s.accounts[id]

	errs := fieldErrors{}
	if raw, ok := patch["email"]; ok {
		var email string
		_ = json.Unmarshal(raw, &email)
		email = strings.ToLower(strings.TrimSpace(email))
		if other, taken := s.byEmail[email]; taken && other != id {
			errs["email"] = []string{"This email address is already taken by another profile. Please choose a different email address."}
		}
	}
	if raw, ok := patch["phone"]; ok {
		var phone string
		_ = json.Unmarshal(raw, &phone)
		if !validPhone(phone) {
			errs["phone"] = []string{"Invalid phone number format. Please enter a valid phone number using only digits, spaces, hyphens, and plus sign. Example: +1-555-123-4567"}
		}
	}
	if raw, ok := patch["date_of_birth"]; ok && string(raw) != "null" {
		var dob string
		_ = json.Unmarshal(raw, &dob)
		if _, err := time.Parse("2006-01-02", dob); err != nil {
			errs["date_of_birth"] = []string{"Date has wrong format. Use one of these formats instead: YYYY-MM-DD."}
		}
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid data", "details": errs})
		return
	}

	updated, err := merge(acc.user, patch)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid data", "details": fieldErrors{"non_field_errors": {err.Error()}}})
		return
	}
	updated.FullName = strings.TrimSpace(updated.FullName)
	updated.Email = strings.ToLower(strings.TrimSpace(updated.Email))

	if updated.Email != acc.user.Email {
		delete(s.byEmail, acc.user.Email)
		s.byEmail[updated.Email] = id
	}
	acc.user = updated

	writeJSON(w, http.StatusOK, map[string]any{
		"user":    updated,
		"message": "Profile updated successfully",
	})
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldPassword  string `json:"old_password"`
		NewPassword  string `json:"new_password"`
		NewPassword2 string `json:"new_password2"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.accounts[userID(r)]
	errs := fieldErrors{}
	if bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(req.OldPassword)) != nil {
		errs["old_password"] = []string{"The current password you entered is incorrect. Please enter your correct current password to continue."}
	}
	if req.NewPassword == "" {
		errs["new_password"] = []string{"This field is required."}
	} else if req.NewPassword != req.NewPassword2 {
		errs["new_password"] = []string{"Your new passwords do not match. Please ensure both new password fields contain the exact same password."}
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid data", "details": errs})
		return
	}

	acc.passwordHash, _ = bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.MinCost)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Password changed successfully"})
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Password is required to delete account"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := userID(r)
	acc := s.accounts[id]
	if bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(req.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Incorrect password"})
		return
	}

	delete(s.byEmail, acc.user.Email)
	delete(s.accounts, id)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Account deleted successfully"})
}

// issueLocked must be called with s.mu held.
func (s *Server) issueLocked(id int64) (string, string, error) {
	access, refresh, err := s.jwt.GenerateTokenPair(id)
	if err != nil {
		return "", "", err
	}
	s.trackLocked(access)
	return access, refresh, nil
}

func (s *Server) trackLocked(access string) {
	if claims, err := s.jwt.ValidateAccessToken(access); err == nil {
		s.issued[claims.ID] = true
	}
}

// merge overlays the snake_case patch onto user.
func merge(user domain.WireUser, patch map[string]json.RawMessage) (domain.WireUser, error) {
	raw, err := json.Marshal(user)
	if err != nil {
		return user, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return user, err
	}
	for k, v := range patch {
		if _, known := fields[k]; known {
			fields[k] = v
		}
	}

	raw, err = json.Marshal(fields)
	if err != nil {
		return user, err
	}
	var out domain.WireUser
	if err := json.Unmarshal(raw, &out); err != nil {
		return user, err
	}
	return out, nil
}

func validPhone(phone string) bool {
	if phone == "" {
		return true
	}
	digits := strings.NewReplacer("+", "", "-", "", " ", "").Replace(phone)
	if digits == "" {
		return false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func userID(r *http.Request) int64 {
	id, _ := r.Context().Value(ctxKey{}).(int64)
	return id
}
