package handler

import (
	"net/http"

	"github.com/Rrens/profilesync/internal/api/response"
	"github.com/Rrens/profilesync/internal/domain"
	"github.com/Rrens/profilesync/internal/service"
)

// ProfileHandler handles the signed-in user's profile
type ProfileHandler struct {
	session *service.SessionService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(session *service.SessionService) *ProfileHandler {
	return &ProfileHandler{session: session}
}

type deleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

// Get fetches the profile from the API
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.Result(w, http.StatusOK, h.session.GetProfile(r.Context()))
}

// Update sends a partial profile update. Absent fields are left untouched.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var update domain.ProfileUpdate
	if !decode(w, r, &update) {
		return
	}

	response.Result(w, http.StatusOK, h.session.UpdateProfile(r.Context(), update))
}

// ChangePassword changes the account password
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var change domain.PasswordChange
	if !decode(w, r, &change) {
		return
	}

	response.Result(w, http.StatusOK, h.session.ChangePassword(r.Context(), change))
}

// Delete removes the account and ends the session
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req deleteAccountRequest
	if !decode(w, r, &req) {
		return
	}

	response.Result(w, http.StatusOK, h.session.DeleteAccount(r.Context(), req.Password))
}
