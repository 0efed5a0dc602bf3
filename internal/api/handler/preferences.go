package handler

import (
	"net/http"

	"github.com/Rrens/profilesync/internal/api/response"
	"github.com/Rrens/profilesync/internal/preference"
)

// PreferencesHandler serves the local display preferences
type PreferencesHandler struct {
	store *preference.Store
}

// NewPreferencesHandler creates a new preferences handler
func NewPreferencesHandler(store *preference.Store) *PreferencesHandler {
	return &PreferencesHandler{store: store}
}

// Get returns the stored preferences, defaults filled in
func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.store.Load())
}

// Update merges the body over the stored preferences. Out-of-range values are
// replaced with defaults and the stored set is returned.
func (h *PreferencesHandler) Update(w http.ResponseWriter, r *http.Request) {
	prefs := h.store.Load()
	if !decode(w, r, &prefs) {
		return
	}

	response.OK(w, h.store.Save(prefs))
}
