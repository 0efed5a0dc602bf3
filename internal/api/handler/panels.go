package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Rrens/profilesync/internal/api/response"
	"github.com/Rrens/profilesync/internal/domain"
	"github.com/Rrens/profilesync/internal/metrics"
	"github.com/Rrens/profilesync/internal/prefsync"
)

// PanelHandler drives the built-in settings panels. Each panel gets its own
// controller, created on first use and kept for the life of the process.
type PanelHandler struct {
	syncer  prefsync.ProfileSyncer
	metrics *metrics.Metrics

	mu     sync.Mutex
	panels map[string]*panelEntry
}

type panelEntry struct {
	form  *prefsync.FormPanel
	ctrl  *prefsync.Controller
	notes *panelNotes
}

// panelNotes is the panel's Notifier; it keeps the latest load and save
// results for the UI to poll.
type panelNotes struct {
	mu        sync.Mutex
	lastError string
	savedAt   time.Time
	saved     *domain.UserProfile
}

func (n *panelNotes) LoadFailed(_, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lastError = message
}

func (n *panelNotes) SaveFailed(_, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lastError = message
}

func (n *panelNotes) Saved(_ string, user *domain.UserProfile) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lastError = ""
	n.savedAt = time.Now()
	n.saved = user
}

// NewPanelHandler creates a new panel handler
func NewPanelHandler(syncer prefsync.ProfileSyncer, m *metrics.Metrics) *PanelHandler {
	return &PanelHandler{
		syncer:  syncer,
		metrics: m,
		panels:  make(map[string]*panelEntry),
	}
}

type panelView struct {
	Name      string              `json:"name"`
	State     string              `json:"state"`
	Fields    []string            `json:"fields"`
	Values    map[string]any      `json:"values"`
	LastError string              `json:"lastError,omitempty"`
	SavedAt   *time.Time          `json:"savedAt,omitempty"`
	Saved     *domain.UserProfile `json:"saved,omitempty"`
	Outcome   string              `json:"outcome,omitempty"`
}

type setFieldRequest struct {
	Value json.RawMessage `json:"value" validate:"required"`
}

func (h *PanelHandler) entry(name string) (*panelEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if e, ok := h.panels[name]; ok {
		return e, true
	}

	form, err := prefsync.NewBuiltinPanel(name)
	if err != nil {
		return nil, false
	}
	notes := &panelNotes{}
	e := &panelEntry{
		form:  form,
		ctrl:  prefsync.NewController(h.syncer, form, notes, h.metrics),
		notes: notes,
	}
	h.panels[name] = e
	return e, true
}

func (e *panelEntry) view() panelView {
	e.notes.mu.Lock()
	defer e.notes.mu.Unlock()

	v := panelView{
		Name:      e.form.Name(),
		State:     e.ctrl.State().String(),
		Fields:    e.form.Fields(),
		Values:    e.form.Snapshot(),
		LastError: e.notes.lastError,
		Saved:     e.notes.saved,
	}
	if !e.notes.savedAt.IsZero() {
		savedAt := e.notes.savedAt
		v.SavedAt = &savedAt
	}
	return v
}

// Activate loads the profile into the panel. A load failure still leaves the
// panel ready (and empty); the error is reported in lastError.
func (h *PanelHandler) Activate(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entry(chi.URLParam(r, "panel"))
	if !ok {
		response.NotFound(w, "panel not found")
		return
	}

	if err := e.ctrl.Activate(r.Context()); errors.Is(err, prefsync.ErrBusy) {
		response.Conflict(w, "save in progress")
		return
	}

	response.OK(w, e.view())
}

// Get returns the panel's state and current values
func (h *PanelHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entry(chi.URLParam(r, "panel"))
	if !ok {
		response.NotFound(w, "panel not found")
		return
	}

	response.OK(w, e.view())
}

// SetField edits one field and reports what the controller did with the edit.
func (h *PanelHandler) SetField(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entry(chi.URLParam(r, "panel"))
	if !ok {
		response.NotFound(w, "panel not found")
		return
	}

	var req setFieldRequest
	if !decode(w, r, &req) {
		return
	}

	var value any
	if err := json.Unmarshal(req.Value, &value); err != nil {
		response.BadRequest(w, "invalid value")
		return
	}

	field := chi.URLParam(r, "field")
	if err := e.form.Set(field, value); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	outcome := e.ctrl.FieldChanged(r.Context(), field)

	v := e.view()
	v.Outcome = outcome.String()
	response.OK(w, v)
}
