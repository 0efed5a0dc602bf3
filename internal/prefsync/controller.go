// Package prefsync keeps one settings panel in sync with the server-side
// profile: the panel is populated on activation and every later edit is
// saved back.
package prefsync

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/profilesync/internal/domain"
	"github.com/Rrens/profilesync/internal/metrics"
)

// State is the controller's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSaving:
		return "saving"
	default:
		return "idle"
	}
}

// Outcome is what FieldChanged did with an edit.
type Outcome int

const (
	// Ignored: the panel was not Ready (never activated, or still loading).
	Ignored Outcome = iota
	// Saved: the edit was saved.
	Saved
	// Coalesced: a save was in flight; the edit rides on the follow-up save.
	Coalesced
	// Failed: the save was rejected or could not be sent.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Saved:
		return "saved"
	case Coalesced:
		return "coalesced"
	case Failed:
		return "failed"
	default:
		return "ignored"
	}
}

// ErrBusy is returned by Activate while a save is running.
var ErrBusy = errors.New("prefsync: save in progress")

// ProfileSyncer reads and writes the profile. *service.SessionService
// implements it.
type ProfileSyncer interface {
	GetProfile(ctx context.Context) domain.Result
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) domain.Result
}

// Panel is one settings surface editing a slice of the profile.
type Panel interface {
	Name() string
	// Populate replaces the panel's values from user; nil empties them.
	Populate(user *domain.UserProfile)
	// Values returns the panel's full current value set.
	Values() domain.ProfileUpdate
}

// Notifier receives user-facing load and save results.
type Notifier interface {
	LoadFailed(panel, message string)
	SaveFailed(panel, message string)
	Saved(panel string, user *domain.UserProfile)
}

// Controller drives one panel through Loading, Ready and Saving.
type Controller struct {
	syncer   ProfileSyncer
	panel    Panel
	notifier Notifier
	metrics  *metrics.Metrics

	mu      sync.Mutex
	state   State
	pending bool
}

// NewController creates an Idle controller. notifier and m may be nil.
func NewController(syncer ProfileSyncer, panel Panel, notifier Notifier, m *metrics.Metrics) *Controller {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Controller{
		syncer:   syncer,
		panel:    panel,
		notifier: notifier,
		metrics:  m,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Activate loads the profile and populates the panel. Change notifications
// raised while populating are ignored. A load failure leaves the panel empty
// but Ready, and is returned.
func (c *Controller) Activate(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateSaving {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state = StateLoading
	c.mu.Unlock()

	var err error
	res := c.syncer.GetProfile(ctx)
	if res.Success() {
		c.panel.Populate(res.User)
	} else {
		log.Warn().Str("panel", c.panel.Name()).Str("error", res.ErrorMessage()).Msg("failed to load settings")
		c.notifier.LoadFailed(c.panel.Name(), res.ErrorMessage())
		c.panel.Populate(nil)
		err = res.Err
	}

	c.mu.Lock()
	c.state = StateReady
	c.mu.Unlock()
	return err
}

// FieldChanged reacts to an edit of field. Only a Ready controller saves; an
// edit during a save is folded into one follow-up save with the panel's
// latest values.
func (c *Controller) FieldChanged(ctx context.Context, field string) Outcome {
	c.mu.Lock()
	switch c.state {
	case StateSaving:
		c.pending = true
		c.mu.Unlock()
		return Coalesced
	case StateReady:
		c.state = StateSaving
		c.mu.Unlock()
	default:
		c.mu.Unlock()
		log.Debug().Str("panel", c.panel.Name()).Str("field", field).Msg("change ignored while not ready")
		return Ignored
	}

	failed := false
	for {
		if !c.save(ctx, field) {
			failed = true
		}

		c.mu.Lock()
		if !c.pending {
			c.state = StateReady
			c.mu.Unlock()
			break
		}
		c.pending = false
		c.mu.Unlock()
	}

	if failed {
		return Failed
	}
	return Saved
}

// save sends the panel's values and then pulls the authoritative snapshot.
func (c *Controller) save(ctx context.Context, field string) bool {
	name := c.panel.Name()

	res := c.syncer.UpdateProfile(ctx, c.panel.Values())
	if !res.Success() {
		log.Warn().Str("panel", name).Str("field", field).Str("error", res.ErrorMessage()).Msg("failed to save settings")
		c.metrics.ObserveSave(name, "failure")
		c.notifier.SaveFailed(name, res.ErrorMessage())
		return false
	}

	user := res.User
	if fresh := c.syncer.GetProfile(ctx); fresh.Success() {
		user = fresh.User
	}

	c.metrics.ObserveSave(name, "success")
	c.notifier.Saved(name, user)
	return true
}

type nopNotifier struct{}

func (nopNotifier) LoadFailed(string, string) {}
func (nopNotifier) SaveFailed(string, string) {}
func (nopNotifier) Saved(string, *domain.UserProfile) {}
