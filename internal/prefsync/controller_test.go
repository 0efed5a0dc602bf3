package prefsync

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/profilesync/internal/domain"
	"github.com/Rrens/profilesync/internal/metrics"
)

// MockProfileSyncer mocks the ProfileSyncer interface
type MockProfileSyncer struct {
	mock.Mock
}

func (m *MockProfileSyncer) GetProfile(ctx context.Context) domain.Result {
	args := m.Called(ctx)
	return args.Get(0).(domain.Result)
}

func (m *MockProfileSyncer) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) domain.Result {
	args := m.Called(ctx, update)
	return args.Get(0).(domain.Result)
}

// recorder is a Notifier that keeps every call.
type recorder struct {
	mu         sync.Mutex
	loadFailed []string
	saveFailed []string
	saved      []*domain.UserProfile
}

func (r *recorder) LoadFailed(_, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loadFailed = append(r.loadFailed, message)
}

func (r *recorder) SaveFailed(_, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveFailed = append(r.saveFailed, message)
}

func (r *recorder) Saved(_ string, user *domain.UserProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, user)
}

func testUser() *domain.UserProfile {
	return &domain.UserProfile{
		ID:          1,
		ThemeMode:   "light",
		AccentColor: "blue",
		FontFamily:  "inter",
		FontSize:    14,
		Animations:  true,
	}
}

func TestController_ActivatePopulatesWithoutSaving(t *testing.T) {
	syncer := new(MockProfileSyncer)
	syncer.On("GetProfile", mock.Anything).Return(domain.Ok(testUser(), "")).Once()

	panel := NewFormPanel("appearance", AppearanceFields)
	ctrl := NewController(syncer, panel, nil, nil)

	var outcomes []Outcome
	panel.OnChange(func(field string) {
		outcomes = append(outcomes, ctrl.FieldChanged(context.Background(), field))
	})

	require.NoError(t, ctrl.Activate(context.Background()))

	assert.Equal(t, StateReady, ctrl.State())
	assert.Len(t, outcomes, len(AppearanceFields))
	for _, o := range outcomes {
		assert.Equal(t, Ignored, o)
	}
	assert.Equal(t, "light", panel.Snapshot()["themeMode"])
	syncer.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
	syncer.AssertExpectations(t)
}

func TestController_IgnoresChangesBeforeActivation(t *testing.T) {
	syncer := new(MockProfileSyncer)
	ctrl := NewController(syncer, NewFormPanel("appearance", AppearanceFields), nil, nil)

	assert.Equal(t, StateIdle, ctrl.State())
	assert.Equal(t, Ignored, ctrl.FieldChanged(context.Background(), "themeMode"))
	syncer.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
}

func TestController_SaveAfterLoad(t *testing.T) {
	syncer := new(MockProfileSyncer)
	m := metrics.New()
	notes := &recorder{}

	saved := testUser()
	saved.ThemeMode = "dark"
	authoritative := testUser()
	authoritative.ThemeMode = "dark"
	authoritative.FontSize = 15

	syncer.On("GetProfile", mock.Anything).Return(domain.Ok(testUser(), "")).Once()
	syncer.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(u domain.ProfileUpdate) bool {
		return u.ThemeMode != nil && *u.ThemeMode == "dark" &&
			u.FontSize != nil && *u.FontSize == 14 &&
			u.Email == nil
	})).Return(domain.Ok(saved, "Profile updated successfully")).Once()
	syncer.On("GetProfile", mock.Anything).Return(domain.Ok(authoritative, "")).Once()

	panel := NewFormPanel("appearance", AppearanceFields)
	ctrl := NewController(syncer, panel, notes, m)
	require.NoError(t, ctrl.Activate(context.Background()))

	require.NoError(t, panel.Set("themeMode", "dark"))
	outcome := ctrl.FieldChanged(context.Background(), "themeMode")

	assert.Equal(t, Saved, outcome)
	assert.Equal(t, StateReady, ctrl.State())
	require.Len(t, notes.saved, 1)
	assert.Equal(t, 15, notes.saved[0].FontSize, "saved snapshot comes from the follow-up read")
	assert.Equal(t, float64(1), m.SaveCount("appearance", "success"))
	syncer.AssertExpectations(t)
}

func TestController_SaveFailure(t *testing.T) {
	syncer := new(MockProfileSyncer)
	m := metrics.New()
	notes := &recorder{}

	syncer.On("GetProfile", mock.Anything).Return(domain.Ok(testUser(), "")).Once()
	syncer.On("UpdateProfile", mock.Anything, mock.Anything).
		Return(domain.Fail(&domain.SessionError{Status: http.StatusBadRequest, Message: "Invalid data"}, "failed to update profile"))

	panel := NewFormPanel("appearance", AppearanceFields)
	ctrl := NewController(syncer, panel, notes, m)
	require.NoError(t, ctrl.Activate(context.Background()))

	require.NoError(t, panel.Set("fontSize", 40))
	outcome := ctrl.FieldChanged(context.Background(), "fontSize")

	assert.Equal(t, Failed, outcome)
	assert.Equal(t, StateReady, ctrl.State())
	assert.Equal(t, []string{"Invalid data"}, notes.saveFailed)
	assert.EqualValues(t, 40, panel.Snapshot()["fontSize"], "no rollback")
	assert.Equal(t, float64(1), m.SaveCount("appearance", "failure"))
	syncer.AssertNumberOfCalls(t, "GetProfile", 1)
}

func TestController_LoadFailure(t *testing.T) {
	syncer := new(MockProfileSyncer)
	notes := &recorder{}
	syncer.On("GetProfile", mock.Anything).
		Return(domain.Fail(&domain.SessionError{Message: "cannot connect to server"}, "failed to get profile"))

	panel := NewFormPanel("privacy", PrivacyFields)
	ctrl := NewController(syncer, panel, notes, nil)

	err := ctrl.Activate(context.Background())

	assert.Error(t, err)
	assert.Equal(t, StateReady, ctrl.State())
	assert.Empty(t, panel.Snapshot())
	assert.Equal(t, []string{"cannot connect to server"}, notes.loadFailed)
}

func TestController_CoalescesEditsDuringSave(t *testing.T) {
	syncer := new(MockProfileSyncer)
	panel := NewFormPanel("appearance", AppearanceFields)
	ctrl := NewController(syncer, panel, nil, nil)

	syncer.On("GetProfile", mock.Anything).Return(domain.Ok(testUser(), ""))
	require.NoError(t, ctrl.Activate(context.Background()))

	inFlight := make(chan struct{})
	release := make(chan struct{})
	var updates []domain.ProfileUpdate
	var mu sync.Mutex

	syncer.On("UpdateProfile", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			mu.Lock()
			updates = append(updates, args.Get(1).(domain.ProfileUpdate))
			first := len(updates) == 1
			mu.Unlock()
			if first {
				close(inFlight)
				<-release
			}
		}).
		Return(domain.Ok(testUser(), ""))

	require.NoError(t, panel.Set("themeMode", "dark"))
	done := make(chan Outcome)
	go func() { done <- ctrl.FieldChanged(context.Background(), "themeMode") }()

	<-inFlight
	assert.Equal(t, StateSaving, ctrl.State())

	require.NoError(t, panel.Set("accentColor", "emerald"))
	assert.Equal(t, Coalesced, ctrl.FieldChanged(context.Background(), "accentColor"))
	require.NoError(t, panel.Set("fontSize", 16))
	assert.Equal(t, Coalesced, ctrl.FieldChanged(context.Background(), "fontSize"))

	close(release)
	select {
	case outcome := <-done:
		assert.Equal(t, Saved, outcome)
	case <-time.After(2 * time.Second):
		t.Fatal("save did not finish")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, updates, 2, "two coalesced edits produce exactly one follow-up save")
	last := updates[1]
	require.NotNil(t, last.AccentColor)
	require.NotNil(t, last.FontSize)
	assert.Equal(t, "emerald", *last.AccentColor)
	assert.Equal(t, 16, *last.FontSize)
	assert.Equal(t, StateReady, ctrl.State())
}

func TestController_ActivateWhileSaving(t *testing.T) {
	syncer := new(MockProfileSyncer)
	panel := NewFormPanel("appearance", AppearanceFields)
	ctrl := NewController(syncer, panel, nil, nil)

	syncer.On("GetProfile", mock.Anything).Return(domain.Ok(testUser(), ""))
	require.NoError(t, ctrl.Activate(context.Background()))

	inFlight := make(chan struct{})
	release := make(chan struct{})
	syncer.On("UpdateProfile", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(inFlight)
			<-release
		}).
		Return(domain.Ok(testUser(), "")).Once()

	done := make(chan struct{})
	go func() {
		ctrl.FieldChanged(context.Background(), "themeMode")
		close(done)
	}()

	<-inFlight
	assert.ErrorIs(t, ctrl.Activate(context.Background()), ErrBusy)
	close(release)
	<-done
}
