package preference_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/profilesync/internal/preference"
	"github.com/Rrens/profilesync/internal/storage"
)

func TestStore_LoadDefaults(t *testing.T) {
	store := preference.NewStore(storage.NewMemory(), 0)
	assert.Equal(t, preference.Defaults(), store.Load())
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := preference.NewStore(storage.NewMemory(), 0)

	saved := store.Save(preference.Preferences{
		Theme:            "dark",
		Accent:           "emerald",
		FontFamily:       "roboto",
		FontSize:         16,
		SidebarCollapsed: true,
	})

	assert.Equal(t, saved, store.Load())
	assert.Equal(t, "dark", saved.Theme)
	assert.True(t, saved.SidebarCollapsed)
}

func TestStore_InvalidStoredValuesFallBack(t *testing.T) {
	backend := storage.NewMemory()
	ctx := context.Background()
	require.NoError(t, backend.Set(ctx, preference.KeyTheme, "neon"))
	require.NoError(t, backend.Set(ctx, preference.KeyAccent, "INDIGO"))
	require.NoError(t, backend.Set(ctx, preference.KeyFontSize, "40"))
	require.NoError(t, backend.Set(ctx, preference.KeyFontFamily, "comic"))

	p := preference.NewStore(backend, 0).Load()
	assert.Equal(t, "system", p.Theme)
	assert.Equal(t, "indigo", p.Accent)
	assert.Equal(t, preference.DefaultFontSize, p.FontSize)
	assert.Equal(t, preference.DefaultFontFamily, p.FontFamily)
}

func TestStore_Setters(t *testing.T) {
	store := preference.NewStore(storage.NewMemory(), 0)

	assert.Equal(t, "light", store.SetTheme("light"))
	assert.Equal(t, "system", store.SetTheme("sepia"))
	assert.Equal(t, "amber", store.SetAccent("amber"))
	assert.Equal(t, "blue", store.SetAccent("pink"))
	store.SetSidebarCollapsed(true)

	p := store.Load()
	assert.Equal(t, "system", p.Theme)
	assert.Equal(t, "blue", p.Accent)
	assert.True(t, p.SidebarCollapsed)
}

func TestResolveTheme(t *testing.T) {
	assert.Equal(t, "dark", preference.ResolveTheme("system", true))
	assert.Equal(t, "light", preference.ResolveTheme("system", false))
	assert.Equal(t, "light", preference.ResolveTheme("light", true))
	assert.Equal(t, "light", preference.ResolveTheme("bogus", false))
}
