// Package preference keeps the UI's local display preferences. They live in
// the same durable storage as the credentials but are never sent to the API.
package preference

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/profilesync/internal/storage"
)

const (
	KeyTheme            = "settings:themePreference"
	KeyAccent           = "settings:accentPreference"
	KeyFontFamily       = "settings:fontFamily"
	KeyFontSize         = "settings:fontSize"
	KeySidebarCollapsed = "settings:sidebarCollapsed"
)

const (
	DefaultTheme      = "system"
	DefaultAccent     = "blue"
	DefaultFontFamily = "inter"
	DefaultFontSize   = 14

	MinFontSize = 12
	MaxFontSize = 18
)

var (
	Themes       = []string{"light", "dark", "system"}
	Accents      = []string{"blue", "emerald", "amber", "indigo"}
	FontFamilies = []string{"inter", "manrope", "roboto", "workSans"}
)

// Preferences is the full set of local display preferences.
type Preferences struct {
	Theme            string `json:"theme"`
	Accent           string `json:"accent"`
	FontFamily       string `json:"fontFamily"`
	FontSize         int    `json:"fontSize"`
	SidebarCollapsed bool   `json:"sidebarCollapsed"`
}

// Defaults returns the preferences used when nothing valid is stored.
func Defaults() Preferences {
	return Preferences{
		Theme:      DefaultTheme,
		Accent:     DefaultAccent,
		FontFamily: DefaultFontFamily,
		FontSize:   DefaultFontSize,
	}
}

// Store reads and writes Preferences. Invalid stored values read back as the
// default; write failures are logged and dropped.
type Store struct {
	backend   storage.Backend
	opTimeout time.Duration
}

func NewStore(backend storage.Backend, opTimeout time.Duration) *Store {
	if opTimeout <= 0 {
		opTimeout = 2 * time.Second
	}
	return &Store{backend: backend, opTimeout: opTimeout}
}

// Load returns the stored preferences with defaults for anything missing or invalid.
func (s *Store) Load() Preferences {
	p := Defaults()
	p.Theme = oneOf(s.get(KeyTheme), Themes, DefaultTheme)
	p.Accent = oneOf(s.get(KeyAccent), Accents, DefaultAccent)
	p.FontFamily = oneOf(s.get(KeyFontFamily), FontFamilies, DefaultFontFamily)
	if n, err := strconv.Atoi(s.get(KeyFontSize)); err == nil && n >= MinFontSize && n <= MaxFontSize {
		p.FontSize = n
	}
	p.SidebarCollapsed = s.get(KeySidebarCollapsed) == "true"
	return p
}

// Save normalizes p, persists it, and returns what was stored.
func (s *Store) Save(p Preferences) Preferences {
	p = Normalize(p)
	s.set(KeyTheme, p.Theme)
	s.set(KeyAccent, p.Accent)
	s.set(KeyFontFamily, p.FontFamily)
	s.set(KeyFontSize, strconv.Itoa(p.FontSize))
	s.set(KeySidebarCollapsed, strconv.FormatBool(p.SidebarCollapsed))
	return p
}

// SetTheme stores a theme preference; unknown values fall back to "system".
func (s *Store) SetTheme(theme string) string {
	theme = oneOf(theme, Themes, DefaultTheme)
	s.set(KeyTheme, theme)
	return theme
}

// SetAccent stores an accent; unknown values fall back to "blue".
func (s *Store) SetAccent(accent string) string {
	accent = oneOf(accent, Accents, DefaultAccent)
	s.set(KeyAccent, accent)
	return accent
}

// SetSidebarCollapsed stores the sidebar flag.
func (s *Store) SetSidebarCollapsed(collapsed bool) {
	s.set(KeySidebarCollapsed, strconv.FormatBool(collapsed))
}

// Normalize replaces out-of-range values with defaults.
func Normalize(p Preferences) Preferences {
	p.Theme = oneOf(p.Theme, Themes, DefaultTheme)
	p.Accent = oneOf(p.Accent, Accents, DefaultAccent)
	p.FontFamily = oneOf(p.FontFamily, FontFamilies, DefaultFontFamily)
	if p.FontSize < MinFontSize || p.FontSize > MaxFontSize {
		p.FontSize = DefaultFontSize
	}
	return p
}

// ResolveTheme maps "system" onto the concrete theme the host reports.
func ResolveTheme(pref string, systemDark bool) string {
	pref = oneOf(pref, Themes, DefaultTheme)
	if pref == "system" {
		if systemDark {
			return "dark"
		}
		return "light"
	}
	return pref
}

func oneOf(v string, allowed []string, fallback string) string {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return a
		}
	}
	if slices.Contains(allowed, fallback) {
		return fallback
	}
	return allowed[0]
}

func (s *Store) get(key string) string {
	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()
	v, _, err := s.backend.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("preference store: read failed")
		return ""
	}
	return v
}

func (s *Store) set(key, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()
	if err := s.backend.Set(ctx, key, value); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("preference store: write failed")
	}
}
