package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Rrens/profilesync/internal/domain"
)

func TestToWire_OmitsAbsentFields(t *testing.T) {
	wire := toWire(domain.ProfileUpdate{
		FullName:   domain.Ptr("Ada Lovelace"),
		FontSize:   domain.Ptr(16),
		DNDEnabled: domain.Ptr(false),
	})

	assert.Equal(t, map[string]any{
		"full_name":   "Ada Lovelace",
		"font_size":   16,
		"dnd_enabled": false,
	}, wire)
}

func TestToWire_DateOfBirth(t *testing.T) {
	tests := []struct {
		name string
		date domain.Date
		want any
	}{
		{"time value", domain.DateOf(time.Date(2000, time.January, 15, 0, 0, 0, 0, time.Local)), "2000-01-15"},
		{"ISO string", domain.DateString("2000-01-15"), "2000-01-15"},
		{"RFC3339 string", domain.DateString("2000-01-15T00:00:00Z"), "2000-01-15"},
		{"cleared", domain.ClearDate(), nil},
		{"empty string clears", domain.DateString(""), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire := toWire(domain.ProfileUpdate{DateOfBirth: &tt.date})
			v, ok := wire["date_of_birth"]
			assert.True(t, ok)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestToProfile(t *testing.T) {
	dob := "1990-05-01"
	p := toProfile(domain.WireUser{
		ID:              3,
		FullName:        "Grace Hopper",
		Email:           "grace@example.com",
		CountryCode:     "+1",
		DateOfBirth:     &dob,
		ThemeMode:       "dark",
		DigestFrequency: "weekly",
		DNDStartTime:    "22:00",
		LoginAlerts:     true,
	})

	assert.Equal(t, int64(3), p.ID)
	assert.Equal(t, "Grace Hopper", p.FullName)
	assert.Equal(t, "+1", p.CountryCode)
	assert.Equal(t, "1990-05-01", p.DateOfBirth)
	assert.Equal(t, "dark", p.ThemeMode)
	assert.Equal(t, "weekly", p.DigestFrequency)
	assert.Equal(t, "22:00", p.DNDStartTime)
	assert.True(t, p.LoginAlerts)

	assert.Empty(t, toProfile(domain.WireUser{}).DateOfBirth)
}
