package service

import (
	"github.com/Rrens/profilesync/internal/domain"
)

// toProfile converts the API's user record into the internal representation.
func toProfile(w domain.WireUser) *domain.UserProfile {
	p := &domain.UserProfile{
		ID:          w.ID,
		FullName:    w.FullName,
		Email:       w.Email,
		Country:     w.Country,
		CountryCode: w.CountryCode,
		Phone:       w.Phone,
		Gender:      w.Gender,
		DateJoined:  w.DateJoined,

		ThemeMode:    w.ThemeMode,
		AccentColor:  w.AccentColor,
		FontFamily:   w.FontFamily,
		FontSize:     w.FontSize,
		CompactMode:  w.CompactMode,
		ShowTooltips: w.ShowTooltips,
		Animations:   w.Animations,

		EmailAlerts:       w.EmailAlerts,
		PushNotifications: w.PushNotifications,
		SMSAlerts:         w.SMSAlerts,
		DigestFrequency:   w.DigestFrequency,
		SecurityAlerts:    w.SecurityAlerts,
		Mentions:          w.Mentions,
		WeeklySummary:     w.WeeklySummary,
		ProductUpdates:    w.ProductUpdates,
		DNDEnabled:        w.DNDEnabled,
		DNDStartTime:      w.DNDStartTime,
		DNDEndTime:        w.DNDEndTime,

		ProfileSearchable:  w.ProfileSearchable,
		MessagesFromAnyone: w.MessagesFromAnyone,
		ShowOnlineStatus:   w.ShowOnlineStatus,
		AnalyticsEnabled:   w.AnalyticsEnabled,
		PersonalizedAds:    w.PersonalizedAds,

		TwoFactorEnabled: w.TwoFactorEnabled,
		LoginAlerts:      w.LoginAlerts,
	}
	if w.DateOfBirth != nil {
		p.DateOfBirth = *w.DateOfBirth
	}
	return p
}

// toWire converts an update into the API's field names. Nil fields are left
// out; a cleared date is sent as null.
func toWire(u domain.ProfileUpdate) map[string]any {
	m := make(map[string]any)

	put(m, "full_name", u.FullName)
	put(m, "email", u.Email)
	put(m, "country", u.Country)
	put(m, "country_code", u.CountryCode)
	put(m, "phone", u.Phone)
	put(m, "gender", u.Gender)
	if u.DateOfBirth != nil {
		if v, ok := u.DateOfBirth.Normalize(); ok {
			m["date_of_birth"] = v
		} else {
			m["date_of_birth"] = nil
		}
	}

	put(m, "theme_mode", u.ThemeMode)
	put(m, "accent_color", u.AccentColor)
	put(m, "font_family", u.FontFamily)
	put(m, "font_size", u.FontSize)
	put(m, "compact_mode", u.CompactMode)
	put(m, "show_tooltips", u.ShowTooltips)
	put(m, "animations", u.Animations)

	put(m, "email_alerts", u.EmailAlerts)
	put(m, "push_notifications", u.PushNotifications)
	put(m, "sms_alerts", u.SMSAlerts)
	put(m, "digest_frequency", u.DigestFrequency)
	put(m, "security_alerts", u.SecurityAlerts)
	put(m, "mentions", u.Mentions)
	put(m, "weekly_summary", u.WeeklySummary)
	put(m, "product_updates", u.ProductUpdates)
	put(m, "dnd_enabled", u.DNDEnabled)
	put(m, "dnd_start_time", u.DNDStartTime)
	put(m, "dnd_end_time", u.DNDEndTime)

	put(m, "profile_searchable", u.ProfileSearchable)
	put(m, "messages_from_anyone", u.MessagesFromAnyone)
	put(m, "show_online_status", u.ShowOnlineStatus)
	put(m, "analytics_enabled", u.AnalyticsEnabled)
	put(m, "personalized_ads", u.PersonalizedAds)

	put(m, "two_factor_enabled", u.TwoFactorEnabled)
	put(m, "login_alerts", u.LoginAlerts)

	return m
}

func put[T any](m map[string]any, key string, v *T) {
	if v != nil {
		m[key] = *v
	}
}
