package domain

import "time"

// UserProfile is the internal (camelCase) representation of the user record.
// Its JSON form is the cached snapshot written to the credential store.
type UserProfile struct {
	ID          int64      `json:"id"`
	FullName    string     `json:"fullName"`
	Email       string     `json:"email"`
	Country     string     `json:"country"`
	CountryCode string     `json:"countryCode"`
	Phone       string     `json:"phone"`
	DateOfBirth string     `json:"dateOfBirth"`
	Gender      string     `json:"gender"`
	DateJoined  *time.Time `json:"dateJoined,omitempty"`

	// Appearance
	ThemeMode    string `json:"themeMode"`
	AccentColor  string `json:"accentColor"`
	FontFamily   string `json:"fontFamily"`
	FontSize     int    `json:"fontSize"`
	CompactMode  bool   `json:"compactMode"`
	ShowTooltips bool   `json:"showTooltips"`
	Animations   bool   `json:"animations"`

	// Notifications
	EmailAlerts       bool   `json:"emailAlerts"`
	PushNotifications bool   `json:"pushNotifications"`
	SMSAlerts         bool   `json:"smsAlerts"`
	DigestFrequency   string `json:"digestFrequency"`
	SecurityAlerts    bool   `json:"securityAlerts"`
	Mentions          bool   `json:"mentions"`
	WeeklySummary     bool   `json:"weeklySummary"`
	ProductUpdates    bool   `json:"productUpdates"`
	DNDEnabled        bool   `json:"dndEnabled"`
	DNDStartTime      string `json:"dndStartTime"`
	DNDEndTime        string `json:"dndEndTime"`

	// Privacy
	ProfileSearchable  bool `json:"profileSearchable"`
	MessagesFromAnyone bool `json:"messagesFromAnyone"`
	ShowOnlineStatus   bool `json:"showOnlineStatus"`
	AnalyticsEnabled   bool `json:"analyticsEnabled"`
	PersonalizedAds    bool `json:"personalizedAds"`

	// Security
	TwoFactorEnabled bool `json:"twoFactorEnabled"`
	LoginAlerts      bool `json:"loginAlerts"`
}

// WireUser is the user record as the remote API represents it.
type WireUser struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username,omitempty"`
	FullName    string     `json:"full_name"`
	Email       string     `json:"email"`
	Country     string     `json:"country"`
	CountryCode string     `json:"country_code"`
	Phone       string     `json:"phone"`
	DateOfBirth *string    `json:"date_of_birth"`
	Gender      string     `json:"gender"`
	DateJoined  *time.Time `json:"date_joined,omitempty"`

	ThemeMode    string `json:"theme_mode"`
	AccentColor  string `json:"accent_color"`
	FontFamily   string `json:"font_family"`
	FontSize     int    `json:"font_size"`
	CompactMode  bool   `json:"compact_mode"`
	ShowTooltips bool   `json:"show_tooltips"`
	Animations   bool   `json:"animations"`

	EmailAlerts       bool   `json:"email_alerts"`
	PushNotifications bool   `json:"push_notifications"`
	SMSAlerts         bool   `json:"sms_alerts"`
	DigestFrequency   string `json:"digest_frequency"`
	SecurityAlerts    bool   `json:"security_alerts"`
	Mentions          bool   `json:"mentions"`
	WeeklySummary     bool   `json:"weekly_summary"`
	ProductUpdates    bool   `json:"product_updates"`
	DNDEnabled        bool   `json:"dnd_enabled"`
	DNDStartTime      string `json:"dnd_start_time"`
	DNDEndTime        string `json:"dnd_end_time"`

	ProfileSearchable  bool `json:"profile_searchable"`
	MessagesFromAnyone bool `json:"messages_from_anyone"`
	ShowOnlineStatus   bool `json:"show_online_status"`
	AnalyticsEnabled   bool `json:"analytics_enabled"`
	PersonalizedAds    bool `json:"personalized_ads"`

	TwoFactorEnabled bool `json:"two_factor_enabled"`
	LoginAlerts      bool `json:"login_alerts"`
}

// ProfileUpdate is a partial or full profile update in internal
// representation. Nil fields are left out of the request.
type ProfileUpdate struct {
	FullName    *string `json:"fullName,omitempty"`
	Email       *string `json:"email,omitempty"`
	Country     *string `json:"country,omitempty"`
	CountryCode *string `json:"countryCode,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	DateOfBirth *Date   `json:"dateOfBirth,omitempty"`
	Gender      *string `json:"gender,omitempty"`

	ThemeMode    *string `json:"themeMode,omitempty"`
	AccentColor  *string `json:"accentColor,omitempty"`
	FontFamily   *string `json:"fontFamily,omitempty"`
	FontSize     *int    `json:"fontSize,omitempty"`
	CompactMode  *bool   `json:"compactMode,omitempty"`
	ShowTooltips *bool   `json:"showTooltips,omitempty"`
	Animations   *bool   `json:"animations,omitempty"`

	EmailAlerts       *bool   `json:"emailAlerts,omitempty"`
	PushNotifications *bool   `json:"pushNotifications,omitempty"`
	SMSAlerts         *bool   `json:"smsAlerts,omitempty"`
	DigestFrequency   *string `json:"digestFrequency,omitempty"`
	SecurityAlerts    *bool   `json:"securityAlerts,omitempty"`
	Mentions          *bool   `json:"mentions,omitempty"`
	WeeklySummary     *bool   `json:"weeklySummary,omitempty"`
	ProductUpdates    *bool   `json:"productUpdates,omitempty"`
	DNDEnabled        *bool   `json:"dndEnabled,omitempty"`
	DNDStartTime      *string `json:"dndStartTime,omitempty"`
	DNDEndTime        *string `json:"dndEndTime,omitempty"`

	ProfileSearchable  *bool `json:"profileSearchable,omitempty"`
	MessagesFromAnyone *bool `json:"messagesFromAnyone,omitempty"`
	ShowOnlineStatus   *bool `json:"showOnlineStatus,omitempty"`
	AnalyticsEnabled   *bool `json:"analyticsEnabled,omitempty"`
	PersonalizedAds    *bool `json:"personalizedAds,omitempty"`

	TwoFactorEnabled *bool `json:"twoFactorEnabled,omitempty"`
	LoginAlerts      *bool `json:"loginAlerts,omitempty"`
}

// RegisterInput is the registration form.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Username  string `json:"username" validate:"omitempty,max=150"`
	Password  string `json:"password" validate:"required"`
	Password2 string `json:"password2" validate:"required"`
	FullName  string `json:"fullName" validate:"omitempty,max=255"`
}

// LoginInput represents login credentials
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PasswordChange is the change-password form.
type PasswordChange struct {
	OldPassword  string `json:"oldPassword" validate:"required"`
	NewPassword  string `json:"newPassword" validate:"required"`
	NewPassword2 string `json:"newPassword2" validate:"required"`
}

// Ptr returns a pointer to v. Handy for building a ProfileUpdate.
func Ptr[T any](v T) *T {
	return &v
}
