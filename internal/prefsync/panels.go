package prefsync

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/Rrens/profilesync/internal/domain"
)

// Profile slices edited by the built-in panels. Names are the internal
// (camelCase) field names.
var (
	AccountFields = []string{
		"fullName", "email", "country", "countryCode", "phone", "dateOfBirth", "gender",
	}
	AppearanceFields = []string{
		"themeMode", "accentColor", "fontFamily", "fontSize", "compactMode", "showTooltips", "animations",
	}
	NotificationFields = []string{
		"emailAlerts", "pushNotifications", "smsAlerts", "digestFrequency", "securityAlerts", "mentions",
		"weeklySummary", "productUpdates", "dndEnabled", "dndStartTime", "dndEndTime",
	}
	PrivacyFields = []string{
		"profileSearchable", "messagesFromAnyone", "showOnlineStatus", "analyticsEnabled", "personalizedAds",
	}
	SecurityFields = []string{
		"twoFactorEnabled", "loginAlerts",
	}
)

// Panels maps each built-in panel name to its slice.
var Panels = map[string][]string{
	"account":       AccountFields,
	"appearance":    AppearanceFields,
	"notifications": NotificationFields,
	"privacy":       PrivacyFields,
	"security":      SecurityFields,
}

// PanelNames returns the built-in panel names, sorted.
func PanelNames() []string {
	names := make([]string, 0, len(Panels))
	for name := range Panels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FormPanel is a map-backed Panel over a fixed set of fields. Values are
// kept in their JSON form (string, float64, bool, nil).
type FormPanel struct {
	name   string
	fields []string

	mu       sync.RWMutex
	values   map[string]any
	onChange func(field string)
}

// NewFormPanel creates an empty panel editing fields.
func NewFormPanel(name string, fields []string) *FormPanel {
	return &FormPanel{
		name:   name,
		fields: fields,
		values: make(map[string]any),
	}
}

// NewBuiltinPanel creates one of the panels listed in Panels.
func NewBuiltinPanel(name string) (*FormPanel, error) {
	fields, ok := Panels[name]
	if !ok {
		return nil, fmt.Errorf("unknown panel %q", name)
	}
	return NewFormPanel(name, fields), nil
}

func (p *FormPanel) Name() string { return p.name }

// Fields returns the fields the panel edits.
func (p *FormPanel) Fields() []string { return p.fields }

// OnChange registers fn to run after every field assignment, including the
// assignments made by Populate.
func (p *FormPanel) OnChange(fn func(field string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = fn
}

// Populate copies the panel's fields from user.
func (p *FormPanel) Populate(user *domain.UserProfile) {
	source := map[string]any{}
	if user != nil {
		raw, err := json.Marshal(user)
		if err == nil {
			_ = json.Unmarshal(raw, &source)
		}
	}

	p.mu.Lock()
	p.values = make(map[string]any, len(p.fields))
	for _, f := range p.fields {
		if v, ok := source[f]; ok {
			p.values[f] = v
		}
	}
	fn := p.onChange
	p.mu.Unlock()

	if fn != nil {
		for _, f := range p.fields {
			fn(f)
		}
	}
}

// Set assigns one field. The value must have the field's JSON type.
func (p *FormPanel) Set(field string, value any) error {
	if !slices.Contains(p.fields, field) {
		return fmt.Errorf("field %q is not part of panel %q", field, p.name)
	}
	if err := checkValue(field, value); err != nil {
		return err
	}

	p.mu.Lock()
	p.values[field] = value
	fn := p.onChange
	p.mu.Unlock()

	if fn != nil {
		fn(field)
	}
	return nil
}

// Snapshot returns a copy of the current values.
func (p *FormPanel) Snapshot() map[string]any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]any, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// Values returns the panel's values as an update.
func (p *FormPanel) Values() domain.ProfileUpdate {
	var update domain.ProfileUpdate
	raw, err := json.Marshal(p.Snapshot())
	if err != nil {
		return update
	}
	_ = json.Unmarshal(raw, &update)
	return update
}

// checkValue verifies value decodes into the update field named field.
func checkValue(field string, value any) error {
	raw, err := json.Marshal(map[string]any{field: value})
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", field, err)
	}
	var update domain.ProfileUpdate
	if err := json.Unmarshal(raw, &update); err != nil {
		return fmt.Errorf("invalid value for %s: %w", field, err)
	}
	return nil
}
