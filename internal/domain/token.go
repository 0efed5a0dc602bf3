package domain

// TokenPair is the access/refresh credential pair. An empty string means the
// slot is absent.
type TokenPair struct {
	Access  string `json:"access,omitempty"`
	Refresh string `json:"refresh,omitempty"`
}

// HasAccess reports whether an access token is present.
func (p TokenPair) HasAccess() bool {
	return p.Access != ""
}

// HasRefresh reports whether a refresh token is present.
func (p TokenPair) HasRefresh() bool {
	return p.Refresh != ""
}
