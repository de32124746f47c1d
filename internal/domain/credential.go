package domain

import "time"

// RefreshWindow is how far before expiry a credential is already treated as stale.
const RefreshWindow = 10 * time.Minute

// Credential is the process-wide OAuth2 token pair. ExpiresAt is derived from the
// token endpoint's relative expires_in at persist time.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	ExpiresIn    int64     `json:"expires_in,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Fresh reports whether the credential is usable without a refresh: present and
// expiring more than RefreshWindow from now.
func (c *Credential) Fresh(now time.Time) bool {
	if c == nil || c.AccessToken == "" {
		return false
	}
	return c.ExpiresAt.After(now.Add(RefreshWindow))
}
