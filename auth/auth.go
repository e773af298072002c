// Package auth decides whether a user authenticated by an upstream OAuth
// provider may talk to the agents.
package auth

import "strings"

// ProviderGitHub is the only accepted OAuth provider.
const ProviderGitHub = "github"

// User is an identity asserted by the OAuth provider.
type User struct {
	Provider   string
	Identifier string
}

// Allowlist admits a single GitHub login.
type Allowlist struct {
	username string
}

// NewAllowlist creates an allowlist for username. An empty username admits nobody.
func NewAllowlist(username string) *Allowlist {
	return &Allowlist{username: strings.TrimSpace(username)}
}

// Enabled reports whether a username is configured.
func (a *Allowlist) Enabled() bool { return a.username != "" }

// Callback reports whether the identity returned by providerID may sign in.
// GitHub logins compare case-insensitively.
func (a *Allowlist) Callback(providerID, identifier string) bool {
	if a.username == "" || providerID != ProviderGitHub {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(identifier), a.username)
}

// Authorize is Callback for a User value.
func (a *Allowlist) Authorize(u User) bool {
	return a.Callback(u.Provider, u.Identifier)
}
