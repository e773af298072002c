package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowlist_Callback(t *testing.T) {
	a := NewAllowlist("octocat")
	assert.True(t, a.Enabled())

	tests := []struct {
		provider, identifier string
		want                 bool
	}{
		{"github", "octocat", true},
		{"github", "OctoCat", true},
		{"github", "mallory", false},
		{"google", "octocat", false},
		{"", "", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, a.Callback(tt.provider, tt.identifier), "%s/%s", tt.provider, tt.identifier)
	}

	assert.True(t, a.Authorize(User{Provider: ProviderGitHub, Identifier: "octocat"}))
}

func TestAllowlist_EmptyAdmitsNobody(t *testing.T) {
	a := NewAllowlist("  ")
	assert.False(t, a.Enabled())
	assert.False(t, a.Callback("github", ""))
	assert.False(t, a.Callback("github", "octocat"))
}
