package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestCredentialFresh(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cred Credential
		want bool
	}{
		{
			name: "expires well in the future",
			cred: Credential{AccessToken: "a", Expiry: now.Add(time.Hour)},
			want: true,
		},
		{
			name: "expires just outside the margin",
			cred: Credential{AccessToken: "a", Expiry: now.Add(expiryMargin + time.Second)},
			want: true,
		},
		{
			name: "expires within the safety margin",
			cred: Credential{AccessToken: "a", Expiry: now.Add(30 * time.Second)},
			want: false,
		},
		{
			name: "already expired",
			cred: Credential{AccessToken: "a", Expiry: now.Add(-time.Hour)},
			want: false,
		},
		{
			name: "no access token",
			cred: Credential{Expiry: now.Add(time.Hour)},
			want: false,
		},
		{
			name: "zero expiry",
			cred: Credential{AccessToken: "a"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cred.Fresh(now))
		})
	}
}

func TestCredentialCovers(t *testing.T) {
	cred := Credential{Scopes: []string{"a", "b"}}

	assert.True(t, cred.Covers(nil))
	assert.True(t, cred.Covers([]string{"a"}))
	assert.True(t, cred.Covers([]string{"b", "a"}))
	assert.False(t, cred.Covers([]string{"c"}))
	assert.False(t, cred.Covers([]string{"a", "c"}))
}

func TestCredentialTokenSource(t *testing.T) {
	cred := Credential{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour),
	}

	tok, err := cred.TokenSource().Token()
	require.NoError(t, err)
	assert.Equal(t, "access", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)
}

func TestUnmarshalCredentialRejectsUnusableDocuments(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"truncated JSON", `{"version":1,"access_token":"a`},
		{"not JSON", "pickle"},
		{"parses but has no tokens", `{"version":1,"scopes":["a"]}`},
		{"unsupported version", `{"version":99,"access_token":"a"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := unmarshalCredential([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestFromTokenPreservesScopes(t *testing.T) {
	scopes := []string{"a", "b"}
	cred := fromToken(&oauth2.Token{AccessToken: "x", RefreshToken: "y"}, scopes)

	require.Equal(t, scopes, cred.Scopes)
	assert.Equal(t, credentialVersion, cred.Version)

	// The credential owns its scope slice.
	scopes[0] = "mutated"
	assert.Equal(t, "a", cred.Scopes[0])
}
