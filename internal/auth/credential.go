package auth

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"golang.org/x/oauth2"
)

// expiryMargin is the safety margin applied to the freshness check: an
// access token expiring within this window is treated as already expired,
// so a calendar request never starts with a token about to lapse mid-call.
const expiryMargin = 60 * time.Second

// credentialVersion is the on-disk format version.
const credentialVersion = 1

// Credential is a persisted set of OAuth2 tokens together with the scopes
// they were granted for.
type Credential struct {
	Version      int       `json:"version"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry"`
	Scopes       []string  `json:"scopes"`
}

// Fresh reports whether the access token is usable at the given time,
// applying the expiry safety margin.
func (c *Credential) Fresh(now time.Time) bool {
	if c.AccessToken == "" || c.Expiry.IsZero() {
		return false
	}
	return now.Add(expiryMargin).Before(c.Expiry)
}

// Covers reports whether the granted scopes include every required scope.
// A credential granted for a different scope set must not be refreshed or
// reused; the caller has to re-authorize.
func (c *Credential) Covers(required []string) bool {
	for _, scope := range required {
		if !slices.Contains(c.Scopes, scope) {
			return false
		}
	}
	return true
}

// Token converts the credential into an oauth2 token. The returned token is
// a read-only handle for the duration of one invocation; it is never written
// back to storage.
func (c *Credential) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: c.RefreshToken,
		Expiry:       c.Expiry,
	}
}

// TokenSource returns a static token source presenting the access token as
// a bearer credential on each request. It performs no refresh; Acquire has
// already guaranteed freshness for the invocation.
func (c *Credential) TokenSource() oauth2.TokenSource {
	return oauth2.StaticTokenSource(c.Token())
}

// fromToken builds a credential from a token returned by the authorization
// server, recording which scopes it was granted for.
func fromToken(tok *oauth2.Token, scopes []string) *Credential {
	return &Credential{
		Version:      credentialVersion,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
		Scopes:       slices.Clone(scopes),
	}
}

// marshal serializes the credential to its on-disk JSON form.
func (c *Credential) marshal() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// unmarshalCredential parses the on-disk JSON form. It rejects documents
// that parse but lack the fields a usable credential needs, so a truncated
// or foreign file is never mistaken for a valid credential.
func unmarshalCredential(data []byte) (*Credential, error) {
	var c Credential
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c.Version > credentialVersion {
		return nil, fmt.Errorf("unsupported credential version %d", c.Version)
	}
	if c.AccessToken == "" && c.RefreshToken == "" {
		return nil, fmt.Errorf("credential contains no tokens")
	}
	return &c, nil
}
