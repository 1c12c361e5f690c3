package auth

import (
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// LoadClientConfig reads the OAuth client secrets JSON (the application
// identity downloaded from the Google Cloud Console) and builds the oauth2
// configuration for the given scopes.
//
// The client secrets file is externally supplied and never written by this
// tool; its absence is a ConfigMissing failure, not an auth failure.
func LoadClientConfig(path string, scopes []string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, failuref(ConfigMissing,
			"OAuth client secrets not found at %s; download the OAuth 2.0 client credentials from the Google Cloud Console and place them there", path)
	}
	if err != nil {
		return nil, failuref(ConfigMissing, "reading OAuth client secrets %s: %v", path, err)
	}

	conf, err := google.ConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, failuref(ConfigMissing, "parsing OAuth client secrets %s: %v", path, err)
	}
	return conf, nil
}
