package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Storage backend names accepted in the "storage" setting.
const (
	StorageFile    = "file"
	StorageKeyring = "keyring"
)

// Application holds the tool configuration.
type Application struct {
	// Account is a local label distinguishing credential sets, so the tool
	// can be used with more than one Google account.
	Account string `koanf:"account"`

	// Calendar is the calendar ID operated on by default.
	Calendar string `koanf:"calendar"`

	// CredentialsFile is the path to the OAuth client secrets JSON
	// downloaded from the Google Cloud Console.
	CredentialsFile string `koanf:"credentialsfile"`

	// Storage selects the credential storage backend: "file" or "keyring".
	Storage string `koanf:"storage"`

	// LogLevel controls log verbosity: debug, info, warn, error.
	LogLevel string `koanf:"loglevel"`

	Consent Consent `koanf:"consent"`
}

// Consent configures the interactive browser authorization step.
type Consent struct {
	// ListenAddr is the local address for the OAuth callback listener.
	// Port 0 picks a free port.
	ListenAddr string `koanf:"listenaddr"`

	// Timeout bounds the wait for the user to complete browser consent.
	Timeout time.Duration `koanf:"timeout"`

	// OpenBrowser controls whether the authorization URL is opened in the
	// user's browser automatically. The URL is always printed as well.
	OpenBrowser bool `koanf:"openbrowser"`
}

// Dir returns the configuration directory for the tool.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gcalctl")
	}
	return filepath.Join(homeDir(), ".config", "gcalctl")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// TokenFilePath returns the credential file location for an account when the
// file storage backend is used.
func TokenFilePath(account string) string {
	return filepath.Join(Dir(), "token-"+account+".json")
}

// Load reads the configuration from the given path, falling back to defaults
// and environment variables when the file does not exist.
func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Account:         "default",
		Calendar:        "primary",
		CredentialsFile: filepath.Join(Dir(), "credentials.json"),
		Storage:         StorageFile,
		LogLevel:        "info",
		Consent: Consent{
			ListenAddr:  "127.0.0.1:0",
			Timeout:     5 * time.Minute,
			OpenBrowser: true,
		},
	}, "koanf"), nil)
	if err != nil {
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Application{}, err
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "GCALCTL_",
		TransformFunc: func(key, value string) (string, any) {
			// GCALCTL_CONSENT_TIMEOUT -> consent.timeout
			key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, "GCALCTL_")), "_", ".")
			return key, value
		},
	}), nil)
	if err != nil {
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	// Windows fallback
	return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
}
