package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/teemow/gcalctl/internal/auth"
	"github.com/teemow/gcalctl/internal/calendar"
	"github.com/teemow/gcalctl/internal/config"
	"github.com/teemow/gcalctl/internal/logging"
	"github.com/teemow/gcalctl/internal/tokenstore"
)

// keyringService identifies this tool's entries in the OS keyring.
const keyringService = "gcalctl"

var (
	configPath   string
	accountFlag  string
	calendarFlag string
)

// app bundles the loaded configuration with the logger derived from it.
type app struct {
	cfg    config.Application
	logger *slog.Logger
}

// loadApp loads the configuration and applies command-line overrides. The
// returned logger is tagged with the running operation and the active
// account so every log line can be attributed.
func loadApp(operation string) (*app, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if accountFlag != "" {
		cfg.Account = accountFlag
	}
	if calendarFlag != "" {
		cfg.Calendar = calendarFlag
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)
	logger = logging.WithOperation(logger, operation)
	logger = logging.WithAccount(logger, cfg.Account)

	return &app{
		cfg:    cfg,
		logger: logger,
	}, nil
}

// newCredentialStore wires the configured storage backend and consent flow
// into a credential store for the active account.
func (a *app) newCredentialStore() (*auth.Store, error) {
	conf, err := auth.LoadClientConfig(a.cfg.CredentialsFile, calendar.Scopes)
	if err != nil {
		return nil, err
	}

	var backend tokenstore.Store
	switch a.cfg.Storage {
	case config.StorageKeyring:
		backend, err = tokenstore.NewKeyringStore(keyringService, a.cfg.Account)
	case config.StorageFile:
		backend, err = tokenstore.NewFileStore(config.TokenFilePath(a.cfg.Account))
	default:
		return nil, fmt.Errorf("unknown storage backend %q (expected %q or %q)",
			a.cfg.Storage, config.StorageFile, config.StorageKeyring)
	}
	if err != nil {
		return nil, err
	}

	consent := &auth.LocalConsent{
		ListenAddr:  a.cfg.Consent.ListenAddr,
		Timeout:     a.cfg.Consent.Timeout,
		OpenBrowser: a.cfg.Consent.OpenBrowser,
		Out:         os.Stderr,
		Logger:      a.logger,
	}

	return auth.NewStore(conf, backend, consent, a.logger), nil
}

// newCalendarClient acquires a credential for the calendar scopes and builds
// an API client from it. The first run triggers interactive authorization;
// later runs are silent unless a refresh or re-authorization is needed.
func (a *app) newCalendarClient(ctx context.Context) (*calendar.Client, error) {
	store, err := a.newCredentialStore()
	if err != nil {
		return nil, err
	}

	cred, err := store.Acquire(ctx, calendar.Scopes)
	if err != nil {
		return nil, describeAuthError(err)
	}

	return calendar.NewClient(ctx, cred.TokenSource())
}

// describeAuthError turns a classified auth failure into the message shown
// to the user.
func describeAuthError(err error) error {
	switch auth.KindOf(err) {
	case auth.UserDeclined:
		return fmt.Errorf("authorization was declined; run 'gcalctl auth login' to try again")
	case auth.Timeout:
		return fmt.Errorf("authorization timed out before consent was completed; run 'gcalctl auth login' to try again")
	case auth.NetworkError:
		return fmt.Errorf("could not reach the Google authorization server: %w", err)
	default:
		return err
	}
}

// parseEventTime parses the time formats accepted on the command line:
// RFC 3339, a local date-time without zone (2006-01-02T15:04:05), or a bare
// date.
func parseEventTime(s string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02",
	} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (expected ISO format, e.g. 2024-06-01T14:00:00)", s)
}

// formatEventTime renders an event time for display.
func formatEventTime(t time.Time, allDay bool) string {
	if t.IsZero() {
		return "-"
	}
	if allDay {
		return t.Format("2006-01-02")
	}
	return t.Local().Format("2006-01-02 15:04")
}
