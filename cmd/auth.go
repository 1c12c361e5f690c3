package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/gcalctl/internal/calendar"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Google authorization",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthRevokeCmd())
	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorize gcalctl to access Google Calendar",
		Long: `Run the browser-based Google authorization flow and store the resulting
tokens. If a stored credential already exists and is usable it is left
untouched; an expired one is refreshed instead of re-prompting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Name())
			if err != nil {
				return err
			}
			store, err := app.newCredentialStore()
			if err != nil {
				return err
			}

			cred, err := store.Acquire(cmd.Context(), calendar.Scopes)
			if err != nil {
				return describeAuthError(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Authorized account %q until %s\n",
				app.cfg.Account, cred.Expiry.Local().Format(time.RFC1123))
			return nil
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored credential state without touching the network",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Name())
			if err != nil {
				return err
			}
			store, err := app.newCredentialStore()
			if err != nil {
				return err
			}

			cred, err := store.Stored(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if cred == nil {
				fmt.Fprintf(out, "Account %q is not authorized. Run 'gcalctl auth login'.\n", app.cfg.Account)
				return nil
			}

			state := "expired (will refresh on next use)"
			if cred.Fresh(time.Now()) {
				state = "valid"
			} else if cred.RefreshToken == "" {
				state = "expired (re-authorization required)"
			}
			fmt.Fprintf(out, "Account:  %s\n", app.cfg.Account)
			fmt.Fprintf(out, "State:    %s\n", state)
			fmt.Fprintf(out, "Expiry:   %s\n", cred.Expiry.Local().Format(time.RFC1123))
			fmt.Fprintf(out, "Scopes:   %s\n", strings.Join(cred.Scopes, ", "))
			return nil
		},
	}
}

func newAuthRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke",
		Short: "Delete the stored credential for the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Name())
			if err != nil {
				return err
			}
			store, err := app.newCredentialStore()
			if err != nil {
				return err
			}

			if err := store.Forget(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed stored credential for account %q\n", app.cfg.Account)
			return nil
		},
	}
}
