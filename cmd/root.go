package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the gcalctl application
var rootCmd = &cobra.Command{
	Use:   "gcalctl",
	Short: "Manage Google Calendar meetings from the command line",
	Long: `gcalctl is a command-line tool for managing meetings in Google Calendar.

It can list upcoming events, create, update and delete events, show your
calendars and propose meeting slots where all attendees are free.

On first use it walks you through browser-based Google authorization and
stores the resulting tokens locally; subsequent runs reuse and refresh them
silently.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application.
// Ctrl-C cancels the command context, which aborts a pending browser
// consent instead of hanging.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "gcalctl version %s\n" .Version}}`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the config file")
	rootCmd.PersistentFlags().StringVar(&accountFlag, "account", "", "Google account name to use")
	rootCmd.PersistentFlags().StringVar(&calendarFlag, "calendar", "", "calendar ID to operate on")

	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newCalendarsCmd())
	rootCmd.AddCommand(newSlotsCmd())
}
