package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete EVENT_ID",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Name())
			if err != nil {
				return err
			}
			client, err := app.newCalendarClient(cmd.Context())
			if err != nil {
				return err
			}

			if err := client.DeleteEvent(app.cfg.Calendar, args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Event deleted (ID: %s)\n", args[0])
			return nil
		},
	}
}
