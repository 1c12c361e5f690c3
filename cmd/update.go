package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/gcalctl/internal/calendar"
)

func newUpdateCmd() *cobra.Command {
	var (
		title       string
		startArg    string
		endArg      string
		description string
		location    string
	)

	cmd := &cobra.Command{
		Use:   "update EVENT_ID",
		Short: "Update an existing event",
		Long:  `Update fields of an existing event. Only the given flags are changed.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := calendar.EventInput{
				Summary:     title,
				Description: description,
				Location:    location,
			}

			var err error
			if startArg != "" {
				if input.Start, err = parseEventTime(startArg); err != nil {
					return err
				}
			}
			if endArg != "" {
				if input.End, err = parseEventTime(endArg); err != nil {
					return err
				}
			}

			app, err := loadApp(cmd.Name())
			if err != nil {
				return err
			}
			client, err := app.newCalendarClient(cmd.Context())
			if err != nil {
				return err
			}

			updated, err := client.UpdateEvent(app.cfg.Calendar, args[0], input)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Event updated: %s (ID: %s)\n", updated.Summary, updated.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new event title")
	cmd.Flags().StringVar(&startArg, "start", "", "new start time (ISO format)")
	cmd.Flags().StringVar(&endArg, "end", "", "new end time (ISO format)")
	cmd.Flags().StringVar(&description, "description", "", "new event description")
	cmd.Flags().StringVar(&location, "location", "", "new event location")
	return cmd
}
