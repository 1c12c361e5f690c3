package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/gcalctl/internal/calendar"
)

func newCreateCmd() *cobra.Command {
	var (
		description string
		location    string
		attendees   []string
		allDay      bool
		timeZone    string
	)

	cmd := &cobra.Command{
		Use:   "create TITLE START END",
		Short: "Create a new event",
		Long: `Create a new calendar event.

START and END accept ISO formats: 2024-06-01T14:00:00, an RFC 3339 timestamp,
or a bare date for all-day events.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseEventTime(args[1])
			if err != nil {
				return err
			}
			end, err := parseEventTime(args[2])
			if err != nil {
				return err
			}
			if !end.After(start) {
				return fmt.Errorf("end time must be after start time")
			}

			app, err := loadApp(cmd.Name())
			if err != nil {
				return err
			}
			client, err := app.newCalendarClient(cmd.Context())
			if err != nil {
				return err
			}

			created, err := client.CreateEvent(app.cfg.Calendar, calendar.EventInput{
				Summary:     args[0],
				Description: description,
				Location:    location,
				Start:       start,
				End:         end,
				TimeZone:    timeZone,
				AllDay:      allDay,
				Attendees:   attendees,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Event created: %s (ID: %s)\n", created.Summary, created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "event description")
	cmd.Flags().StringVar(&location, "location", "", "event location")
	cmd.Flags().StringSliceVar(&attendees, "attendees", nil, "attendee email addresses")
	cmd.Flags().BoolVar(&allDay, "all-day", false, "create an all-day event")
	cmd.Flags().StringVar(&timeZone, "timezone", "", "IANA time zone for the event (default UTC)")
	return cmd
}
