package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newSlotsCmd() *cobra.Command {
	var (
		attendees []string
		duration  time.Duration
		days      int
	)

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Propose meeting slots where all attendees are free",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Name())
			if err != nil {
				return err
			}
			client, err := app.newCalendarClient(cmd.Context())
			if err != nil {
				return err
			}

			// Always include the calendar being operated on
			calendars := append([]string{app.cfg.Calendar}, attendees...)

			now := time.Now()
			slots, err := client.FindAvailableSlots(calendars, duration, now, now.AddDate(0, 0, days))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(slots) == 0 {
				fmt.Fprintf(out, "No common slots of %s found in the next %d days.\n", duration, days)
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "START\tEND")
			for _, slot := range slots {
				fmt.Fprintf(w, "%s\t%s\n",
					slot.Start.Local().Format("2006-01-02 15:04"),
					slot.End.Local().Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringSliceVar(&attendees, "attendees", nil, "attendee email addresses to check availability for")
	cmd.Flags().DurationVar(&duration, "duration", 30*time.Minute, "meeting duration")
	cmd.Flags().IntVar(&days, "days", 7, "number of days ahead to search")
	return cmd
}
