package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var (
		maxResults int64
		days       int
		query      string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List upcoming events",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Name())
			if err != nil {
				return err
			}
			client, err := app.newCalendarClient(cmd.Context())
			if err != nil {
				return err
			}

			now := time.Now()
			events, err := client.ListEvents(app.cfg.Calendar, now, now.AddDate(0, 0, days), maxResults, query)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintf(out, "No upcoming events found in the next %d days.\n", days)
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "START\tSUMMARY\tID")
			for _, ev := range events {
				fmt.Fprintf(w, "%s\t%s\t%s\n", formatEventTime(ev.Start, ev.AllDay), ev.Summary, ev.ID)
			}
			return w.Flush()
		},
	}

	cmd.Flags().Int64Var(&maxResults, "max", 10, "maximum number of events to show")
	cmd.Flags().IntVar(&days, "days", 7, "number of days ahead to look")
	cmd.Flags().StringVar(&query, "query", "", "free-text search over event fields")
	return cmd
}
