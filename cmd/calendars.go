package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCalendarsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calendars",
		Short: "List the calendars accessible to the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Name())
			if err != nil {
				return err
			}
			client, err := app.newCalendarClient(cmd.Context())
			if err != nil {
				return err
			}

			calendars, err := client.ListCalendars()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSUMMARY\tROLE\tPRIMARY")
			for _, cal := range calendars {
				primary := ""
				if cal.Primary {
					primary = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cal.ID, cal.Summary, cal.AccessRole, primary)
			}
			return w.Flush()
		},
	}
}
