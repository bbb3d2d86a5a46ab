package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"bindery/internal/ipc"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show wishlist and database diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)

				qh, err := client.QueueHealth()
				if err != nil {
					return err
				}
				for _, line := range renderSectionHeader("Wishlist", colorize) {
					fmt.Fprintln(stdout, line)
				}
				rows := [][]string{
					{"total", strconv.Itoa(qh.Total)},
					{"pending", strconv.Itoa(qh.Pending)},
					{"searching", strconv.Itoa(qh.Searching)},
					{"found", strconv.Itoa(qh.Found)},
					{"importing", strconv.Itoa(qh.Importing)},
					{"shelved", strconv.Itoa(qh.Shelved)},
					{"failed", strconv.Itoa(qh.Failed)},
				}
				fmt.Fprintln(stdout, renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))

				dh, err := client.DatabaseHealth()
				if err != nil {
					return err
				}
				fmt.Fprintln(stdout)
				for _, line := range renderSectionHeader("Database", colorize) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout, renderStatusLine("Path", statusInfo, dh.DBPath, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Exists", boolKind(dh.DatabaseExists), yesNo(dh.DatabaseExists), colorize))
				fmt.Fprintln(stdout, renderStatusLine("Readable", boolKind(dh.DatabaseReadable), yesNo(dh.DatabaseReadable), colorize))
				if dh.SchemaVersion != "" {
					fmt.Fprintln(stdout, renderStatusLine("Schema version", statusInfo, dh.SchemaVersion, colorize))
				}
				fmt.Fprintln(stdout, renderStatusLine("Integrity", boolKind(dh.IntegrityCheck), yesNo(dh.IntegrityCheck), colorize))
				fmt.Fprintln(stdout, renderStatusLine("Items", statusInfo, strconv.Itoa(dh.TotalItems), colorize))
				if dh.Error != "" {
					fmt.Fprintln(stdout, renderStatusLine("Error", statusError, dh.Error, colorize))
				}
				return nil
			})
		},
	}
}

func boolKind(ok bool) statusKind {
	if ok {
		return statusOK
	}
	return statusError
}
