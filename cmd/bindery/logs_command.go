package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"bindery/internal/ipc"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var limit int
	var itemID int64

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show daemon logs, or one item's activity log with --item",
		RunE: func(cmd *cobra.Command, args []string) error {
			if itemID > 0 {
				return ctx.withClient(func(client *ipc.Client) error {
					resp, err := client.ItemLogs(&itemID, limit)
					if err != nil {
						return err
					}
					if len(resp.Logs) == 0 {
						fmt.Fprintln(cmd.OutOrStdout(), "No activity recorded")
						return nil
					}
					for _, entry := range resp.Logs {
						fmt.Fprintf(cmd.OutOrStdout(), "%s  %-5s %s\n", entry.CreatedAt, entry.Level, entry.Message)
					}
					return nil
				})
			}
			return tailDaemonLog(cmd.Context(), ctx, cmd, follow, limit)
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep streaming new daemon log lines")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Number of lines to show")
	cmd.Flags().Int64Var(&itemID, "item", 0, "Show the activity log of one wishlist entry")
	return cmd
}

func tailDaemonLog(cmdCtx context.Context, ctx *commandContext, cmd *cobra.Command, follow bool, limit int) error {
	offset := int64(-1)
	for {
		var lines []string
		err := ctx.withClient(func(client *ipc.Client) error {
			resp, err := client.LogTail(ipc.LogTailRequest{
				Offset:     offset,
				Limit:      limit,
				Follow:     follow,
				WaitMillis: 1000,
			})
			if err != nil {
				return err
			}
			lines = resp.Lines
			offset = resp.Offset
			return nil
		})
		if err != nil {
			if follow && errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		for _, line := range lines {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		if !follow {
			return nil
		}
		select {
		case <-cmdCtx.Done():
			return nil
		default:
		}
	}
}
