package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"bindery/internal/ipc"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var shelfName string

	cmd := &cobra.Command{
		Use:   "add <author> <title>",
		Short: "Add a book to the wishlist",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Add(args[0], args[1], shelfName)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added #%d: %s / %s\n", resp.Item.ID, resp.Item.Author, resp.Item.Title)
				if resp.Item.ShelfName != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Will be shelved on %q after import\n", resp.Item.ShelfName)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&shelfName, "shelf", "s", "", "Catalog shelf to file the book on after import")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List wishlist entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.QueueList(listStatuses)
				if err != nil {
					return err
				}
				if len(resp.Items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Wishlist is empty")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Author", "Title", "Status", "Shelf", "Error"},
					buildWishlistRows(resp.Items),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by status (repeatable)")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one wishlist entry with its activity log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.QueueDescribe(id)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				item := resp.Item
				fmt.Fprintf(stdout, "ID:          %d\n", item.ID)
				fmt.Fprintf(stdout, "Author:      %s\n", item.Author)
				fmt.Fprintf(stdout, "Title:       %s\n", item.Title)
				fmt.Fprintf(stdout, "Status:      %s\n", item.Status)
				if item.ShelfName != "" {
					fmt.Fprintf(stdout, "Shelf:       %s\n", item.ShelfName)
				}
				if item.NzbURL != "" {
					fmt.Fprintf(stdout, "Release:     %s\n", item.NzbURL)
				}
				if item.ErrorMessage != "" {
					fmt.Fprintf(stdout, "Error:       %s\n", item.ErrorMessage)
				}
				if item.LastSearch != "" {
					fmt.Fprintf(stdout, "Last search: %s\n", item.LastSearch)
				}
				fmt.Fprintf(stdout, "Added:       %s (%s)\n", item.CreatedAt, item.AddedVia)

				logsResp, err := client.ItemLogs(&item.ID, 20)
				if err != nil {
					return err
				}
				if len(logsResp.Logs) > 0 {
					fmt.Fprintln(stdout)
					fmt.Fprintln(stdout, "Activity (newest first):")
					for _, entry := range logsResp.Logs {
						fmt.Fprintf(stdout, "  %s  %-5s %s\n", entry.CreatedAt, entry.Level, entry.Message)
					}
				}
				return nil
			})
		},
	}
}

func newRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [id...]",
		Short: "Return searching or failed entries to the pending pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := parseItemID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.QueueRetry(ids)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Retried %d item(s)\n", resp.Updated)
				return nil
			})
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a wishlist entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.QueueRemove(id)
				if err != nil {
					return err
				}
				if !resp.Removed {
					fmt.Fprintf(cmd.OutOrStdout(), "Item %d not found\n", id)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed item %d\n", id)
				return nil
			})
		},
	}
}

func newSearchNowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search-now",
		Short: "Trigger an immediate search sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SearchNow()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
				return nil
			})
		},
	}
}

func newShelvesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "shelves",
		Short: "List the shelves known to the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Shelves()
				if err != nil {
					return err
				}
				if len(resp.Shelves) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No shelves found")
					return nil
				}
				rows := make([][]string, 0, len(resp.Shelves))
				for _, shelf := range resp.Shelves {
					rows = append(rows, []string{strconv.FormatInt(shelf.ID, 10), shelf.Name})
				}
				table := renderTable([]string{"ID", "Name"}, rows, []columnAlignment{alignRight, alignLeft})
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}

func parseItemID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid item id %q", arg)
	}
	return id, nil
}
