package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"murajaah/internal/api"
)

func newProgressCommand(ctx *commandContext) *cobra.Command {
	var groupID string

	cmd := &cobra.Command{
		Use:   "progress <student>",
		Short: "Show a student's cursor and open task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *apiClient) error {
				query := url.Values{}
				query.Set("student", args[0])
				query.Set("group", groupID)

				var resp api.ProgressResponse
				if err := client.get(cmd.Context(), "/api/progress", query, &resp); err != nil {
					return err
				}

				stdout := cmd.OutOrStdout()
				fmt.Fprintln(stdout, progressTable(resp.Progress))
				if resp.OpenTask != nil {
					fmt.Fprintln(stdout)
					fmt.Fprintf(stdout, "Open task: %s\n", resp.OpenTask.Label)
					fmt.Fprintln(stdout, taskTable(*resp.OpenTask))
				} else {
					fmt.Fprintln(stdout, "No open task at the cursor; run `murajaah task open` to create one.")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&groupID, "group", "g", "", "Group the student belongs to")
	_ = cmd.MarkFlagRequired("group")
	return cmd
}
