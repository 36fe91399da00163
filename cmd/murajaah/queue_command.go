package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"murajaah/internal/api"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	var mentorID string

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Show a mentor's review backlog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *apiClient) error {
				query := url.Values{}
				query.Set("mentor", mentorID)

				var resp api.ReviewResponse
				if err := client.get(cmd.Context(), "/api/review/next", query, &resp); err != nil {
					return err
				}

				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Waiting for review: %d\n", resp.Depth)
				if resp.Active == nil {
					fmt.Fprintln(stdout, "Nothing in front of the mentor")
					return nil
				}
				if resp.Task != nil {
					fmt.Fprintf(stdout, "In front of the mentor: %s\n", resp.Task.Label)
				}
				fmt.Fprintln(stdout, submissionTable(*resp.Active))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&mentorID, "mentor", "m", "", "Mentor identifier")
	_ = cmd.MarkFlagRequired("mentor")
	return cmd
}
