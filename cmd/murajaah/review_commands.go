package main

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"murajaah/internal/api"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Mentor review queue operations",
	}

	reviewCmd.AddCommand(newReviewNextCommand(ctx))
	reviewCmd.AddCommand(newReviewRetryCommand(ctx))
	return reviewCmd
}

func newReviewNextCommand(ctx *commandContext) *cobra.Command {
	var mentorID string

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the submission a mentor should review",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *apiClient) error {
				query := url.Values{}
				query.Set("mentor", mentorID)

				var resp api.ReviewResponse
				if err := client.get(cmd.Context(), "/api/review/next", query, &resp); err != nil {
					return err
				}
				printReviewState(cmd, resp)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&mentorID, "mentor", "m", "", "Mentor identifier")
	_ = cmd.MarkFlagRequired("mentor")
	return cmd
}

func newReviewRetryCommand(ctx *commandContext) *cobra.Command {
	var mentorID string

	cmd := &cobra.Command{
		Use:   "retry",
		Short: "Re-attempt a failed review delivery",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *apiClient) error {
				query := url.Values{}
				query.Set("mentor", mentorID)

				var resp api.ReviewResponse
				if err := client.post(cmd.Context(), "/api/review/retry", query, nil, &resp); err != nil {
					return err
				}
				printReviewState(cmd, resp)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&mentorID, "mentor", "m", "", "Mentor identifier")
	_ = cmd.MarkFlagRequired("mentor")
	return cmd
}

func printReviewState(cmd *cobra.Command, resp api.ReviewResponse) {
	stdout := cmd.OutOrStdout()
	if resp.Active == nil {
		fmt.Fprintln(stdout, "Nothing waiting for review")
		return
	}
	if resp.Task != nil {
		fmt.Fprintf(stdout, "Reviewing: %s\n", resp.Task.Label)
	}
	fmt.Fprintln(stdout, submissionTable(*resp.Active))
	if resp.Active.LastDeliveryError != "" {
		fmt.Fprintf(stdout, "Last delivery error: %s (run `murajaah review retry`)\n", resp.Active.LastDeliveryError)
	}
	fmt.Fprintf(stdout, "Queue depth: %d\n", resp.Depth)
}

func newVerdictCommand(ctx *commandContext) *cobra.Command {
	var mentorID string
	var pass bool
	var fail bool

	cmd := &cobra.Command{
		Use:   "verdict <submission-id>",
		Short: "Record a mentor's verdict on a submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pass == fail {
				return errors.New("exactly one of --pass or --fail is required")
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid submission id %q", args[0])
			}
			return ctx.withClient(func(client *apiClient) error {
				req := api.VerdictRequest{MentorID: mentorID, Passed: pass}
				var resp api.VerdictResponse
				path := fmt.Sprintf("/api/submissions/%d/verdict", id)
				if err := client.post(cmd.Context(), path, nil, req, &resp); err != nil {
					return err
				}

				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Submission %d marked %s\n", resp.Submission.ID, resp.Submission.Status)
				fmt.Fprintln(stdout, taskTable(resp.Task))
				if resp.TaskCompleted {
					fmt.Fprintf(stdout, "Task %d completed\n", resp.Task.ID)
				}
				if resp.Advanced != nil {
					fmt.Fprintf(stdout, "Cursor advanced to page %d line %d (%s)\n",
						resp.Advanced.CurrentPage, resp.Advanced.CurrentLine, resp.Advanced.CurrentStage)
				}
				if resp.Next != nil {
					fmt.Fprintf(stdout, "Next review delivered: submission %d\n", resp.Next.ID)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&mentorID, "mentor", "m", "", "Mentor identifier (releases the review slot)")
	cmd.Flags().BoolVar(&pass, "pass", false, "Mark the recitation as passed")
	cmd.Flags().BoolVar(&fail, "fail", false, "Mark the recitation as failed")
	return cmd
}
