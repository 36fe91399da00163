package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"murajaah/internal/api"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var taskID int64
	var recordingID string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Record a recitation attempt against a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *apiClient) error {
				req := api.SubmitRequest{TaskID: taskID, ExternalID: recordingID}
				var resp api.SubmitResponse
				if err := client.post(cmd.Context(), "/api/submissions", nil, req, &resp); err != nil {
					return err
				}

				stdout := cmd.OutOrStdout()
				if resp.Existing {
					fmt.Fprintf(stdout, "Recording already submitted as submission %d\n", resp.Submission.ID)
				} else {
					fmt.Fprintf(stdout, "Submission %d recorded\n", resp.Submission.ID)
				}
				if resp.Decision != "" {
					fmt.Fprintf(stdout, "Verification decision: %s\n", resp.Decision)
				}
				fmt.Fprintln(stdout, submissionTable(resp.Submission))
				if resp.Task != nil {
					fmt.Fprintln(stdout)
					fmt.Fprintln(stdout, taskTable(*resp.Task))
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64VarP(&taskID, "task", "t", 0, "Task identifier")
	cmd.Flags().StringVarP(&recordingID, "recording", "r", "", "External recording identifier (optional)")
	_ = cmd.MarkFlagRequired("task")
	return cmd
}

func newConfirmCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <submission-id>",
		Short: "Release a pending submission for mentor review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid submission id %q", args[0])
			}
			return ctx.withClient(func(client *apiClient) error {
				var resp api.ConfirmResponse
				path := fmt.Sprintf("/api/submissions/%d/confirm", id)
				if err := client.post(cmd.Context(), path, nil, nil, &resp); err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if resp.Delivered {
					fmt.Fprintf(stdout, "Submission %d delivered to the mentor\n", id)
				} else {
					fmt.Fprintf(stdout, "Submission %d queued; the mentor is busy with an earlier review\n", id)
				}
				return nil
			})
		},
	}
}

func newCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <submission-id>",
		Short: "Withdraw the most recent pending submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid submission id %q", args[0])
			}
			return ctx.withClient(func(client *apiClient) error {
				var cancelled api.Submission
				path := fmt.Sprintf("/api/submissions/%d/cancel", id)
				if err := client.post(cmd.Context(), path, nil, nil, &cancelled); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Submission %d cancelled\n", cancelled.ID)
				return nil
			})
		},
	}
}
