package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"murajaah/internal/api"
)

func newTaskCommand(ctx *commandContext) *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Task operations",
	}

	taskCmd.AddCommand(newTaskOpenCommand(ctx))
	return taskCmd
}

func newTaskOpenCommand(ctx *commandContext) *cobra.Command {
	var studentID string
	var groupID string

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open (or fetch) the task at a student's cursor",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *apiClient) error {
				req := api.OpenTaskRequest{StudentID: studentID, GroupID: groupID}
				var task api.Task
				if err := client.post(cmd.Context(), "/api/tasks/open", nil, req, &task); err != nil {
					return err
				}

				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Task %d: %s\n", task.ID, task.Label)
				fmt.Fprintln(stdout, taskTable(task))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&studentID, "student", "s", "", "Student identifier")
	cmd.Flags().StringVarP(&groupID, "group", "g", "", "Group identifier")
	_ = cmd.MarkFlagRequired("student")
	_ = cmd.MarkFlagRequired("group")
	return cmd
}
