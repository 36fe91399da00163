package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"murajaah/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and workload status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *apiClient) error {
				var resp api.StatusResponse
				if err := client.get(cmd.Context(), "/api/status", nil, &resp); err != nil {
					return err
				}

				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)

				for _, line := range renderSectionHeader("Daemon", colorize) {
					fmt.Fprintln(stdout, line)
				}
				runningKind := statusWarn
				if resp.Running {
					runningKind = statusOK
				}
				fmt.Fprintln(stdout, renderStatusLine("Running", runningKind, yesNo(resp.Running), colorize))
				fmt.Fprintln(stdout, renderStatusLine("Database", statusInfo, resp.DatabasePath, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Lock file", statusInfo, resp.LockFilePath, colorize))
				fmt.Fprintln(stdout)

				for _, line := range renderSectionHeader("Workload", colorize) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout, renderStatusLine("Open tasks", statusInfo, strconv.Itoa(resp.OpenTasks), colorize))
				fmt.Fprintln(stdout, renderStatusLine("Completed tasks", statusInfo, strconv.Itoa(resp.CompletedTasks), colorize))
				fmt.Fprintln(stdout, renderStatusLine("Pending submissions", statusInfo, strconv.Itoa(resp.PendingSubmissions), colorize))
				queuedKind := statusInfo
				if resp.QueuedForReview > 0 {
					queuedKind = statusWarn
				}
				fmt.Fprintln(stdout, renderStatusLine("Queued for review", queuedKind, strconv.Itoa(resp.QueuedForReview), colorize))
				fmt.Fprintln(stdout, renderStatusLine("Students", statusInfo, strconv.Itoa(resp.Students), colorize))
				return nil
			})
		},
	}
}
