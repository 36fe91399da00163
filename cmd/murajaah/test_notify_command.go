package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"murajaah/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	var recipient string

	cmd := &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			if strings.TrimSpace(cfg.Delivery.NtfyBaseURL) == "" {
				fmt.Fprintln(stdout, "Notification delivery is not configured (set delivery.ntfy_base_url)")
				return nil
			}
			svc := notifications.NewService(cfg)
			if err := svc.TestNotification(cmd.Context(), recipient); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Test notification sent to %s\n", recipient)
			return nil
		},
	}

	cmd.Flags().StringVarP(&recipient, "recipient", "r", "", "Recipient topic suffix (mentor or student id)")
	_ = cmd.MarkFlagRequired("recipient")
	return cmd
}
