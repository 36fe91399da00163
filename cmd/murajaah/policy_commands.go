package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"murajaah/internal/api"
)

func newPolicyCommand(ctx *commandContext) *cobra.Command {
	policyCmd := &cobra.Command{
		Use:   "policy",
		Short: "Group policy management",
	}

	policyCmd.AddCommand(newPolicyShowCommand(ctx))
	policyCmd.AddCommand(newPolicySetCommand(ctx))
	return policyCmd
}

func newPolicyShowCommand(ctx *commandContext) *cobra.Command {
	var groupID string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a group's review policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *apiClient) error {
				query := url.Values{}
				query.Set("group", groupID)

				var resp api.Policy
				if err := client.get(cmd.Context(), "/api/policy", query, &resp); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), policyTable(resp))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&groupID, "group", "g", "", "Group identifier")
	_ = cmd.MarkFlagRequired("group")
	return cmd
}

// newPolicySetCommand stores a group policy. Flags left unset fall back to
// the [policy] defaults from the configuration file.
func newPolicySetCommand(ctx *commandContext) *cobra.Command {
	var groupID string
	var mentorID string
	var level int
	var mode string
	var aiEnabled bool
	var acceptThreshold int
	var rejectThreshold int
	var requiredLearning int
	var requiredHalfPage int
	var requiredFullPage int
	var hoursLearning float64
	var hoursHalfPage float64
	var hoursFullPage float64

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update a group's review policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			defaults := cfg.Policy

			req := api.Policy{
				GroupID:          groupID,
				MentorID:         mentorID,
				Level:            defaults.Level,
				VerificationMode: defaults.VerificationMode,
				AIEnabled:        defaults.AIEnabled,
				AcceptThreshold:  defaults.AcceptThreshold,
				RejectThreshold:  defaults.RejectThreshold,
				RequiredLearning: defaults.RequiredLearning,
				RequiredHalfPage: defaults.RequiredHalfPage,
				RequiredFullPage: defaults.RequiredFullPage,
				HoursLearning:    defaults.HoursLearning,
				HoursHalfPage:    defaults.HoursHalfPage,
				HoursFullPage:    defaults.HoursFullPage,
			}
			flags := cmd.Flags()
			if flags.Changed("level") {
				req.Level = level
			}
			if flags.Changed("mode") {
				req.VerificationMode = mode
			}
			if flags.Changed("ai") {
				req.AIEnabled = aiEnabled
			}
			if flags.Changed("accept") {
				req.AcceptThreshold = acceptThreshold
			}
			if flags.Changed("reject") {
				req.RejectThreshold = rejectThreshold
			}
			if flags.Changed("required-learning") {
				req.RequiredLearning = requiredLearning
			}
			if flags.Changed("required-half-page") {
				req.RequiredHalfPage = requiredHalfPage
			}
			if flags.Changed("required-full-page") {
				req.RequiredFullPage = requiredFullPage
			}
			if flags.Changed("hours-learning") {
				req.HoursLearning = hoursLearning
			}
			if flags.Changed("hours-half-page") {
				req.HoursHalfPage = hoursHalfPage
			}
			if flags.Changed("hours-full-page") {
				req.HoursFullPage = hoursFullPage
			}

			return ctx.withClient(func(client *apiClient) error {
				var resp api.Policy
				if err := client.put(cmd.Context(), "/api/policy", req, &resp); err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Policy stored for group %s\n", resp.GroupID)
				fmt.Fprintln(stdout, policyTable(resp))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&groupID, "group", "g", "", "Group identifier")
	cmd.Flags().StringVarP(&mentorID, "mentor", "m", "", "Mentor who reviews this group")
	cmd.Flags().IntVar(&level, "level", 0, "Line batching level (1-3)")
	cmd.Flags().StringVar(&mode, "mode", "", "Verification mode (manual, semi_auto, full_auto)")
	cmd.Flags().BoolVar(&aiEnabled, "ai", false, "Enable AI scoring for learning stages")
	cmd.Flags().IntVar(&acceptThreshold, "accept", 0, "Auto-accept score threshold")
	cmd.Flags().IntVar(&rejectThreshold, "reject", 0, "Auto-reject score threshold")
	cmd.Flags().IntVar(&requiredLearning, "required-learning", 0, "Passes required for learning stages")
	cmd.Flags().IntVar(&requiredHalfPage, "required-half-page", 0, "Passes required for half-page stages")
	cmd.Flags().IntVar(&requiredFullPage, "required-full-page", 0, "Passes required for full-page stages")
	cmd.Flags().Float64Var(&hoursLearning, "hours-learning", 0, "Advisory deadline hours for learning stages")
	cmd.Flags().Float64Var(&hoursHalfPage, "hours-half-page", 0, "Advisory deadline hours for half-page stages")
	cmd.Flags().Float64Var(&hoursFullPage, "hours-full-page", 0, "Advisory deadline hours for full-page stages")
	_ = cmd.MarkFlagRequired("group")
	_ = cmd.MarkFlagRequired("mentor")
	return cmd
}
