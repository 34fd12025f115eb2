package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/services"
)

func newSubscriptionCmd(deps *lazyApp) *cobra.Command {
	subCmd := &cobra.Command{
		Use:     "subscription",
		Aliases: []string{"sub"},
		Short:   "Inspect and provision subscription records",
	}
	subCmd.AddCommand(newSubscriptionShowCmd(deps), newSubscriptionProvisionCmd(deps))
	return subCmd
}

func newSubscriptionShowCmd(deps *lazyApp) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <account-id>",
		Short: "Show an account's plan, trial window and invite codes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("account id: %w", err)
			}
			a, err := deps.get()
			if err != nil {
				return err
			}
			sub, err := a.subscriptions.Get(cmd.Context(), accountID)
			if err != nil {
				return err
			}
			view := services.StatusView(sub, a.now())
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			return writeStatus(cmd.OutOrStdout(), view)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newSubscriptionProvisionCmd(deps *lazyApp) *cobra.Command {
	return &cobra.Command{
		Use:   "provision <account-id>",
		Short: "Create the initial trial record if the account has none",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("account id: %w", err)
			}
			a, err := deps.get()
			if err != nil {
				return err
			}
			sub, err := a.subscriptions.Provision(cmd.Context(), accountID)
			if err != nil {
				return err
			}
			return writeStatus(cmd.OutOrStdout(), services.StatusView(sub, a.now()))
		},
	}
}

func writeStatus(w io.Writer, s *dto.SubscriptionStatusResponse) error {
	state := "active"
	if !s.Active {
		state = "inactive"
	}
	if _, err := fmt.Fprintf(w, "account: %s\nplan: %s (%s)\ntrial: %s -> %s, %d day(s) left\nreferrals: %d\n",
		s.AccountID, s.Plan, state,
		s.TrialStartDate.Format("2006-01-02 15:04"), s.TrialEndDate.Format("2006-01-02 15:04"),
		s.RemainingTrialDays, s.ReferralCount,
	); err != nil {
		return err
	}
	if s.ReferredBy != nil {
		if _, err := fmt.Fprintf(w, "referred by: %s\n", *s.ReferredBy); err != nil {
			return err
		}
	}
	for _, c := range s.InviteCodes {
		mark := "unused"
		if c.Used {
			mark = "used " + c.UsedAt.Format("2006-01-02")
		}
		if _, err := fmt.Fprintf(w, "  %s  %s\n", c.Code, mark); err != nil {
			return err
		}
	}
	return nil
}
