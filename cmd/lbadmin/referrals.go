package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newReferralsCmd(deps *lazyApp) *cobra.Command {
	refCmd := &cobra.Command{
		Use:   "referrals",
		Short: "Referral accounting",
	}
	refCmd.AddCommand(newReferralsReconcileCmd(deps))
	return refCmd
}

func newReferralsReconcileCmd(deps *lazyApp) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "reconcile <account-id>...",
		Short: "Reset referral counters to the number of used invite codes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]uuid.UUID, len(args))
			for i, raw := range args {
				id, err := uuid.Parse(raw)
				if err != nil {
					return fmt.Errorf("account id %q: %w", raw, err)
				}
				ids[i] = id
			}
			a, err := deps.get()
			if err != nil {
				return err
			}

			for _, id := range ids {
				if dryRun {
					stats, err := a.referrals.Stats(cmd.Context(), id)
					if err != nil {
						return fmt.Errorf("%s: %w", id, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: counter=%d used=%d consistent=%t\n", id, stats.Counter, stats.Derived, stats.Consistent)
					continue
				}
				before, after, err := a.referrals.Reconcile(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("%s: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d -> %d\n", id, before, after)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report drift without writing")
	return cmd
}
