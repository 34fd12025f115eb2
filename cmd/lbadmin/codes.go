package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/invitecode"
)

func newCodesCmd() *cobra.Command {
	codesCmd := &cobra.Command{
		Use:   "codes",
		Short: "Work with invite codes",
	}
	codesCmd.AddCommand(newCodesGenerateCmd(), newCodesCheckCmd())
	return codesCmd
}

func newCodesGenerateCmd() *cobra.Command {
	var (
		count  int
		prefix string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print freshly generated invite codes (not stored)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}
			gen, err := invitecode.NewGenerator(prefix)
			if err != nil {
				return err
			}
			codes, err := gen.Batch(count)
			if err != nil {
				return err
			}
			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(codes)
			}
			for _, c := range codes {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), c); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 5, "number of codes")
	cmd.Flags().StringVar(&prefix, "prefix", "LB", "code prefix")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as a JSON array")
	return cmd
}

func newCodesCheckCmd() *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "check <code>",
		Short: "Check a code's format without touching the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := invitecode.NewGenerator(prefix)
			if err != nil {
				return err
			}
			code := invitecode.Normalize(args[0])
			if !gen.Valid(code) {
				return fmt.Errorf("%s: invalid code format", code)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", code)
			return err
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "LB", "code prefix")
	return cmd
}
