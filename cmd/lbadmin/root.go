package main

import (
	"sync"

	"github.com/spf13/cobra"
)

// lazyApp wires the store on first use so commands that need no database
// run without one.
type lazyApp struct {
	wire func() (*app, error)
	once sync.Once
	app  *app
	err  error
}

func (l *lazyApp) get() (*app, error) {
	l.once.Do(func() {
		l.app, l.err = l.wire()
	})
	return l.app, l.err
}

func (l *lazyApp) shutdown() {
	if l.app != nil && l.app.close != nil {
		_ = l.app.close()
	}
}

func newRootCmd(wire func() (*app, error)) *cobra.Command {
	deps := &lazyApp{wire: wire}

	rootCmd := &cobra.Command{
		Use:           "lbadmin",
		Short:         "Linkbox admin CLI: invite codes, subscriptions and referral accounting",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			deps.shutdown()
		},
	}

	rootCmd.AddCommand(
		newCodesCmd(),
		newSubscriptionCmd(deps),
		newReferralsCmd(deps),
		newMigrateCmd(deps),
	)
	return rootCmd
}
