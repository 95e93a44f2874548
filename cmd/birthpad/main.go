package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "birthpad",
		Short:        "Launchpad client: create, buy and sell bonding-curve tokens",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().Bool("debug", false, "debug logging")
	root.PersistentFlags().String("wallet", "", "wallet key file (overrides wallet_path)")
	root.PersistentFlags().String("auth-token", "", "launchpad auth token for mint host requests")

	root.AddCommand(
		newBuyCmd(),
		newSellCmd(),
		newCreateCmd(),
		newMintCmd(),
		newConfigsCmd(),
		newRPCCmd(),
		newSettingsCmd(),
		newLocaleCmd(),
		newHistoryCmd(),
		newVersionCmd(),
		newTUICmd(),
	)
	return root
}

// run wires an env for cmd and hands it to fn.
func run(opts envOptions, fn func(ctx context.Context, cmd *cobra.Command, e *env, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := setup(ctx, cmd, opts)
		if err != nil {
			return err
		}
		defer e.Close()
		return fn(ctx, cmd, e, args)
	}
}
