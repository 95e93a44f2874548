package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/birthpad/internal/app"
)

var offlineEnv = envOptions{console: true}

func newConfigsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configs",
		Short: "List launchpad curve configs",
		Args:  cobra.NoArgs,
		RunE: run(offlineEnv, func(ctx context.Context, cmd *cobra.Command, e *env, _ []string) error {
			configs, err := e.backend.LaunchpadConfigs(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CONFIG\tCURVE\tINDEX\tTRADE FEE\tQUOTE")
			for _, c := range configs {
				quote := c.MintInfoB.Symbol
				if quote == "" {
					quote = c.Key.MintB
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n", c.Key.PubKey, c.Key.CurveType, c.Key.Index, c.Key.TradeFeeRate, quote)
			}
			return w.Flush()
		}),
	}
}

func newRPCCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rpc",
		Short: "Inspect or switch the RPC node",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Select a node the way the app does on start and list the backend nodes",
		Args:  cobra.NoArgs,
		RunE: run(envOptions{console: true, connect: true}, func(ctx context.Context, cmd *cobra.Command, e *env, _ []string) error {
			st := e.session.State()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "\tNAME\tURL\tWEIGHT")
			for _, n := range st.RPCs {
				mark := ""
				if n.URL == st.RPCURL {
					mark = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", mark, n.Name, n.URL, n.Weight)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "in use: %s\n", st.RPCURL)

			epoch, err := e.session.EpochInfo(ctx)
			if err != nil {
				e.logger.Warn("Epoch info unavailable", zap.Error(err))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "epoch: %d (slot %d/%d)\n", epoch.Epoch, epoch.SlotIndex, epoch.SlotsInEpoch)
			return nil
		}),
	}

	use := &cobra.Command{
		Use:   "use <url>",
		Short: "Validate a node and store it as the preferred RPC",
		Args:  cobra.ExactArgs(1),
		RunE: run(offlineEnv, func(ctx context.Context, _ *cobra.Command, e *env, args []string) error {
			if !app.ValidURL(args[0]) {
				return fmt.Errorf("invalid url %q", args[0])
			}
			if !e.session.SetRPCURL(ctx, args[0], false, false) {
				return errors.New("rpc node rejected")
			}
			return nil
		}),
	}

	cmd.AddCommand(list, use)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version and check for updates",
		Args:  cobra.NoArgs,
		RunE: run(offlineEnv, func(ctx context.Context, cmd *cobra.Command, e *env, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "birthpad %s\n", e.session.State().AppVersion)
			latest, err := e.backend.AppVersion(ctx)
			if err != nil {
				e.logger.Debug("Version check failed", zap.Error(err))
				return nil
			}
			need, err := e.session.CheckAppVersion(ctx)
			if err != nil {
				return err
			}
			if need {
				fmt.Fprintf(out, "update available: %s\n", latest.Latest)
			}
			return nil
		}),
	}
}
