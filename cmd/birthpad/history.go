package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rovshanmuradov/birthpad/internal/export"
	"github.com/rovshanmuradov/birthpad/internal/launchpad"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or export the wallet's launchpad transactions",
		Args:  cobra.NoArgs,
	}
	f := cmd.Flags()
	f.Int("limit", 50, "number of records to load")
	f.String("export", "", "write a csv or json file instead of printing")
	f.String("out", ".", "output directory for --export")
	f.String("action", "", "only buy, sell or create")
	f.String("mint", "", "only this mint")
	f.Bool("confirmed", false, "only confirmed transactions")
	f.Duration("since", 0, "only transactions newer than this, e.g. 24h")

	cmd.RunE = run(tradingEnv, func(ctx context.Context, cmd *cobra.Command, e *env, _ []string) error {
		f := cmd.Flags()
		limit, _ := f.GetInt("limit")
		txs, err := e.history.ListTransactions(ctx, e.wallet.Address().String(), limit, 0)
		if err != nil {
			return err
		}

		opts := export.Options{}
		opts.Action, _ = f.GetString("action")
		opts.Mint, _ = f.GetString("mint")
		opts.OnlyConfirmed, _ = f.GetBool("confirmed")
		if since, _ := f.GetDuration("since"); since > 0 {
			opts.StartTime = time.Now().Add(-since)
		}

		if raw, _ := f.GetString("export"); raw != "" {
			format, err := export.ParseFormat(raw)
			if err != nil {
				return err
			}
			opts.Format = format
			opts.OutputDir, _ = f.GetString("out")
			path, err := export.NewExporter(e.logger).Export(txs, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tACTION\tTOKEN\tAMOUNT\tSTATUS\tSIGNATURE")
		for _, tx := range export.Filter(txs, opts) {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t%s\t%s\n",
				tx.CreatedAt.Local().Format("01-02 15:04:05"),
				tx.Action, tx.SymbolA, tx.AmountB, tx.SymbolB, tx.Status,
				launchpad.ShortAddress(tx.Signature, 6))
		}
		return w.Flush()
	})
	return cmd
}
