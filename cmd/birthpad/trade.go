package main

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/birthpad/internal/launchpad"
	"github.com/rovshanmuradov/birthpad/internal/settings"
)

const (
	solDecimals uint8 = 9
	// defaultMintDecimals is the precision of tokens minted by the launchpad.
	defaultMintDecimals uint8 = 6
)

var tradingEnv = envOptions{console: true, connect: true, trading: true}

func newBuyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buy <mint> <amount-sol>",
		Short: "Buy a bonding-curve token for SOL",
		Args:  cobra.ExactArgs(2),
	}
	tradeFlags(cmd)
	cmd.RunE = run(tradingEnv, func(ctx context.Context, cmd *cobra.Command, e *env, args []string) error {
		return trade(ctx, cmd, e, args[0], args[1], false)
	})
	return cmd
}

func newSellCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sell <mint> <amount>",
		Short: "Sell a bonding-curve token for SOL",
		Args:  cobra.ExactArgs(2),
	}
	tradeFlags(cmd)
	cmd.RunE = run(tradingEnv, func(ctx context.Context, cmd *cobra.Command, e *env, args []string) error {
		return trade(ctx, cmd, e, args[0], args[1], true)
	})
	return cmd
}

func tradeFlags(cmd *cobra.Command) {
	cmd.Flags().String("slippage", "", "slippage percent for this trade (default: launchpad setting)")
	cmd.Flags().Uint8("decimals", 0, "token decimals when the mint is not in the token list")
	cmd.Flags().Bool("no-wait", false, "return after the transaction is sent")
}

// mintInfo resolves decimals and symbol from the token list, the --decimals
// flag, or the launchpad default, in that order.
func (e *env) mintInfo(cmd *cobra.Command, raw string) (launchpad.MintInfo, error) {
	mint, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		return launchpad.MintInfo{}, fmt.Errorf("invalid mint %q: %w", raw, err)
	}
	info := launchpad.MintInfo{Mint: mint, Decimals: defaultMintDecimals}
	if t, ok := e.tokens.Get(raw); ok {
		info.Decimals = uint8(t.Decimals)
		info.Symbol = t.Symbol
	}
	if cmd.Flags().Changed("decimals") {
		info.Decimals, _ = cmd.Flags().GetUint8("decimals")
	}
	return info, nil
}

func trade(ctx context.Context, cmd *cobra.Command, e *env, rawMint, rawAmount string, sell bool) error {
	info, err := e.mintInfo(cmd, rawMint)
	if err != nil {
		return err
	}
	if s, _ := cmd.Flags().GetString("slippage"); s != "" {
		fraction, err := settings.ParseSlippagePercent(s)
		if err != nil {
			return err
		}
		switch settings.CheckSlippage(fraction) {
		case settings.SlippageFrontRun:
			e.logger.Warn("Slippage above 2.5%, the trade may be front-run", zap.String("slippage", s))
		case settings.SlippageMayFail:
			e.logger.Warn("Slippage below 0.5%, the trade may fail", zap.String("slippage", s))
		}
		e.lp.SetSlippage(fraction)
	}

	inDecimals, outDecimals, outSymbol := solDecimals, info.Decimals, info.Symbol
	if sell {
		inDecimals, outDecimals, outSymbol = info.Decimals, solDecimals, "SOL"
	}
	if outSymbol == "" {
		outSymbol = launchpad.ShortAddress(rawMint, 5)
	}
	amount, err := launchpad.FromUnits(rawAmount, inDecimals)
	if err != nil {
		return err
	}

	var q *launchpad.Quote
	if sell {
		q, err = e.lp.QuoteSell(ctx, info.Mint, launchpad.QuoteToken{}, amount)
	} else {
		q, err = e.lp.QuoteBuy(ctx, info.Mint, launchpad.QuoteToken{}, amount)
	}
	if err != nil {
		return fmt.Errorf("quote: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "≈ %s %s (min %s, slippage %s)\n",
		launchpad.ToUnits(q.ExpectedOut, outDecimals), outSymbol,
		launchpad.ToUnits(q.MinOut, outDecimals),
		settings.FormatPercent(e.lp.State().Slippage))

	var res *launchpad.TradeResult
	if sell {
		res, err = e.lp.Sell(ctx, launchpad.SellRequest{Mint: info, Amount: amount, MinAmountOut: q.MinOut})
	} else {
		res, err = e.lp.Buy(ctx, launchpad.BuyRequest{Mint: info, Amount: amount, MinAmountOut: q.MinOut})
	}
	if err != nil {
		return err
	}
	if noWait, _ := cmd.Flags().GetBool("no-wait"); noWait {
		return nil
	}
	return e.lp.Track(ctx, res)
}
