package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rovshanmuradov/birthpad/internal/i18n"
	"github.com/rovshanmuradov/birthpad/internal/settings"
)

// settings commands touch only the local file
var localEnv = envOptions{console: true}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and write the persisted settings",
	}

	get := &cobra.Command{
		Use:   "get [key]",
		Short: "Print one value, or every stored key",
		Args:  cobra.MaximumNArgs(1),
		RunE: run(localEnv, func(_ context.Context, cmd *cobra.Command, e *env, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				v, ok := e.prefs.Get(args[0])
				if !ok {
					return fmt.Errorf("key %q is not set", args[0])
				}
				fmt.Fprintln(out, v)
				return nil
			}
			for _, k := range e.prefs.Keys() {
				v, _ := e.prefs.Get(k)
				fmt.Fprintf(out, "%s=%s\n", k, v)
			}
			return nil
		}),
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a raw value",
		Args:  cobra.ExactArgs(2),
		RunE: run(localEnv, func(_ context.Context, _ *cobra.Command, e *env, args []string) error {
			return e.prefs.Set(args[0], args[1])
		}),
	}

	unset := &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a stored value",
		Args:  cobra.ExactArgs(1),
		RunE: run(localEnv, func(_ context.Context, _ *cobra.Command, e *env, args []string) error {
			return e.prefs.Delete(args[0])
		}),
	}

	slippage := &cobra.Command{
		Use:   "slippage [percent]",
		Short: "Show or set a slippage tolerance",
		Args:  cobra.MaximumNArgs(1),
		RunE: run(localEnv, func(_ context.Context, cmd *cobra.Command, e *env, args []string) error {
			raw, _ := cmd.Flags().GetString("context")
			c := settings.SlippageContext(raw)
			switch c {
			case settings.SlippageSwap, settings.SlippageLiquidity, settings.SlippageLaunchpad:
			default:
				return fmt.Errorf("unknown slippage context %q", raw)
			}
			if len(args) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s%%\n", settings.FormatPercent(e.prefs.Slippage(c)))
				return nil
			}
			fraction, err := settings.ParseSlippagePercent(args[0])
			if err != nil {
				return err
			}
			return e.prefs.SetSlippage(c, fraction)
		}),
	}
	slippage.Flags().String("context", string(settings.SlippageLaunchpad), "swap, liquidity or launchpad")

	cmd.AddCommand(get, set, unset, slippage)
	return cmd
}

func newLocaleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locale [lang]",
		Short: "Show or change the interface language",
		Args:  cobra.MaximumNArgs(1),
		RunE: run(localEnv, func(_ context.Context, cmd *cobra.Command, e *env, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				fmt.Fprintln(out, e.i18n.Language())
				return nil
			}
			lang, ok := i18n.Normalize(args[0])
			if !ok {
				return fmt.Errorf("unsupported language %q (supported: %v)", args[0], i18n.Supported)
			}
			if _, err := e.i18n.ChangeLanguage(lang); err != nil {
				return err
			}
			fmt.Fprintln(out, lang)
			return nil
		}),
	}
}
