package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rovshanmuradov/birthpad/internal/api"
	"github.com/rovshanmuradov/birthpad/internal/launchpad"
	"github.com/rovshanmuradov/birthpad/internal/upload"
)

func newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a token with its bonding-curve pool and an optional initial buy",
		Args:  cobra.NoArgs,
	}
	f := cmd.Flags()
	f.String("name", "", "token name")
	f.String("symbol", "", "token symbol")
	f.String("description", "", "description written into metadata")
	f.String("image", "", "image file to pin together with metadata")
	f.String("uri", "", "existing metadata URI (skips the upload)")
	f.String("buy", "", "initial buy in SOL")
	f.Bool("create-only", false, "create the pool without buying")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("symbol")
	cmd.MarkFlagsMutuallyExclusive("image", "uri")

	cmd.RunE = run(tradingEnv, func(ctx context.Context, cmd *cobra.Command, e *env, _ []string) error {
		f := cmd.Flags()
		req := launchpad.CreateRequest{}
		req.Name, _ = f.GetString("name")
		req.Symbol, _ = f.GetString("symbol")
		req.URI, _ = f.GetString("uri")
		req.CreateOnly, _ = f.GetBool("create-only")
		if err := launchpad.ValidateToken(req.Name, req.Symbol); err != nil {
			return err
		}

		if raw, _ := f.GetString("buy"); raw != "" && !req.CreateOnly {
			amount, err := launchpad.FromUnits(raw, solDecimals)
			if err != nil {
				return err
			}
			req.BuyAmount = amount
		}
		if req.BuyAmount == 0 {
			req.CreateOnly = true
		}

		if image, _ := f.GetString("image"); image != "" {
			if e.uploader == nil {
				return errors.New("no upload provider is configured")
			}
			description, _ := f.GetString("description")
			uri, err := upload.PinMetadata(ctx, e.uploader, image, upload.Meta{
				Name:        req.Name,
				Symbol:      req.Symbol,
				Description: description,
			})
			if err != nil {
				return fmt.Errorf("upload metadata: %w", err)
			}
			req.URI = uri
			fmt.Fprintf(cmd.OutOrStdout(), "metadata: %s\n", uri)
		}
		if req.URI == "" {
			return errors.New("either --image or --uri is required")
		}

		res, err := e.lp.CreateAndBuy(ctx, req)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "mint:      %s\n", res.Mint)
		fmt.Fprintf(out, "pool:      %s\n", res.Pool)
		fmt.Fprintf(out, "config:    %s\n", res.ConfigID)
		fmt.Fprintf(out, "signature: %s\n", res.Signature)
		return nil
	})
	return cmd
}

func newMintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint host operations",
	}

	register := &cobra.Command{
		Use:   "register",
		Short: "Register mint metadata on the mint host (requires --auth-token)",
		Args:  cobra.NoArgs,
	}
	f := register.Flags()
	f.String("name", "", "token name")
	f.String("symbol", "", "token symbol")
	f.String("description", "", "description")
	f.String("config", "", "launchpad config id")
	f.String("image", "", "image file")
	f.String("website", "", "project website")
	f.String("twitter", "", "twitter link")
	f.String("telegram", "", "telegram link")
	f.String("cf-token", "", "captcha token")
	f.Bool("random", false, "reserve a random vanity mint instead")
	_ = register.MarkFlagRequired("name")
	_ = register.MarkFlagRequired("symbol")

	register.RunE = run(tradingEnv, func(ctx context.Context, cmd *cobra.Command, e *env, _ []string) error {
		f := cmd.Flags()
		req := launchpad.MintRequest{}
		req.Name, _ = f.GetString("name")
		req.Symbol, _ = f.GetString("symbol")
		req.Description, _ = f.GetString("description")
		req.ConfigID, _ = f.GetString("config")
		req.Website, _ = f.GetString("website")
		req.Twitter, _ = f.GetString("twitter")
		req.Telegram, _ = f.GetString("telegram")
		req.CfToken, _ = f.GetString("cf-token")

		if image, _ := f.GetString("image"); image != "" {
			file, err := upload.ReadFile(image)
			if err != nil {
				return err
			}
			req.File = &api.File{Name: file.Name, ContentType: file.ContentType, Data: bytes.NewReader(file.Data)}
		}

		out := cmd.OutOrStdout()
		if random, _ := f.GetBool("random"); random {
			res, err := e.lp.CreateRandomMint(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "mint:     %s\nmetadata: %s\n", res.Mint, res.MetadataLink)
			return nil
		}
		mint, err := e.lp.CreateMint(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, mint)
		return nil
	})

	cmd.AddCommand(register)
	return cmd
}
