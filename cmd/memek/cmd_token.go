// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/memek/pkg/ux"
	"github.com/AleutianAI/memek/services/kernel/issuance"
	"github.com/AleutianAI/memek/services/kernel/metadata"
)

// standardFlag resolves --standard, defaulting to the program's primary.
func standardFlag(a *app, s string) (issuance.Standard, error) {
	if s == "" {
		return a.program.Primary(), nil
	}
	std, err := issuance.ParseStandard(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errUsage, err)
	}
	return std, nil
}

func newMintCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Manage reward mints",
	}

	var standard string
	var decimals uint8
	var initCmd *cobra.Command
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create the mint for a token standard",
		Args:  cobra.NoArgs,
		RunE: runWith(opts, func(ctx context.Context, a *app, _ []string) error {
			std, err := standardFlag(a, standard)
			if err != nil {
				return err
			}
			d := a.cfg.Issuance.Decimals
			if initCmd.Flags().Changed("decimals") {
				d = decimals
			}
			mint, err := a.program.InitializeMint(ctx, std, d)
			if err != nil {
				return err
			}
			a.printer.Success("%s mint initialized", std)
			a.printer.Record("Mint",
				ux.Field{Key: "Standard", Value: std},
				ux.Field{Key: "Address", Value: std.MintAddress()},
				ux.Field{Key: "Authority", Value: mint.Authority},
				ux.Field{Key: "Decimals", Value: mint.Decimals},
				ux.Field{Key: "Supply", Value: mint.Supply},
			)
			return nil
		}),
	}
	initCmd.Flags().StringVar(&standard, "standard", "", "token or token-2022 (default: primary)")
	initCmd.Flags().Uint8Var(&decimals, "decimals", 0, "mint decimals (default from config)")

	var balanceStandard string
	balanceCmd := &cobra.Command{
		Use:   "balance <owner>",
		Short: "Show an owner's token balance",
		Args:  cobra.ExactArgs(1),
		RunE: runWith(opts, func(ctx context.Context, a *app, args []string) error {
			std, err := standardFlag(a, balanceStandard)
			if err != nil {
				return err
			}
			owner, err := parseParticipant(args[0])
			if err != nil {
				return err
			}
			amount, err := a.program.Balance(ctx, std, owner)
			if err != nil {
				return err
			}
			a.printer.Record("Balance",
				ux.Field{Key: "Owner", Value: owner},
				ux.Field{Key: "Standard", Value: std},
				ux.Field{Key: "Amount", Value: amount},
			)
			return nil
		}),
	}
	balanceCmd.Flags().StringVar(&balanceStandard, "standard", "", "token or token-2022 (default: primary)")

	cmd.AddCommand(initCmd, balanceCmd)
	return cmd
}

func newMetadataCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Manage token metadata",
	}

	var standard string
	var params metadata.Params
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register name, symbol and URI for a mint",
		Args:  cobra.NoArgs,
		RunE: runWith(opts, func(ctx context.Context, a *app, _ []string) error {
			std, err := standardFlag(a, standard)
			if err != nil {
				return err
			}
			md, err := a.program.CreateMetadata(ctx, std, params)
			if err != nil {
				return err
			}
			a.printer.Success("metadata registered for %s", std)
			a.printer.Record("Metadata",
				ux.Field{Key: "Mint", Value: md.Mint},
				ux.Field{Key: "Name", Value: md.Name},
				ux.Field{Key: "Symbol", Value: md.Symbol},
				ux.Field{Key: "URI", Value: md.URI},
			)
			return nil
		}),
	}
	createCmd.Flags().StringVar(&standard, "standard", "", "token or token-2022 (default: primary)")
	createCmd.Flags().StringVar(&params.Name, "name", "", "token name")
	createCmd.Flags().StringVar(&params.Symbol, "symbol", "", "token symbol")
	createCmd.Flags().StringVar(&params.URI, "uri", "", "metadata URI")

	cmd.AddCommand(createCmd)
	return cmd
}

func newOracleCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oracle",
		Short: "Resonance oracle votes",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create the oracle state",
		Args:  cobra.NoArgs,
		RunE: runWith(opts, func(ctx context.Context, a *app, _ []string) error {
			if _, err := a.program.InitializeOracle(ctx); err != nil {
				return err
			}
			a.printer.Success("oracle initialized")
			return nil
		}),
	}

	var resonant bool
	var weight uint64
	voteCmd := &cobra.Command{
		Use:   "vote",
		Short: "Cast a weighted vote",
		Args:  cobra.NoArgs,
		RunE: runWith(opts, func(ctx context.Context, a *app, _ []string) error {
			if _, err := a.program.UpdateOracle(ctx, resonant, weight); err != nil {
				return err
			}
			return printOracle(ctx, a)
		}),
	}
	voteCmd.Flags().BoolVar(&resonant, "resonant", false, "vote resonant instead of dissonant")
	voteCmd.Flags().Uint64Var(&weight, "weight", 1, "vote weight")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show vote totals and resonance",
		Args:  cobra.NoArgs,
		RunE: runWith(opts, func(ctx context.Context, a *app, _ []string) error {
			return printOracle(ctx, a)
		}),
	}

	cmd.AddCommand(initCmd, voteCmd, showCmd)
	return cmd
}

func printOracle(ctx context.Context, a *app) error {
	state, bps, err := a.program.Oracle(ctx)
	if err != nil {
		return err
	}
	a.printer.Record("Oracle",
		ux.Field{Key: "Resonant Weight", Value: state.ResonantWeight},
		ux.Field{Key: "Dissonant Weight", Value: state.DissonantWeight},
		ux.Field{Key: "Total Votes", Value: state.TotalVotes},
		ux.Field{Key: "Resonance BPS", Value: bps},
	)
	return nil
}
