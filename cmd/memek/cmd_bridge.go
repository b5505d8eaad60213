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

	"github.com/AleutianAI/memek/pkg/validation"
	"github.com/AleutianAI/memek/pkg/ux"
	"github.com/AleutianAI/memek/services/kernel"
	"github.com/AleutianAI/memek/services/kernel/records"
)

func newBridgeCmd(opts *rootOptions, alt bool) *cobra.Command {
	var participant string
	var salt uint64

	use, short := "bridge", "Submit a completion, minted on the primary standard"
	if alt {
		use, short = "bridge-alt", "Submit a completion, minted on the alternate standard"
	}

	cmd := &cobra.Command{
		Use:   use + " <seed-id> <completion>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: runWith(opts, func(ctx context.Context, a *app, args []string) error {
			seedID, err := parseSeedID(args[0])
			if err != nil {
				return err
			}
			who, err := parseParticipant(participant)
			if err != nil {
				return err
			}
			bridge := a.program.BridgeGap
			if alt {
				bridge = a.program.BridgeGapAlt
			}
			res, err := bridge(ctx, who, seedID, args[1], salt)
			if err != nil {
				return err
			}
			printBridge(a.printer, res)
			return nil
		}),
	}
	cmd.Flags().StringVar(&participant, "participant", "", "participant address (64 hex chars)")
	cmd.Flags().Uint64Var(&salt, "salt", 0, "client salt, recorded nowhere")
	_ = cmd.MarkFlagRequired("participant")
	return cmd
}

func printBridge(p *ux.Printer, res *kernel.BridgeResult) {
	p.Success("gap bridged on kernel %d (%s)", res.SeedID, p.Tier(res.Tier.String()))
	p.Record("Reward",
		ux.Field{Key: "Participant", Value: res.Participant},
		ux.Field{Key: "Standard", Value: res.Standard},
		ux.Field{Key: "Tier", Value: res.Tier},
		ux.Field{Key: "Reward", Value: res.Reward},
		ux.Field{Key: "Amount", Value: res.Amount},
		ux.Field{Key: "Hash", Value: res.Hash},
		ux.Field{Key: "Gaps Bridged", Value: res.Resonance.TotalGapsBridged},
		ux.Field{Key: "Resonance Score", Value: res.Score.ResonanceScore},
	)
}

func newMineCmd(opts *rootOptions) *cobra.Command {
	var (
		base        string
		limit       uint64
		wantSuper   bool
		submit      bool
		participant string
	)

	cmd := &cobra.Command{
		Use:   "mine <seed-id>",
		Short: "Search for a completion that matches a tier pattern",
		Long: `mine appends a counter to --base until the digest of fragment+completion
contains a tier pattern. With --submit the completion is bridged on the
primary standard for --participant.`,
		Args: cobra.ExactArgs(1),
		RunE: runWith(opts, func(ctx context.Context, a *app, args []string) error {
			seedID, err := parseSeedID(args[0])
			if err != nil {
				return err
			}
			var who records.Address
			if submit {
				if who, err = parseParticipant(participant); err != nil {
					return err
				}
			}

			sol, found, err := a.program.Mine(ctx, seedID, base, limit, wantSuper)
			if err != nil {
				return err
			}
			if !found {
				a.printer.Warning("no completion found in the search range")
				return nil
			}
			a.printer.Record("Completion",
				ux.Field{Key: "Completion", Value: sol.Completion},
				ux.Field{Key: "Index", Value: sol.Index},
				ux.Field{Key: "Tier", Value: a.printer.Tier(sol.Result.Tier.String())},
				ux.Field{Key: "Hash", Value: sol.Result.Hash},
			)
			if !submit {
				return nil
			}
			res, err := a.program.BridgeGap(ctx, who, seedID, sol.Completion, sol.Index)
			if err != nil {
				return err
			}
			printBridge(a.printer, res)
			return nil
		}),
	}
	cmd.Flags().StringVar(&base, "base", "", "completion prefix")
	cmd.Flags().Uint64Var(&limit, "limit", 0, "candidates to try (default 1,000,000)")
	cmd.Flags().BoolVar(&wantSuper, "super", false, "only accept the super tier")
	cmd.Flags().BoolVar(&submit, "submit", false, "bridge the found completion")
	cmd.Flags().StringVar(&participant, "participant", "", "participant address for --submit")
	return cmd
}

func newInscribeCmd(opts *rootOptions) *cobra.Command {
	var (
		participant string
		depth       uint8
		tau         uint64
		chaosSeed   string
	)

	cmd := &cobra.Command{
		Use:   "inscribe",
		Short: "Inscribe a participant's one-time vibe anchor",
		Args:  cobra.NoArgs,
		RunE: runWith(opts, func(ctx context.Context, a *app, _ []string) error {
			who, err := parseParticipant(participant)
			if err != nil {
				return err
			}
			seed, err := validation.DecodeHex32("chaos-seed", chaosSeed)
			if err != nil {
				return fmt.Errorf("%w: %w", errUsage, err)
			}
			anchor, err := a.program.InscribeVibe(ctx, who, depth, tau, seed)
			if err != nil {
				return err
			}
			hash := anchor.VibeHash()
			a.printer.Success("vibe inscribed for %s", who)
			a.printer.Record("Anchor",
				ux.Field{Key: "Vibe Hash", Value: records.Address(hash)},
				ux.Field{Key: "Purple Depth", Value: anchor.PurpleDepth()},
				ux.Field{Key: "Claude Tau", Value: anchor.ClaudeTau()},
				ux.Field{Key: "Inscribed At", Value: anchor.InscriptionTime()},
			)
			return nil
		}),
	}
	cmd.Flags().StringVar(&participant, "participant", "", "participant address (64 hex chars)")
	cmd.Flags().Uint8Var(&depth, "depth", 0, "purple depth")
	cmd.Flags().Uint64Var(&tau, "tau", 0, "claude tau")
	cmd.Flags().StringVar(&chaosSeed, "chaos-seed", "", "32-byte chaos seed as hex")
	_ = cmd.MarkFlagRequired("participant")
	_ = cmd.MarkFlagRequired("chaos-seed")
	return cmd
}

func newScoreCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score <participant>",
		Short: "Show a participant's resonance score",
		Args:  cobra.ExactArgs(1),
		RunE: runWith(opts, func(ctx context.Context, a *app, args []string) error {
			who, err := parseParticipant(args[0])
			if err != nil {
				return err
			}
			score, err := a.program.Score(ctx, who)
			if err != nil {
				return err
			}
			a.printer.Record("Score",
				ux.Field{Key: "User", Value: score.User},
				ux.Field{Key: "Resonance Score", Value: score.ResonanceScore},
				ux.Field{Key: "Viral Coefficient", Value: score.ViralCoefficient},
				ux.Field{Key: "Creative Variance", Value: score.CreativeVariance},
				ux.Field{Key: "Last Active", Value: score.LastActive},
			)
			return nil
		}),
	}
	return cmd
}

func parseParticipant(s string) (records.Address, error) {
	addr, err := records.ParseAddress(s)
	if err != nil {
		return addr, fmt.Errorf("%w: participant: %w", errUsage, err)
	}
	return addr, nil
}
