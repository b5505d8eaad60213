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
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/memek/pkg/ux"
	"github.com/AleutianAI/memek/services/kernel/records"
)

func newKernelCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kernel",
		Short: "Create and inspect puzzle kernels",
	}

	var difficulty uint8
	initCmd := &cobra.Command{
		Use:   "init <seed-id> <fragment>",
		Short: "Create a kernel and its evolution state",
		Args:  cobra.ExactArgs(2),
		RunE: runWith(opts, func(ctx context.Context, a *app, args []string) error {
			seedID, err := parseSeedID(args[0])
			if err != nil {
				return err
			}
			seed, state, err := a.program.InitializeKernel(ctx, seedID, difficulty, args[1])
			if err != nil {
				return err
			}
			a.printer.Success("kernel %d initialized", seed.SeedID)
			printKernel(a.printer, seed, state)
			return nil
		}),
	}
	initCmd.Flags().Uint8Var(&difficulty, "difficulty", 0, "initial difficulty")

	showCmd := &cobra.Command{
		Use:   "show <seed-id>",
		Short: "Show a kernel and its evolution state",
		Args:  cobra.ExactArgs(1),
		RunE: runWith(opts, func(ctx context.Context, a *app, args []string) error {
			seedID, err := parseSeedID(args[0])
			if err != nil {
				return err
			}
			seed, err := a.program.Kernel(ctx, seedID)
			if err != nil {
				return err
			}
			state, err := a.program.Evolution(ctx, seedID)
			if err != nil {
				return err
			}
			printKernel(a.printer, seed, state)
			return nil
		}),
	}

	fragmentCmd := &cobra.Command{
		Use:   "fragment <seed-id>",
		Short: "Print the kernel's current fragment",
		Args:  cobra.ExactArgs(1),
		RunE: runWith(opts, func(ctx context.Context, a *app, args []string) error {
			seedID, err := parseSeedID(args[0])
			if err != nil {
				return err
			}
			fragment, err := a.program.RequestFragment(ctx, seedID)
			if err != nil {
				return err
			}
			a.printer.Info("%s", fragment)
			return nil
		}),
	}

	evolveCmd := &cobra.Command{
		Use:   "evolve <seed-id>",
		Short: "Advance the kernel one epoch",
		Args:  cobra.ExactArgs(1),
		RunE: runWith(opts, func(ctx context.Context, a *app, args []string) error {
			seedID, err := parseSeedID(args[0])
			if err != nil {
				return err
			}
			res, err := a.program.TriggerEvolution(ctx, seedID)
			if err != nil {
				return err
			}
			a.printer.Warning("%s", res.Description)
			printKernel(a.printer, res.Seed, res.State)
			return nil
		}),
	}

	cmd.AddCommand(initCmd, showCmd, fragmentCmd, evolveCmd)
	return cmd
}

func printKernel(p *ux.Printer, seed *records.KernelSeed, state *records.EvolutionState) {
	p.Record(fmt.Sprintf("Kernel %d", seed.SeedID),
		ux.Field{Key: "Seed ID", Value: seed.SeedID},
		ux.Field{Key: "Address", Value: records.KernelAddress(seed.SeedID)},
		ux.Field{Key: "Fragment", Value: seed.Fragment()},
		ux.Field{Key: "Constraint", Value: hex.EncodeToString(seed.ConstraintHash[:])},
		ux.Field{Key: "Difficulty", Value: seed.Difficulty},
		ux.Field{Key: "Active", Value: seed.IsActive},
		ux.Field{Key: "Epoch", Value: state.CurrentEpoch},
		ux.Field{Key: "Style", Value: state.DominantStyle},
		ux.Field{Key: "Mutation Rate", Value: state.ConstraintMutationRate},
	)
}

func parseSeedID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: seed id %q is not an unsigned integer", errUsage, s)
	}
	return id, nil
}
