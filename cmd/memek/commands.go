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
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "memek",
		Short: "MEMEk proof-of-incompleteness puzzle",
		Long: `memek runs a puzzle where participants earn tokens by completing a text
fragment so that its Keccak-256 digest contains a magic hex pattern.

Run "memek serve" for the HTTP API, or use the subcommands against a local
ledger.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.memek/memek.yaml)")
	flags.BoolVar(&opts.inMemory, "in-memory", false, "use a throwaway in-memory ledger")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	flags.StringVarP(&opts.output, "output", "o", "", "rich, minimal or machine (default: detect)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "write logs to stderr")

	root.AddCommand(
		newServeCmd(opts),
		newKernelCmd(opts),
		newBridgeCmd(opts, false),
		newBridgeCmd(opts, true),
		newMineCmd(opts),
		newInscribeCmd(opts),
		newScoreCmd(opts),
		newMintCmd(opts),
		newMetadataCmd(opts),
		newOracleCmd(opts),
	)
	return root
}
