// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command memek runs the MEMEk proof-of-incompleteness puzzle: the HTTP
// service and a local CLI over the same ledger.
package main

import (
	"os"

	"github.com/AleutianAI/memek/pkg/ux"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		p := &ux.Printer{Out: root.OutOrStdout(), Err: root.ErrOrStderr(), Mode: ux.DetectMode()}
		p.Error("%s", exitMessage(err))
		os.Exit(exitCode(err))
	}
}
