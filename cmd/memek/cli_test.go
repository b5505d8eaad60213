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
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/memek/services/kernel"
	"github.com/AleutianAI/memek/services/kernel/issuance"
	"github.com/AleutianAI/memek/services/kernel/records"
	"github.com/AleutianAI/memek/services/kernel/verifier"
)

const testParticipant = "aa00000000000000000000000000000000000000000000000000000000000001"

// writeTestConfig points storage at a temp dir and disables file logs.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "memek.yaml")
	body := fmt.Sprintf(`storage:
  path: %s
  sync_writes: false
  gc_interval: 0s
logging:
  log_dir: ""
telemetry:
  metric_exporter: none
`, filepath.Join(dir, "data"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func runCLI(t *testing.T, cfgPath string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", cfgPath, "-o", "machine"}, args...))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestCLI_KernelLifecycle(t *testing.T) {
	cfg := writeTestConfig(t)

	out, _, err := runCLI(t, cfg, "kernel", "init", "1", "The gap is")
	require.NoError(t, err)
	assert.Contains(t, out, "OK: kernel 1 initialized")
	assert.Contains(t, out, "seed_id=1\n")
	assert.Contains(t, out, "fragment=The gap is\n")
	assert.Contains(t, out, "epoch=0\n")

	out, _, err = runCLI(t, cfg, "kernel", "fragment", "1")
	require.NoError(t, err)
	assert.Equal(t, "The gap is\n", out)

	out, errOut, err := runCLI(t, cfg, "kernel", "evolve", "1")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Glitch! New Difficulty: 1")
	assert.Contains(t, out, "fragment=The gap is...\n")
	assert.Contains(t, out, "epoch=1\n")

	out, _, err = runCLI(t, cfg, "kernel", "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "difficulty=1\n")
	assert.Contains(t, out, "mutation_rate=2\n")
}

func TestCLI_KernelErrors(t *testing.T) {
	cfg := writeTestConfig(t)

	_, _, err := runCLI(t, cfg, "kernel", "show", "9")
	assert.ErrorIs(t, err, kernel.ErrRecordNotFound)

	_, _, err = runCLI(t, cfg, "kernel", "init", "x", "frag")
	assert.ErrorIs(t, err, errUsage)
	assert.Equal(t, 2, exitCode(err))

	_, _, err = runCLI(t, cfg, "kernel", "init", "1", "frag")
	require.NoError(t, err)
	_, _, err = runCLI(t, cfg, "kernel", "init", "1", "frag")
	assert.ErrorIs(t, err, kernel.ErrDuplicateRecord)
}

func TestCLI_MineAndSubmit(t *testing.T) {
	cfg := writeTestConfig(t)

	_, _, err := runCLI(t, cfg, "kernel", "init", "3", "Incomplete thoughts")
	require.NoError(t, err)
	_, _, err = runCLI(t, cfg, "mint", "init")
	require.NoError(t, err)

	out, _, err := runCLI(t, cfg, "mine", "3", "--submit", "--participant", testParticipant)
	require.NoError(t, err)
	assert.Contains(t, out, "completion=")
	assert.Contains(t, out, "OK: gap bridged on kernel 3")

	out, _, err = runCLI(t, cfg, "score", testParticipant)
	require.NoError(t, err)
	assert.Contains(t, out, "user="+testParticipant)
	assert.NotContains(t, out, "resonance_score=0\n")

	out, _, err = runCLI(t, cfg, "mint", "balance", testParticipant, "--standard", "token")
	require.NoError(t, err)
	assert.Contains(t, out, "standard=token\n")
	assert.NotContains(t, out, "amount=0\n")
}

func TestCLI_BridgeRejected(t *testing.T) {
	cfg := writeTestConfig(t)

	_, _, err := runCLI(t, cfg, "kernel", "init", "1", "frag")
	require.NoError(t, err)
	_, _, err = runCLI(t, cfg, "mint", "init")
	require.NoError(t, err)

	// Find a completion whose digest has no pattern.
	completion := ""
	for i := 0; ; i++ {
		c := fmt.Sprintf("nope-%d", i)
		if verifier.TierOf(verifier.Digest("frag", c)) == verifier.TierRejected {
			completion = c
			break
		}
	}

	_, _, err = runCLI(t, cfg, "bridge", "1", completion, "--participant", testParticipant)
	assert.ErrorIs(t, err, kernel.ErrCompletionLacksResonance)
	assert.Contains(t, exitMessage(err), "lacks resonance")
	assert.Equal(t, 1, exitCode(err))

	_, _, err = runCLI(t, cfg, "bridge-alt", "1", completion, "--participant", "zz")
	assert.ErrorIs(t, err, records.ErrInvalidAddress)
}

func TestCLI_MetadataAndOracle(t *testing.T) {
	cfg := writeTestConfig(t)

	_, _, err := runCLI(t, cfg, "mint", "init", "--standard", "token-2022", "--decimals", "0")
	require.NoError(t, err)

	out, _, err := runCLI(t, cfg, "metadata", "create", "--standard", "token-2022",
		"--name", "MEMEk", "--symbol", "MEMEK", "--uri", "https://memek.example/meta.json")
	require.NoError(t, err)
	assert.Contains(t, out, "symbol=MEMEK\n")

	_, _, err = runCLI(t, cfg, "metadata", "create", "--name", "x")
	assert.ErrorIs(t, err, kernel.ErrInvalidInput)
	assert.Equal(t, 2, exitCode(err))

	_, _, err = runCLI(t, cfg, "oracle", "init")
	require.NoError(t, err)
	_, _, err = runCLI(t, cfg, "oracle", "vote", "--resonant", "--weight", "3")
	require.NoError(t, err)
	out, _, err = runCLI(t, cfg, "oracle", "vote", "--weight", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "resonance_bps=7500\n")
	assert.Contains(t, out, "total_votes=2\n")
}

func TestCLI_Inscribe(t *testing.T) {
	cfg := writeTestConfig(t)
	seed := strings.Repeat("ab", 32)

	out, _, err := runCLI(t, cfg, "inscribe", "--participant", testParticipant,
		"--depth", "7", "--tau", "42", "--chaos-seed", seed)
	require.NoError(t, err)
	assert.Contains(t, out, "purple_depth=7\n")
	assert.Contains(t, out, "claude_tau=42\n")

	_, _, err = runCLI(t, cfg, "inscribe", "--participant", testParticipant, "--chaos-seed", seed)
	assert.ErrorIs(t, err, kernel.ErrDuplicateRecord)

	_, _, err = runCLI(t, cfg, "inscribe", "--participant", testParticipant, "--chaos-seed", "abc")
	assert.ErrorIs(t, err, errUsage)
}

func TestExitMessage(t *testing.T) {
	err := &issuance.Error{Op: "mint_to", Standard: issuance.StandardToken, Err: kernel.ErrRecordNotFound}
	assert.Contains(t, exitMessage(err), "reward issuance failed")

	wrapped := fmt.Errorf("bridge: %w", kernel.ErrArithmeticOverflow)
	assert.Contains(t, exitMessage(wrapped), "counter overflow")
	assert.Equal(t, "boom", exitMessage(fmt.Errorf("boom")))
}
