// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package verifier

import (
	"context"
	"math"
	"runtime"
	"strconv"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Suffixes are appended to the base phrase in enumeration order.
var Suffixes = []string{
	"", "!", ".", "!!", " yo", " fr", " lol", " tbh", " ngl", " rn", " tho", "...", " :)",
}

// DefaultLimit covers 500 index rounds of every suffix.
var DefaultLimit = uint64(500 * len(Suffixes))

// Candidate returns the n-th completion in enumeration order.
//
// n walks every suffix for round 0, then every suffix for round 1, and so
// on. The round number is appended after the suffix, except round 0.
func Candidate(base string, n uint64) string {
	suffix := Suffixes[n%uint64(len(Suffixes))]
	round := n / uint64(len(Suffixes))
	if round == 0 {
		return base + suffix
	}
	return base + suffix + strconv.FormatUint(round, 10)
}

// Solution is a completion the verifier accepts.
type Solution struct {
	Completion string
	// Index is the enumeration position the completion was found at.
	Index  uint64
	Result Result
}

// Miner searches the candidate space for an accepted completion.
type Miner struct {
	// WantSuper skips Normal hits and keeps searching for a Super digest.
	WantSuper bool

	// Workers bounds SolveParallel. Zero means GOMAXPROCS.
	Workers int
}

func (m Miner) accept(fragment, completion string) (Result, bool) {
	res, err := Classify(fragment, completion)
	if err != nil {
		return res, false
	}
	if m.WantSuper && res.Tier != TierSuper {
		return res, false
	}
	return res, true
}

// Solve returns the first accepted candidate among the first limit.
func (m Miner) Solve(fragment, base string, limit uint64) (Solution, bool) {
	for n := uint64(0); n < limit; n++ {
		c := Candidate(base, n)
		if res, ok := m.accept(fragment, c); ok {
			return Solution{Completion: c, Index: n, Result: res}, true
		}
	}
	return Solution{}, false
}

// SolveParallel is Solve spread over worker goroutines.
//
// Description:
//
//	Worker w checks indices w, w+W, w+2W, ... and stops once it passes the
//	lowest hit found by anyone. Every index below the final answer is
//	therefore checked, so the result equals what Solve returns.
//
// Inputs:
//
//	ctx - Cancels the search.
//	fragment - Puzzle fragment text.
//	base - Phrase every candidate starts with.
//	limit - Number of candidates to consider.
//
// Outputs:
//
//	Solution - The lowest-index accepted candidate.
//	bool - False when nothing below limit is accepted.
//	error - Context error if cancelled.
func (m Miner) SolveParallel(ctx context.Context, fragment, base string, limit uint64) (Solution, bool, error) {
	workers := m.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	stride := uint64(workers)

	var best atomic.Uint64
	best.Store(math.MaxUint64)

	g, gctx := errgroup.WithContext(ctx)
	for w := uint64(0); w < stride; w++ {
		start := w
		g.Go(func() error {
			for n := start; n < limit; n += stride {
				if n >= best.Load() {
					return nil
				}
				if err := gctx.Err(); err != nil {
					return err
				}
				if _, ok := m.accept(fragment, Candidate(base, n)); ok {
					lowerTo(&best, n)
					return nil
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Solution{}, false, err
	}

	n := best.Load()
	if n == math.MaxUint64 {
		return Solution{}, false, nil
	}
	c := Candidate(base, n)
	res, _ := m.accept(fragment, c)
	return Solution{Completion: c, Index: n, Result: res}, true, nil
}

func lowerTo(v *atomic.Uint64, n uint64) {
	for {
		cur := v.Load()
		if n >= cur || v.CompareAndSwap(cur, n) {
			return
		}
	}
}
