// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package kernel implements the MEMEk proof-of-incompleteness program.
//
// Participants complete a stored fragment; completions whose Keccak-256
// digest carries a resonance pattern earn a reward and update per-puzzle and
// per-participant accounting. A controller advances puzzle epochs, and any
// participant may seal one permanent inscription.
//
// # Atomicity
//
// Every write operation is a single ledger transaction. Verification,
// issuance and both accounting upserts commit together or not at all, and
// events are published only after the commit.
//
// # Thread Safety
//
// Program is safe for concurrent use. Overlapping operations are serialized
// by the ledger.
package kernel

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/memek/services/kernel/events"
	"github.com/AleutianAI/memek/services/kernel/issuance"
	"github.com/AleutianAI/memek/services/kernel/ledger"
	"github.com/AleutianAI/memek/services/kernel/metadata"
	"github.com/AleutianAI/memek/services/kernel/oracle"
	"github.com/AleutianAI/memek/services/kernel/records"
	"github.com/AleutianAI/memek/services/kernel/telemetry"
	"github.com/AleutianAI/memek/services/kernel/verifier"
)

// Input limits in bytes.
const (
	// MaxFragmentLen is the largest fragment a kernel may be created with.
	// Evolution appends past it.
	MaxFragmentLen = 196

	// MaxCompletionLen bounds a submitted completion.
	MaxCompletionLen = 1024
)

// Config wires a Program.
type Config struct {
	// Primary is the standard used by BridgeGap. Default: token.
	Primary issuance.Standard

	// Alternate is the standard used by BridgeGapAlt. Default: token-2022.
	Alternate issuance.Standard

	// Bus receives events after commit. Nil drops events.
	Bus *events.Bus

	// Metrics receives counters. Nil uses the global meter provider.
	Metrics *telemetry.Metrics

	// Clock stamps records. Nil uses the wall clock.
	Clock Clock

	// Logger is the base logger. Nil uses slog.Default().
	Logger *slog.Logger
}

func applyConfigDefaults(cfg Config) Config {
	if cfg.Primary == "" {
		cfg.Primary = issuance.StandardToken
	}
	if cfg.Alternate == "" {
		cfg.Alternate = issuance.StandardToken2022
	}
	if cfg.Bus == nil {
		cfg.Bus = events.NewBus()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = telemetry.DefaultMetrics()
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

// Program runs the public operations against a ledger.
type Program struct {
	store     *ledger.Store
	primary   issuance.Issuer
	alternate issuance.Issuer
	bus       *events.Bus
	metrics   *telemetry.Metrics
	clock     Clock
	logger    *slog.Logger
}

// NewProgram builds a Program over store.
//
// Outputs:
//
//	*Program - Ready to use.
//	error - Non-nil when a configured standard is unknown.
func NewProgram(store *ledger.Store, cfg Config) (*Program, error) {
	cfg = applyConfigDefaults(cfg)

	primary, err := issuance.New(cfg.Primary)
	if err != nil {
		return nil, fmt.Errorf("primary issuer: %w", err)
	}
	alternate, err := issuance.New(cfg.Alternate)
	if err != nil {
		return nil, fmt.Errorf("alternate issuer: %w", err)
	}

	return &Program{
		store:     store,
		primary:   primary,
		alternate: alternate,
		bus:       cfg.Bus,
		metrics:   cfg.Metrics,
		clock:     cfg.Clock,
		logger:    cfg.Logger.With(slog.String("component", "program")),
	}, nil
}

// Primary returns the standard used by BridgeGap.
func (p *Program) Primary() issuance.Standard { return p.primary.Standard() }

// Alternate returns the standard used by BridgeGapAlt.
func (p *Program) Alternate() issuance.Standard { return p.alternate.Standard() }

// observe opens a span and returns a finisher that records the outcome and
// duration. Use with a named error return: defer done(&err).
func (p *Program) observe(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(*error)) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "Program."+op, trace.WithAttributes(attrs...))
	return ctx, func(errp *error) {
		if *errp != nil {
			telemetry.RecordError(span, *errp)
		} else {
			telemetry.SetSpanOK(span)
		}
		span.End()
		p.metrics.ObserveDuration(ctx, op, start)
	}
}

// =============================================================================
// Kernel lifecycle
// =============================================================================

// InitializeKernel creates a puzzle and its paired evolution state.
//
// Description:
//
//	Creates an active KernelSeed with the given fragment and difficulty and
//	a genesis EvolutionState, both in one transaction.
//
// Inputs:
//
//	seedID - Puzzle identifier; determines both record addresses.
//	difficulty - Stored difficulty marker. Not consulted by verification.
//	fragment - 1..MaxFragmentLen bytes.
//
// Outputs:
//
//	*records.KernelSeed, *records.EvolutionState - The created records.
//	error - ErrInvalidInput or ErrDuplicateRecord.
func (p *Program) InitializeKernel(ctx context.Context, seedID uint64, difficulty uint8, fragment string) (seed *records.KernelSeed, state *records.EvolutionState, err error) {
	ctx, done := p.observe(ctx, "initialize_kernel", attribute.Int64("seed_id", int64(seedID)))
	defer done(&err)

	if len(fragment) == 0 || len(fragment) > MaxFragmentLen {
		return nil, nil, fmt.Errorf("%w: fragment must be 1..%d bytes, got %d", ErrInvalidInput, MaxFragmentLen, len(fragment))
	}

	seed = records.NewKernelSeed(seedID, difficulty, fragment)
	state = records.NewEvolutionState()
	err = p.store.Update(ctx, func(txn ledger.Txn) error {
		if err := txn.Create(records.KernelAddress(seedID), seed); err != nil {
			return err
		}
		return txn.Create(records.EvolutionAddress(seedID), state)
	})
	if err != nil {
		p.logger.Warn("kernel initialization failed", slog.Uint64("seed_id", seedID), slog.String("error", err.Error()))
		return nil, nil, err
	}

	p.logger.Info("kernel initialized",
		slog.Uint64("seed_id", seedID),
		slog.Int("difficulty", int(difficulty)),
		slog.Int("fragment_len", len(fragment)))
	return seed, state, nil
}

// EvolutionResult is the post-transition state of a puzzle.
type EvolutionResult struct {
	Seed        *records.KernelSeed
	State       *records.EvolutionState
	Description string
}

// TriggerEvolution advances a puzzle by one epoch.
//
// Description:
//
//	Applies records.Evolve to the kernel and its evolution state in one
//	transaction, then emits a KernelGlitch event. There is no limit on how
//	often a puzzle may evolve.
//
// Outputs:
//
//	*EvolutionResult - The updated records.
//	error - ErrRecordNotFound or ErrArithmeticOverflow.
func (p *Program) TriggerEvolution(ctx context.Context, seedID uint64) (res *EvolutionResult, err error) {
	ctx, done := p.observe(ctx, "trigger_evolution", attribute.Int64("seed_id", int64(seedID)))
	defer done(&err)

	var seed records.KernelSeed
	var state records.EvolutionState
	err = p.store.Update(ctx, func(txn ledger.Txn) error {
		if err := txn.Get(records.KernelAddress(seedID), &seed); err != nil {
			return err
		}
		if err := txn.Get(records.EvolutionAddress(seedID), &state); err != nil {
			return err
		}
		if err := records.Evolve(&seed, &state); err != nil {
			return err
		}
		if err := txn.Put(records.KernelAddress(seedID), &seed); err != nil {
			return err
		}
		return txn.Put(records.EvolutionAddress(seedID), &state)
	})
	if err != nil {
		p.logger.Error("evolution failed", slog.Uint64("seed_id", seedID), slog.String("error", err.Error()))
		return nil, err
	}

	desc := fmt.Sprintf("Glitch! New Difficulty: %d", seed.Difficulty)
	p.metrics.RecordEvolution(ctx)
	p.bus.Publish(ctx, events.KernelGlitch{SeedID: seedID, Epoch: state.CurrentEpoch, Description: desc}, p.clock.Now())
	p.logger.Info("kernel evolved",
		slog.Uint64("seed_id", seedID),
		slog.Uint64("epoch", state.CurrentEpoch),
		slog.Int("difficulty", int(seed.Difficulty)))

	return &EvolutionResult{Seed: &seed, State: &state, Description: desc}, nil
}

// RequestFragment returns the puzzle's fragment text. Unauthenticated.
func (p *Program) RequestFragment(ctx context.Context, seedID uint64) (string, error) {
	seed, err := p.Kernel(ctx, seedID)
	if err != nil {
		return "", err
	}
	return seed.Fragment(), nil
}

// =============================================================================
// Completion path
// =============================================================================

// BridgeResult reports an accepted completion.
type BridgeResult struct {
	Participant records.Address
	SeedID      uint64
	Standard    issuance.Standard
	Tier        verifier.Tier
	// Reward is the tier reward credited to the score.
	Reward uint64
	// Amount is Reward in issued base units.
	Amount    uint64
	Hash      string
	Resonance records.ResonanceMetadata
	Score     records.MemeticResonanceScore
}

// BridgeGap submits a completion against the primary issuer. No event is
// emitted. salt is accepted for interface compatibility and ignored.
func (p *Program) BridgeGap(ctx context.Context, participant records.Address, seedID uint64, completion string, salt uint64) (*BridgeResult, error) {
	return p.bridge(ctx, "bridge_gap", p.primary, participant, seedID, completion, false)
}

// BridgeGapAlt submits a completion against the alternate issuer and emits
// GapBridged on success. salt is ignored.
func (p *Program) BridgeGapAlt(ctx context.Context, participant records.Address, seedID uint64, completion string, salt uint64) (*BridgeResult, error) {
	return p.bridge(ctx, "bridge_gap_alt", p.alternate, participant, seedID, completion, true)
}

// bridge is the completion routine shared by both variants.
//
// Description:
//
//	Inside one transaction: read the fragment, classify, mint the scaled
//	reward through issuer, then upsert the puzzle aggregate and the
//	participant score. Any failure discards all of it.
func (p *Program) bridge(ctx context.Context, op string, issuer issuance.Issuer, participant records.Address, seedID uint64, completion string, emit bool) (res *BridgeResult, err error) {
	ctx, done := p.observe(ctx, op,
		attribute.Int64("seed_id", int64(seedID)),
		attribute.String("standard", string(issuer.Standard())))
	defer done(&err)

	logger := p.logger.With(
		slog.String("op", op),
		slog.Uint64("seed_id", seedID),
		slog.String("participant", participant.String()))

	if len(completion) > MaxCompletionLen {
		return nil, fmt.Errorf("%w: completion exceeds %d bytes", ErrInvalidInput, MaxCompletionLen)
	}

	kernelAddr := records.KernelAddress(seedID)
	var digest string
	err = p.store.Update(ctx, func(txn ledger.Txn) error {
		now := p.clock.Now().Unix()

		var seed records.KernelSeed
		if err := txn.Get(kernelAddr, &seed); err != nil {
			return err
		}

		verdict, err := verifier.Classify(seed.Fragment(), completion)
		digest = verdict.Hash
		if err != nil {
			return err
		}

		mint, err := issuance.LoadMint(txn, issuer.Standard())
		if err != nil {
			return err
		}
		amount, err := issuance.Scale(issuer.Standard(), verdict.Reward, mint.Decimals)
		if err != nil {
			return err
		}
		if err := issuer.Mint(ctx, txn, participant, amount); err != nil {
			return err
		}

		resonance, err := p.loadResonance(txn, kernelAddr, issuer.MintAddress())
		if err != nil {
			return err
		}
		if err := resonance.RecordBridgingEvent(seed.Difficulty, records.NoveltyIncrement); err != nil {
			return err
		}
		score, err := p.loadScore(txn, participant)
		if err != nil {
			return err
		}
		if err := score.Credit(verdict.Reward, now); err != nil {
			return err
		}
		if err := txn.Put(records.ResonanceAddress(kernelAddr), resonance); err != nil {
			return err
		}
		if err := txn.Put(records.ScoreAddress(participant), score); err != nil {
			return err
		}

		res = &BridgeResult{
			Participant: participant,
			SeedID:      seedID,
			Standard:    issuer.Standard(),
			Tier:        verdict.Tier,
			Reward:      verdict.Reward,
			Amount:      amount,
			Hash:        verdict.Hash,
			Resonance:   *resonance,
			Score:       *score,
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrCompletionLacksResonance):
			p.metrics.RecordRejection(ctx)
			logger.Warn("completion lacks resonance", slog.String("hash", digest))
		case errors.Is(err, ErrIssuance):
			logger.Error("reward issuance failed", slog.String("error", err.Error()))
		case errors.Is(err, ErrRecordNotFound), errors.Is(err, ErrArithmeticOverflow):
			logger.Warn("completion not recorded", slog.String("error", err.Error()))
		default:
			logger.Error("completion failed", slog.String("error", err.Error()))
		}
		return nil, err
	}

	if res.Tier == verifier.TierSuper {
		logger.Info("superhash found", slog.String("hash", res.Hash))
	} else {
		logger.Info("pattern found", slog.String("hash", res.Hash))
	}
	p.metrics.RecordCompletion(ctx, res.Tier.String(), string(res.Standard), res.Amount)
	if emit {
		p.bus.Publish(ctx, events.GapBridged{
			Participant: participant,
			Kernel:      kernelAddr,
			Completion:  completion,
			Reward:      res.Reward,
			Hash:        res.Hash,
		}, p.clock.Now())
	}
	logger.Info("gap bridged",
		slog.String("tier", res.Tier.String()),
		slog.Uint64("reward", res.Reward),
		slog.Uint64("total_gaps_bridged", res.Resonance.TotalGapsBridged),
		slog.Uint64("resonance_score", res.Score.ResonanceScore))
	return res, nil
}

// loadResonance returns the existing aggregate or a fresh one capturing
// mint. The caller writes it back in the same transaction.
func (p *Program) loadResonance(txn ledger.Txn, kernelAddr, mint records.Address) (*records.ResonanceMetadata, error) {
	var r records.ResonanceMetadata
	err := txn.Get(records.ResonanceAddress(kernelAddr), &r)
	switch {
	case err == nil:
		return &r, nil
	case errors.Is(err, ledger.ErrNotFound):
		return records.NewResonanceMetadata(mint), nil
	default:
		return nil, err
	}
}

// loadScore returns the existing score or a fresh one owned by participant.
func (p *Program) loadScore(txn ledger.Txn, participant records.Address) (*records.MemeticResonanceScore, error) {
	var s records.MemeticResonanceScore
	err := txn.Get(records.ScoreAddress(participant), &s)
	switch {
	case err == nil:
		return &s, nil
	case errors.Is(err, ledger.ErrNotFound):
		return records.NewMemeticResonanceScore(participant), nil
	default:
		return nil, err
	}
}

// Mine searches for an accepted completion of the puzzle's current
// fragment. Read-only.
func (p *Program) Mine(ctx context.Context, seedID uint64, base string, limit uint64, wantSuper bool) (sol verifier.Solution, found bool, err error) {
	ctx, done := p.observe(ctx, "mine", attribute.Int64("seed_id", int64(seedID)))
	defer done(&err)

	fragment, err := p.RequestFragment(ctx, seedID)
	if err != nil {
		return verifier.Solution{}, false, err
	}
	if limit == 0 {
		limit = verifier.DefaultLimit
	}
	m := verifier.Miner{WantSuper: wantSuper}
	return m.SolveParallel(ctx, fragment, base, limit)
}

// =============================================================================
// Inscriptions
// =============================================================================

// InscribeVibe seals the participant's one inscription.
//
// Description:
//
//	Creates a XenianAnchor at the participant's vibe address, stamped with
//	the current time, and emits VibeInscribed. A second call for the same
//	participant fails without touching the first record.
//
// Outputs:
//
//	*records.XenianAnchor - The sealed record.
//	error - ErrDuplicateRecord when the participant already inscribed.
func (p *Program) InscribeVibe(ctx context.Context, participant records.Address, purpleDepth uint8, claudeTau uint64, chaosSeed [records.ChaosSeedLen]byte) (anchor *records.XenianAnchor, err error) {
	ctx, done := p.observe(ctx, "inscribe_vibe")
	defer done(&err)

	err = p.store.Update(ctx, func(txn ledger.Txn) error {
		anchor = records.NewXenianAnchor(participant, purpleDepth, claudeTau, chaosSeed, p.clock.Now())
		return txn.Create(records.VibeAddress(participant), anchor)
	})
	if err != nil {
		p.logger.Warn("inscription rejected", slog.String("participant", participant.String()), slog.String("error", err.Error()))
		return nil, err
	}

	hash := anchor.VibeHash()
	p.metrics.RecordInscription(ctx)
	p.bus.Publish(ctx, events.VibeInscribed{
		Participant: participant,
		Hash:        hex.EncodeToString(hash[:]),
		PurpleDepth: purpleDepth,
		ClaudeTau:   claudeTau,
		Timestamp:   anchor.InscriptionTime(),
	}, p.clock.Now())
	p.logger.Info("vibe inscribed", slog.String("participant", participant.String()))
	return anchor, nil
}

// =============================================================================
// Collaborators
// =============================================================================

// InitializeMint creates the reward mint for a standard.
func (p *Program) InitializeMint(ctx context.Context, std issuance.Standard, decimals uint8) (mint *records.Mint, err error) {
	ctx, done := p.observe(ctx, "initialize_mint", attribute.String("standard", string(std)))
	defer done(&err)

	err = p.store.Update(ctx, func(txn ledger.Txn) error {
		var err error
		mint, err = issuance.InitializeMint(txn, std, decimals)
		return err
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("mint initialized", slog.String("standard", string(std)), slog.Int("decimals", int(decimals)))
	return mint, nil
}

// CreateMetadata registers descriptive metadata for a standard's mint.
func (p *Program) CreateMetadata(ctx context.Context, std issuance.Standard, params metadata.Params) (md *records.TokenMetadata, err error) {
	ctx, done := p.observe(ctx, "create_metadata", attribute.String("standard", string(std)))
	defer done(&err)

	if verr := params.Validate(); verr != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, verr)
	}
	err = p.store.Update(ctx, func(txn ledger.Txn) error {
		var err error
		md, err = metadata.Create(txn, std, params)
		return err
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("metadata created", slog.String("standard", string(std)), slog.String("symbol", md.Symbol))
	return md, nil
}

// InitializeOracle creates the resonance oracle aggregate.
func (p *Program) InitializeOracle(ctx context.Context) (state *records.OracleState, err error) {
	ctx, done := p.observe(ctx, "initialize_oracle")
	defer done(&err)

	err = p.store.Update(ctx, func(txn ledger.Txn) error {
		var err error
		state, err = oracle.Initialize(txn)
		return err
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("oracle initialized")
	return state, nil
}

// UpdateOracle records one weighted resonance vote.
func (p *Program) UpdateOracle(ctx context.Context, isResonant bool, weight uint64) (state *records.OracleState, err error) {
	ctx, done := p.observe(ctx, "update_oracle")
	defer done(&err)

	err = p.store.Update(ctx, func(txn ledger.Txn) error {
		var err error
		state, err = oracle.Vote(txn, isResonant, weight, p.clock.Now().Unix())
		return err
	})
	if err != nil {
		return nil, err
	}
	p.logger.Debug("oracle vote recorded", slog.Bool("resonant", isResonant), slog.Uint64("weight", weight))
	return state, nil
}

// =============================================================================
// Queries
// =============================================================================

// Kernel returns the puzzle record.
func (p *Program) Kernel(ctx context.Context, seedID uint64) (*records.KernelSeed, error) {
	var seed records.KernelSeed
	if err := p.store.Load(ctx, records.KernelAddress(seedID), &seed); err != nil {
		return nil, err
	}
	return &seed, nil
}

// Evolution returns the puzzle's evolution state.
func (p *Program) Evolution(ctx context.Context, seedID uint64) (*records.EvolutionState, error) {
	var state records.EvolutionState
	if err := p.store.Load(ctx, records.EvolutionAddress(seedID), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Resonance returns the puzzle aggregate. ErrRecordNotFound until the first
// accepted completion.
func (p *Program) Resonance(ctx context.Context, seedID uint64) (*records.ResonanceMetadata, error) {
	var r records.ResonanceMetadata
	if err := p.store.Load(ctx, records.ResonanceAddress(records.KernelAddress(seedID)), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Score returns the participant's cumulative score.
func (p *Program) Score(ctx context.Context, participant records.Address) (*records.MemeticResonanceScore, error) {
	var s records.MemeticResonanceScore
	if err := p.store.Load(ctx, records.ScoreAddress(participant), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Inscription returns the participant's sealed inscription.
func (p *Program) Inscription(ctx context.Context, participant records.Address) (*records.XenianAnchor, error) {
	var a records.XenianAnchor
	if err := p.store.Load(ctx, records.VibeAddress(participant), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Balance returns owner's issued balance under a standard.
func (p *Program) Balance(ctx context.Context, std issuance.Standard, owner records.Address) (balance uint64, err error) {
	err = p.store.View(ctx, func(txn ledger.Txn) error {
		balance, err = issuance.Balance(txn, std, owner)
		return err
	})
	return balance, err
}

// Metadata returns the metadata registered for a standard's mint.
func (p *Program) Metadata(ctx context.Context, std issuance.Standard) (md *records.TokenMetadata, err error) {
	err = p.store.View(ctx, func(txn ledger.Txn) error {
		md, err = metadata.Load(txn, std)
		return err
	})
	return md, err
}

// Oracle returns the oracle aggregate and its resonance in basis points.
func (p *Program) Oracle(ctx context.Context) (state *records.OracleState, bps uint64, err error) {
	err = p.store.View(ctx, func(txn ledger.Txn) error {
		state, err = oracle.Load(txn)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return state, oracle.Resonance(state), nil
}
