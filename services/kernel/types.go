// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package kernel

import (
	"encoding/hex"

	"github.com/AleutianAI/memek/services/kernel/records"
	"github.com/AleutianAI/memek/services/kernel/verifier"
)

// ServiceVersion is the MEMEk API version.
const ServiceVersion = "0.1.0"

// =============================================================================
// Requests
// =============================================================================

// InitKernelRequest is the body of POST /v1/kernels.
type InitKernelRequest struct {
	SeedID       uint64 `json:"seed_id"`
	Difficulty   uint8  `json:"difficulty"`
	FragmentData string `json:"fragment_data" validate:"required,maxbytes=196"`
}

// BridgeRequest is the body of POST /v1/kernels/:seed_id/bridge and
// bridge-alt.
type BridgeRequest struct {
	Participant    string `json:"participant" validate:"required,hex32"`
	CompletionText string `json:"completion_text" validate:"maxbytes=1024"`
	Salt           uint64 `json:"salt"`
}

// MineRequest is the body of POST /v1/kernels/:seed_id/mine.
type MineRequest struct {
	Base      string `json:"base" validate:"maxbytes=512"`
	Limit     uint64 `json:"limit" validate:"max=10000000"`
	WantSuper bool   `json:"want_super"`
}

// InscribeRequest is the body of POST /v1/participants/:address/inscription.
type InscribeRequest struct {
	PurpleDepth uint8  `json:"purple_depth"`
	ClaudeTau   uint64 `json:"claude_tau"`
	ChaosSeed   string `json:"chaos_seed" validate:"required,hex32"`
}

// InitMintRequest is the body of POST /v1/mints.
type InitMintRequest struct {
	Standard string `json:"standard" validate:"required,oneof=token token-2022"`
	Decimals *uint8 `json:"decimals" validate:"omitempty,max=19"`
}

// CreateMetadataRequest is the body of POST /v1/metadata.
type CreateMetadataRequest struct {
	Standard string `json:"standard" validate:"required,oneof=token token-2022"`
	Name     string `json:"name" validate:"required,maxbytes=32"`
	Symbol   string `json:"symbol" validate:"required,maxbytes=10"`
	URI      string `json:"uri" validate:"required,maxbytes=200"`
}

// OracleVoteRequest is the body of POST /v1/oracle/votes.
type OracleVoteRequest struct {
	IsResonant bool   `json:"is_resonant"`
	Weight     uint64 `json:"weight"`
}

// =============================================================================
// Responses
// =============================================================================

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// KernelResponse describes a puzzle and its evolution state.
type KernelResponse struct {
	SeedID         uint64          `json:"seed_id"`
	Address        records.Address `json:"address"`
	FragmentData   string          `json:"fragment_data"`
	ConstraintHash string          `json:"constraint_hash"`
	Difficulty     uint8           `json:"difficulty"`
	IsActive       bool            `json:"is_active"`
	Evolution      *EvolutionView  `json:"evolution,omitempty"`
}

// EvolutionView is an EvolutionState on the wire.
type EvolutionView struct {
	CurrentEpoch           uint64 `json:"current_epoch"`
	DominantStyle          string `json:"dominant_style"`
	ConstraintMutationRate uint64 `json:"constraint_mutation_rate"`
	Description            string `json:"description,omitempty"`
}

// FragmentResponse is returned by GET /v1/kernels/:seed_id/fragment.
type FragmentResponse struct {
	SeedID       uint64 `json:"seed_id"`
	FragmentData string `json:"fragment_data"`
}

// BridgeResponse reports an accepted completion.
type BridgeResponse struct {
	Participant       records.Address `json:"participant"`
	SeedID            uint64          `json:"seed_id"`
	Standard          string          `json:"standard"`
	Tier              string          `json:"tier"`
	Reward            uint64          `json:"reward"`
	Amount            uint64          `json:"amount"`
	Hash              string          `json:"hash"`
	TotalGapsBridged  uint64          `json:"total_gaps_bridged"`
	SemanticDiversity uint64          `json:"semantic_diversity"`
	ResonanceScore    uint64          `json:"resonance_score"`
}

// ResonanceResponse is a ResonanceMetadata on the wire.
type ResonanceResponse struct {
	SeedID            uint64          `json:"seed_id"`
	Mint              records.Address `json:"mint"`
	TotalGapsBridged  uint64          `json:"total_gaps_bridged"`
	SemanticDiversity uint64          `json:"semantic_diversity"`
	KernelStrain      uint64          `json:"kernel_strain"`
	LastMutation      int64           `json:"last_mutation"`
	Bump              uint8           `json:"bump"`
}

// ScoreResponse is a MemeticResonanceScore on the wire.
type ScoreResponse struct {
	User             records.Address `json:"user"`
	ResonanceScore   uint64          `json:"resonance_score"`
	ViralCoefficient uint16          `json:"viral_coefficient"`
	CreativeVariance uint16          `json:"creative_variance"`
	LastActive       int64           `json:"last_active"`
}

// InscriptionResponse is a XenianAnchor on the wire.
type InscriptionResponse struct {
	Viber           records.Address `json:"viber"`
	VibeHash        string          `json:"vibe_hash"`
	PurpleDepth     uint8           `json:"purple_depth"`
	ClaudeTau       uint64          `json:"claude_tau"`
	ChaosSeed       string          `json:"chaos_seed"`
	InscriptionTime int64           `json:"inscription_time"`
	IsVibing        bool            `json:"is_vibing"`
}

// BalanceResponse is returned by GET /v1/participants/:address/balance.
type BalanceResponse struct {
	Owner    records.Address `json:"owner"`
	Standard string          `json:"standard"`
	Amount   uint64          `json:"amount"`
}

// MineResponse is returned by POST /v1/kernels/:seed_id/mine.
type MineResponse struct {
	Found          bool   `json:"found"`
	CompletionText string `json:"completion_text,omitempty"`
	Index          uint64 `json:"index"`
	Tier           string `json:"tier,omitempty"`
	Hash           string `json:"hash,omitempty"`
}

// MintResponse is a Mint on the wire.
type MintResponse struct {
	Standard  string          `json:"standard"`
	Address   records.Address `json:"address"`
	Authority records.Address `json:"authority"`
	Supply    uint64          `json:"supply"`
	Decimals  uint8           `json:"decimals"`
}

// MetadataResponse is a TokenMetadata on the wire.
type MetadataResponse struct {
	Mint                 records.Address `json:"mint"`
	UpdateAuthority      records.Address `json:"update_authority"`
	Name                 string          `json:"name"`
	Symbol               string          `json:"symbol"`
	URI                  string          `json:"uri"`
	SellerFeeBasisPoints uint16          `json:"seller_fee_basis_points"`
	IsMutable            bool            `json:"is_mutable"`
}

// OracleResponse is an OracleState on the wire.
type OracleResponse struct {
	ResonantWeight  uint64 `json:"resonant_weight"`
	DissonantWeight uint64 `json:"dissonant_weight"`
	TotalVotes      uint64 `json:"total_votes"`
	LastUpdate      int64  `json:"last_update"`
	ResonanceBPS    uint64 `json:"resonance_bps"`
}

func kernelView(seed *records.KernelSeed, state *records.EvolutionState) KernelResponse {
	resp := KernelResponse{
		SeedID:         seed.SeedID,
		Address:        records.KernelAddress(seed.SeedID),
		FragmentData:   seed.Fragment(),
		ConstraintHash: hex.EncodeToString(seed.ConstraintHash[:]),
		Difficulty:     seed.Difficulty,
		IsActive:       seed.IsActive,
	}
	if state != nil {
		resp.Evolution = evolutionView(state, "")
	}
	return resp
}

func evolutionView(state *records.EvolutionState, desc string) *EvolutionView {
	return &EvolutionView{
		CurrentEpoch:           state.CurrentEpoch,
		DominantStyle:          state.DominantStyle,
		ConstraintMutationRate: state.ConstraintMutationRate,
		Description:            desc,
	}
}

func bridgeView(res *BridgeResult) BridgeResponse {
	return BridgeResponse{
		Participant:       res.Participant,
		SeedID:            res.SeedID,
		Standard:          string(res.Standard),
		Tier:              res.Tier.String(),
		Reward:            res.Reward,
		Amount:            res.Amount,
		Hash:              res.Hash,
		TotalGapsBridged:  res.Resonance.TotalGapsBridged,
		SemanticDiversity: res.Resonance.SemanticDiversity,
		ResonanceScore:    res.Score.ResonanceScore,
	}
}

func resonanceView(seedID uint64, r *records.ResonanceMetadata) ResonanceResponse {
	return ResonanceResponse{
		SeedID:            seedID,
		Mint:              r.Mint,
		TotalGapsBridged:  r.TotalGapsBridged,
		SemanticDiversity: r.SemanticDiversity,
		KernelStrain:      r.KernelStrain,
		LastMutation:      r.LastMutation,
		Bump:              r.Bump,
	}
}

func scoreView(s *records.MemeticResonanceScore) ScoreResponse {
	return ScoreResponse{
		User:             s.User,
		ResonanceScore:   s.ResonanceScore,
		ViralCoefficient: s.ViralCoefficient,
		CreativeVariance: s.CreativeVariance,
		LastActive:       s.LastActive,
	}
}

func inscriptionView(a *records.XenianAnchor) InscriptionResponse {
	hash := a.VibeHash()
	seed := a.ChaosSeed()
	return InscriptionResponse{
		Viber:           a.Viber(),
		VibeHash:        hex.EncodeToString(hash[:]),
		PurpleDepth:     a.PurpleDepth(),
		ClaudeTau:       a.ClaudeTau(),
		ChaosSeed:       hex.EncodeToString(seed[:]),
		InscriptionTime: a.InscriptionTime(),
		IsVibing:        a.IsVibing(),
	}
}

func mineView(sol verifier.Solution, found bool) MineResponse {
	if !found {
		return MineResponse{}
	}
	return MineResponse{
		Found:          true,
		CompletionText: sol.Completion,
		Index:          sol.Index,
		Tier:           sol.Result.Tier.String(),
		Hash:           sol.Result.Hash,
	}
}

func metadataView(md *records.TokenMetadata) MetadataResponse {
	return MetadataResponse{
		Mint:                 md.Mint,
		UpdateAuthority:      md.UpdateAuthority,
		Name:                 md.Name,
		Symbol:               md.Symbol,
		URI:                  md.URI,
		SellerFeeBasisPoints: md.SellerFeeBasisPoints,
		IsMutable:            md.IsMutable,
	}
}

func oracleView(s *records.OracleState, bps uint64) OracleResponse {
	return OracleResponse{
		ResonantWeight:  s.ResonantWeight,
		DissonantWeight: s.DissonantWeight,
		TotalVotes:      s.TotalVotes,
		LastUpdate:      s.LastUpdate,
		ResonanceBPS:    bps,
	}
}
