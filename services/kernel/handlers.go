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
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/memek/pkg/validation"
	"github.com/AleutianAI/memek/services/kernel/events"
	"github.com/AleutianAI/memek/services/kernel/issuance"
	"github.com/AleutianAI/memek/services/kernel/metadata"
	"github.com/AleutianAI/memek/services/kernel/records"
)

// Handlers contains the HTTP handlers for the program.
type Handlers struct {
	program  *Program
	recorder *events.Recorder
	hub      *events.Hub
}

// NewHandlers creates handlers for the given program.
func NewHandlers(program *Program) *Handlers {
	return &Handlers{program: program}
}

// WithEvents enables GET /v1/events (recorder) and GET /v1/events/ws (hub).
// Either may be nil.
func (h *Handlers) WithEvents(recorder *events.Recorder, hub *events.Hub) *Handlers {
	h.recorder = recorder
	h.hub = hub
	return h
}

func getOrCreateRequestID(c *gin.Context) string {
	if id := c.GetString(requestIDKey); id != "" {
		return id
	}
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	c.Set(requestIDKey, requestID)
	return requestID
}

// writeError maps program errors to HTTP status codes.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	msg := "Internal error"

	switch {
	case errors.Is(err, ErrCompletionLacksResonance):
		status, code, msg = http.StatusUnprocessableEntity, "COMPLETION_LACKS_RESONANCE", "Completion lacks resonance"
	case errors.Is(err, ErrDuplicateRecord):
		status, code, msg = http.StatusConflict, "DUPLICATE_RECORD", "Record already exists"
	case errors.Is(err, ErrRecordNotFound):
		status, code, msg = http.StatusNotFound, "NOT_FOUND", "Record not found"
	case errors.Is(err, ErrArithmeticOverflow):
		status, code, msg = http.StatusUnprocessableEntity, "ARITHMETIC_OVERFLOW", "Arithmetic overflow"
	case errors.Is(err, ErrIssuance):
		status, code, msg = http.StatusBadGateway, "ISSUANCE_FAILED", "Reward issuance failed"
	case errors.Is(err, ErrInvalidInput), errors.Is(err, metadata.ErrInvalidMetadata):
		status, code, msg = http.StatusBadRequest, "INVALID_REQUEST", "Invalid request"
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
	} else {
		logger.Warn("Request rejected", "code", code, "error", err)
	}
	c.JSON(status, ErrorResponse{Error: msg, Code: code, Details: err.Error()})
}

func badRequest(c *gin.Context, logger *slog.Logger, msg string, err error) {
	logger.Warn(msg, "error", err)
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   msg,
		Code:    "INVALID_REQUEST",
		Details: err.Error(),
	})
}

// bindJSON decodes and validates a request body, writing a 400 on failure.
func bindJSON(c *gin.Context, logger *slog.Logger, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, logger, "Invalid request body", err)
		return false
	}
	if err := validation.Struct(req); err != nil {
		badRequest(c, logger, "Invalid request body", err)
		return false
	}
	return true
}

func seedIDParam(c *gin.Context, logger *slog.Logger) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("seed_id"), 10, 64)
	if err != nil {
		badRequest(c, logger, "Invalid seed_id", err)
		return 0, false
	}
	return id, true
}

func addressParam(c *gin.Context, logger *slog.Logger) (records.Address, bool) {
	a, err := records.ParseAddress(c.Param("address"))
	if err != nil {
		badRequest(c, logger, "Invalid address", err)
		return records.Address{}, false
	}
	return a, true
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Version: ServiceVersion})
}

// =============================================================================
// Kernels
// =============================================================================

// HandleInitKernel handles POST /v1/kernels.
//
// Response:
//
//	201 Created: KernelResponse
//	400 Bad Request: Validation error
//	409 Conflict: Kernel already exists
func (h *Handlers) HandleInitKernel(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleInitKernel")

	var req InitKernelRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	seed, state, err := h.program.InitializeKernel(c.Request.Context(), req.SeedID, req.Difficulty, req.FragmentData)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, kernelView(seed, state))
}

// HandleGetKernel handles GET /v1/kernels/:seed_id.
func (h *Handlers) HandleGetKernel(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGetKernel")

	seedID, ok := seedIDParam(c, logger)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	seed, err := h.program.Kernel(ctx, seedID)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	state, err := h.program.Evolution(ctx, seedID)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, kernelView(seed, state))
}

// HandleGetFragment handles GET /v1/kernels/:seed_id/fragment.
func (h *Handlers) HandleGetFragment(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGetFragment")

	seedID, ok := seedIDParam(c, logger)
	if !ok {
		return
	}
	fragment, err := h.program.RequestFragment(c.Request.Context(), seedID)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, FragmentResponse{SeedID: seedID, FragmentData: fragment})
}

// HandleBridge handles POST /v1/kernels/:seed_id/bridge.
//
// Response:
//
//	200 OK: BridgeResponse
//	404 Not Found: Unknown kernel
//	422 Unprocessable Entity: Completion lacks resonance
//	502 Bad Gateway: Reward issuance failed
func (h *Handlers) HandleBridge(c *gin.Context) {
	h.handleBridge(c, "HandleBridge", h.program.BridgeGap)
}

// HandleBridgeAlt handles POST /v1/kernels/:seed_id/bridge-alt.
func (h *Handlers) HandleBridgeAlt(c *gin.Context) {
	h.handleBridge(c, "HandleBridgeAlt", h.program.BridgeGapAlt)
}

type bridgeFunc func(ctx context.Context, participant records.Address, seedID uint64, completion string, salt uint64) (*BridgeResult, error)

func (h *Handlers) handleBridge(c *gin.Context, name string, bridge bridgeFunc) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", name)

	seedID, ok := seedIDParam(c, logger)
	if !ok {
		return
	}
	var req BridgeRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	participant, err := records.ParseAddress(req.Participant)
	if err != nil {
		badRequest(c, logger, "Invalid participant", err)
		return
	}

	res, err := bridge(c.Request.Context(), participant, seedID, req.CompletionText, req.Salt)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, bridgeView(res))
}

// HandleEvolve handles POST /v1/kernels/:seed_id/evolve.
func (h *Handlers) HandleEvolve(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleEvolve")

	seedID, ok := seedIDParam(c, logger)
	if !ok {
		return
	}
	res, err := h.program.TriggerEvolution(c.Request.Context(), seedID)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	resp := kernelView(res.Seed, nil)
	resp.Evolution = evolutionView(res.State, res.Description)
	c.JSON(http.StatusOK, resp)
}

// HandleGetEvolution handles GET /v1/kernels/:seed_id/evolution.
func (h *Handlers) HandleGetEvolution(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGetEvolution")

	seedID, ok := seedIDParam(c, logger)
	if !ok {
		return
	}
	state, err := h.program.Evolution(c.Request.Context(), seedID)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, evolutionView(state, ""))
}

// HandleGetResonance handles GET /v1/kernels/:seed_id/resonance.
func (h *Handlers) HandleGetResonance(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGetResonance")

	seedID, ok := seedIDParam(c, logger)
	if !ok {
		return
	}
	r, err := h.program.Resonance(c.Request.Context(), seedID)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, resonanceView(seedID, r))
}

// HandleMine handles POST /v1/kernels/:seed_id/mine.
//
// Description:
//
//	Searches for an accepted completion of the current fragment. Read-only;
//	the caller still has to submit the result to a bridge endpoint.
func (h *Handlers) HandleMine(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleMine")

	seedID, ok := seedIDParam(c, logger)
	if !ok {
		return
	}
	var req MineRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	sol, found, err := h.program.Mine(c.Request.Context(), seedID, req.Base, req.Limit, req.WantSuper)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, mineView(sol, found))
}

// =============================================================================
// Participants
// =============================================================================

// HandleGetScore handles GET /v1/participants/:address/score.
func (h *Handlers) HandleGetScore(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGetScore")

	participant, ok := addressParam(c, logger)
	if !ok {
		return
	}
	score, err := h.program.Score(c.Request.Context(), participant)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, scoreView(score))
}

// HandleInscribe handles POST /v1/participants/:address/inscription.
//
// Response:
//
//	201 Created: InscriptionResponse
//	409 Conflict: Participant already inscribed
func (h *Handlers) HandleInscribe(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleInscribe")

	participant, ok := addressParam(c, logger)
	if !ok {
		return
	}
	var req InscribeRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	seed, err := validation.DecodeHex32("chaos_seed", req.ChaosSeed)
	if err != nil {
		badRequest(c, logger, "Invalid chaos_seed", err)
		return
	}

	anchor, err := h.program.InscribeVibe(c.Request.Context(), participant, req.PurpleDepth, req.ClaudeTau, seed)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, inscriptionView(anchor))
}

// HandleGetInscription handles GET /v1/participants/:address/inscription.
func (h *Handlers) HandleGetInscription(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGetInscription")

	participant, ok := addressParam(c, logger)
	if !ok {
		return
	}
	anchor, err := h.program.Inscription(c.Request.Context(), participant)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, inscriptionView(anchor))
}

// HandleGetBalance handles GET /v1/participants/:address/balance?standard=.
// The standard defaults to the primary one.
func (h *Handlers) HandleGetBalance(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGetBalance")

	owner, ok := addressParam(c, logger)
	if !ok {
		return
	}
	std := h.program.Primary()
	if raw := c.Query("standard"); raw != "" {
		parsed, err := issuance.ParseStandard(raw)
		if err != nil {
			badRequest(c, logger, "Invalid standard", err)
			return
		}
		std = parsed
	}

	amount, err := h.program.Balance(c.Request.Context(), std, owner)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, BalanceResponse{Owner: owner, Standard: string(std), Amount: amount})
}

// =============================================================================
// Collaborators
// =============================================================================

// HandleInitMint handles POST /v1/mints.
func (h *Handlers) HandleInitMint(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleInitMint")

	var req InitMintRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	std, err := issuance.ParseStandard(req.Standard)
	if err != nil {
		badRequest(c, logger, "Invalid standard", err)
		return
	}
	decimals := uint8(issuance.DefaultDecimals)
	if req.Decimals != nil {
		decimals = *req.Decimals
	}

	mint, err := h.program.InitializeMint(c.Request.Context(), std, decimals)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, MintResponse{
		Standard:  string(std),
		Address:   std.MintAddress(),
		Authority: mint.Authority,
		Supply:    mint.Supply,
		Decimals:  mint.Decimals,
	})
}

// HandleCreateMetadata handles POST /v1/metadata.
func (h *Handlers) HandleCreateMetadata(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleCreateMetadata")

	var req CreateMetadataRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	std, err := issuance.ParseStandard(req.Standard)
	if err != nil {
		badRequest(c, logger, "Invalid standard", err)
		return
	}

	md, err := h.program.CreateMetadata(c.Request.Context(), std, metadata.Params{Name: req.Name, Symbol: req.Symbol, URI: req.URI})
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, metadataView(md))
}

// HandleGetMetadata handles GET /v1/metadata/:standard.
func (h *Handlers) HandleGetMetadata(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGetMetadata")

	std, err := issuance.ParseStandard(c.Param("standard"))
	if err != nil {
		badRequest(c, logger, "Invalid standard", err)
		return
	}
	md, err := h.program.Metadata(c.Request.Context(), std)
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, metadataView(md))
}

// HandleInitOracle handles POST /v1/oracle.
func (h *Handlers) HandleInitOracle(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleInitOracle")

	state, err := h.program.InitializeOracle(c.Request.Context())
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, oracleView(state, 0))
}

// HandleOracleVote handles POST /v1/oracle/votes.
func (h *Handlers) HandleOracleVote(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleOracleVote")

	var req OracleVoteRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	if _, err := h.program.UpdateOracle(c.Request.Context(), req.IsResonant, req.Weight); err != nil {
		writeError(c, logger, err)
		return
	}
	state, bps, err := h.program.Oracle(c.Request.Context())
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, oracleView(state, bps))
}

// HandleGetOracle handles GET /v1/oracle.
func (h *Handlers) HandleGetOracle(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGetOracle")

	state, bps, err := h.program.Oracle(c.Request.Context())
	if err != nil {
		writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, oracleView(state, bps))
}

// =============================================================================
// Events
// =============================================================================

// HandleListEvents handles GET /v1/events?kind=&limit=.
func (h *Handlers) HandleListEvents(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleListEvents")

	if h.recorder == nil {
		c.JSON(http.StatusOK, []events.Envelope{})
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, logger, "Invalid limit", errors.New("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, h.recorder.Recent(limit, events.Kind(c.Query("kind"))))
}

// HandleEventStream handles GET /v1/events/ws.
func (h *Handlers) HandleEventStream(c *gin.Context) {
	if h.hub == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Event stream disabled", Code: "NOT_FOUND"})
		return
	}
	h.hub.ServeHTTP(c.Writer, c.Request)
}
