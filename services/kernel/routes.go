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
	"github.com/gin-gonic/gin"
)

// RouteGuards is the middleware RegisterRoutes puts in front of
// state-changing routes.
type RouteGuards struct {
	// Write runs before every POST, typically RateLimit.
	Write gin.HandlerFunc

	// Authority runs after Write on authority routes, typically
	// RequireAuthority.
	Authority gin.HandlerFunc
}

// RegisterRoutes registers all program routes with the router.
//
// Description:
//
//	Registers the /v1/* endpoints with the given Gin router group. Every
//	state-changing route goes through guards.Write; authority routes
//	(marked [A]) also go through guards.Authority. Nil guards are skipped.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//	guards - Middleware for write and authority routes
//
// Kernel Endpoints:
//
//	POST /v1/kernels - Create a puzzle [A]
//	GET  /v1/kernels/:seed_id - Puzzle with evolution state
//	GET  /v1/kernels/:seed_id/fragment - Fragment text
//	POST /v1/kernels/:seed_id/bridge - Submit a completion (primary issuer)
//	POST /v1/kernels/:seed_id/bridge-alt - Submit a completion (alternate issuer)
//	POST /v1/kernels/:seed_id/evolve - Advance one epoch [A]
//	GET  /v1/kernels/:seed_id/evolution - Evolution state
//	GET  /v1/kernels/:seed_id/resonance - Puzzle aggregate
//	POST /v1/kernels/:seed_id/mine - Search for an accepted completion
//
// Participant Endpoints:
//
//	GET  /v1/participants/:address/score - Cumulative score
//	POST /v1/participants/:address/inscription - Seal the inscription
//	GET  /v1/participants/:address/inscription - Read the inscription
//	GET  /v1/participants/:address/balance - Issued balance
//
// Collaborator Endpoints:
//
//	POST /v1/mints - Initialize a reward mint [A]
//	POST /v1/metadata - Register mint metadata [A]
//	GET  /v1/metadata/:standard - Read mint metadata
//	POST /v1/oracle - Initialize the oracle [A]
//	POST /v1/oracle/votes - Cast a vote
//	GET  /v1/oracle - Oracle state
//
// Event Endpoints:
//
//	GET  /v1/events - Recent events
//	GET  /v1/events/ws - Live event stream
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers, guards RouteGuards) {
	chain := func(h gin.HandlerFunc, mw ...gin.HandlerFunc) []gin.HandlerFunc {
		var out []gin.HandlerFunc
		for _, m := range mw {
			if m != nil {
				out = append(out, m)
			}
		}
		return append(out, h)
	}
	write := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return chain(h, guards.Write)
	}
	authority := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return chain(h, guards.Write, guards.Authority)
	}

	kernels := rg.Group("/kernels")
	{
		kernels.POST("", authority(handlers.HandleInitKernel)...)
		kernels.GET("/:seed_id", handlers.HandleGetKernel)
		kernels.GET("/:seed_id/fragment", handlers.HandleGetFragment)
		kernels.POST("/:seed_id/bridge", write(handlers.HandleBridge)...)
		kernels.POST("/:seed_id/bridge-alt", write(handlers.HandleBridgeAlt)...)
		kernels.POST("/:seed_id/evolve", authority(handlers.HandleEvolve)...)
		kernels.GET("/:seed_id/evolution", handlers.HandleGetEvolution)
		kernels.GET("/:seed_id/resonance", handlers.HandleGetResonance)
		kernels.POST("/:seed_id/mine", write(handlers.HandleMine)...)
	}

	participants := rg.Group("/participants/:address")
	{
		participants.GET("/score", handlers.HandleGetScore)
		participants.POST("/inscription", write(handlers.HandleInscribe)...)
		participants.GET("/inscription", handlers.HandleGetInscription)
		participants.GET("/balance", handlers.HandleGetBalance)
	}

	rg.POST("/mints", authority(handlers.HandleInitMint)...)
	rg.POST("/metadata", authority(handlers.HandleCreateMetadata)...)
	rg.GET("/metadata/:standard", handlers.HandleGetMetadata)

	oracle := rg.Group("/oracle")
	{
		oracle.POST("", authority(handlers.HandleInitOracle)...)
		oracle.POST("/votes", write(handlers.HandleOracleVote)...)
		oracle.GET("", handlers.HandleGetOracle)
	}

	rg.GET("/events", handlers.HandleListEvents)
	rg.GET("/events/ws", handlers.HandleEventStream)
}
