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
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/memek/pkg/extensions"
)

const requestIDKey = "request_id"

// RateLimit returns middleware backed by one shared token bucket. A
// non-positive rps disables limiting.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			slog.Warn("Rate limit exceeded",
				"path", c.FullPath(),
				"client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error: "Rate limit exceeded",
				Code:  "RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}

// RequestLogger logs one line per request at Debug, Warn for 4xx, Error
// for 5xx.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"request_id", c.Writer.Header().Get("X-Request-ID"),
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("Request completed", attrs...)
		case status >= http.StatusBadRequest:
			logger.Warn("Request completed", attrs...)
		default:
			logger.Debug("Request completed", attrs...)
		}
	}
}

// RequireAuthority admits requests whose bearer token resolves to an
// identity with extensions.RoleAuthority. Every decision is audited.
func RequireAuthority(opts extensions.ServiceOptions, logger *slog.Logger) gin.HandlerFunc {
	opts = opts.Normalize()
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		event := extensions.AuditEvent{
			Timestamp: time.Now().UTC(),
			RequestID: getOrCreateRequestID(c),
			Action:    c.Request.Method + " " + c.FullPath(),
		}

		status, code := 0, ""
		info, err := opts.AuthProvider.Validate(ctx, bearerToken(c))
		switch {
		case err != nil:
			status, code = http.StatusUnauthorized, "UNAUTHORIZED"
			if !errors.Is(err, extensions.ErrUnauthorized) {
				err = errors.Join(extensions.ErrUnauthorized, err)
			}
		case !info.HasRole(extensions.RoleAuthority):
			status, code = http.StatusForbidden, "FORBIDDEN"
			event.Subject = info.Subject
			err = extensions.ErrForbidden
		default:
			event.Subject = info.Subject
		}

		if err != nil {
			event.Outcome = extensions.OutcomeDenied
			event.Reason = err.Error()
		} else {
			event.Outcome = extensions.OutcomeAllowed
		}
		if aerr := opts.AuditLogger.Log(ctx, event); aerr != nil {
			logger.Error("Audit log failed", "error", aerr, "action", event.Action)
		}

		if err != nil {
			c.AbortWithStatusJSON(status, ErrorResponse{
				Error: "Authority required",
				Code:  code,
			})
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
