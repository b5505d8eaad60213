// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package extensions provides the extension points that guard MEMEk's
// authority operations: creating kernels, evolving them, and setting up
// mints, metadata and the oracle.
//
// The defaults treat every caller as the local authority and discard
// audit events, so a single-user deployment needs no configuration.
// Deployments that expose the API set an AuthProvider and AuditLogger:
//
//	opts := extensions.DefaultOptions().
//	    WithAuth(extensions.NewTokenAuthProvider(token)).
//	    WithAudit(extensions.NewSlogAuditLogger(logger))
//
// # Thread Safety
//
// All implementations must be safe for concurrent use.
package extensions

// ServiceOptions groups the extension points a service accepts. Nil fields
// fall back to the no-op defaults via Normalize.
type ServiceOptions struct {
	// AuthProvider resolves a bearer token to an identity.
	// Default: NopAuthProvider
	AuthProvider AuthProvider

	// AuditLogger records authority actions.
	// Default: NopAuditLogger
	AuditLogger AuditLogger
}

// DefaultOptions returns ServiceOptions with no-op defaults.
func DefaultOptions() ServiceOptions {
	return ServiceOptions{
		AuthProvider: &NopAuthProvider{},
		AuditLogger:  &NopAuditLogger{},
	}
}

// Normalize fills nil fields with defaults.
func (opts ServiceOptions) Normalize() ServiceOptions {
	if opts.AuthProvider == nil {
		opts.AuthProvider = &NopAuthProvider{}
	}
	if opts.AuditLogger == nil {
		opts.AuditLogger = &NopAuditLogger{}
	}
	return opts
}

// WithAuth returns a copy of opts with the given AuthProvider.
func (opts ServiceOptions) WithAuth(provider AuthProvider) ServiceOptions {
	opts.AuthProvider = provider
	return opts
}

// WithAudit returns a copy of opts with the given AuditLogger.
func (opts ServiceOptions) WithAudit(logger AuditLogger) ServiceOptions {
	opts.AuditLogger = logger
	return opts
}
