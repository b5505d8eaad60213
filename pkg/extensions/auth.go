// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package extensions

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"slices"
)

// ErrUnauthorized is returned when a token is missing or invalid.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when a valid identity lacks the needed role.
var ErrForbidden = errors.New("forbidden")

// RoleAuthority may run authority operations.
const RoleAuthority = "authority"

// AuthInfo is the identity behind a token.
type AuthInfo struct {
	// Subject identifies the caller in audit events. Never empty.
	Subject string

	Roles []string
}

// HasRole reports whether the identity holds role.
func (a *AuthInfo) HasRole(role string) bool {
	return slices.Contains(a.Roles, role)
}

// AuthProvider validates bearer tokens.
type AuthProvider interface {
	// Validate returns the identity for token, or an error wrapping
	// ErrUnauthorized. An empty token means none was sent.
	Validate(ctx context.Context, token string) (*AuthInfo, error)
}

// NopAuthProvider treats every caller as the local authority.
type NopAuthProvider struct{}

func (p *NopAuthProvider) Validate(_ context.Context, _ string) (*AuthInfo, error) {
	return &AuthInfo{Subject: "local-authority", Roles: []string{RoleAuthority}}, nil
}

// TokenAuthProvider accepts exactly one shared token and grants it the
// authority role.
type TokenAuthProvider struct {
	digest [sha256.Size]byte
}

// NewTokenAuthProvider stores only the digest of token.
func NewTokenAuthProvider(token string) *TokenAuthProvider {
	return &TokenAuthProvider{digest: sha256.Sum256([]byte(token))}
}

func (p *TokenAuthProvider) Validate(_ context.Context, token string) (*AuthInfo, error) {
	if token == "" {
		return nil, fmt.Errorf("missing bearer token: %w", ErrUnauthorized)
	}
	got := sha256.Sum256([]byte(token))
	if subtle.ConstantTimeCompare(got[:], p.digest[:]) != 1 {
		return nil, fmt.Errorf("token rejected: %w", ErrUnauthorized)
	}
	return &AuthInfo{Subject: "token-authority", Roles: []string{RoleAuthority}}, nil
}
