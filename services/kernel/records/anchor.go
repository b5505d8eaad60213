// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package records

import (
	"errors"
	"time"

	"golang.org/x/crypto/sha3"
)

// ChaosSeedLen is the size of the caller-supplied entropy blob.
const ChaosSeedLen = 32

// XenianAnchor is a permanent personal inscription.
//
// All fields are sealed at construction. There is no setter for any field
// and the vibing flag is true on every anchor that exists; a stored anchor
// whose flag byte is not 1 fails to decode.
type XenianAnchor struct {
	viber           Address
	vibeHash        [32]byte
	purpleDepth     uint8
	claudeTau       uint64
	chaosSeed       [ChaosSeedLen]byte
	inscriptionTime int64
}

// NewXenianAnchor seals an inscription for viber at the given time.
//
// The vibe hash is Keccak-256 over
// purpleDepth || le64(claudeTau) || chaosSeed || le64(unix seconds).
func NewXenianAnchor(viber Address, purpleDepth uint8, claudeTau uint64, chaosSeed [ChaosSeedLen]byte, at time.Time) *XenianAnchor {
	ts := at.Unix()
	return &XenianAnchor{
		viber:           viber,
		vibeHash:        VibeHash(purpleDepth, claudeTau, chaosSeed, ts),
		purpleDepth:     purpleDepth,
		claudeTau:       claudeTau,
		chaosSeed:       chaosSeed,
		inscriptionTime: ts,
	}
}

// VibeHash computes the inscription verification hash.
func VibeHash(purpleDepth uint8, claudeTau uint64, chaosSeed [ChaosSeedLen]byte, unixTime int64) [32]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte{purpleDepth})
	h.Write(U64Seed(claudeTau))
	h.Write(chaosSeed[:])
	h.Write(U64Seed(uint64(unixTime)))
	var out [32]byte
	h.Sum(out[:0])
	return out
}

func (a *XenianAnchor) Viber() Address                { return a.viber }
func (a *XenianAnchor) VibeHash() [32]byte            { return a.vibeHash }
func (a *XenianAnchor) PurpleDepth() uint8            { return a.purpleDepth }
func (a *XenianAnchor) ClaudeTau() uint64             { return a.claudeTau }
func (a *XenianAnchor) ChaosSeed() [ChaosSeedLen]byte { return a.chaosSeed }
func (a *XenianAnchor) InscriptionTime() int64        { return a.inscriptionTime }

// IsVibing is always true.
func (a *XenianAnchor) IsVibing() bool { return true }

func (*XenianAnchor) Kind() string { return "XenianAnchor" }

func (a *XenianAnchor) encode(e *encoder) {
	e.fixed32(a.viber)
	e.fixed32(a.vibeHash)
	e.u8(a.purpleDepth)
	e.u64(a.claudeTau)
	e.fixed32(a.chaosSeed)
	e.i64(a.inscriptionTime)
	e.boolean(true)
}

func (a *XenianAnchor) decode(d *decoder) {
	a.viber = d.fixed32()
	a.vibeHash = d.fixed32()
	a.purpleDepth = d.u8()
	a.claudeTau = d.u64()
	a.chaosSeed = d.fixed32()
	a.inscriptionTime = d.i64()
	if !d.boolean() && d.err == nil {
		d.err = errors.New("anchor vibing flag cleared")
	}
}
