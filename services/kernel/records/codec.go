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
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// DiscriminatorLen is the size of the type tag that prefixes every record.
const DiscriminatorLen = 8

// ErrCorruptRecord indicates stored bytes do not decode as the requested
// record type.
var ErrCorruptRecord = errors.New("corrupt record")

// Record is implemented by every type persisted in the ledger.
type Record interface {
	// Kind is the stable type name hashed into the discriminator.
	Kind() string

	encode(e *encoder)
	decode(d *decoder)
}

// Discriminator returns the 8 byte tag for a record kind: the leading bytes
// of SHA-256("account:<kind>").
func Discriminator(kind string) [DiscriminatorLen]byte {
	sum := sha256.Sum256([]byte("account:" + kind))
	var out [DiscriminatorLen]byte
	copy(out[:], sum[:DiscriminatorLen])
	return out
}

// Marshal encodes r as discriminator || little-endian body.
func Marshal(r Record) []byte {
	e := &encoder{}
	disc := Discriminator(r.Kind())
	e.buf.Write(disc[:])
	r.encode(e)
	return e.buf.Bytes()
}

// Unmarshal decodes data into r.
//
// Description:
//
//	Verifies the discriminator matches r's kind, decodes the body, and
//	rejects short or trailing data. Any mismatch wraps ErrCorruptRecord.
func Unmarshal(data []byte, r Record) error {
	if len(data) < DiscriminatorLen {
		return fmt.Errorf("%w: %s: %d bytes is shorter than discriminator", ErrCorruptRecord, r.Kind(), len(data))
	}
	want := Discriminator(r.Kind())
	if !bytes.Equal(data[:DiscriminatorLen], want[:]) {
		return fmt.Errorf("%w: %s: discriminator mismatch", ErrCorruptRecord, r.Kind())
	}
	d := &decoder{data: data[DiscriminatorLen:]}
	r.decode(d)
	if d.err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptRecord, r.Kind(), d.err)
	}
	if len(d.data) != 0 {
		return fmt.Errorf("%w: %s: %d trailing bytes", ErrCorruptRecord, r.Kind(), len(d.data))
	}
	return nil
}

type encoder struct {
	buf bytes.Buffer
}

func (e *encoder) u8(v uint8) { e.buf.WriteByte(v) }

func (e *encoder) boolean(v bool) {
	if v {
		e.buf.WriteByte(1)
		return
	}
	e.buf.WriteByte(0)
}

func (e *encoder) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) i64(v int64) { e.u64(uint64(v)) }

func (e *encoder) fixed32(v [32]byte) { e.buf.Write(v[:]) }

func (e *encoder) str(s string) {
	if uint64(len(s)) > math.MaxUint32 {
		panic("records: string exceeds u32 length prefix")
	}
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(len(s)))
	e.buf.Write(b[:])
	e.buf.WriteString(s)
}

type decoder struct {
	data []byte
	err  error
}

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if len(d.data) < n {
		d.err = fmt.Errorf("need %d bytes, have %d", n, len(d.data))
		return nil
	}
	out := d.data[:n]
	d.data = d.data[n:]
	return out
}

func (d *decoder) u8() uint8 {
	b := d.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *decoder) boolean() bool {
	switch v := d.u8(); v {
	case 0:
		return false
	case 1:
		return true
	default:
		if d.err == nil {
			d.err = fmt.Errorf("invalid bool byte %d", v)
		}
		return false
	}
}

func (d *decoder) u16() uint16 {
	b := d.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (d *decoder) u64() uint64 {
	b := d.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (d *decoder) i64() int64 { return int64(d.u64()) }

func (d *decoder) fixed32() [32]byte {
	var out [32]byte
	copy(out[:], d.take(32))
	return out
}

func (d *decoder) str() string {
	b := d.take(4)
	if b == nil {
		return ""
	}
	n := binary.LittleEndian.Uint32(b)
	return string(d.take(int(n)))
}
