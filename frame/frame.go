// Copyright 2026 The corectl Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package frame defines the packed process-data frame exchanged with the
// fieldbus transport once per cycle.
//
// The frame is a fixed 66 byte little-endian layout: two servo PDO slots
// (RX half followed by TX half) followed by the digital-outputs and
// digital-inputs words. Every field is read or written through explicit
// little-endian accessors over a byte array — never by reinterpreting the
// array as a Go struct — so the layout is exact and portable regardless of
// target alignment rules.
package frame

import (
	"encoding/binary"
	"errors"
)

// ServoRxPdo is the command half of a servo PDO: everything the core writes
// for one drive on every cycle.
type ServoRxPdo struct {
	ControlWord         uint16
	TargetPosition      int32
	ProfileVelocity     uint32
	ProfileAcceleration uint32
	ProfileDeceleration uint32
	ModeOfOperation     uint8
}

// servoRxPdoWireSize is the number of bytes ServoRxPdo's named fields
// actually occupy on the wire: 2+4+4+4+4+1.
const servoRxPdoWireSize = 19

// ServoRxPdoSize is the wire size of one RX slot, per spec §6 (25 bytes:
// the 19 named-field bytes above plus 6 reserved/padding bytes carried by
// the mapped PDO that the core never reads or writes).
const ServoRxPdoSize = 25

// ServoTxPdo is the status half of a servo PDO: everything a drive reports
// back on every cycle.
type ServoTxPdo struct {
	StatusWord          uint16
	PositionActualValue int32
}

// ServoTxPdoSize is the wire size of one TX slot, per spec §6.
const ServoTxPdoSize = 6

// Slot byte offsets within DomainData, per spec §6.
const (
	slot0RXOffset = 0
	slot0TXOffset = slot0RXOffset + ServoRxPdoSize // 25
	slot1RXOffset = slot0TXOffset + ServoTxPdoSize // 31
	slot1TXOffset = slot1RXOffset + ServoRxPdoSize // 56

	digitalOutputsOffset = slot1TXOffset + ServoTxPdoSize // 62
	digitalInputsOffset  = digitalOutputsOffset + 2        // 64

	// Size is the total wire size of DomainData, per spec §6.
	Size = digitalInputsOffset + 2 // 66
)

// ErrFrameSize is the sentinel the startup-time layout assertion panics
// with if the packed layout ever fails to match the documented 66 byte
// contract. It is never returned on the hot path.
var ErrFrameSize = errors.New("frame: DomainData size mismatch")

func init() {
	if Size != 66 {
		panic(ErrFrameSize)
	}
}

// DomainData is the packed process-data frame. It is exclusively owned by
// the transport for I/O and exclusively borrowed by the core during
// react — the core never retains a reference across cycles.
type DomainData [Size]byte

// slotOffset returns the byte offsets for servo slot index 0 or 1.
func slotOffset(slot int) (rx, tx int) {
	switch slot {
	case 0:
		return slot0RXOffset, slot0TXOffset
	case 1:
		return slot1RXOffset, slot1TXOffset
	default:
		panic("frame: invalid servo slot index")
	}
}

// RX decodes the RX half of servo slot 0 or 1.
func (d *DomainData) RX(slot int) ServoRxPdo {
	off, _ := slotOffset(slot)
	b := d[off : off+servoRxPdoWireSize]
	return ServoRxPdo{
		ControlWord:         binary.LittleEndian.Uint16(b[0:2]),
		TargetPosition:      int32(binary.LittleEndian.Uint32(b[2:6])),
		ProfileVelocity:     binary.LittleEndian.Uint32(b[6:10]),
		ProfileAcceleration: binary.LittleEndian.Uint32(b[10:14]),
		ProfileDeceleration: binary.LittleEndian.Uint32(b[14:18]),
		ModeOfOperation:     b[18],
	}
}

// SetRX encodes v into the RX half of servo slot 0 or 1. Reserved trailing
// bytes of the slot are left untouched.
func (d *DomainData) SetRX(slot int, v ServoRxPdo) {
	off, _ := slotOffset(slot)
	b := d[off : off+servoRxPdoWireSize]
	binary.LittleEndian.PutUint16(b[0:2], v.ControlWord)
	binary.LittleEndian.PutUint32(b[2:6], uint32(v.TargetPosition))
	binary.LittleEndian.PutUint32(b[6:10], v.ProfileVelocity)
	binary.LittleEndian.PutUint32(b[10:14], v.ProfileAcceleration)
	binary.LittleEndian.PutUint32(b[14:18], v.ProfileDeceleration)
	b[18] = v.ModeOfOperation
}

// TX decodes the TX half of servo slot 0 or 1.
func (d *DomainData) TX(slot int) ServoTxPdo {
	_, off := slotOffset(slot)
	b := d[off : off+ServoTxPdoSize]
	return ServoTxPdo{
		StatusWord:          binary.LittleEndian.Uint16(b[0:2]),
		PositionActualValue: int32(binary.LittleEndian.Uint32(b[2:6])),
	}
}

// SetTX encodes v into the TX half of servo slot 0 or 1. Only the transport
// (or a test fake standing in for a drive) ever calls this.
func (d *DomainData) SetTX(slot int, v ServoTxPdo) {
	_, off := slotOffset(slot)
	b := d[off : off+ServoTxPdoSize]
	binary.LittleEndian.PutUint16(b[0:2], v.StatusWord)
	binary.LittleEndian.PutUint32(b[2:6], uint32(v.PositionActualValue))
}

// DigitalOutputs reads the digital-outputs word (written by the core).
func (d *DomainData) DigitalOutputs() uint16 {
	return binary.LittleEndian.Uint16(d[digitalOutputsOffset : digitalOutputsOffset+2])
}

// SetDigitalOutputs writes the digital-outputs word.
func (d *DomainData) SetDigitalOutputs(v uint16) {
	binary.LittleEndian.PutUint16(d[digitalOutputsOffset:digitalOutputsOffset+2], v)
}

// DigitalInputs reads the digital-inputs word (read-only to the core).
func (d *DomainData) DigitalInputs() uint16 {
	return binary.LittleEndian.Uint16(d[digitalInputsOffset : digitalInputsOffset+2])
}

// SetDigitalInputs writes the digital-inputs word. Only the transport (or a
// test fake) ever calls this.
func (d *DomainData) SetDigitalInputs(v uint16) {
	binary.LittleEndian.PutUint16(d[digitalInputsOffset:digitalInputsOffset+2], v)
}
