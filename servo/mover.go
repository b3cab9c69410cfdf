// Copyright 2026 The corectl Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package servo

import "github.com/feedersys/corectl/frame"

// ToleranceCounts is the window within which a drive is considered to have
// reached its target: |actual - target| < ToleranceCounts.
const ToleranceCounts Counts = 14200

// moveState is ServoMover's internal Profile-Position handshake state.
type moveState uint8

const (
	moveInit moveState = iota
	moveProfile
	moveTriggerNewSetPoint
	moveWaitTargetReached
)

// Profile holds the motion parameters commanded for a move: target position
// and the profile velocity/acceleration/deceleration to reach it with.
type Profile struct {
	Target       Counts
	Velocity     CountRate
	Acceleration CountRate
	Deceleration CountRate
}

// ServoMover drives one Profile-Position move to a target. set_target is
// accepted only while the previous move has completed (Ready); update
// drives the CiA 402 control-word handshake and reports completion.
//
// The TriggerNewSetPoint state strobes control word 0x000F|NEW_SET_POINT
// for exactly one cycle and advances unconditionally — it does not gate on
// the drive's SET_POINT_ACK status bit. An earlier design did gate on that
// bit; the unconditional strobe is the canonical, final behavior (spec
// §4.2, Open Question (a)) and is implemented here deliberately, not as an
// oversight.
type ServoMover struct {
	name    string
	state   moveState
	profile Profile
	ready   bool
}

// NewServoMover returns a ServoMover with no target set and Ready true (a
// move may be commanded immediately).
func NewServoMover(name string) *ServoMover {
	return &ServoMover{name: name, ready: true}
}

// Name implements components.Component.
func (m *ServoMover) Name() string { return m.name }

// State implements components.Component.
func (m *ServoMover) State() string {
	switch m.state {
	case moveInit:
		return "Init"
	case moveProfile:
		return "Profile"
	case moveTriggerNewSetPoint:
		return "TriggerNewSetPoint"
	case moveWaitTargetReached:
		return "WaitTargetReached"
	default:
		return "Unknown"
	}
}

// Ready reports whether the previous move has completed, i.e. whether
// SetTarget will be accepted.
func (m *ServoMover) Ready() bool { return m.ready }

// SetTarget commands a new move. It is accepted only while Ready is true;
// on acceptance the mover re-enters Init and Ready becomes false until the
// new move completes.
func (m *ServoMover) SetTarget(p Profile) (accepted bool) {
	if !m.ready {
		return false
	}
	m.profile = p
	m.state = moveInit
	m.ready = false
	return true
}

// Update drives one tick of the handshake against tx (the drive's current
// status/position) and returns the RX command to write this cycle plus
// whether the move is complete. complete becomes (and stays) true once the
// actual position is within ToleranceCounts of the target, mirroring
// ServoMover.ready in spec §4.2.
func (m *ServoMover) Update(tx frame.ServoTxPdo) (rx frame.ServoRxPdo, complete bool) {
	status := StatusWord(tx.StatusWord)
	actual := Counts(tx.PositionActualValue)

	switch m.state {
	case moveInit:
		if withinTolerance(actual, m.profile.Target) {
			m.ready = true
			return holdCommand(actual), true
		}
		if status&SWTargetReached != 0 {
			m.state = moveProfile
		}
		return holdCommand(actual), false

	case moveProfile:
		cmd := profileCommand(m.profile, ControlWord(0x000F))
		m.state = moveTriggerNewSetPoint
		return cmd, false

	case moveTriggerNewSetPoint:
		cmd := profileCommand(m.profile, ControlWord(0x000F)|CWNewSetPoint)
		m.state = moveWaitTargetReached
		return cmd, false

	case moveWaitTargetReached:
		cmd := profileCommand(m.profile, ControlWord(0x000F))
		if status&SWTargetReached != 0 {
			m.state = moveInit
		}
		return cmd, false

	default:
		panic("servo: invalid ServoMover state")
	}
}

func withinTolerance(actual, target Counts) bool {
	diff := actual - target
	if diff < 0 {
		diff = -diff
	}
	return diff < ToleranceCounts
}

// holdCommand commands the drive to hold its current position: target set
// to the actual position, all profile rates zeroed.
func holdCommand(actual Counts) frame.ServoRxPdo {
	return frame.ServoRxPdo{
		ControlWord:     uint16(0x000F),
		TargetPosition:  int32(actual),
		ModeOfOperation: modeProfilePosition,
	}
}

func profileCommand(p Profile, cw ControlWord) frame.ServoRxPdo {
	return frame.ServoRxPdo{
		ControlWord:         uint16(cw),
		TargetPosition:      int32(p.Target),
		ProfileVelocity:     uint32(p.Velocity),
		ProfileAcceleration: uint32(p.Acceleration),
		ProfileDeceleration: uint32(p.Deceleration),
		ModeOfOperation:     modeProfilePosition,
	}
}
