// Copyright 2026 The corectl Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package feeder

import (
	"github.com/feedersys/corectl/config"
	"github.com/feedersys/corectl/frame"
	"github.com/feedersys/corectl/servo"
)

// Feeder3rd owns these digital-output bits, and never writes outside this
// mask: clip 1 (0x0008), clip 2 (0x0010).
const Feeder3rdOutputMask uint16 = 0x0008 | 0x0010

const (
	clip1Bit uint16 = 0x0008
	clip2Bit uint16 = 0x0010
)

// feeder3HoldSensorBit is the sensor bit Pos1Holding optionally waits on
// before arming clip 2, when config.Feeder3rd.WaitForSensor is set.
const feeder3HoldSensorBit uint16 = 0x0004

// feeder3State is Feeder3rd's internal sequencing state, in the canonical
// order given by spec §4.5.
type feeder3State uint8

const (
	f3Init feeder3State = iota
	f3StartPending
	f3StartMove04
	f3StartMove04Clip
	f3StartMove01
	f3Pos1Holding
	f3Pos1ToTakePart
	f3StartMove02
	f3Pos02Release
	f3Pos01Empty
	f3EmptyPendingStep1
	f3EmptyPendingStep2
)

// Feeder3rd runs a clamp-and-pick sequence across four hard-coded
// positions using one ServoMover, coordinated with Feeder2nd via the
// target_reached edge (spec §9: an explicit message value returned from
// Update and consumed by the arbiter, never a direct sibling-feeder call).
//
// Mechanically: clip 1 guards the home/drop-off clamp and clip 2 guards
// the pick clamp. The carriage opens clip 1 at P4, approaches P1, arms
// clip 2 to take the part at P3, carries it to P2, releases clip 2 while
// re-closing clip 1, then returns to P1 and idles before the next cycle.
type Feeder3rd struct {
	name  string
	cfg   config.Feeder3rd
	mover *servo.ServoMover
	state feeder3State

	dwell    int
	clip1On  bool
	clip2On  bool
}

// NewFeeder3rd returns a Feeder3rd in the Init state with clip 1 engaged
// (holding the home/drop-off position) and clip 2 released. This is the
// power-on clip state only: EmptyPendingStep1 releases both clips at the
// end of every cycle, so later cycles begin in Init with both clips open.
func NewFeeder3rd(name string, cfg config.Feeder3rd) *Feeder3rd {
	return &Feeder3rd{
		name:    name,
		cfg:     cfg,
		mover:   servo.NewServoMover(name + ".mover"),
		clip1On: true,
	}
}

// Name implements components.Component.
func (f *Feeder3rd) Name() string { return f.name }

// State implements components.Component.
func (f *Feeder3rd) State() string {
	switch f.state {
	case f3Init:
		return "Init"
	case f3StartPending:
		return "StartPending"
	case f3StartMove04:
		return "StartMove04"
	case f3StartMove04Clip:
		return "StartMove04Clip"
	case f3StartMove01:
		return "StartMove01"
	case f3Pos1Holding:
		return "Pos1Holding"
	case f3Pos1ToTakePart:
		return "Pos1ToTakePart"
	case f3StartMove02:
		return "StartMove02"
	case f3Pos02Release:
		return "Pos02Release"
	case f3Pos01Empty:
		return "Pos01Empty"
	case f3EmptyPendingStep1:
		return "EmptyPendingStep1"
	case f3EmptyPendingStep2:
		return "EmptyPendingStep2"
	default:
		return "Unknown"
	}
}

// dOut returns the digital-output contribution implied by the current clip
// state.
func (f *Feeder3rd) dOut() uint16 {
	var out uint16
	if f.clip1On {
		out |= clip1Bit
	}
	if f.clip2On {
		out |= clip2Bit
	}
	return out
}

// Update runs one cycle. dIn is the raw digital input word. It returns
// this feeder's RX image for its servo slot, its digital-output
// contribution (always within Feeder3rdOutputMask), and targetReached,
// which is true only on the cycle Pos1ToTakePart completes (spec §4.5):
// the arbiter uses this edge to call Feeder2nd.TriggerNext.
func (f *Feeder3rd) Update(tx frame.ServoTxPdo, dIn uint16) (rx frame.ServoRxPdo, dOut uint16, targetReached bool) {
	switch f.state {
	case f3Init:
		f.state = f3StartPending
		return frame.ServoRxPdo{}, f.dOut(), false

	case f3StartPending:
		f.state = f3StartMove04
		f.mover.SetTarget(f.cfg.P4.Profile())
		return frame.ServoRxPdo{}, f.dOut(), false

	case f3StartMove04:
		rx, done := f.mover.Update(tx)
		if done {
			f.clip1On = false
			f.dwell = f.cfg.ClipOpenDwellCycles
			f.state = f3StartMove04Clip
		}
		return rx, f.dOut(), false

	case f3StartMove04Clip:
		if f.dwellDone() {
			f.mover.SetTarget(f.cfg.P1.Profile())
			f.state = f3StartMove01
		}
		return frame.ServoRxPdo{}, f.dOut(), false

	case f3StartMove01:
		rx, done := f.mover.Update(tx)
		if done {
			f.state = f3Pos1Holding
		}
		return rx, f.dOut(), false

	case f3Pos1Holding:
		if f.cfg.WaitForSensor && dIn&feeder3HoldSensorBit == 0 {
			return frame.ServoRxPdo{}, f.dOut(), false
		}
		f.clip2On = true
		f.mover.SetTarget(f.cfg.P3.Profile())
		f.state = f3Pos1ToTakePart
		return frame.ServoRxPdo{}, f.dOut(), false

	case f3Pos1ToTakePart:
		rx, done := f.mover.Update(tx)
		if done {
			f.mover.SetTarget(f.cfg.P2.Profile())
			f.state = f3StartMove02
			return rx, f.dOut(), true
		}
		return rx, f.dOut(), false

	case f3StartMove02:
		rx, done := f.mover.Update(tx)
		if done {
			f.clip1On = true
			f.clip2On = false
			f.dwell = f.cfg.ClipCloseDwellCycles
			f.state = f3Pos02Release
		}
		return rx, f.dOut(), false

	case f3Pos02Release:
		if f.dwellDone() {
			f.mover.SetTarget(f.cfg.P1.Profile())
			f.state = f3Pos01Empty
		}
		return frame.ServoRxPdo{}, f.dOut(), false

	case f3Pos01Empty:
		rx, done := f.mover.Update(tx)
		if done {
			f.dwell = f.cfg.ReturnDwellCycles
			f.state = f3EmptyPendingStep1
		}
		return rx, f.dOut(), false

	case f3EmptyPendingStep1:
		if f.dwellDone() {
			f.clip1On = false
			f.clip2On = false
			f.dwell = f.cfg.EmptyDwellCycles
			f.state = f3EmptyPendingStep2
		}
		return frame.ServoRxPdo{}, f.dOut(), false

	case f3EmptyPendingStep2:
		if f.dwellDone() {
			f.state = f3Init
		}
		return frame.ServoRxPdo{}, f.dOut(), false

	default:
		panic("feeder: invalid Feeder3rd state")
	}
}

// dwellDone decrements the dwell counter and reports whether it has
// expired this cycle.
func (f *Feeder3rd) dwellDone() bool {
	f.dwell--
	return f.dwell <= 0
}
