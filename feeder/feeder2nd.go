// Copyright 2026 The corectl Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package feeder

import (
	"github.com/feedersys/corectl/config"
	"github.com/feedersys/corectl/frame"
	"github.com/feedersys/corectl/servo"
)

// Feeder2nd owns these digital-output bits, and never writes outside this
// mask: kicker stages 0x0001/0x0002/0x0004, breaker 0x4000.
const Feeder2ndOutputMask uint16 = 0x0001 | 0x0002 | 0x0004 | 0x4000

// feeder2SensorMask is the StartPending sensor mask watched in addition to
// the product-passed edge: S1|S3|S4|S5 (0x0001|0x0008|0x0010|0x0020).
const feeder2SensorMask uint16 = 0x0001 | 0x0008 | 0x0010 | 0x0020

// productPassedBit is the digital input bit whose rising edge starts the
// product-passed debounce countdown (S2, 0x0002).
const productPassedBit uint16 = 0x0002

// feeder2State is Feeder2nd's internal sequencing state.
type feeder2State uint8

const (
	f2Init feeder2State = iota
	f2StartPending
	f2StartKick01
	f2StartKick02
	f2StartKick03
	f2MoveToEnd
	f2EndPending
	f2MoveToStart
)

// Feeder2nd sequences a three-stage pneumatic kicker, a breaker output, and
// a shuttle move (start -> end -> return) using one ServoMover. It detects
// a debounced "product passed" edge on the digital input word independent
// of its own state, mirroring spec §4.4's critical product-passed-edge
// rule.
type Feeder2nd struct {
	name  string
	cfg   config.Feeder2nd
	mover *servo.ServoMover
	state feeder2State

	counter int
	outBits uint16

	lastDIn       uint16
	ppCountdown   int // -1 when inactive
	productPassed bool

	trigger bool
}

// NewFeeder2nd returns a Feeder2nd in the Init state.
func NewFeeder2nd(name string, cfg config.Feeder2nd) *Feeder2nd {
	return &Feeder2nd{
		name:        name,
		cfg:         cfg,
		mover:       servo.NewServoMover(name + ".mover"),
		ppCountdown: -1,
	}
}

// Name implements components.Component.
func (f *Feeder2nd) Name() string { return f.name }

// State implements components.Component.
func (f *Feeder2nd) State() string {
	switch f.state {
	case f2Init:
		return "Init"
	case f2StartPending:
		return "StartPending"
	case f2StartKick01:
		return "StartKick01"
	case f2StartKick02:
		return "StartKick02"
	case f2StartKick03:
		return "StartKick03"
	case f2MoveToEnd:
		return "MoveToEnd"
	case f2EndPending:
		return "EndPending"
	case f2MoveToStart:
		return "MoveToStart"
	default:
		return "Unknown"
	}
}

// TriggerNext signals Feeder2nd (from EndPending) to resume toward the
// start position. It is the message-value equivalent of the source's
// sibling-called trigger_next setter (spec §9): the arbiter calls this
// after observing Feeder3rd's target_reached edge, never Feeder3rd
// directly.
func (f *Feeder2nd) TriggerNext() { f.trigger = true }

// Update runs one cycle. dIn is the raw digital input word; isManual
// selects the manual/auto kicker-timing and debounce constants. It returns
// this feeder's RX image for its servo slot, its digital-output
// contribution (always within Feeder2ndOutputMask), and whether the
// shuttle just completed its move to the end position this cycle.
func (f *Feeder2nd) Update(tx frame.ServoTxPdo, dIn uint16, isManual bool) (rx frame.ServoRxPdo, dOut uint16, targetReached bool) {
	f.detectProductPassed(dIn, isManual)

	switch f.state {
	case f2Init:
		return f.driveInit(tx)

	case f2StartPending:
		f.outBits = 0
		sensor := dIn&feeder2SensorMask != 0
		if sensor || f.productPassed {
			f.productPassed = false
			f.state = f2StartKick01
			f.counter = pick(isManual, f.cfg.Kick01Manual, f.cfg.Kick01Auto)
			f.outBits = 0x0001
		}
		return frame.ServoRxPdo{}, f.outBits, false

	case f2StartKick01:
		f.outBits = 0x0001
		f.counter--
		if f.counter <= 0 {
			f.state = f2StartKick02
			f.counter = pick(isManual, f.cfg.Kick02Manual, f.cfg.Kick02Auto)
			f.outBits = 0x0002
		}
		return frame.ServoRxPdo{}, f.outBits, false

	case f2StartKick02:
		f.outBits = 0x0002
		f.counter--
		if f.counter <= 0 {
			f.state = f2StartKick03
			f.counter = pick(isManual, f.cfg.Kick03Manual, f.cfg.Kick03Auto)
			f.outBits = 0x0002 | 0x0004
		}
		return frame.ServoRxPdo{}, f.outBits, false

	case f2StartKick03:
		f.counter--
		breakerAt := pick(isManual, f.cfg.Kick03BreakerAtManual, f.cfg.Kick03BreakerAtAuto)
		if f.counter <= breakerAt {
			f.outBits = 0x4000
		} else {
			f.outBits = 0x0002 | 0x0004
		}
		if f.counter <= 0 {
			f.state = f2MoveToEnd
			f.mover.SetTarget(f.cfg.End.Profile())
			f.outBits = 0
		}
		return frame.ServoRxPdo{}, f.outBits, false

	case f2MoveToEnd:
		rx, done := f.mover.Update(tx)
		if done {
			f.state = f2EndPending
			return rx, 0, true
		}
		return rx, 0, false

	case f2EndPending:
		if f.trigger {
			f.trigger = false
			f.mover.SetTarget(f.cfg.Start.Profile())
			f.state = f2MoveToStart
		}
		return frame.ServoRxPdo{}, 0, false

	case f2MoveToStart:
		rx, done := f.mover.Update(tx)
		if done {
			f.state = f2StartPending
		}
		return rx, 0, false

	default:
		panic("feeder: invalid Feeder2nd state")
	}
}

// driveInit implements the Init state: assert the breaker output and drive
// the shuttle to the Feeder-2 start position, commissioning the move on
// the first cycle (SetTarget is a no-op on every later cycle once the
// mover is no longer Ready); transition to StartPending once it completes.
func (f *Feeder2nd) driveInit(tx frame.ServoTxPdo) (frame.ServoRxPdo, uint16, bool) {
	f.mover.SetTarget(f.cfg.Start.Profile())
	rx, done := f.mover.Update(tx)
	if done {
		f.state = f2StartPending
	}
	return rx, 0x4000, false
}

// detectProductPassed tracks the product-passed debounce independent of
// the main sequencing state, per spec §4.4: a rising edge on
// productPassedBit starts a mode-dependent countdown that runs from the
// cycle after the edge; when it expires, productPassed latches true until
// StartPending consumes it.
func (f *Feeder2nd) detectProductPassed(dIn uint16, isManual bool) {
	rising := (f.lastDIn^dIn)&productPassedBit != 0 && dIn&productPassedBit != 0
	f.lastDIn = dIn
	if rising {
		f.ppCountdown = pick(isManual, f.cfg.ProductPassedDelayManual, f.cfg.ProductPassedDelayAuto)
		return
	}
	if f.ppCountdown > 0 {
		f.ppCountdown--
		if f.ppCountdown == 0 {
			f.productPassed = true
		}
	}
}

// pick returns manual if isManual, else auto.
func pick(isManual bool, manual, auto int) int {
	if isManual {
		return manual
	}
	return auto
}
