// Copyright 2026 The corectl Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package runner implements the outer control loop: MachineRunner, the
// manual/auto mode arbiter that fans a cycle out to the three feeders, and
// TopLevel, the two-phase Init/Run FSM that owns it.
//
// Grounded on periph.go's Init() two-phase bring-up (a fixed prerequisite
// stage completes once, then the aggregate State is used for the rest of
// the process) for TopLevel's shape, and on conn/gpio's edge-detection
// convention (XOR the previous and current sampled word, mask the bit of
// interest) for MachineRunner's mode-switch and op-button edges.
package runner

import (
	"github.com/feedersys/corectl/feeder"
	"github.com/feedersys/corectl/frame"
	"github.com/feedersys/corectl/servo"
)

const (
	modeSwitchBit uint16 = 0x8000
	opButtonBit   uint16 = 0x4000

	feeder2SlotIndex = 0
	feeder3SlotIndex = 1
)

// runnerMode is MachineRunner's top-level mode.
type runnerMode uint8

const (
	modeManual runnerMode = iota
	modeAuto
)

// MachineRunner is the run-phase mode arbiter: it tracks manual/auto mode
// from the digital-input mode-switch bit, counts op-button edges, and
// dispatches one tick ("run_once") to the three feeders per the resulting
// schedule (§4.6).
type MachineRunner struct {
	feeder1 *feeder.Feeder1st
	feeder2 *feeder.Feeder2nd
	feeder3 *feeder.Feeder3rd

	mode           runnerMode
	lastDIn        uint16
	opPressedCount int
}

// NewMachineRunner returns a MachineRunner in Manual mode wrapping the
// given feeders.
func NewMachineRunner(f1 *feeder.Feeder1st, f2 *feeder.Feeder2nd, f3 *feeder.Feeder3rd) *MachineRunner {
	return &MachineRunner{feeder1: f1, feeder2: f2, feeder3: f3}
}

// Name implements components.Component.
func (r *MachineRunner) Name() string { return "MachineRunner" }

// State implements components.Component.
func (r *MachineRunner) State() string {
	if r.mode == modeAuto {
		return "Auto"
	}
	return "Manual"
}

// Update runs one cycle of the run phase against data, the borrowed
// process-data frame. It reads the digital-input word once, updates mode
// and the op-button edge counter, and — per the resulting schedule —
// dispatches zero or one run_once to the feeders.
func (r *MachineRunner) Update(data *frame.DomainData) {
	dIn := data.DigitalInputs()
	changed := r.lastDIn ^ dIn
	modeEdge := changed&modeSwitchBit != 0
	opEdge := changed&opButtonBit != 0
	r.lastDIn = dIn

	if modeEdge {
		if dIn&modeSwitchBit != 0 {
			r.mode = modeAuto
		} else {
			r.mode = modeManual
		}
	}

	switch r.mode {
	case modeManual:
		if opEdge {
			r.runOnce(data, dIn, true)
		}
	case modeAuto:
		if opEdge {
			r.opPressedCount++
		}
		if r.opPressedCount%2 == 0 {
			r.runOnce(data, dIn, false)
		}
	}
}

// runOnce calls the three feeders in order, composes their digital-output
// contributions, and writes the composed word plus each feeder's RX image
// back into data. If Feeder3rd reports target_reached, Feeder2nd's
// trigger is pulled before the next cycle — the message-value handoff
// described in design note 3, never a direct feeder-to-feeder call.
func (r *MachineRunner) runOnce(data *frame.DomainData, dIn uint16, isManual bool) {
	dOut1 := r.feeder1.Update(dIn)

	tx2 := data.TX(feeder2SlotIndex)
	rx2, dOut2, _ := r.feeder2.Update(tx2, dIn, isManual)

	tx3 := data.TX(feeder3SlotIndex)
	rx3, dOut3, targetReached3 := r.feeder3.Update(tx3, dIn)

	if targetReached3 {
		r.feeder2.TriggerNext()
	}

	data.SetDigitalOutputs(dOut1 | dOut2 | dOut3)
	data.SetRX(feeder2SlotIndex, rx2)
	data.SetRX(feeder3SlotIndex, rx3)
}

// topState is TopLevel's outer state.
type topState uint8

const (
	topInit topState = iota
	topRun
)

// TopLevel is the sole entry point called once per cycle by the transport
// (spec's react). It drives both ServoInitializers to completion, then
// permanently delegates to a MachineRunner; there is no transition back
// to Init.
type TopLevel struct {
	init0, init1 *servo.ServoInitializer
	runner       *MachineRunner

	state topState
}

// NewTopLevel returns a TopLevel in Init, wrapping the two drive
// initializers and the run-phase runner.
func NewTopLevel(init0, init1 *servo.ServoInitializer, r *MachineRunner) *TopLevel {
	return &TopLevel{init0: init0, init1: init1, runner: r}
}

// Name implements components.Component.
func (t *TopLevel) Name() string { return "TopLevel" }

// State implements components.Component.
func (t *TopLevel) State() string {
	if t.state == topRun {
		return "Run"
	}
	return "Init"
}

// React is the cyclic reaction function: called exactly once per fixed
// transport period, it borrows data for the duration of the call and
// never allocates or blocks.
func (t *TopLevel) React(data *frame.DomainData) {
	switch t.state {
	case topInit:
		t.driveInit(data)
	case topRun:
		t.runner.Update(data)
	}
}

// driveInit ticks both ServoInitializers against their respective servo
// slots and writes their commanded control words back. It transitions to
// Run only once both report done on the same cycle.
func (t *TopLevel) driveInit(data *frame.DomainData) {
	tx0 := data.TX(feeder2SlotIndex)
	cw0, done0 := t.init0.Update(tx0)
	data.SetRX(feeder2SlotIndex, frame.ServoRxPdo{
		ControlWord:     uint16(cw0),
		ModeOfOperation: t.init0.ModeOfOperation(),
	})

	tx1 := data.TX(feeder3SlotIndex)
	cw1, done1 := t.init1.Update(tx1)
	data.SetRX(feeder3SlotIndex, frame.ServoRxPdo{
		ControlWord:     uint16(cw1),
		ModeOfOperation: t.init1.ModeOfOperation(),
	})

	if done0 && done1 {
		t.state = topRun
	}
}
