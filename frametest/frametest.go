// Copyright 2026 The corectl Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package frametest provides fakes for driving the core's FSMs in tests
// without a real fieldbus or real drives.
//
// Grounded on conn/i2c/i2ctest.Playback: a small in-memory stand-in that
// responds the way real hardware would, so callers can be tested without
// a bus. Servo adapts that idea from "scripted bus replies" to "a drive
// simulator that tracks its own commanded control word and moves its
// reported position toward any profile target it is given", since a
// servo drive's replies are a function of what it was just commanded
// rather than a fixed script.
package frametest

import "github.com/feedersys/corectl/frame"

// statusTargetReached mirrors servo.SWTargetReached (1<<9) without
// importing the servo package, keeping frametest usable from any layer
// that only depends on frame.
const statusTargetReached uint16 = 1 << 9

// statusOperationEnabledMask mirrors the CiA 402 OperationEnabled status
// mask (0x37): READY_TO_SWITCH_ON | SWITCHED_ON | OP_ENABLED |
// VOLTAGE_ENABLED | QUICK_STOP.
const statusOperationEnabledMask uint16 = 0x37

// controlWordOperationEnabled is the subset of control-word bits this fake
// inspects: ENABLE_OP and the three state bits that together select
// OperationEnabled.
const controlWordOperationEnabled uint16 = 0x000F

// Servo is a fake drive. Each cycle, TX moves its reported position one
// increment toward the last commanded target_position and reports
// TARGET_REACHED once within tolerance; it also fakes the CiA 402
// bring-up handshake well enough for a ServoInitializer under test to
// reach OperationEnabled.
type Servo struct {
	// Position is the simulated position_actual_value.
	Position int32
	// StepSize is how far Position moves toward the commanded target
	// each TX call; zero means move to target immediately.
	StepSize int32
	// Tolerance is the window used to decide TARGET_REACHED, mirroring
	// servo.ToleranceCounts; zero disables the reached bit.
	Tolerance int32

	enabled bool
}

// NewServo returns a Servo starting at position 0 with the canonical
// tolerance window.
func NewServo() *Servo {
	return &Servo{Tolerance: 14200}
}

// TX returns this drive's current TX image for the given commanded RX
// image, after advancing Position one step toward rx.TargetPosition.
func (s *Servo) TX(rx frame.ServoRxPdo) frame.ServoTxPdo {
	if rx.ControlWord&controlWordOperationEnabled == controlWordOperationEnabled {
		s.enabled = true
	}

	target := rx.TargetPosition
	diff := target - s.Position
	if s.StepSize == 0 || diff == 0 {
		s.Position = target
	} else if diff > 0 {
		if diff > s.StepSize {
			diff = s.StepSize
		}
		s.Position += diff
	} else {
		if -diff > s.StepSize {
			diff = -s.StepSize
		}
		s.Position += diff
	}

	// Before OperationEnabled latches, answer the Shutdown (0x0006) and
	// Switch On (0x0007) commands with the ReadyToSwitchOn (0x21) and
	// SwitchedOn (0x33) status bits.
	var status uint16
	switch {
	case s.enabled:
		status |= statusOperationEnabledMask
	case rx.ControlWord == 0x0006:
		status |= 0x21
	case rx.ControlWord == 0x0007:
		status |= 0x33
	}
	if s.withinTolerance(target) {
		status |= statusTargetReached
	}
	return frame.ServoTxPdo{StatusWord: status, PositionActualValue: s.Position}
}

func (s *Servo) withinTolerance(target int32) bool {
	diff := s.Position - target
	if diff < 0 {
		diff = -diff
	}
	return diff < s.Tolerance
}

// Script drives DomainData through a fixed sequence of digital-input
// words, one per cycle, calling react between each and recording the
// resulting digital-output word. It is the frame-level analogue of
// i2ctest.Playback: a scripted sequence of inputs replayed against the
// system under test.
type Script struct {
	Servo0, Servo1 *Servo
	react          func(*frame.DomainData)

	// Outputs accumulates the digital-output word observed after each
	// Run cycle, in order.
	Outputs []uint16
}

// NewScript returns a Script wired to react, the function under test
// (typically a *runner.TopLevel's React method), with a fresh Servo
// simulating each of the two drive slots.
func NewScript(react func(*frame.DomainData)) *Script {
	return &Script{Servo0: NewServo(), Servo1: NewServo(), react: react}
}

// Run feeds dIns one cycle at a time: before each call to react, both
// simulated drives advance against the RX image from the previous cycle;
// after react runs, the resulting digital-output word is appended to
// Outputs.
func (s *Script) Run(data *frame.DomainData, dIns []uint16) {
	for _, dIn := range dIns {
		data.SetTX(0, s.Servo0.TX(data.RX(0)))
		data.SetTX(1, s.Servo1.TX(data.RX(1)))
		data.SetDigitalInputs(dIn)
		s.react(data)
		s.Outputs = append(s.Outputs, data.DigitalOutputs())
	}
}
