// Copyright 2026 The corectl Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package servo

import "github.com/feedersys/corectl/frame"

// initState is the CiA 402 bring-up state for one drive.
type initState uint8

const (
	initStart initState = iota
	initFaultReset
	initReadyToSwitchOn
	initSwitchOn
	initEnableOperation
	initOperationEnabled
)

// modeProfilePosition is the CiA 402 "Profile Position" mode of operation.
const modeProfilePosition uint8 = 1

// ServoInitializer walks one drive through the CiA 402 fault-reset →
// ready → switched-on → operation-enabled sequence. It never retries a
// fault encountered after the initial clear: once Update has returned true
// it keeps returning true for the lifetime of the instance, per spec §4.1.
type ServoInitializer struct {
	name  string
	state initState
}

// NewServoInitializer returns a ServoInitializer in its Start state. name is
// used only for diagnostics (components.Component.Name).
func NewServoInitializer(name string) *ServoInitializer {
	return &ServoInitializer{name: name, state: initStart}
}

// Name implements components.Component.
func (s *ServoInitializer) Name() string { return s.name }

// State implements components.Component.
func (s *ServoInitializer) State() string {
	switch s.state {
	case initStart:
		return "Start"
	case initFaultReset:
		return "FaultReset"
	case initReadyToSwitchOn:
		return "ReadyToSwitchOn"
	case initSwitchOn:
		return "SwitchOn"
	case initEnableOperation:
		return "EnableOperation"
	case initOperationEnabled:
		return "OperationEnabled"
	default:
		return "Unknown"
	}
}

// Update inspects tx.StatusWord and returns the control word to write back
// (mode_of_operation is always Profile Position while initializing). It
// returns true on the first cycle OperationEnabled is reached, and on
// every cycle thereafter.
func (s *ServoInitializer) Update(tx frame.ServoTxPdo) (cw ControlWord, done bool) {
	status := StatusWord(tx.StatusWord)
	switch s.state {
	case initStart:
		s.state = initFaultReset
		return 0x0000, false
	case initFaultReset:
		if status&SWFault == 0 {
			s.state = initReadyToSwitchOn
		}
		return 0x0080, false
	case initReadyToSwitchOn:
		if status&maskReadyToSwitchOn == maskReadyToSwitchOn {
			s.state = initSwitchOn
		}
		return 0x0006, false
	case initSwitchOn:
		if status&maskSwitchedOn == maskSwitchedOn {
			s.state = initEnableOperation
		}
		return 0x0007, false
	case initEnableOperation:
		if status&maskOperationEnabled == maskOperationEnabled {
			s.state = initOperationEnabled
			return 0x000F, true
		}
		return 0x000F, false
	case initOperationEnabled:
		return 0x000F, true
	default:
		panic("servo: invalid ServoInitializer state")
	}
}

// ModeOfOperation is the mode_of_operation value an initializer always
// requests: Profile Position.
func (s *ServoInitializer) ModeOfOperation() uint8 { return modeProfilePosition }
