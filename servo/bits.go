// Copyright 2026 The corectl Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package servo implements the two drive-level sub-machines shared by every
// feeder: ServoInitializer, which walks one CiA 402 drive from fault-reset
// to Operation Enabled, and ServoMover, which drives a single
// Profile-Position move to a target.
package servo

import (
	"fmt"
	"strings"
)

// ControlWord is the CiA 402 control word the core writes to a drive.
type ControlWord uint16

// Control-word bits used by this core.
const (
	CWSwitchOn      ControlWord = 1 << 0
	CWEnableVoltage ControlWord = 1 << 1
	CWQuickStop     ControlWord = 1 << 2
	CWEnableOp      ControlWord = 1 << 3
	CWFaultReset    ControlWord = 1 << 7
	CWNewSetPoint   ControlWord = 1 << 4
)

func (c ControlWord) String() string {
	var out []string
	if c&CWSwitchOn != 0 {
		out = append(out, "SWITCH_ON")
	}
	if c&CWEnableVoltage != 0 {
		out = append(out, "ENABLE_VOLTAGE")
	}
	if c&CWQuickStop != 0 {
		out = append(out, "QUICK_STOP")
	}
	if c&CWEnableOp != 0 {
		out = append(out, "ENABLE_OP")
	}
	if c&CWNewSetPoint != 0 {
		out = append(out, "NEW_SET_POINT")
	}
	if c&CWFaultReset != 0 {
		out = append(out, "FAULT_RESET")
	}
	if len(out) == 0 {
		return fmt.Sprintf("ControlWord(0x%04X)", uint16(c))
	}
	return strings.Join(out, "|")
}

// StatusWord is the CiA 402 status word a drive reports back.
type StatusWord uint16

// Status-word bits and masks used by this core's CiA 402 transition table.
const (
	SWReadyToSwitchOn StatusWord = 1 << 0
	SWSwitchedOn      StatusWord = 1 << 1
	SWOpEnabled       StatusWord = 1 << 2
	SWFault           StatusWord = 1 << 3
	SWVoltageEnabled  StatusWord = 1 << 4
	SWQuickStop       StatusWord = 1 << 5
	SWTargetReached   StatusWord = 1 << 9
	SWSetPointAck     StatusWord = 1 << 11 // unused by the canonical strobe-once TriggerNewSetPoint, see mover.go
)

// maskReadyToSwitchOn is READY_TO_SWITCH_ON | QUICK_STOP, the ReadyToSwitchOn guard.
const maskReadyToSwitchOn = SWReadyToSwitchOn | SWQuickStop // 0x21

// maskSwitchedOn adds VOLTAGE_ENABLED and SWITCHED_ON to maskReadyToSwitchOn.
const maskSwitchedOn = SWVoltageEnabled | SWQuickStop | SWSwitchedOn | SWReadyToSwitchOn // 0x33

// maskOperationEnabled adds OP_ENABLED to maskSwitchedOn.
const maskOperationEnabled = maskSwitchedOn | SWOpEnabled // 0x37

func (s StatusWord) String() string {
	var out []string
	if s&SWReadyToSwitchOn != 0 {
		out = append(out, "READY_TO_SWITCH_ON")
	}
	if s&SWSwitchedOn != 0 {
		out = append(out, "SWITCHED_ON")
	}
	if s&SWOpEnabled != 0 {
		out = append(out, "OP_ENABLED")
	}
	if s&SWFault != 0 {
		out = append(out, "FAULT")
	}
	if s&SWVoltageEnabled != 0 {
		out = append(out, "VOLTAGE_ENABLED")
	}
	if s&SWQuickStop != 0 {
		out = append(out, "QUICK_STOP")
	}
	if s&SWTargetReached != 0 {
		out = append(out, "TARGET_REACHED")
	}
	if s&SWSetPointAck != 0 {
		out = append(out, "SET_POINT_ACK")
	}
	if len(out) == 0 {
		return fmt.Sprintf("StatusWord(0x%04X)", uint16(s))
	}
	return strings.Join(out, "|")
}

// Counts is a signed encoder position, in raw drive counts.
type Counts int32

func (c Counts) String() string { return fmt.Sprintf("%dcounts", int32(c)) }

// CountRate is a signed encoder velocity, in counts per second.
type CountRate int32

func (c CountRate) String() string { return fmt.Sprintf("%dcounts/s", int32(c)) }

// RPMToCountRate converts a velocity given in rpm to the drive's internal
// count rate, assuming a 2^23 counts/rev encoder scaling: (rpm * 2^23) / 60.
func RPMToCountRate(rpm int64) CountRate {
	return CountRate((rpm << 23) / 60)
}
