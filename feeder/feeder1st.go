// Copyright 2026 The corectl Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package feeder implements the three feeder-level state machines
// (Feeder1st, Feeder2nd, Feeder3rd) that sit above servo.ServoMover and
// coordinate over the shared digital I/O word.
package feeder

// Feeder1stOutputBit is the digital-output bit Feeder1st owns: the run
// lamp / solenoid. spec §4.3/§9(c) calls out that earlier source variants
// used 0x0020; the canonical implementation SHALL use 0x8000 to keep
// Feeder1st's mask disjoint from Feeder2nd's (which owns 0x0001-0x0004 and
// 0x4000).
const Feeder1stOutputBit uint16 = 0x8000

// feeder1State is Feeder1st's internal state.
type feeder1State uint8

const (
	feeder1Stop feeder1State = iota
	feeder1Run
)

// Feeder1st is a two-state run/stop lamp driven by a sensor-bit mask over
// the digital input word: in Stop, once every masked input bit is clear it
// starts (Run, lamp on); in Run, once any masked input bit is set it stops
// (Stop, lamp off). The output bit is latched across cycles.
type Feeder1st struct {
	name       string
	sensorMask uint16
	state      feeder1State
}

// NewFeeder1st returns a Feeder1st in the Stop state, watching sensorMask
// over the digital input word.
func NewFeeder1st(name string, sensorMask uint16) *Feeder1st {
	return &Feeder1st{name: name, sensorMask: sensorMask}
}

// Name implements components.Component.
func (f *Feeder1st) Name() string { return f.name }

// State implements components.Component.
func (f *Feeder1st) State() string {
	if f.state == feeder1Run {
		return "Run"
	}
	return "Stop"
}

// Update reacts to the digital input word and returns this feeder's
// contribution to the digital-output word (always exactly
// Feeder1stOutputBit or 0, never any other bit).
func (f *Feeder1st) Update(digitalInputs uint16) uint16 {
	masked := digitalInputs & f.sensorMask
	switch f.state {
	case feeder1Stop:
		if masked == 0 {
			f.state = feeder1Run
			return Feeder1stOutputBit
		}
		return 0
	case feeder1Run:
		if masked != 0 {
			f.state = feeder1Stop
			return 0
		}
		return Feeder1stOutputBit
	default:
		panic("feeder: invalid Feeder1st state")
	}
}
