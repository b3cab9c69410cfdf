// Copyright 2026 The corectl Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config collects the tunables spec.md hard-codes (actuator
// positions, profile velocities, kicker-stage and debounce cycle counts)
// into plain records, following the teacher's Opts-struct idiom
// (devices/bmxx80.Opts, devices/ssd1306.Opts): a single value passed once
// to a constructor, rather than package-level constants baked into the
// FSMs. Default() reproduces spec.md's hard-coded constants exactly.
package config

import "github.com/feedersys/corectl/servo"

// ServoMoverProfile holds the profile used for a single named move.
type ServoMoverProfile struct {
	Target       servo.Counts
	Velocity     servo.CountRate
	Acceleration servo.CountRate
	Deceleration servo.CountRate
}

// profileFor builds a ServoMoverProfile at the given profile velocity with
// accel/decel derived from it as velocity / 0.42s, per spec §3.
func profileFor(target servo.Counts, velocity servo.CountRate) ServoMoverProfile {
	rate := CountRateOverSeconds(velocity, 0.42)
	return ServoMoverProfile{
		Target:       target,
		Velocity:     velocity,
		Acceleration: rate,
		Deceleration: rate,
	}
}

// CountRateOverSeconds computes velocity / seconds, rounding toward zero,
// matching spec §3's "profile accel = decel = velocity / 0.42 s".
func CountRateOverSeconds(velocity servo.CountRate, seconds float64) servo.CountRate {
	return servo.CountRate(float64(velocity) / seconds)
}

// BaseProfileVelocity is the 1000 rpm base profile velocity from spec §3:
// 139 810 133 counts/s.
const BaseProfileVelocity = servo.CountRate(139810133)

// Feeder2nd holds Feeder2nd's tunables: the shuttle start/end positions,
// the shuttle's profile velocity, the three kicker-stage durations (auto
// and manual), and the product-passed debounce windows.
type Feeder2nd struct {
	Start, End                       ServoMoverProfile
	ShuttleVelocity                  servo.CountRate
	Kick01Auto, Kick01Manual         int
	Kick02Auto, Kick02Manual         int
	Kick03Auto, Kick03Manual         int
	Kick03BreakerAtAuto              int
	Kick03BreakerAtManual            int
	ProductPassedDelayAuto           int
	ProductPassedDelayManual         int
}

// Feeder3rd holds Feeder3rd's four hard-coded clamp-and-pick positions and
// its fixed dwell-cycle counts.
type Feeder3rd struct {
	P1, P2, P3, P4       ServoMoverProfile
	ClipOpenDwellCycles  int
	ClipCloseDwellCycles int
	ReturnDwellCycles    int
	EmptyDwellCycles     int
	WaitForSensor        bool // feature gate for the Pos1Holding sensor wait, spec §4.5
}

// Machine bundles every feeder's tuning, so a caller can build the whole
// machine from a single record. The base profile velocity is not a field;
// it is the BaseProfileVelocity constant, already folded into each profile.
type Machine struct {
	Feeder2nd Feeder2nd
	Feeder3rd Feeder3rd
}

// Default returns the spec's hard-coded constants as a Machine config, so
// callers that don't need per-machine tuning get the documented behavior
// for free.
func Default() Machine {
	shuttleVelocity := servo.RPMToCountRate(1500)
	return Machine{
		Feeder2nd: Feeder2nd{
			Start:                    profileFor(125_000_000, shuttleVelocity),
			End:                      profileFor(-30_900_000, shuttleVelocity),
			ShuttleVelocity:          shuttleVelocity,
			Kick01Auto:               780,
			Kick01Manual:             1,
			Kick02Auto:               450,
			Kick02Manual:             1,
			Kick03Auto:               850,
			Kick03Manual:             3,
			Kick03BreakerAtAuto:      200,
			Kick03BreakerAtManual:    2,
			ProductPassedDelayAuto:   1000,
			ProductPassedDelayManual: 1,
		},
		Feeder3rd: Feeder3rd{
			P1:                   profileFor(-271_000_000, BaseProfileVelocity),
			P2:                   profileFor(-259_000_000, BaseProfileVelocity),
			P3:                   profileFor(-1_780_000, BaseProfileVelocity),
			P4:                   profileFor(39_700_000, BaseProfileVelocity),
			ClipOpenDwellCycles:  200,
			ClipCloseDwellCycles: 200,
			ReturnDwellCycles:    300,
			EmptyDwellCycles:     300,
			WaitForSensor:        false,
		},
	}
}

// Profile converts a ServoMoverProfile into a servo.Profile, the type the
// servo package's movers actually consume.
func (p ServoMoverProfile) Profile() servo.Profile {
	return servo.Profile{
		Target:       p.Target,
		Velocity:     p.Velocity,
		Acceleration: p.Acceleration,
		Deceleration: p.Deceleration,
	}
}
