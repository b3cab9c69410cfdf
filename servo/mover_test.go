// Copyright 2026 The corectl Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package servo

import (
	"testing"

	"github.com/feedersys/corectl/frame"
)

func TestMoverAcceptWhileReadyAtTarget(t *testing.T) {
	m := NewServoMover("shuttle")
	if !m.SetTarget(Profile{Target: 1_000_000}) {
		t.Fatal("SetTarget should be accepted on a fresh mover")
	}
	_, complete := m.Update(frame.ServoTxPdo{PositionActualValue: 1_000_000})
	if !complete {
		t.Fatal("Update should report complete immediately when already at target")
	}
	if !m.Ready() {
		t.Fatal("Ready should be true immediately after reaching target")
	}
	if !m.SetTarget(Profile{Target: 2_000_000}) {
		t.Fatal("SetTarget should be accepted once ready")
	}
	if m.State() != "Init" {
		t.Errorf("state after SetTarget = %s, want Init", m.State())
	}
}

func TestMoverRejectsTargetWhileBusy(t *testing.T) {
	m := NewServoMover("shuttle")
	m.SetTarget(Profile{Target: 1_000_000})
	// Not yet at target: busy.
	m.Update(frame.ServoTxPdo{PositionActualValue: 0})
	if m.SetTarget(Profile{Target: 500}) {
		t.Fatal("SetTarget should be rejected while not ready")
	}
}

func TestMoverFullSequence(t *testing.T) {
	m := NewServoMover("shuttle")
	m.SetTarget(Profile{Target: 1_000_000, Velocity: 139810133})

	// Init: far from target, drive not yet reporting TARGET_REACHED -> hold.
	rx, complete := m.Update(frame.ServoTxPdo{PositionActualValue: 0})
	if complete {
		t.Fatal("should not be complete while far from target")
	}
	if rx.TargetPosition != 0 || rx.ProfileVelocity != 0 {
		t.Errorf("hold command should target actual position with zero profile rates, got %+v", rx)
	}
	if m.State() != "Init" {
		t.Errorf("state = %s, want Init", m.State())
	}

	// Drive now asserts TARGET_REACHED (stale from a previous move): advance to Profile.
	_, complete = m.Update(frame.ServoTxPdo{PositionActualValue: 0, StatusWord: uint16(SWTargetReached)})
	if complete {
		t.Fatal("should not be complete yet")
	}
	if m.State() != "Profile" {
		t.Fatalf("state = %s, want Profile", m.State())
	}

	// Profile: emits full profile, advances to TriggerNewSetPoint.
	rx, _ = m.Update(frame.ServoTxPdo{PositionActualValue: 0})
	if rx.TargetPosition != 1_000_000 || rx.ProfileVelocity != 139810133 {
		t.Errorf("profile command = %+v, want target 1000000 velocity 139810133", rx)
	}
	if m.State() != "TriggerNewSetPoint" {
		t.Fatalf("state = %s, want TriggerNewSetPoint", m.State())
	}

	// TriggerNewSetPoint: strobes NEW_SET_POINT unconditionally for one cycle.
	rx, _ = m.Update(frame.ServoTxPdo{PositionActualValue: 0})
	if ControlWord(rx.ControlWord)&CWNewSetPoint == 0 {
		t.Errorf("control word %#04x should strobe NEW_SET_POINT", rx.ControlWord)
	}
	if m.State() != "WaitTargetReached" {
		t.Fatalf("state = %s, want WaitTargetReached", m.State())
	}

	// WaitTargetReached: keep driving profile until TARGET_REACHED asserts.
	_, complete = m.Update(frame.ServoTxPdo{PositionActualValue: 500_000})
	if complete {
		t.Fatal("should not be complete while TARGET_REACHED unset")
	}
	if m.State() != "WaitTargetReached" {
		t.Fatalf("state = %s, want WaitTargetReached", m.State())
	}

	_, _ = m.Update(frame.ServoTxPdo{PositionActualValue: 999_999, StatusWord: uint16(SWTargetReached)})
	if m.State() != "Init" {
		t.Fatalf("state = %s, want Init after TARGET_REACHED", m.State())
	}

	// Back in Init, within tolerance: complete.
	_, complete = m.Update(frame.ServoTxPdo{PositionActualValue: 999_999})
	if !complete {
		t.Fatal("should be complete within tolerance window")
	}
}

func TestToleranceBoundary(t *testing.T) {
	cases := []struct {
		actual, target Counts
		want           bool
	}{
		{1_000_000, 1_000_000, true},
		{1_000_000 + ToleranceCounts - 1, 1_000_000, true},
		{1_000_000 + ToleranceCounts, 1_000_000, false},
		{1_000_000 - ToleranceCounts + 1, 1_000_000, true},
		{1_000_000 - ToleranceCounts, 1_000_000, false},
	}
	for _, c := range cases {
		if got := withinTolerance(c.actual, c.target); got != c.want {
			t.Errorf("withinTolerance(%d, %d) = %v, want %v", c.actual, c.target, got, c.want)
		}
	}
}

func TestRPMToCountRate(t *testing.T) {
	if got, want := RPMToCountRate(1000), CountRate(139810133); got != want {
		t.Errorf("RPMToCountRate(1000) = %d, want %d", got, want)
	}
}
