// Copyright 2026 The corectl Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package feeder

import (
	"testing"

	"github.com/feedersys/corectl/config"
	"github.com/feedersys/corectl/frame"
	"github.com/feedersys/corectl/servo"
)

func TestFeeder3rdOutputStaysInMask(t *testing.T) {
	cfg := config.Default().Feeder3rd
	f := NewFeeder3rd("feeder3", cfg)
	tx := frame.ServoTxPdo{StatusWord: uint16(servo.SWTargetReached), PositionActualValue: int32(cfg.P4.Target)}
	for i := 0; i < 3000; i++ {
		_, dOut, _ := f.Update(tx, 0)
		if dOut&^Feeder3rdOutputMask != 0 {
			t.Fatalf("cycle %d: dOut %#04x escaped Feeder3rdOutputMask", i, dOut)
		}
	}
}

func TestFeeder3rdStartsWithClip1Engaged(t *testing.T) {
	cfg := config.Default().Feeder3rd
	f := NewFeeder3rd("feeder3", cfg)
	if f.dOut() != clip1Bit {
		t.Errorf("initial dOut = %#04x, want clip1 only (%#04x)", f.dOut(), clip1Bit)
	}
}

func TestFeeder3rdFullCycleReachesTargetReachedOnceAtPos1ToTakePart(t *testing.T) {
	cfg := config.Default().Feeder3rd
	cfg.ClipOpenDwellCycles = 2
	cfg.ClipCloseDwellCycles = 2
	cfg.ReturnDwellCycles = 2
	cfg.EmptyDwellCycles = 2
	f := NewFeeder3rd("feeder3", cfg)

	targetReachedCount := 0
	seenStates := map[string]bool{}
	pos := int32(0)
	tx := frame.ServoTxPdo{StatusWord: uint16(servo.SWTargetReached)}

	for i := 0; i < 40; i++ {
		seenStates[f.State()] = true
		switch f.State() {
		case "StartMove04":
			pos = int32(cfg.P4.Target)
		case "StartMove01":
			pos = int32(cfg.P1.Target)
		case "Pos1ToTakePart":
			pos = int32(cfg.P3.Target)
		case "StartMove02":
			pos = int32(cfg.P2.Target)
		case "Pos01Empty":
			pos = int32(cfg.P1.Target)
		}
		tx.PositionActualValue = pos
		_, _, reached := f.Update(tx, 0)
		if reached {
			targetReachedCount++
			if f.State() != "StartMove02" {
				t.Errorf("target_reached fired while entering state %s, want StartMove02", f.State())
			}
		}
		if f.State() == "Init" && i > 0 {
			break
		}
	}

	if targetReachedCount != 1 {
		t.Errorf("target_reached fired %d times in one full cycle, want exactly 1", targetReachedCount)
	}
	for _, want := range []string{
		"StartPending", "StartMove04", "StartMove04Clip", "StartMove01",
		"Pos1Holding", "Pos1ToTakePart", "StartMove02", "Pos02Release",
		"Pos01Empty", "EmptyPendingStep1", "EmptyPendingStep2",
	} {
		if !seenStates[want] {
			t.Errorf("state %s was never visited during the full cycle", want)
		}
	}
}

func TestFeeder3rdPos1HoldingWaitsForSensorWhenGated(t *testing.T) {
	cfg := config.Default().Feeder3rd
	cfg.WaitForSensor = true
	f := NewFeeder3rd("feeder3", cfg)
	f.state = f3Pos1Holding

	tx := frame.ServoTxPdo{}
	for i := 0; i < 5; i++ {
		f.Update(tx, 0)
		if f.State() != "Pos1Holding" {
			t.Fatalf("left Pos1Holding without the sensor bit set")
		}
	}
	f.Update(tx, feeder3HoldSensorBit)
	if f.State() != "Pos1ToTakePart" {
		t.Fatalf("state after sensor asserted = %s, want Pos1ToTakePart", f.State())
	}
}

func TestFeeder3rdClipsAroundPos02Release(t *testing.T) {
	cfg := config.Default().Feeder3rd
	f := NewFeeder3rd("feeder3", cfg)
	f.state = f3StartMove02
	f.clip1On = false
	f.clip2On = true
	f.mover.SetTarget(cfg.P2.Profile())

	tx := frame.ServoTxPdo{StatusWord: uint16(servo.SWTargetReached), PositionActualValue: int32(cfg.P2.Target)}
	f.Update(tx, 0)
	if f.State() != "Pos02Release" {
		t.Fatalf("state = %s, want Pos02Release", f.State())
	}
	if !f.clip1On || f.clip2On {
		t.Errorf("clip1On=%v clip2On=%v at Pos02Release, want clip1 closed and clip2 open", f.clip1On, f.clip2On)
	}
}
