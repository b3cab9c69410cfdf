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

func TestFeeder2ndOutputStaysInMask(t *testing.T) {
	cfg := config.Default().Feeder2nd
	f := NewFeeder2nd("feeder2", cfg)
	tx := frame.ServoTxPdo{PositionActualValue: int32(cfg.Start.Target)}
	for i := 0; i < 4000; i++ {
		_, dOut, _ := f.Update(tx, 0, false)
		if dOut&^Feeder2ndOutputMask != 0 {
			t.Fatalf("cycle %d: dOut %#04x escaped Feeder2ndOutputMask", i, dOut)
		}
		if f.State() == "MoveToEnd" || f.State() == "MoveToStart" {
			tx.PositionActualValue = int32(cfg.End.Target)
			tx.StatusWord = uint16(servo.SWTargetReached)
		}
	}
}

func TestFeeder2ndKickSequenceTiming(t *testing.T) {
	cfg := config.Default().Feeder2nd
	f := NewFeeder2nd("feeder2", cfg)
	tx := frame.ServoTxPdo{PositionActualValue: int32(cfg.Start.Target), StatusWord: uint16(servo.SWTargetReached)}

	// Drain Init until the shuttle is commissioned at Start.
	for f.State() == "Init" {
		f.Update(tx, 0, false)
	}
	if f.State() != "StartPending" {
		t.Fatalf("state after Init = %s, want StartPending", f.State())
	}

	// Trip the sensor mask to begin the kick sequence.
	f.Update(tx, 0x0001, false)
	if f.State() != "StartKick01" {
		t.Fatalf("state after sensor trip = %s, want StartKick01", f.State())
	}

	total := cfg.Kick01Auto + cfg.Kick02Auto + cfg.Kick03Auto
	for i := 0; i < total; i++ {
		f.Update(tx, 0, false)
	}
	if f.State() != "MoveToEnd" {
		t.Fatalf("state after %d kick cycles = %s, want MoveToEnd", total, f.State())
	}
}

func TestFeeder2ndEndPendingHoldsUntilTriggered(t *testing.T) {
	cfg := config.Default().Feeder2nd
	f := NewFeeder2nd("feeder2", cfg)
	f.state = f2EndPending

	tx := frame.ServoTxPdo{PositionActualValue: int32(cfg.End.Target)}
	for i := 0; i < 10; i++ {
		_, dOut, _ := f.Update(tx, 0, false)
		if dOut != 0 {
			t.Errorf("EndPending should emit no output bits, got %#04x", dOut)
		}
		if f.State() != "EndPending" {
			t.Fatalf("state escaped EndPending without a trigger")
		}
	}
	f.TriggerNext()
	f.Update(tx, 0, false)
	if f.State() != "MoveToStart" {
		t.Fatalf("state after TriggerNext = %s, want MoveToStart", f.State())
	}
}

func TestFeeder2ndProductPassedDebounce(t *testing.T) {
	cfg := config.Default().Feeder2nd
	f := NewFeeder2nd("feeder2", cfg)
	f.state = f2StartPending

	tx := frame.ServoTxPdo{}
	f.Update(tx, 0x0000, true)
	f.Update(tx, productPassedBit, true) // rising edge, manual delay = 1
	for i := 0; i < cfg.ProductPassedDelayManual; i++ {
		f.Update(tx, productPassedBit, true)
	}
	if f.State() != "StartKick01" {
		t.Fatalf("state after product-passed debounce = %s, want StartKick01", f.State())
	}
}
