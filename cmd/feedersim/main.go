// Copyright 2026 The corectl Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// feedersim drives the cyclic control core against an in-memory
// simulated transport, for local exercise and manual testing without a
// real fieldbus master or real drives.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/feedersys/corectl/components"
	"github.com/feedersys/corectl/config"
	"github.com/feedersys/corectl/feeder"
	"github.com/feedersys/corectl/frame"
	"github.com/feedersys/corectl/frametest"
	"github.com/feedersys/corectl/runner"
	"github.com/feedersys/corectl/servo"
	"github.com/feedersys/corectl/transport"
)

var _ transport.Cycle = (*simCycle)(nil)

// simCycle is a transport.Cycle backed by two frametest.Servo models. It
// feeds dIn as the digital-input word on every cycle; mainImpl latches the
// mode-switch bit there, so the runner enters Auto on its first cycle once
// both drives reach OperationEnabled and runs every cycle after that.
type simCycle struct {
	servo0, servo1 *frametest.Servo
	dIn            uint16
}

func newSimCycle(stepSize int32) *simCycle {
	s0, s1 := frametest.NewServo(), frametest.NewServo()
	s0.StepSize, s1.StepSize = stepSize, stepSize
	return &simCycle{servo0: s0, servo1: s1}
}

func (c *simCycle) Receive(data *frame.DomainData) error {
	data.SetTX(0, c.servo0.TX(data.RX(0)))
	data.SetTX(1, c.servo1.TX(data.RX(1)))
	data.SetDigitalInputs(c.dIn)
	return nil
}

func (c *simCycle) Send(data *frame.DomainData) error {
	return nil
}

// buildMachine wires up every component for one machine instance,
// registering each in reg for status printing, and returns the
// TopLevel.React function to call once per cycle.
func buildMachine(reg *components.Registry) func(*frame.DomainData) {
	cfg := config.Default()

	init0 := servo.NewServoInitializer("drive0.init")
	init1 := servo.NewServoInitializer("drive1.init")
	f1 := feeder.NewFeeder1st("feeder1", 0x0003)
	f2 := feeder.NewFeeder2nd("feeder2", cfg.Feeder2nd)
	f3 := feeder.NewFeeder3rd("feeder3", cfg.Feeder3rd)
	r := runner.NewMachineRunner(f1, f2, f3)
	top := runner.NewTopLevel(init0, init1, r)

	reg.MustRegister(init0)
	reg.MustRegister(init1)
	reg.MustRegister(f1)
	reg.MustRegister(f2)
	reg.MustRegister(f3)
	reg.MustRegister(r)
	reg.MustRegister(top)

	return top.React
}

func printStatus(reg *components.Registry) {
	for _, c := range reg.All() {
		fmt.Printf("  %-16s %s\n", c.Name(), c.State())
	}
}

func mainImpl() error {
	cycles := flag.Int("cycles", 2000, "number of simulated 25ms cycles to run")
	stepSize := flag.Int("step", 2_000_000, "simulated drive counts moved per cycle (0 = instant moves)")
	statusEvery := flag.Int("status-every", 250, "print component status every N cycles (0 disables)")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if !*verbose {
		log.SetOutput(io.Discard)
	}
	log.SetFlags(log.Lmicroseconds)
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}
	if *cycles <= 0 {
		return errors.New("-cycles must be positive")
	}

	reg := components.NewRegistry()
	react := buildMachine(reg)
	sim := newSimCycle(int32(*stepSize))
	sim.dIn = 0x8000 // mode switch latched to auto, for a continuously-running demo

	var data frame.DomainData
	for i := 0; i < *cycles; i++ {
		if err := sim.Receive(&data); err != nil {
			return err
		}
		react(&data)
		if err := sim.Send(&data); err != nil {
			return err
		}
		log.Printf("cycle %d: d_out=%#04x", i, data.DigitalOutputs())
		if *statusEvery > 0 && i%*statusEvery == 0 {
			fmt.Printf("cycle %d:\n", i)
			printStatus(reg)
		}
	}
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "feedersim: %s.\n", err)
		os.Exit(1)
	}
}
