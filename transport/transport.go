// Copyright 2026 The corectl Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package transport defines the boundary between the cyclic control core
// and whatever fieldbus master actually owns the wire. The core never
// implements this contract itself (spec §6): master bring-up, slave
// discovery, PDO mapping and the timing loop are all external
// collaborators. Only cmd/feedersim depends on this package; frame,
// servo, feeder and runner do not.
//
// Grounded on conn/conn.go's minimal Conn/Duplex interfaces: a small,
// read/write contract expressed directly in terms of the domain's own
// types, with no generic transport abstraction layered on top.
package transport

import "github.com/feedersys/corectl/frame"

// Cycle is one fieldbus period's worth of I/O: receive the drives' and
// sensors' current TX/input state, and send back whatever the core
// commands. A real implementation owns the actual master connection; a
// simulated one (see cmd/feedersim) just advances an in-memory model.
type Cycle interface {
	// Receive populates data's TX halves and digital-inputs word with
	// freshly sampled values for this cycle.
	Receive(data *frame.DomainData) error

	// Send pushes data's RX halves and digital-outputs word, as written
	// by the core this cycle, out to the drives and outputs.
	Send(data *frame.DomainData) error
}
