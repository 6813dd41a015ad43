// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package onewire implements the Dallas/Maxim 1-Wire bus protocol for
// microcontrollers that expose a pulse-generating transceiver peripheral
// (an "RMT": a block that emits and captures (level, duration) signal pairs
// on a single open-drain GPIO pin).
//
// The package is organized in the three layers described by Maxim app note
// AN126: a signal codec translating bytes/bits to pulse trains and back
// (Codec functions), a link-layer driver that owns the transceiver and
// performs reset/read/write operations (LinkLayer), and a bus façade adding
// ROM-command framing, device enumeration ("search") and CRC-8 validation
// (Bus).
//
// The physical transceiver, the GPIO pin abstraction, and device-specific
// drivers are not part of this package; see Transceiver for the boundary
// this package expects a host implementation to provide, and subpackage
// rmthost for a reference implementation over periph.io GPIO.
package onewire
