// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package onewire

// TraceDirection identifies whether a traced SignalBuffer was written to, or
// captured from, the bus.
type TraceDirection int

const (
	// TraceWrite marks a SignalBuffer about to be emitted by the master.
	TraceWrite TraceDirection = iota
	// TraceRead marks a SignalBuffer captured from the bus.
	TraceRead
)

func (d TraceDirection) String() string {
	if d == TraceRead {
		return "read"
	}
	return "write"
}

// Tracer observes every SignalBuffer a LinkLayer writes to or captures from
// its Transceiver. It is a plain function value rather than an interface
// since there is exactly one call site; see onewire/trace for consumers.
type Tracer func(dir TraceDirection, s SignalBuffer)

// Transceiver is the host-provided peripheral boundary a LinkLayer drives:
// a single open-drain GPIO pin wired to a pulse-generating RMT-style block
// able to emit and capture (level, duration) pairs. Implementations are not
// part of this package; see onewire/rmthost for a reference adapter over
// periph.io GPIO, and onewire/onewiretest for an in-memory fake used by this
// package's own tests.
type Transceiver interface {
	// ConfigureOutput prepares the pin's output channel. channelID, when
	// non-nil, requests a specific hardware channel number.
	ConfigureOutput(pin int, idleLevel Level, channelID *int) error
	// ConfigureInput prepares the pin's input (capture) channel.
	ConfigureInput(pin int, idleLevel Level, idleThresholdUS uint16, filterTicksThreshold int, bufferSize int) error
	// MakeBidirectional binds the previously configured input and output
	// channels onto a single open-drain pin, optionally enabling the
	// pin's internal pull-up.
	MakeBidirectional(input, output int, pullUp bool) error

	// Write blocks until the signal sequence has been transmitted. It may
	// be called while a capture started by StartReading is in progress.
	Write(s SignalBuffer) error

	// StartReading arms the capture channel. Read blocks until a frame is
	// captured or the peripheral's idle threshold elapses.
	StartReading() error
	Read() (SignalBuffer, error)
	StopReading() error

	// SetIdleThreshold and IdleThreshold get and set the receiver idle
	// threshold, in microseconds, used to terminate a captured frame.
	SetIdleThreshold(us uint16)
	IdleThreshold() uint16

	// SetOpenDrain toggles the pin's open-drain mode. Disabling it lets the
	// pin source current as a strong pull-up.
	SetOpenDrain(on bool) error

	Close() error
}
