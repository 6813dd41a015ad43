// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package onewire

import "time"

// Level is the electrical level of a pulse on the 1-Wire data line.
type Level uint8

const (
	// Low is the line pulled to ground by either master or slave.
	Low Level = 0
	// High is the line released and pulled up by the bus pull-up resistor.
	High Level = 1
)

func (l Level) String() string {
	if l == High {
		return "high"
	}
	return "low"
}

// Signal is one (level, duration) pair as produced or captured by the
// transceiver peripheral. Period is in microseconds; 0 is a valid period.
type Signal struct {
	Level  Level
	Period uint16
}

// SignalBuffer is an ordered, fixed-length sequence of Signal values. It is
// a passive value type: the transceiver emits and captures instances of it,
// and the codec functions translate to and from it.
type SignalBuffer []Signal

// Timing constants from Maxim/Analog app note AN126, standard (non-overdrive)
// timing. All values are in microseconds.
const (
	// ResetLow is the duration the master drives the line low to initiate a
	// reset pulse.
	ResetLow uint16 = 480
	// ResetHighBeforeSample is how long the master releases the line before
	// sampling for a slave presence pulse.
	ResetHighBeforeSample uint16 = 70
	// ResetHighAfterSample is the remainder of the high window after the
	// presence pulse has been sampled.
	ResetHighAfterSample uint16 = 410
	// ResetHigh is the total high portion of a reset slot (I + J).
	ResetHigh uint16 = ResetHighBeforeSample + ResetHighAfterSample
	// ResetIdleThreshold is the receiver idle threshold used while capturing
	// a reset response; it must exceed ResetHigh so the whole slot is seen
	// as one frame.
	ResetIdleThreshold uint16 = 530

	// IOTimeSlot is the duration of one read or write bit slot.
	IOTimeSlot uint16 = 70

	// ReadLow is how long the master pulls the line low to initiate a read
	// slot.
	ReadLow uint16 = 6
	// ReadHighBeforeSample is the sample delay within a read slot (app note
	// specifies 9µs, +5µs margin for the pull-up resistor).
	ReadHighBeforeSample uint16 = 14
	// ReadHighAfterSample is the remainder of a read slot after sampling.
	ReadHighAfterSample uint16 = 55
	// ReadHigh is the total high portion of a read slot (E + F).
	ReadHigh uint16 = ReadHighBeforeSample + ReadHighAfterSample

	// Write0Low is how long the master pulls the line low to write a '0' bit.
	Write0Low uint16 = 60
	// Write1Low is how long the master pulls the line low to write a '1' bit.
	Write1Low uint16 = 6

	// IdleThreshold is the default receiver idle threshold, greater than any
	// write-low duration so a byte's bit slots are not split into separate
	// frames.
	IdleThreshold uint16 = 75

	// SignalsPerBit is the number of (level, period) pairs used to encode or
	// decode a single bit: one low edge followed by one high edge.
	SignalsPerBit = 2
)

// ResetResponseTimeout bounds how long LinkLayer.Reset waits for a captured
// response before concluding no device is present.
const ResetResponseTimeout = 500 * time.Millisecond
