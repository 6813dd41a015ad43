// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package onewire

import (
	"sync"

	"github.com/tinygpio/onewire/common"
)

// BusOptions configure Open.
type BusOptions struct {
	// Pin is the GPIO pin number passed through to the Transceiver.
	Pin int
	// PullUp requests the Transceiver enable the pin's internal pull-up.
	PullUp bool
	// Tracer, when non-nil, observes every SignalBuffer written to or
	// captured from the Transceiver.
	Tracer Tracer
}

// DefaultBusOptions is the recommended default configuration.
var DefaultBusOptions = BusOptions{}

// Bus is a stateful façade around a LinkLayer adding ROM-command framing,
// the search state machine, presence probing, and CRC-8 validation.
type Bus struct {
	mu     sync.Mutex
	link   *LinkLayer
	closed bool
}

// Open configures t via a new LinkLayer and returns a Bus owning it; Close
// on the Bus closes the link. opts may be nil to accept DefaultBusOptions.
func Open(t Transceiver, opts *BusOptions) (*Bus, error) {
	if opts == nil {
		o := DefaultBusOptions
		opts = &o
	}
	l, err := NewLinkLayer(t, &LinkOptions{Pin: opts.Pin, PullUp: opts.PullUp, Tracer: opts.Tracer})
	if err != nil {
		return nil, err
	}
	return &Bus{link: l}, nil
}

// OpenWithLink returns a Bus driving an already-constructed LinkLayer.
// Closing the Bus closes l.
func OpenWithLink(l *LinkLayer) *Bus {
	return &Bus{link: l}
}

// Close closes the underlying LinkLayer. Idempotent.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.link.Close()
}

// Reset drives a reset pulse and reports whether any device is present.
func (b *Bus) Reset() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false, closedErr()
	}
	return b.link.Reset()
}

// Select resets the bus and addresses exactly one device by its 64-bit ID.
func (b *Bus) Select(id DeviceID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return closedErr()
	}
	present, err := b.link.Reset()
	if err != nil {
		return err
	}
	if !present {
		return noDeviceErrf("select(%s)", id)
	}
	if err := b.link.WriteByte(RomMatch, false); err != nil {
		return err
	}
	return b.link.WriteBits(uint64(id), 64, false)
}

// Skip resets the bus and addresses every device simultaneously.
func (b *Bus) Skip() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return closedErr()
	}
	present, err := b.link.Reset()
	if err != nil {
		return err
	}
	if !present {
		return noDeviceErrf("skip")
	}
	return b.link.WriteByte(RomSkip, false)
}

// ReadDeviceID resets the bus, issues RomRead, and reads back 64 bits. This
// is only meaningful when exactly one device is present; with more than
// one, the result is the bitwise AND of every present device's ID.
func (b *Bus) ReadDeviceID() (DeviceID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, closedErr()
	}
	present, err := b.link.Reset()
	if err != nil {
		return 0, err
	}
	if !present {
		return 0, noDeviceErrf("read device id")
	}
	if err := b.link.WriteByte(RomRead, false); err != nil {
		return 0, err
	}
	v, err := b.link.ReadBits(64)
	return DeviceID(v), err
}

// WriteBit writes a single bit, without any ROM-command framing.
func (b *Bus) WriteBit(v byte, activatePower bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return closedErr()
	}
	return b.link.WriteBit(v, activatePower)
}

// WriteBits writes the low count bits of v, least-significant-bit first.
func (b *Bus) WriteBits(v uint64, count int, activatePower bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return closedErr()
	}
	return b.link.WriteBits(v, count, activatePower)
}

// WriteByte writes a single byte.
func (b *Bus) WriteByte(v byte, activatePower bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return closedErr()
	}
	return b.link.WriteByte(v, activatePower)
}

// Write writes p, one byte at a time.
func (b *Bus) Write(p []byte, activatePower bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return closedErr()
	}
	return b.link.Write(p, activatePower)
}

// ReadBit reads a single bit.
func (b *Bus) ReadBit() (byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, closedErr()
	}
	return b.link.ReadBit()
}

// ReadBits reads count bits (0..64), least-significant-bit first.
func (b *Bus) ReadBits(count int) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, closedErr()
	}
	return b.link.ReadBits(count)
}

// ReadByte reads a single byte.
func (b *Bus) ReadByte() (byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, closedErr()
	}
	return b.link.ReadByte()
}

// Read reads n bytes.
func (b *Bus) Read(n int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, closedErr()
	}
	return b.link.Read(n)
}

// CRC8 returns the CRC-8 of the low 7 bytes of id (least-significant byte
// first); compare against byte(id >> 56) to validate it.
func CRC8(id DeviceID) byte {
	return common.CRC8Maxim(id.lowBytesLSB(7))
}

// CRC8Bytes returns the Dallas/Maxim CRC-8 of an arbitrary byte sequence.
func CRC8Bytes(p []byte) byte {
	return common.CRC8Maxim(p)
}
