// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package onewire

import (
	"errors"
	"sync"
	"time"
)

// LinkOptions configure a LinkLayer at construction, the same
// options-struct-plus-DefaultOpts shape used throughout this package's
// sibling device packages.
type LinkOptions struct {
	// Pin is the GPIO pin number passed through to the Transceiver.
	Pin int
	// PullUp requests the Transceiver enable the pin's internal pull-up.
	PullUp bool
	// IdleThreshold is the default receiver idle threshold, in
	// microseconds, used outside of Reset (which temporarily overrides it
	// with ResetIdleThreshold). Zero means IdleThreshold (the package
	// constant).
	IdleThreshold uint16
	// Tracer, when non-nil, observes every SignalBuffer written to or
	// captured from the Transceiver.
	Tracer Tracer
}

// DefaultLinkOptions is the recommended default configuration.
var DefaultLinkOptions = LinkOptions{
	IdleThreshold: IdleThreshold,
}

// LinkLayer is a stateful driver around a Transceiver port: it owns the
// pin's current open-drain/power mode and receive idle threshold, and
// implements reset, bit/byte read and write, and strong pull-up power
// delivery. It performs no ROM-command framing; see Bus for that.
type LinkLayer struct {
	mu sync.Mutex

	t   Transceiver
	pin int

	idleThreshold uint16
	tracer        Tracer

	power   bool
	reading bool
	closed  bool
}

// NewLinkLayer configures t for bidirectional open-drain operation on the
// given pin and returns a LinkLayer driving it. opts may be nil to accept
// DefaultLinkOptions.
func NewLinkLayer(t Transceiver, opts *LinkOptions) (*LinkLayer, error) {
	if opts == nil {
		o := DefaultLinkOptions
		opts = &o
	}
	idle := opts.IdleThreshold
	if idle == 0 {
		idle = IdleThreshold
	}

	if err := t.ConfigureOutput(opts.Pin, High, nil); err != nil {
		return nil, transportErrf("configuring output channel: %v", err)
	}
	if err := t.ConfigureInput(opts.Pin, High, idle, 30, 1024); err != nil {
		return nil, transportErrf("configuring input channel: %v", err)
	}
	if err := t.MakeBidirectional(opts.Pin, opts.Pin, opts.PullUp); err != nil {
		return nil, transportErrf("configuring bidirectional pin: %v", err)
	}
	t.SetIdleThreshold(idle)

	return &LinkLayer{
		t:             t,
		pin:           opts.Pin,
		idleThreshold: idle,
		tracer:        opts.Tracer,
	}, nil
}

// SetTracer replaces the LinkLayer's Tracer, which may be nil.
func (l *LinkLayer) SetTracer(tr Tracer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tracer = tr
}

func (l *LinkLayer) trace(dir TraceDirection, s SignalBuffer) {
	if l.tracer != nil {
		l.tracer(dir, s)
	}
}

// Reset drives a reset pulse and reports whether any device responded with
// a presence pulse within ResetResponseTimeout. A timeout is not an error:
// it is reported as (false, nil), exactly like an unambiguous "no device"
// response.
func (l *LinkLayer) Reset() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false, closedErr()
	}

	prev := l.idleThreshold
	l.t.SetIdleThreshold(ResetIdleThreshold)
	defer l.t.SetIdleThreshold(prev)

	if err := l.t.StartReading(); err != nil {
		return false, transportErrf("starting reset capture: %v", err)
	}
	l.reading = true

	stim := SignalBuffer{{Level: Low, Period: ResetLow}, {Level: High, Period: ResetHigh}}
	l.trace(TraceWrite, stim)
	if err := l.t.Write(stim); err != nil {
		l.stopReadingLocked()
		return false, transportErrf("writing reset pulse: %v", err)
	}

	type captured struct {
		sig SignalBuffer
		err error
	}
	ch := make(chan captured, 1)
	go func() {
		sig, err := l.t.Read()
		ch <- captured{sig, err}
	}()

	select {
	case c := <-ch:
		l.stopReadingLocked()
		if c.err != nil {
			return false, transportErrf("capturing reset response: %v", c.err)
		}
		l.trace(TraceRead, c.sig)
		return validateResetResponse(c.sig), nil
	case <-time.After(ResetResponseTimeout):
		l.stopReadingLocked()
		return false, nil
	}
}

func validateResetResponse(s SignalBuffer) bool {
	if len(s) < 3 {
		return false
	}
	if s[0].Level != Low || s[0].Period < ResetLow-2 || s[0].Period > ResetLow+10 {
		return false
	}
	if s[1].Level != High || s[1].Period == 0 {
		return false
	}
	if s[2].Level != Low || s[2].Period == 0 {
		return false
	}
	return true
}

func (l *LinkLayer) stopReadingLocked() {
	if l.reading {
		_ = l.t.StopReading()
		l.reading = false
	}
}

// WriteBits writes the low count bits of value, least-significant-bit
// first. If activatePower is true, open-drain is disabled after the write
// so the pin sources current as a strong pull-up; a subsequent read
// implicitly turns it back off.
func (l *LinkLayer) WriteBits(value uint64, count int, activatePower bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return closedErr()
	}
	return l.writeBitsLocked(value, count, activatePower)
}

func (l *LinkLayer) writeBitsLocked(value uint64, count int, activatePower bool) error {
	if count < 0 || count > 64 {
		return invalidArgumentErrf("bit count %d out of range [0, 64]", count)
	}
	buf := EncodeWrite(value, count)
	l.trace(TraceWrite, buf)
	if err := l.t.Write(buf); err != nil {
		return transportErrf("writing %d bits: %v", count, err)
	}
	if activatePower {
		if err := l.t.SetOpenDrain(false); err != nil {
			return transportErrf("activating power: %v", err)
		}
		l.power = true
	}
	return nil
}

// WriteBit writes a single bit.
func (l *LinkLayer) WriteBit(v byte, activatePower bool) error {
	return l.WriteBits(uint64(v&1), 1, activatePower)
}

// WriteByte writes a single byte, least-significant-bit first.
func (l *LinkLayer) WriteByte(b byte, activatePower bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return closedErr()
	}
	return l.writeBitsLocked(uint64(b), 8, activatePower)
}

// Write writes p one byte at a time, each byte getting its own slot
// sequence. activatePower, if true, is only applied after the final byte.
func (l *LinkLayer) Write(p []byte, activatePower bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return closedErr()
	}
	for i, b := range p {
		last := i == len(p)-1
		if err := l.writeBitsLocked(uint64(b), 8, activatePower && last); err != nil {
			return err
		}
	}
	return nil
}

// ReadBits re-enables open-drain, then reads count bits (0..64) and returns
// them least-significant-bit first.
func (l *LinkLayer) ReadBits(count int) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, closedErr()
	}
	return l.readBitsLocked(count)
}

func (l *LinkLayer) readBitsLocked(count int) (uint64, error) {
	if count < 0 || count > 64 {
		return 0, invalidArgumentErrf("bit count %d out of range [0, 64]", count)
	}
	if err := l.t.SetOpenDrain(true); err != nil {
		return 0, transportErrf("re-enabling open drain: %v", err)
	}
	l.power = false

	if err := l.t.StartReading(); err != nil {
		return 0, transportErrf("starting read capture: %v", err)
	}
	l.reading = true

	stim := EncodeRead(count)
	l.trace(TraceWrite, stim)
	if err := l.t.Write(stim); err != nil {
		l.stopReadingLocked()
		return 0, transportErrf("writing read stimulus: %v", err)
	}

	sig, err := l.t.Read()
	l.stopReadingLocked()
	if err != nil {
		return 0, transportErrf("capturing read response: %v", err)
	}
	l.trace(TraceRead, sig)

	return Decode(sig, 0, count)
}

// ReadBit reads a single bit.
func (l *LinkLayer) ReadBit() (byte, error) {
	v, err := l.ReadBits(1)
	return byte(v), err
}

// ReadByte reads a single byte, least-significant-bit first.
func (l *LinkLayer) ReadByte() (byte, error) {
	v, err := l.ReadBits(8)
	return byte(v), err
}

// Read reads n bytes, one byte at a time.
func (l *LinkLayer) Read(n int) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, closedErr()
	}
	out := make([]byte, n)
	for i := range out {
		v, err := l.readBitsLocked(8)
		if err != nil {
			return nil, err
		}
		out[i] = byte(v)
	}
	return out, nil
}

// SetPower enables or disables strong pull-up power delivery by toggling
// open-drain mode directly, outside of any read or write.
func (l *LinkLayer) SetPower(on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return closedErr()
	}
	if err := l.t.SetOpenDrain(!on); err != nil {
		return transportErrf("setting power %v: %v", on, err)
	}
	l.power = on
	return nil
}

// Close releases the Transceiver. It is idempotent; every operation after
// the first Close fails with ErrBusClosed.
func (l *LinkLayer) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true

	var errs []error
	if l.reading {
		if err := l.t.StopReading(); err != nil {
			errs = append(errs, err)
		}
		l.reading = false
	}
	if err := l.t.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
