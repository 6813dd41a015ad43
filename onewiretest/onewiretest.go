// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package onewiretest provides an in-memory onewire.Transceiver that
// simulates zero or more 1-Wire devices, for exercising LinkLayer and Bus
// without real hardware. It classifies every captured (level, period)
// signal shape written to it as one of a reset pulse, a read stimulus, or
// a data bit write, and answers reset/search/ROM-read traffic against a
// fixed set of simulated devices.
package onewiretest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tinygpio/onewire"
)

// Device describes one simulated 1-Wire slave.
type Device struct {
	ID    onewire.DeviceID
	Alarm bool
}

type mode int

const (
	modeCommand mode = iota
	modeSearch
	modeMatchBits
	modeReadROM
	modeData
)

// Transceiver is an onewire.Transceiver backed by a fixed Devices list. Its
// zero value, with at least one Device appended, is ready to pass to
// onewire.NewLinkLayer or onewire.Open.
type Transceiver struct {
	mu      sync.Mutex
	Devices []Device

	idleThreshold uint16
	openDrain     bool
	reading       bool
	closed        bool

	awaitingReset   bool
	pendingReadBits int

	mode       mode
	candidates []onewire.DeviceID
	bitPos     int
	searchPhase int

	matchAcc    uint64
	selected    onewire.DeviceID
	hasSelected bool

	responseBits []byte
}

// New returns a Transceiver simulating the given devices.
func New(devices ...Device) *Transceiver {
	return &Transceiver{Devices: devices}
}

// QueueResponse appends the bits of p, least-significant-bit first within
// each byte, to the FIFO consumed by Bus/LinkLayer reads issued outside of
// ROM-command framing (i.e. application data reads following Select or
// Skip). Bits read past the end of every queued response default to 1, as
// an idle, pulled-up line would.
func (f *Transceiver) QueueResponse(p []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range p {
		for i := 0; i < 8; i++ {
			f.responseBits = append(f.responseBits, (b>>uint(i))&1)
		}
	}
}

// Selected reports the device ID most recently addressed with RomMatch,
// and whether any Select has happened since the last reset.
func (f *Transceiver) Selected() (onewire.DeviceID, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selected, f.hasSelected
}

func (f *Transceiver) ConfigureOutput(pin int, idleLevel onewire.Level, channelID *int) error {
	return nil
}

func (f *Transceiver) ConfigureInput(pin int, idleLevel onewire.Level, idleThresholdUS uint16, filterTicksThreshold int, bufferSize int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.idleThreshold = idleThresholdUS
	return nil
}

func (f *Transceiver) MakeBidirectional(input, output int, pullUp bool) error {
	return nil
}

func (f *Transceiver) SetIdleThreshold(us uint16) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.idleThreshold = us
}

func (f *Transceiver) IdleThreshold() uint16 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.idleThreshold
}

func (f *Transceiver) SetOpenDrain(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openDrain = on
	return nil
}

func (f *Transceiver) StartReading() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("onewiretest: transceiver closed")
	}
	f.reading = true
	return nil
}

func (f *Transceiver) StopReading() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reading = false
	return nil
}

func (f *Transceiver) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *Transceiver) Write(s onewire.SignalBuffer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("onewiretest: transceiver closed")
	}

	if isResetShape(s) {
		f.awaitingReset = true
		f.mode = modeCommand
		f.bitPos = 0
		f.searchPhase = 0
		f.hasSelected = false
		return nil
	}
	if n, ok := readStimulusLen(s); ok {
		f.pendingReadBits = n
		return nil
	}
	if n, v, ok := decodeWriteBits(s); ok {
		f.handleDataWrite(n, v)
		return nil
	}
	return fmt.Errorf("onewiretest: unrecognized signal shape: %v", s)
}

func (f *Transceiver) Read() (onewire.SignalBuffer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, errors.New("onewiretest: transceiver closed")
	}

	if f.awaitingReset {
		f.awaitingReset = false
		if len(f.Devices) == 0 {
			return onewire.SignalBuffer{}, nil
		}
		return onewire.SignalBuffer{
			{Level: onewire.Low, Period: onewire.ResetLow},
			{Level: onewire.High, Period: 80},
			{Level: onewire.Low, Period: 150},
		}, nil
	}

	n := f.pendingReadBits
	f.pendingReadBits = 0

	switch f.mode {
	case modeSearch:
		return f.searchReadResponse(n), nil
	case modeReadROM:
		return f.romReadResponse(n), nil
	default:
		return f.dataReadResponse(n), nil
	}
}

func (f *Transceiver) handleDataWrite(n int, v uint64) {
	switch f.mode {
	case modeCommand:
		f.dispatchCommand(byte(v))
	case modeMatchBits:
		f.matchAcc |= v << uint(f.bitPos)
		f.bitPos += n
		if f.bitPos >= 64 {
			f.selected = onewire.DeviceID(f.matchAcc)
			f.hasSelected = true
			f.mode = modeData
		}
	case modeSearch:
		bit := byte(v & 1)
		filtered := f.candidates[:0]
		for _, d := range f.candidates {
			if byte((uint64(d)>>uint(f.bitPos))&1) == bit {
				filtered = append(filtered, d)
			}
		}
		f.candidates = filtered
		f.bitPos++
		f.searchPhase = 0
	default:
	}
}

func (f *Transceiver) dispatchCommand(cmd byte) {
	f.bitPos = 0
	f.searchPhase = 0
	switch cmd {
	case onewire.RomSearch:
		f.mode = modeSearch
		f.candidates = allIDs(f.Devices)
	case onewire.RomSearchAlarm:
		f.mode = modeSearch
		f.candidates = alarmIDs(f.Devices)
	case onewire.RomMatch:
		f.mode = modeMatchBits
		f.matchAcc = 0
	case onewire.RomSkip:
		f.mode = modeData
		f.hasSelected = false
	case onewire.RomRead:
		f.mode = modeReadROM
	default:
		f.mode = modeData
	}
}

func (f *Transceiver) searchReadResponse(n int) onewire.SignalBuffer {
	buf := make(onewire.SignalBuffer, 0, 2*n)
	for i := 0; i < n; i++ {
		idBit, cmpBit := f.discrepancyBits()
		v := idBit
		if f.searchPhase == 1 {
			v = cmpBit
		}
		buf = append(buf, bitSignal(v)...)
		f.searchPhase = 1 - f.searchPhase
	}
	return buf
}

func (f *Transceiver) discrepancyBits() (id, cmp byte) {
	if len(f.candidates) == 0 {
		return 1, 1
	}
	allOne, allZero := true, true
	for _, d := range f.candidates {
		if (uint64(d)>>uint(f.bitPos))&1 == 1 {
			allZero = false
		} else {
			allOne = false
		}
	}
	switch {
	case allOne:
		return 1, 0
	case allZero:
		return 0, 1
	default:
		return 0, 0
	}
}

func (f *Transceiver) romReadResponse(n int) onewire.SignalBuffer {
	var acc uint64 = ^uint64(0)
	for i, d := range f.Devices {
		if i == 0 {
			acc = uint64(d.ID)
			continue
		}
		acc &= uint64(d.ID)
	}
	if len(f.Devices) == 0 {
		acc = 0
	}
	return bitsToSignals(acc, n)
}

func (f *Transceiver) dataReadResponse(n int) onewire.SignalBuffer {
	buf := make(onewire.SignalBuffer, 0, 2*n)
	for i := 0; i < n; i++ {
		var bit byte = 1
		if len(f.responseBits) > 0 {
			bit = f.responseBits[0]
			f.responseBits = f.responseBits[1:]
		}
		buf = append(buf, bitSignal(bit)...)
	}
	return buf
}

func bitsToSignals(v uint64, n int) onewire.SignalBuffer {
	buf := make(onewire.SignalBuffer, 0, 2*n)
	for i := 0; i < n; i++ {
		buf = append(buf, bitSignal(byte((v>>uint(i))&1))...)
	}
	return buf
}

func bitSignal(v byte) onewire.SignalBuffer {
	if v == 1 {
		return onewire.SignalBuffer{
			{Level: onewire.Low, Period: onewire.ReadLow},
			{Level: onewire.High, Period: onewire.ReadHigh},
		}
	}
	return onewire.SignalBuffer{
		{Level: onewire.Low, Period: onewire.ReadHighBeforeSample},
		{Level: onewire.High, Period: onewire.ReadHighAfterSample},
	}
}

func allIDs(devices []Device) []onewire.DeviceID {
	ids := make([]onewire.DeviceID, len(devices))
	for i, d := range devices {
		ids[i] = d.ID
	}
	return ids
}

func alarmIDs(devices []Device) []onewire.DeviceID {
	var ids []onewire.DeviceID
	for _, d := range devices {
		if d.Alarm {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

func isResetShape(s onewire.SignalBuffer) bool {
	return len(s) == 2 &&
		s[0].Level == onewire.Low && s[0].Period == onewire.ResetLow &&
		s[1].Level == onewire.High && s[1].Period == onewire.ResetHigh
}

func readStimulusLen(s onewire.SignalBuffer) (int, bool) {
	if len(s) == 0 || len(s)%2 != 0 {
		return 0, false
	}
	for i := 0; i < len(s); i += 2 {
		if s[i].Level != onewire.Low || s[i].Period != onewire.ReadLow ||
			s[i+1].Level != onewire.High || s[i+1].Period != onewire.ReadHigh {
			return 0, false
		}
	}
	return len(s) / 2, true
}

func decodeWriteBits(s onewire.SignalBuffer) (n int, v uint64, ok bool) {
	if len(s) == 0 || len(s)%2 != 0 {
		return 0, 0, false
	}
	n = len(s) / 2
	for i := 0; i < n; i++ {
		lo, hi := s[2*i], s[2*i+1]
		if lo.Level != onewire.Low || hi.Level != onewire.High {
			return 0, 0, false
		}
		switch {
		case lo.Period == onewire.Write1Low && hi.Period == onewire.IOTimeSlot-onewire.Write1Low:
			v |= 1 << uint(i)
		case lo.Period == onewire.Write0Low && hi.Period == onewire.IOTimeSlot-onewire.Write0Low:
		default:
			return 0, 0, false
		}
	}
	return n, v, true
}
