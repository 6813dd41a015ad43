// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package onewire_test

import (
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/tinygpio/onewire"
	"github.com/tinygpio/onewire/onewiretest"
)

func idSet(ids []onewire.DeviceID) []uint64 {
	out := make([]uint64, len(ids))
	for i, id := range ids {
		out[i] = uint64(id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sorted(ids ...uint64) []uint64 {
	out := append([]uint64(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func openFake(t *testing.T, devices ...onewiretest.Device) (*onewire.Bus, *onewiretest.Transceiver) {
	t.Helper()
	f := onewiretest.New(devices...)
	b, err := onewire.Open(f, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b, f
}

// TestEnumerateEmptyBus covers S5's reset-on-empty-bus half indirectly:
// an empty bus enumerates to nothing.
func TestEnumerateEmptyBus(t *testing.T) {
	b, _ := openFake(t)
	var got []onewire.DeviceID
	if err := b.Enumerate(false, nil, func(id onewire.DeviceID) onewire.SearchControl {
		got = append(got, id)
		return onewire.Continue
	}); err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Enumerate() on empty bus = %v, want none", got)
	}
}

func s4Devices() []onewiretest.Device {
	return []onewiretest.Device{
		{ID: 0x3D00_0000_0000_0001},
		{ID: 0x5100_0000_FF2A_5A28},
		{ID: 0xFA00_0001_FF2A_5A28},
	}
}

// TestEnumerateAll is P5/S4's "enumerate() yields all three".
func TestEnumerateAll(t *testing.T) {
	b, _ := openFake(t, s4Devices()...)
	var got []onewire.DeviceID
	if err := b.Enumerate(false, nil, func(id onewire.DeviceID) onewire.SearchControl {
		got = append(got, id)
		return onewire.Continue
	}); err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	want := sorted(0x3D00_0000_0000_0001, 0x5100_0000_FF2A_5A28, 0xFA00_0001_FF2A_5A28)
	if !reflect.DeepEqual(idSet(got), want) {
		t.Errorf("Enumerate() = %#v, want %#v", got, want)
	}
}

// TestEnumerateFamily covers P6/S4's family=0x01 and family=0x28 cases.
func TestEnumerateFamily(t *testing.T) {
	tests := []struct {
		family byte
		want   []uint64
	}{
		{family: 0x01, want: []uint64{0x3D00_0000_0000_0001}},
		{family: 0x28, want: []uint64{0x5100_0000_FF2A_5A28, 0xFA00_0001_FF2A_5A28}},
	}
	for _, test := range tests {
		b, _ := openFake(t, s4Devices()...)
		var got []onewire.DeviceID
		family := test.family
		if err := b.Enumerate(false, &family, func(id onewire.DeviceID) onewire.SearchControl {
			got = append(got, id)
			return onewire.Continue
		}); err != nil {
			t.Fatalf("Enumerate(family=%#02x): %v", test.family, err)
		}
		want := sorted(test.want...)
		if !reflect.DeepEqual(idSet(got), want) {
			t.Errorf("Enumerate(family=%#02x) = %#v, want %#v", test.family, got, want)
		}
	}
}

// TestSkipFamily covers P8/S4's "returning SkipFamily on the first 0x28
// device yields exactly two total ids".
func TestSkipFamily(t *testing.T) {
	b, _ := openFake(t, s4Devices()...)
	var got []onewire.DeviceID
	skipped := false
	if err := b.Enumerate(false, nil, func(id onewire.DeviceID) onewire.SearchControl {
		got = append(got, id)
		if !skipped && id.Family() == 0x28 {
			skipped = true
			return onewire.SkipFamily
		}
		return onewire.Continue
	}); err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Enumerate() with SkipFamily delivered %d ids, want 2: %v", len(got), got)
	}
	if got[0].Family() != 0x28 {
		t.Errorf("first delivered id %s has family %#02x, want 0x28", got[0], got[0].Family())
	}
	if got[1] != 0x3D00_0000_0000_0001 {
		t.Errorf("second delivered id = %s, want 0x3d00000000000001", got[1])
	}
}

// TestEnumerateAlarm covers P7.
func TestEnumerateAlarm(t *testing.T) {
	devices := []onewiretest.Device{
		{ID: 0x3D00_0000_0000_0001, Alarm: true},
		{ID: 0x5100_0000_FF2A_5A28},
		{ID: 0xFA00_0001_FF2A_5A28, Alarm: true},
	}
	b, _ := openFake(t, devices...)
	var got []onewire.DeviceID
	if err := b.Enumerate(true, nil, func(id onewire.DeviceID) onewire.SearchControl {
		got = append(got, id)
		return onewire.Continue
	}); err != nil {
		t.Fatalf("Enumerate(alarmOnly): %v", err)
	}
	want := sorted(0x3D00_0000_0000_0001, 0xFA00_0001_FF2A_5A28)
	if !reflect.DeepEqual(idSet(got), want) {
		t.Errorf("Enumerate(alarmOnly) = %#v, want %#v", got, want)
	}
}

// TestEnumerateAlarmNoneAlarmed checks the (1,1)-as-graceful-completion
// rule: when no device is in alarm state, alarm-only enumeration yields
// nothing and does not fail with a bus error.
func TestEnumerateAlarmNoneAlarmed(t *testing.T) {
	b, _ := openFake(t, s4Devices()...)
	var got []onewire.DeviceID
	if err := b.Enumerate(true, nil, func(id onewire.DeviceID) onewire.SearchControl {
		got = append(got, id)
		return onewire.Continue
	}); err != nil {
		t.Fatalf("Enumerate(alarmOnly): %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Enumerate(alarmOnly) with no alarmed devices = %v, want none", got)
	}
}

// TestPing covers P9/S4.
func TestPing(t *testing.T) {
	b, _ := openFake(t, s4Devices()...)

	ok, err := b.Ping(0x5100_0000_FF2A_5A28)
	if err != nil {
		t.Fatalf("Ping(present): %v", err)
	}
	if !ok {
		t.Errorf("Ping(present) = false, want true")
	}

	ok, err = b.Ping(0x5100_0000_FF2A_5A29)
	if err != nil {
		t.Fatalf("Ping(absent): %v", err)
	}
	if ok {
		t.Errorf("Ping(absent) = true, want false")
	}
}

func TestEnumerateCRCError(t *testing.T) {
	// 0x2E00_0002_8FAD_4928 is a known-good S3 regression id; flipping its
	// high (CRC) byte guarantees a mismatch without needing to hand-derive
	// a bad CRC value.
	bad := onewire.DeviceID(0x2E00_0002_8FAD_4928) ^ (onewire.DeviceID(0xff) << 56)
	b, _ := openFake(t, onewiretest.Device{ID: bad})
	err := b.Enumerate(false, nil, func(id onewire.DeviceID) onewire.SearchControl { return onewire.Continue })
	var crcErr onewire.CRCError
	if !errors.As(err, &crcErr) {
		t.Errorf("Enumerate() err = %v, want CRCError", err)
	}
}
