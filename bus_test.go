// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package onewire_test

import (
	"errors"
	"testing"

	"github.com/tinygpio/onewire"
	"github.com/tinygpio/onewire/onewiretest"
)

// TestResetPresence is S5's two non-timeout cases.
func TestResetPresence(t *testing.T) {
	tests := []struct {
		name    string
		devices []onewiretest.Device
		want    bool
	}{
		{name: "empty", devices: nil, want: false},
		{name: "one device", devices: []onewiretest.Device{{ID: 0x3D00_0000_0000_0001}}, want: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			b, _ := openFake(t, test.devices...)
			got, err := b.Reset()
			if err != nil {
				t.Fatalf("Reset: %v", err)
			}
			if got != test.want {
				t.Errorf("Reset() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestSelectNoDevice(t *testing.T) {
	b, _ := openFake(t)
	if err := b.Select(0x3D00_0000_0000_0001); !errors.Is(err, onewire.ErrNoDevice) {
		t.Errorf("Select() on empty bus err = %v, want ErrNoDevice", err)
	}
}

func TestSelectAndReadDeviceID(t *testing.T) {
	id := onewire.DeviceID(0x3D00_0000_0000_0001)
	b, f := openFake(t, onewiretest.Device{ID: id})

	if err := b.Select(id); err != nil {
		t.Fatalf("Select: %v", err)
	}
	got, ok := f.Selected()
	if !ok || got != id {
		t.Errorf("Selected() = %s, %v, want %s, true", got, ok, id)
	}

	read, err := b.ReadDeviceID()
	if err != nil {
		t.Fatalf("ReadDeviceID: %v", err)
	}
	if read != id {
		t.Errorf("ReadDeviceID() = %s, want %s", read, id)
	}
}

func TestBusClosedOperationsFail(t *testing.T) {
	b, _ := openFake(t, onewiretest.Device{ID: 0x3D00_0000_0000_0001})
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil (idempotent)", err)
	}
	if _, err := b.Reset(); !errors.Is(err, onewire.ErrBusClosed) {
		t.Errorf("Reset() after Close err = %v, want ErrBusClosed", err)
	}
	if err := b.Select(0x3D00_0000_0000_0001); !errors.Is(err, onewire.ErrBusClosed) {
		t.Errorf("Select() after Close err = %v, want ErrBusClosed", err)
	}
}

func TestCRC8KnownGood(t *testing.T) {
	ids := []onewire.DeviceID{
		0xA200_0000_01B8_1C02,
		0xD7AA_13C0_2916_9085,
		0xA600_0801_9470_1310,
		0x2E00_0002_8FAD_4928,
		0x3D00_0000_0000_0001,
		0x5100_0000_FF2A_5A28,
		0xFA00_0001_FF2A_5A28,
	}
	for _, id := range ids {
		want := byte(id >> 56)
		if got := onewire.CRC8(id); got != want {
			t.Errorf("CRC8(%s) = %#02x, want %#02x", id, got, want)
		}
	}
}
