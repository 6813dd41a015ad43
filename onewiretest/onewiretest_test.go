// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package onewiretest

import (
	"testing"

	"github.com/tinygpio/onewire"
)

func TestResetPresence(t *testing.T) {
	tests := []struct {
		name    string
		devices []Device
		want    bool
	}{
		{name: "empty bus", devices: nil, want: false},
		{name: "one device", devices: []Device{{ID: 0x2E00_0002_8FAD_4928}}, want: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := New(test.devices...)
			l, err := onewire.NewLinkLayer(f, nil)
			if err != nil {
				t.Fatalf("NewLinkLayer: %v", err)
			}
			defer l.Close()
			present, err := l.Reset()
			if err != nil {
				t.Fatalf("Reset: %v", err)
			}
			if present != test.want {
				t.Errorf("Reset presence = %v, want %v", present, test.want)
			}
		})
	}
}

func TestSelectAndReadDeviceID(t *testing.T) {
	id := onewire.DeviceID(0x2E00_0002_8FAD_4928)
	f := New(Device{ID: id})
	b, err := onewire.Open(f, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	if err := b.Select(id); err != nil {
		t.Fatalf("Select: %v", err)
	}
	got, hasSelected := f.Selected()
	if !hasSelected || got != id {
		t.Errorf("Selected() = %s, %v, want %s, true", got, hasSelected, id)
	}

	read, err := b.ReadDeviceID()
	if err != nil {
		t.Fatalf("ReadDeviceID: %v", err)
	}
	if read != id {
		t.Errorf("ReadDeviceID() = %s, want %s", read, id)
	}
}

func TestQueuedResponse(t *testing.T) {
	f := New(Device{ID: 0x2E00_0002_8FAD_4928})
	b, err := onewire.Open(f, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	if err := b.Skip(); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	f.QueueResponse([]byte{0xAB, 0xCD})
	got, err := b.Read(2)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := []byte{0xAB, 0xCD}
	if got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Read() = %#v, want %#v", got, want)
	}
}
