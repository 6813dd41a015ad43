// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package onewire

import "fmt"

// DeviceID is a 64-bit 1-Wire device identifier. Byte 0 (the low byte) is
// the device's family code; byte 7 (the high byte) is the CRC-8 of bytes
// 0..6.
type DeviceID uint64

// Family returns the device's family code, the low byte of the ID.
func (id DeviceID) Family() byte {
	return byte(id)
}

// String renders the ID as a 16-digit hex literal, high byte first.
func (id DeviceID) String() string {
	return fmt.Sprintf("%#016x", uint64(id))
}

func (id DeviceID) lowBytesLSB(n int) []byte {
	b := make([]byte, n)
	for i := 0; i < n; i++ {
		b[i] = byte(id >> uint(8*i))
	}
	return b
}

// SearchControl is returned by an Enumerate callback to direct the
// remainder of the search. It is a tagged value, never a magic integer
// compared against a device ID.
type SearchControl int

const (
	// Continue lets the search proceed normally.
	Continue SearchControl = iota
	// SkipFamily abandons every undiscovered branch sharing the family
	// code (low byte) of the device just delivered.
	SkipFamily
)
