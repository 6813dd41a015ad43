// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package onewire

// ROM command bytes, issued immediately after a reset to select how slaves
// are to be addressed.
const (
	// RomMatch selects a single device by its full 64-bit ID.
	RomMatch byte = 0x55
	// RomSkip addresses every device on the bus simultaneously.
	RomSkip byte = 0xCC
	// RomSearch enumerates every device on the bus.
	RomSearch byte = 0xF0
	// RomRead reads the ID of the single device on the bus; undefined if
	// more than one device is present.
	RomRead byte = 0x33
	// RomSearchAlarm enumerates only devices currently in an alarm state.
	RomSearchAlarm byte = 0xEC
)
