// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package onewire

// searchState carries the Maxim binary-tree search algorithm's state
// between successive passes over the bus.
type searchState struct {
	romNo uint64

	// lastDiscrepancy is the 1-based bit position of the highest-numbered
	// branch point where the previous pass took the "0" side, leaving the
	// "1" side unexplored; 0 means none. It doubles as the "fixed_bits+1" seed a search
	// can start from: family search seeds 9 so the first 8 bits (the
	// family byte) retrace romNo verbatim, and Ping seeds 65 so all 64
	// bits do.
	lastDiscrepancy int
	// lastFamilyDiscrepancy is the same, restricted to bit positions 1..8
	// (the family code byte); it lets a search jump past the remainder of
	// one family's devices without walking them one at a time.
	lastFamilyDiscrepancy int
}

// runSearchPass resets the bus, issues command, and walks all 64 ROM bits
// once, resolving each discrepancy per st and leaving st updated for the
// next pass. present is false when no device answered the reset; when
// false, err is always nil and st is left untouched. If alarmOnly is set,
// a (1,1) response (no device answered this bit at all) ends the pass as
// "no alarmed devices", also reported as present == false, rather than
// failing with a bus error.
func (b *Bus) runSearchPass(command byte, st *searchState, alarmOnly bool) (present bool, err error) {
	present, err = b.link.Reset()
	if err != nil || !present {
		return present, err
	}
	if err := b.link.WriteByte(command, false); err != nil {
		return true, err
	}

	var romNo uint64
	lastZero := 0
	lastFamilyZero := 0

	for bitNum := 1; bitNum <= 64; bitNum++ {
		idBit, err := b.link.ReadBit()
		if err != nil {
			return true, err
		}
		cmpBit, err := b.link.ReadBit()
		if err != nil {
			return true, err
		}

		var dir byte
		switch {
		case idBit == 1 && cmpBit == 1:
			if alarmOnly {
				return false, nil
			}
			return true, busErrorf("no device responded at search bit %d", bitNum)
		case idBit == 0 && cmpBit == 0:
			switch {
			case bitNum < st.lastDiscrepancy:
				dir = byte((st.romNo >> uint(bitNum-1)) & 1)
			case bitNum == st.lastDiscrepancy:
				dir = 1
			default:
				dir = 0
			}
			if dir == 0 {
				lastZero = bitNum
				if bitNum <= 8 {
					lastFamilyZero = lastZero
				}
			}
		default:
			dir = idBit
		}

		if dir == 1 {
			romNo |= 1 << uint(bitNum-1)
		}
		if err := b.link.WriteBit(dir, false); err != nil {
			return true, err
		}
	}

	st.romNo = romNo
	st.lastDiscrepancy = lastZero
	st.lastFamilyDiscrepancy = lastFamilyZero
	return true, nil
}

// enumerate drives repeated passes of the tree-search algorithm starting
// from st, delivering each discovered device's ID to cb after checking it
// against keep (when non-nil); a device keep rejects ends the entire
// enumeration immediately rather than just skipping that device, on the
// premise (used by Enumerate's family filter) that no further matches remain once
// the seeded search strays from the target prefix.
func (b *Bus) enumerate(command byte, st searchState, keep func(DeviceID) bool, cb func(DeviceID) SearchControl) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return closedErr()
	}

	alarmOnly := command == RomSearchAlarm
	for {
		present, err := b.runSearchPass(command, &st, alarmOnly)
		if err != nil {
			return err
		}
		if !present {
			return nil
		}

		id := DeviceID(st.romNo)
		if want := byte(id >> 56); CRC8(id) != want {
			return crcErrorf("device %s: crc mismatch, got %#02x want %#02x", id, CRC8(id), want)
		}
		if keep != nil && !keep(id) {
			return nil
		}

		if cb(id) == SkipFamily {
			st.lastDiscrepancy = st.lastFamilyDiscrepancy
		}
		if st.lastDiscrepancy == 0 {
			return nil
		}
	}
}

// Enumerate walks devices on the bus in the standard binary-tree search
// order, delivering each one's ID to cb until the search is exhausted or
// an error occurs. cb returning SkipFamily skips the remaining devices of
// the delivered device's family; no SearchControl value stops the search
// outright.
//
// alarmOnly restricts the walk to devices currently in an alarm state
// (RomSearchAlarm in place of RomSearch); a (1,1) response partway
// through a pass then ends the enumeration as "no alarmed devices" rather
// than as a bus error.
//
// family, when non-nil, restricts the walk to devices whose family code
// equals *family. The search is seeded with the family byte and 8 fixed
// bits so the first pass's own discrepancy resolution deselects every
// non-matching device by bit 8, rather than discovering and discarding
// other families one at a time.
func (b *Bus) Enumerate(alarmOnly bool, family *byte, cb func(DeviceID) SearchControl) error {
	command := RomSearch
	if alarmOnly {
		command = RomSearchAlarm
	}
	st := searchState{}
	var keep func(DeviceID) bool
	if family != nil {
		st = searchState{romNo: uint64(*family), lastDiscrepancy: 9}
		f := *family
		keep = func(id DeviceID) bool { return id.Family() == f }
	}
	return b.enumerate(command, st, keep, cb)
}

// Ping retraces the search algorithm down exactly the path id describes,
// reporting whether a device answering to id is present. It does not
// discover unknown devices and does not by itself distinguish "absent"
// from "bus empty": both are reported as (false, nil). Call Reset first if
// that distinction matters.
func (b *Bus) Ping(id DeviceID) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false, closedErr()
	}

	st := searchState{romNo: uint64(id), lastDiscrepancy: 65}
	present, err := b.runSearchPass(RomSearch, &st, false)
	if err != nil || !present {
		return false, err
	}
	return DeviceID(st.romNo) == id, nil
}
